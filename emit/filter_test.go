package emit

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/hugr-lab/odata-go/expr"
)

func lambda(t *testing.T, f expr.Func) *expr.Lambda {
	t.Helper()
	l, err := f.Lambda()
	if err != nil {
		t.Fatalf("capture error = %v", err)
	}
	return l
}

func pred(fn func(c expr.Value) expr.Value) expr.Func {
	return expr.Fn("c", fn)
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		f    expr.Func
		want string
	}{
		{
			name: "collection lambdas",
			f: pred(func(c expr.Value) expr.Value {
				addresses := c.Field("addresses")
				return c.Field("id").Eq(4).And(
					addresses.Any("a", func(a expr.Value) expr.Value { return a.Field("id").Gt(1000) }).Not().
						Or(addresses.All("a", func(a expr.Value) expr.Value { return a.Field("id").Ge(1000) })),
				)
			}),
			want: "id eq 4 and (not addresses/any(a: a/id gt 1000) or addresses/all(a: a/id ge 1000))",
		},
		{
			name: "operator precedence",
			f: pred(func(c expr.Value) expr.Value {
				id := c.Field("id")
				return id.Add(4).Sub(2).Mul(4).Div(2).Mod(2).Eq(1).
					And(id.Ne(42)).
					And(id.Neg().Ne(19))
			}),
			want: "((id add 4 sub 2) mul 4 div 2) mod 2 eq 1 and id ne 42 and -id ne 19",
		},
		{
			name: "length",
			f:    pred(func(c expr.Value) expr.Value { return c.Field("name").Length().Lt(5) }),
			want: "length(name) lt 5",
		},
		{
			name: "round",
			f:    pred(func(c expr.Value) expr.Value { return expr.Round(c.Field("id")).Le(5) }),
			want: "round(id) le 5",
		},
		{
			name: "substringof",
			f:    pred(func(c expr.Value) expr.Value { return c.Field("name").Includes("flix") }),
			want: `substringof("flix", name)`,
		},
		{
			name: "right operand grouping",
			f:    pred(func(c expr.Value) expr.Value { return c.Field("a").Sub(c.Field("b").Sub(1)).Eq(0) }),
			want: "a sub (b sub 1) eq 0",
		},
		{
			name: "not over and",
			f: pred(func(c expr.Value) expr.Value {
				return c.Field("a").Eq(1).And(c.Field("b").Eq(2)).Not()
			}),
			want: "not (a eq 1 and b eq 2)",
		},
		{
			name: "neg over binary",
			f:    pred(func(c expr.Value) expr.Value { return c.Field("a").Add(1).Neg().Lt(0) }),
			want: "-(a add 1) lt 0",
		},
		{
			name: "comparison operand",
			f:    pred(func(c expr.Value) expr.Value { return c.Field("a").Gt(1).Eq(true) }),
			want: "(a gt 1) eq true",
		},
		{
			name: "nested path",
			f:    pred(func(c expr.Value) expr.Value { return c.Path("city.country.name").Eq("NL") }),
			want: `city/country/name eq "NL"`,
		},
		{
			name: "outer parameter inside lambda",
			f: pred(func(c expr.Value) expr.Value {
				return c.Field("addresses").Any("a", func(a expr.Value) expr.Value {
					return a.Field("zip").Eq(c.Field("zip"))
				})
			}),
			want: "addresses/any(a: a/zip eq $it/zip)",
		},
		{
			name: "nested lambdas",
			f: pred(func(c expr.Value) expr.Value {
				return c.Field("orders").Any("o", func(o expr.Value) expr.Value {
					return o.Field("lines").All("l", func(l expr.Value) expr.Value {
						return l.Field("qty").Gt(o.Field("min"))
					})
				})
			}),
			want: "orders/any(o: o/lines/all(l: l/qty gt o/min))",
		},
		{
			name: "collection count",
			f:    pred(func(c expr.Value) expr.Value { return c.Field("addresses").Count().Gt(2) }),
			want: "addresses/$count gt 2",
		},
		{
			name: "null",
			f:    pred(func(c expr.Value) expr.Value { return c.Field("parent").Eq(nil) }),
			want: "parent eq null",
		},
		{
			name: "geo distance",
			f: pred(func(c expr.Value) expr.Value {
				return expr.GeoDistance(c.Field("location"), orb.Point{4.9, 52.37}).Lt(1000.5)
			}),
			want: "geo.distance(location, geography'SRID=4326;POINT(4.9 52.37)') lt 1000.5",
		},
		{
			name: "geo intersects",
			f: pred(func(c expr.Value) expr.Value {
				return expr.GeoIntersects(c.Field("location"), orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})
			}),
			want: "geo.intersects(location, geography'SRID=4326;POLYGON((0 0,1 0,1 1,0 0))')",
		},
		{
			name: "geo length",
			f:    pred(func(c expr.Value) expr.Value { return expr.GeoLength(c.Field("route")).Gt(10) }),
			want: "geo.length(route) gt 10",
		},
	}

	enc := NewEncoder(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enc.Filter(lambda(t, tt.f))
			if err != nil {
				t.Fatalf("Filter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Filter() =\n  %s\nwant\n  %s", got, tt.want)
			}
		})
	}
}

func TestFilters(t *testing.T) {
	enc := NewEncoder(nil)
	a := lambda(t, pred(func(c expr.Value) expr.Value { return c.Field("id").Gt(5) }))
	b := lambda(t, pred(func(c expr.Value) expr.Value { return c.Field("a").Eq(1).Or(c.Field("b").Eq(2)) }))

	got, err := enc.Filters([]*expr.Lambda{a, b})
	if err != nil {
		t.Fatalf("Filters() error = %v", err)
	}
	if want := "id gt 5 and (a eq 1 or b eq 2)"; got != want {
		t.Errorf("Filters() = %q, want %q", got, want)
	}

	got, err = enc.Filters([]*expr.Lambda{b})
	if err != nil {
		t.Fatalf("Filters() error = %v", err)
	}
	if want := "a eq 1 or b eq 2"; got != want {
		t.Errorf("Filters() = %q, want %q", got, want)
	}
}

func TestFilterUnsupported(t *testing.T) {
	tests := []struct {
		name string
		l    *expr.Lambda
	}{
		{
			name: "conditional",
			l:    lambda(t, pred(func(c expr.Value) expr.Value { return expr.If(c.Field("a"), 1, 2).Eq(1) })),
		},
		{
			name: "object",
			l: lambda(t, pred(func(c expr.Value) expr.Value {
				return expr.Object(expr.Prop("a", c.Field("a")))
			})),
		},
		{
			name: "unbound parameter",
			l:    lambda(t, pred(func(c expr.Value) expr.Value { return expr.Param("x").Field("id").Eq(1) })),
		},
		{
			name: "aggregate in filter",
			l: lambda(t, pred(func(c expr.Value) expr.Value {
				return c.Field("lines").Sum("l", func(l expr.Value) expr.Value { return l.Field("qty") }).Gt(1)
			})),
		},
		{
			name: "unknown literal type",
			l:    lambda(t, pred(func(c expr.Value) expr.Value { return c.Field("a").Eq(struct{}{}) })),
		},
		{
			name: "unknown call",
			l: &expr.Lambda{Param: "c", Body: &expr.Call{
				Target: &expr.Member{Target: &expr.Parameter{Name: "c"}, Field: "a"},
				Name:   "startswith",
			}},
		},
	}

	enc := NewEncoder(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := enc.Filter(tt.l)
			if !errors.Is(err, expr.ErrUnsupportedExpression) {
				t.Errorf("Filter() error = %v, want unsupported expression", err)
			}
		})
	}
}

func TestLiteral(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		v      any
		single bool
		want   string
	}{
		{"nil", nil, false, "null"},
		{"true", true, false, "true"},
		{"int", 42, false, "42"},
		{"int64", int64(-7), false, "-7"},
		{"uint8", uint8(200), false, "200"},
		{"float", 2.5, false, "2.5"},
		{"float32", float32(0.25), false, "0.25"},
		{"large float", 1e21, false, "1000000000000000000000"},
		{"nan", math.NaN(), false, "NaN"},
		{"inf", math.Inf(-1), false, "-INF"},
		{"string", `it's "x"`, false, `"it's \"x\""`},
		{"html chars", "<a&b>", false, `"<a&b>"`},
		{"single quoted", "it's", true, "'it''s'"},
		{"time", ts, false, "2024-03-01T12:30:00Z"},
		{"uuid", id, false, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"point", orb.Point{1, 2}, false, "geography'SRID=4326;POINT(1 2)'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewEncoder(&Options{SingleQuotedStrings: tt.single})
			got, err := enc.Literal(tt.v)
			if err != nil {
				t.Fatalf("Literal() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Literal(%v) = %s, want %s", tt.v, got, tt.want)
			}
		})
	}
}

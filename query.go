package odata

import (
	"context"
	"fmt"

	"github.com/hugr-lab/odata-go/expand"
	"github.com/hugr-lab/odata-go/expr"
)

// Query is an immutable query against one resource path.
// Every fluent method returns a new Query; the receiver is unchanged, so
// queries derived from a common base never see each other's parts.
//
// Capture errors are recorded on the Query and returned synchronously by
// the first terminal operator, before anything is dispatched.
type Query struct {
	provider *Provider
	parts    []Part
	err      error
}

// Path returns the resource path of the query.
func (q *Query) Path() string { return q.provider.path }

// Err returns the first error recorded while building the query.
func (q *Query) Err() error { return q.err }

// Parts returns a copy of the accumulated parts.
func (q *Query) Parts() []Part {
	out := make([]Part, len(q.parts))
	copy(out, q.parts)
	return out
}

// with returns a new query with p appended. The three-index slice forces
// append to copy, so sibling queries never share a backing array.
func (q *Query) with(p Part) *Query {
	return &Query{
		provider: q.provider,
		parts:    append(q.parts[:len(q.parts):len(q.parts)], p),
		err:      q.err,
	}
}

func (q *Query) fail(err error) *Query {
	if q.err != nil {
		return q
	}
	return &Query{provider: q.provider, parts: q.parts, err: err}
}

func required(f expr.Func, what string) (*expr.Lambda, error) {
	if f.IsZero() {
		return nil, fmt.Errorf("%s: %w", what, expr.Unsupported("lambda", "selector is required"))
	}
	l, err := f.Lambda()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return l, nil
}

func optional(fs []expr.Func, what string) (*expr.Lambda, error) {
	switch len(fs) {
	case 0:
		return nil, nil
	case 1:
		if fs[0].IsZero() {
			return nil, nil
		}
		return required(fs[0], what)
	default:
		return nil, fmt.Errorf("%s: %w", what, expr.Unsupported("lambda", "at most one selector allowed"))
	}
}

// Where restricts results to entities matching pred.
// Several Where calls are combined with "and".
func (q *Query) Where(pred expr.Func) *Query {
	l, err := required(pred, "where")
	if err != nil {
		return q.fail(err)
	}
	return q.with(WherePart{Predicate: l})
}

// OrderBy starts a new ascending ordering.
func (q *Query) OrderBy(key expr.Func) *Query {
	return q.order(key, false, true)
}

// OrderByDescending starts a new descending ordering.
func (q *Query) OrderByDescending(key expr.Func) *Query {
	return q.order(key, true, true)
}

// ThenBy adds an ascending key to the current ordering.
func (q *Query) ThenBy(key expr.Func) *Query {
	return q.order(key, false, false)
}

// ThenByDescending adds a descending key to the current ordering.
func (q *Query) ThenByDescending(key expr.Func) *Query {
	return q.order(key, true, false)
}

func (q *Query) order(key expr.Func, desc, first bool) *Query {
	l, err := required(key, "orderby")
	if err != nil {
		return q.fail(err)
	}
	seq := 0
	if !first {
		for _, p := range q.parts {
			if o, ok := p.(OrderByPart); ok {
				seq = o.Seq + 1
			}
		}
	}
	return q.with(OrderByPart{Key: l, Descending: desc, Seq: seq})
}

// Select projects results. Use expr.Object for aliased projections:
//
//	q.Select(expr.Fn("c", func(c expr.Value) expr.Value {
//	    return expr.Object(
//	        expr.Prop("ID", c.Field("id")),
//	        expr.Prop("count", c.Field("addresses").Count()),
//	    )
//	}))
func (q *Query) Select(projection expr.Func) *Query {
	l, err := required(projection, "select")
	if err != nil {
		return q.fail(err)
	}
	return q.with(SelectPart{Projection: l})
}

// Expand expands the navigation path selected by nav, optionally
// restricting the expanded entity to the fields selected by fields.
//
//	q.Expand(expr.Fn("c", func(c expr.Value) expr.Value {
//	    return c.Field("addresses").Expand("a", func(a expr.Value) expr.Value {
//	        return a.Field("city")
//	    })
//	}))
func (q *Query) Expand(nav expr.Func, fields ...expr.Func) *Query {
	l, err := required(nav, "expand")
	if err != nil {
		return q.fail(err)
	}
	segs, err := expand.Segments(l)
	if err != nil {
		return q.fail(fmt.Errorf("expand: %w", err))
	}
	return q.expand(segs, fields)
}

// ExpandPath is Expand with a string path: "a.b.c", "a/b/c" or
// "c => c.a.$expand(x => x.b).c".
func (q *Query) ExpandPath(path string, fields ...expr.Func) *Query {
	segs, err := expand.ParsePath(path)
	if err != nil {
		return q.fail(fmt.Errorf("expand: %w", err))
	}
	return q.expand(segs, fields)
}

func (q *Query) expand(segs []string, fields []expr.Func) *Query {
	var sel []*expr.Lambda
	for _, f := range fields {
		if f.IsZero() {
			continue
		}
		l, err := required(f, "expand select")
		if err != nil {
			return q.fail(err)
		}
		sel = append(sel, l)
	}
	return q.with(ExpandPart{Segments: segs, Select: sel})
}

// Skip skips the first n results.
func (q *Query) Skip(n int) *Query {
	if n < 0 {
		return q.fail(fmt.Errorf("skip: negative count %d", n))
	}
	return q.with(SkipPart{N: n})
}

// Top limits results to n.
func (q *Query) Top(n int) *Query {
	if n < 0 {
		return q.fail(fmt.Errorf("top: negative count %d", n))
	}
	return q.with(TopPart{N: n})
}

// SetParameter adds an arbitrary name=value query parameter. A nil value
// renders as "name=".
func (q *Query) SetParameter(name string, value any) *Query {
	if name == "" {
		return q.fail(fmt.Errorf("parameter: empty name"))
	}
	return q.with(ParameterPart{Key: name, Value: value})
}

// WithOptions overrides the method and headers of requests made by this query.
func (q *Query) WithOptions(opts RequestOptions) *Query {
	return q.with(OptionsPart{Options: opts})
}

// InlineCount asks for the total number of matching entities alongside results.
func (q *Query) InlineCount() *Query {
	return q.with(InlineCountPart{})
}

// GroupBy groups results by key, optionally aggregating with result.
//
//	q.GroupBy(
//	    expr.Fn("c", func(c expr.Value) expr.Value {
//	        return expr.Object(expr.Prop("deleted", c.Field("deleted")))
//	    }),
//	    expr.Fn("g", func(g expr.Value) expr.Value {
//	        return expr.Object(
//	            expr.Prop("deleted", g.Field("deleted")),
//	            expr.Prop("count", g.Count()),
//	        )
//	    }),
//	)
func (q *Query) GroupBy(key expr.Func, result ...expr.Func) *Query {
	k, err := required(key, "groupby")
	if err != nil {
		return q.fail(err)
	}
	r, err := optional(result, "groupby result")
	if err != nil {
		return q.fail(err)
	}
	return q.with(GroupByPart{Key: k, Result: r})
}

// Compile builds the request the query would dispatch, without
// dispatching it.
func (q *Query) Compile() (RequestOptions, error) {
	if q.err != nil {
		return RequestOptions{}, q.err
	}
	return q.provider.Compile(q.with(ToArrayPart{}).parts)
}

// ToArrayAsync compiles the query and dispatches it.
// Compilation errors are returned directly; transport errors are only
// delivered through the Future.
func (q *Query) ToArrayAsync(ctx context.Context) (*Future, error) {
	return q.terminal(ctx, ToArrayPart{})
}

// ToArray is ToArrayAsync followed by Await.
func (q *Query) ToArray(ctx context.Context) (any, error) {
	f, err := q.ToArrayAsync(ctx)
	if err != nil {
		return nil, err
	}
	return f.Await(ctx)
}

// CountAsync requests the number of entities, optionally filtered by pred.
func (q *Query) CountAsync(ctx context.Context, pred ...expr.Func) (*Future, error) {
	l, err := optional(pred, "count")
	if err != nil {
		return nil, err
	}
	return q.terminal(ctx, CountPart{Predicate: l})
}

// Count is CountAsync followed by Await.
func (q *Query) Count(ctx context.Context, pred ...expr.Func) (any, error) {
	f, err := q.CountAsync(ctx, pred...)
	if err != nil {
		return nil, err
	}
	return f.Await(ctx)
}

// GroupByAsync groups and dispatches in one call.
func (q *Query) GroupByAsync(ctx context.Context, key expr.Func, result ...expr.Func) (*Future, error) {
	return q.GroupBy(key, result...).ToArrayAsync(ctx)
}

func (q *Query) terminal(ctx context.Context, p Part) (*Future, error) {
	if q.err != nil {
		return nil, q.err
	}
	return q.provider.Execute(ctx, q.with(p).parts)
}

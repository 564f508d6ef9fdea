package expr

import (
	"fmt"
	"strings"
)

// Value is the builder handle passed to capture callbacks.
// Every method returns a new Value; the receiver is never modified.
//
// Errors are sticky: once a Value carries an error, every Value derived
// from it carries the same error, and Fn reports it.
type Value struct {
	node Node
	err  error
}

// Node returns the expression tree built so far.
func (v Value) Node() Node { return v.node }

// Err returns the first error recorded while building v.
func (v Value) Err() error { return v.err }

// Lit wraps a Go value as a literal.
func Lit(x any) Value {
	return Value{node: &Literal{Value: x}}
}

// Param returns a reference to the lambda parameter name.
func Param(name string) Value {
	return Value{node: &Parameter{Name: name}}
}

// valueOf turns a Value or a plain Go value into a Value.
func valueOf(x any) Value {
	switch v := x.(type) {
	case Value:
		return v
	case *Value:
		if v == nil {
			return Lit(nil)
		}
		return *v
	default:
		return Lit(x)
	}
}

// derive builds a Value around n and inherits the first error found in
// the receiver or operands.
func (v Value) derive(n Node, operands ...Value) Value {
	out := Value{node: n, err: v.err}
	for _, o := range operands {
		if out.err != nil {
			break
		}
		out.err = o.err
	}
	if out.err == nil && v.node == nil {
		out.err = Unsupported("empty value", "operation applied to a zero Value")
	}
	return out
}

// Field accesses a member of v.
func (v Value) Field(name string) Value {
	if name == "" {
		return v.fail(Unsupported("member access", "empty field name"))
	}
	return v.derive(&Member{Target: v.node, Field: name})
}

// Path accesses a nested member using a "a.b.c" or "a/b/c" path.
func (v Value) Path(path string) Value {
	out := v
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '.' || r == '/' }) {
		out = out.Field(seg)
	}
	return out
}

// Index is indexed element access. It is outside the supported grammar
// and always yields a Value carrying an *UnsupportedExpressionError.
func (v Value) Index(i int) Value {
	return v.fail(Unsupported("index access", fmt.Sprintf("element [%d] cannot be expressed in a query", i)))
}

func (v Value) fail(err error) Value {
	if v.err != nil {
		return v
	}
	return Value{node: v.node, err: err}
}

func (v Value) binary(op BinaryOp, x any) Value {
	r := valueOf(x)
	return v.derive(&Binary{Op: op, Left: v.node, Right: r.node}, r)
}

// Eq is equality (== and === alike).
func (v Value) Eq(x any) Value { return v.binary(OpEq, x) }

// Ne is inequality (!= and !== alike).
func (v Value) Ne(x any) Value { return v.binary(OpNe, x) }

func (v Value) Lt(x any) Value { return v.binary(OpLt, x) }
func (v Value) Le(x any) Value { return v.binary(OpLe, x) }
func (v Value) Gt(x any) Value { return v.binary(OpGt, x) }
func (v Value) Ge(x any) Value { return v.binary(OpGe, x) }

func (v Value) Add(x any) Value { return v.binary(OpAdd, x) }
func (v Value) Sub(x any) Value { return v.binary(OpSub, x) }
func (v Value) Mul(x any) Value { return v.binary(OpMul, x) }
func (v Value) Div(x any) Value { return v.binary(OpDiv, x) }
func (v Value) Mod(x any) Value { return v.binary(OpMod, x) }

// And is logical conjunction.
func (v Value) And(x any) Value { return v.binary(OpAnd, x) }

// Or is logical disjunction.
func (v Value) Or(x any) Value { return v.binary(OpOr, x) }

// Not is logical negation.
func (v Value) Not() Value {
	return v.derive(&Unary{Op: OpNot, Operand: v.node})
}

// Neg is arithmetic negation.
func (v Value) Neg() Value {
	return v.derive(&Unary{Op: OpNeg, Operand: v.node})
}

// Length is the string length of v.
func (v Value) Length() Value {
	return v.derive(&Call{Target: v.node, Name: FuncLength})
}

// Includes tests whether the string v contains needle.
func (v Value) Includes(needle any) Value {
	n := valueOf(needle)
	return v.derive(&Call{Target: v.node, Name: FuncIncludes, Args: []Node{n.node}}, n)
}

// Any tests whether some element of the collection v satisfies fn.
func (v Value) Any(param string, fn func(Value) Value) Value {
	return v.lambdaCall(FuncAny, param, fn)
}

// All tests whether every element of the collection v satisfies fn.
func (v Value) All(param string, fn func(Value) Value) Value {
	return v.lambdaCall(FuncAll, param, fn)
}

// Count is the number of elements of the collection v.
// On a group parameter it is the $count aggregate.
func (v Value) Count() Value {
	return v.derive(&Call{Target: v.node, Name: FuncCount})
}

// Sum aggregates the field selected by fn.
func (v Value) Sum(param string, fn func(Value) Value) Value {
	return v.lambdaCall(FuncSum, param, fn)
}

// Min aggregates the field selected by fn.
func (v Value) Min(param string, fn func(Value) Value) Value {
	return v.lambdaCall(FuncMin, param, fn)
}

// Max aggregates the field selected by fn.
func (v Value) Max(param string, fn func(Value) Value) Value {
	return v.lambdaCall(FuncMax, param, fn)
}

// Average aggregates the field selected by fn.
func (v Value) Average(param string, fn func(Value) Value) Value {
	return v.lambdaCall(FuncAverage, param, fn)
}

// Expand continues a navigation path through the collection v.
// c.Field("addresses").Expand("a", func(a Value) Value { return a.Field("city") })
// navigates addresses/city.
func (v Value) Expand(param string, fn func(Value) Value) Value {
	return v.lambdaCall(FuncExpand, param, fn)
}

func (v Value) lambdaCall(name, param string, fn func(Value) Value) Value {
	l, err := Capture(param, fn)
	if err != nil {
		return v.fail(err)
	}
	return v.derive(&Call{Target: v.node, Name: name, Args: []Node{l}})
}

// Round rounds a numeric value.
func Round(x any) Value {
	return call(FuncRound, x)
}

// GeoDistance is the distance between two geography values.
func GeoDistance(a, b any) Value {
	return call(FuncGeoDistance, a, b)
}

// GeoIntersects tests whether a point lies inside a polygon.
func GeoIntersects(a, b any) Value {
	return call(FuncGeoIntersects, a, b)
}

// GeoLength is the length of a line string.
func GeoLength(a any) Value {
	return call(FuncGeoLength, a)
}

func call(name string, args ...any) Value {
	out := Value{node: &Call{Name: name}}
	c := out.node.(*Call)
	for _, a := range args {
		av := valueOf(a)
		if out.err == nil {
			out.err = av.err
		}
		c.Args = append(c.Args, av.node)
	}
	return out
}

// If is the conditional test ? whenTrue : whenFalse.
func If(test any, whenTrue, whenFalse any) Value {
	t, a, b := valueOf(test), valueOf(whenTrue), valueOf(whenFalse)
	return t.derive(&Conditional{Test: t.node, WhenTrue: a.node, WhenFalse: b.node}, a, b)
}

// KeyValue is one entry of an Object projection.
type KeyValue struct {
	Key   string
	Value Value
}

// Prop pairs a projection key with its value.
func Prop(key string, value any) KeyValue {
	return KeyValue{Key: key, Value: valueOf(value)}
}

// Object builds an object-literal projection; key order is preserved.
func Object(props ...KeyValue) Value {
	obj := &ObjectLiteral{Props: make([]Property, 0, len(props))}
	out := Value{node: obj}
	seen := make(map[string]bool, len(props))
	for _, p := range props {
		if out.err == nil {
			out.err = p.Value.err
		}
		if out.err == nil && p.Key == "" {
			out.err = Unsupported("object literal", "empty key")
		}
		if out.err == nil && seen[p.Key] {
			out.err = Unsupported("object literal", "duplicate key "+p.Key)
		}
		seen[p.Key] = true
		obj.Props = append(obj.Props, Property{Key: p.Key, Value: p.Value.node})
	}
	return out
}

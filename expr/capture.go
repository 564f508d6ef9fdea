package expr

import "fmt"

// Func is a captured callback: a Lambda, or the error that prevented
// capturing it. The zero Func means "not supplied".
type Func struct {
	lambda *Lambda
	err    error
}

// Fn captures a one-argument callback.
// param is the parameter identifier used when the lambda is rendered.
//
// Example:
//
//	expr.Fn("c", func(c expr.Value) expr.Value {
//	    return c.Field("id").Gt(5)
//	})
func Fn(param string, fn func(Value) Value) Func {
	l, err := Capture(param, fn)
	return Func{lambda: l, err: err}
}

// Fn2 captures a two-argument result selector whose second argument is
// an aggregation context.
func Fn2(param, context string, fn func(v, agg Value) Value) Func {
	l, err := Capture2(param, context, fn)
	return Func{lambda: l, err: err}
}

// FromLambda wraps an already built Lambda.
func FromLambda(l *Lambda) Func {
	if l == nil {
		return Func{}
	}
	return Func{lambda: l}
}

// Lambda returns the captured lambda or the capture error.
func (f Func) Lambda() (*Lambda, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lambda, nil
}

// IsZero reports whether f was never supplied.
func (f Func) IsZero() bool {
	return f.lambda == nil && f.err == nil
}

// Capture invokes fn once with a Value bound to param and returns the
// resulting tree as a Lambda.
func Capture(param string, fn func(Value) Value) (*Lambda, error) {
	if err := checkParam(param); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, Unsupported("lambda", "nil callback")
	}
	return finish(param, "", fn(Param(param)))
}

// Capture2 is Capture for two-argument callbacks.
func Capture2(param, context string, fn func(v, agg Value) Value) (*Lambda, error) {
	if err := checkParam(param); err != nil {
		return nil, err
	}
	if err := checkParam(context); err != nil {
		return nil, err
	}
	if param == context {
		return nil, Unsupported("lambda", fmt.Sprintf("parameters share the name %q", param))
	}
	if fn == nil {
		return nil, Unsupported("lambda", "nil callback")
	}
	return finish(param, context, fn(Param(param), Param(context)))
}

func finish(param, context string, body Value) (*Lambda, error) {
	if body.err != nil {
		return nil, body.err
	}
	if body.node == nil {
		return nil, Unsupported("lambda "+param, "callback returned no expression")
	}
	return &Lambda{Param: param, Context: context, Body: body.node}, nil
}

func checkParam(name string) error {
	if name == "" {
		return Unsupported("lambda", "empty parameter name")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || i > 0 && c >= '0' && c <= '9') {
			return Unsupported("lambda", fmt.Sprintf("invalid parameter name %q", name))
		}
	}
	return nil
}

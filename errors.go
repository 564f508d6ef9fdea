package odata

import (
	"fmt"

	"github.com/hugr-lab/odata-go/expr"
)

// UnsupportedExpressionError is returned synchronously when a query uses
// a construct outside the supported grammar.
type UnsupportedExpressionError = expr.UnsupportedExpressionError

// ErrUnsupportedExpression matches every UnsupportedExpressionError.
var ErrUnsupportedExpression = expr.ErrUnsupportedExpression

// DispatchError reports misuse of the low-level dispatch entry point:
// an empty part list or a part kind the compiler does not know.
// It is a programming error and is always returned synchronously.
type DispatchError struct {
	Reason error
	Part   Part
}

func (e *DispatchError) Error() string {
	if e.Part != nil {
		return fmt.Sprintf("dispatch: %v: %T", e.Reason, e.Part)
	}
	return fmt.Sprintf("dispatch: %v", e.Reason)
}

func (e *DispatchError) Unwrap() error { return e.Reason }

// TransportError wraps a failure reported by the Executor.
// It is only ever delivered through a Future, never returned by a
// terminal operator directly.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

package expr

import (
	"errors"
	"fmt"
)

// ErrUnsupportedExpression is matched by every *UnsupportedExpressionError.
var ErrUnsupportedExpression = errors.New("unsupported expression")

// UnsupportedExpressionError reports a construct outside the supported
// predicate grammar. It is returned synchronously, at capture or at
// compile time, and never through a Future.
type UnsupportedExpressionError struct {
	// Construct names the offending construct (e.g. "index access", "call foo").
	Construct string

	// Reason is optional extra detail.
	Reason string
}

func (e *UnsupportedExpressionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported expression: %s: %s", e.Construct, e.Reason)
	}
	return "unsupported expression: " + e.Construct
}

func (e *UnsupportedExpressionError) Is(target error) bool {
	return target == ErrUnsupportedExpression
}

// Unsupported returns an *UnsupportedExpressionError for construct.
func Unsupported(construct, reason string) error {
	return &UnsupportedExpressionError{Construct: construct, Reason: reason}
}

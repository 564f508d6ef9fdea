// Package recovery isolates panics raised by user-provided executors.
// A panicking executor must resolve its Future with an error instead of
// taking the process down with it.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError is returned when the wrapped function panicked.
type PanicError struct {
	Operation string
	Value     any
	Stack     []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Operation, e.Value)
}

// RecoverToValue wraps a function that returns a value and error.
// If the function panics, returns zero value and a *PanicError.
//
// Example:
//
//	result, err := recovery.RecoverToValue(logger, "Execute", func() (any, error) {
//	    return executor.Execute(ctx, req)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		pe := &PanicError{Operation: operation, Value: r, Stack: debug.Stack()}
		logger.Error("Panic recovered", "operation", operation, "panic", r, "stack", string(pe.Stack))

		var zero T
		result, err = zero, pe
	}()

	return fn()
}

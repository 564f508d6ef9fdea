package odata

import "context"

// Future is the pending result of a dispatched request.
// It resolves exactly once; Await may be called any number of times from
// any number of goroutines.
type Future struct {
	done  chan struct{}
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolved returns an already completed Future.
func resolved(value any, err error) *Future {
	f := newFuture()
	f.resolve(value, err)
	return f
}

func (f *Future) resolve(value any, err error) {
	f.value, f.err = value, err
	close(f.done)
}

// Done returns a channel closed once the Future resolves.
func (f *Future) Done() <-chan struct{} { return f.done }

// Await blocks until the Future resolves or ctx is done.
// Executor failures are returned as *TransportError.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

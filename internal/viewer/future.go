package viewer

import (
	"errors"
	"fmt"
)

// ErrLoadPanicked is the error of a load that panicked.
var ErrLoadPanicked = errors.New("viewer: load panicked")

// Future is a value produced off the render loop. The loop polls it with
// Poll and never blocks on it.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve completes the future. It must be called exactly once.
func (f *Future[T]) resolve(val T, err error) {
	f.val, f.err = val, err
	close(f.done)
}

// run resolves f with the result of fn. A panic in fn resolves f with an
// ErrLoadPanicked error instead of unwinding the goroutine.
func (f *Future[T]) run(fn func() (T, error)) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			f.resolve(zero, fmt.Errorf("%w: %v", ErrLoadPanicked, r))
		}
	}()
	f.resolve(fn())
}

// Poll returns the result once resolved; ok is false while pending.
func (f *Future[T]) Poll() (val T, ok bool, err error) {
	select {
	case <-f.done:
		return f.val, true, f.err
	default:
		var zero T
		return zero, false, nil
	}
}

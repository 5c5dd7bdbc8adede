package plugin

import (
	"context"
	"fmt"
	"sync"
)

// Future is the result of a plugin call that may complete later. It is
// completed exactly once; later completions are ignored.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// NewFuture returns a pending Future and the function that completes it.
func NewFuture[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.complete
}

// Resolved returns a Future already completed with v.
func Resolved[T any](v T) *Future[T] {
	f, complete := NewFuture[T]()
	complete(v, nil)
	return f
}

// Rejected returns a Future already completed with err.
func Rejected[T any](err error) *Future[T] {
	f, complete := NewFuture[T]()
	var zero T
	complete(zero, err)
	return f
}

// Go runs fn on a new goroutine and returns a Future for its result. A panic
// in fn completes the Future with an error.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f, complete := NewFuture[T]()
	go func() {
		complete(call(ctx, fn))
	}()
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
	})
}

// Done returns a channel closed once the Future completes.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the Future completes or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// call invokes fn, turning a panic into an error.
func call[T any](ctx context.Context, fn func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin panicked: %v", r)
		}
	}()
	return fn(ctx)
}

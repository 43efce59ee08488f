package util

import "context"

// Task is an asynchronous computation that yields a result or an error.
// Cancel is its cancellation token; Wait blocks until fn returns.
type Task[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	result T
	err    error
}

// Go starts fn in its own goroutine under a cancellable child of ctx.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		t.result, t.err = fn(ctx)
	}()
	return t
}

func (t *Task[T]) Cancel() {
	t.cancel()
}

func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.result, t.err
}

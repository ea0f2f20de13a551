package queue

import (
	"container/list"
	"context"
)

type Task[T any] struct {
	ID      string
	Data    T
	ctx     context.Context
	cancel  context.CancelFunc
	element *list.Element
}

// NewTask derives the task context from ctx, so cancelling ctx cancels the task.
func NewTask[T any](ctx context.Context, id string, data T) *Task[T] {
	cancelCtx, cancel := context.WithCancel(ctx)
	return &Task[T]{
		ID:     id,
		Data:   data,
		ctx:    cancelCtx,
		cancel: cancel,
	}
}

func (t *Task[T]) IsCancelled() bool {
	return t.ctx.Err() != nil
}

func (t *Task[T]) Cancel() {
	t.cancel()
}

func (t *Task[T]) Context() context.Context {
	return t.ctx
}

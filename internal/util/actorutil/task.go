package actorutil

import (
	"errors"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/primetalk/goio/io"
)

var ErrNoResult = errors.New("actorutil: task returned no result")

// BlockingTask wraps a blocking call made from inside an actor. The call runs
// on the actor goroutine, so the actor handles nothing else until it returns;
// its outcome is then mailed back as a regular message.
type BlockingTask[T any] struct {
	fn      func() (*T, error)
	recover func(error) T
}

func NewBlockingTask[T any](fn func() (*T, error)) *BlockingTask[T] {
	return &BlockingTask[T]{fn: fn}
}

// Recover maps an error to a message.
// Without it errors are dropped.
func (t *BlockingTask[T]) Recover(fn func(error) T) *BlockingTask[T] {
	t.recover = fn
	return t
}

// Result runs the call and returns its value or the error.
func (t *BlockingTask[T]) Result() (T, error) {
	task := io.Map(io.Eval(t.fn), func(a *T) T {
		if a == nil {
			panic(ErrNoResult)
		}
		return *a
	})
	result := io.RunSync(task)
	return result.Value, result.Error
}

// PipeTo runs the call and sends the value, or its recovered form, to pid.
func (t *BlockingTask[T]) PipeTo(ctx actor.Context, pid *actor.PID) {
	value, err := t.Result()
	if err != nil {
		if t.recover == nil {
			return
		}
		value = t.recover(err)
	}
	ctx.Send(pid, value)
}

package portal

import (
	"context"
	"fmt"

	"github.com/go-pkgz/syncs"
)

// Runner executes submitted operations on worker goroutines and marshals
// their completion callbacks back to the single consumer loop. The consumer
// owns all user-visible state and applies completions by draining
// Completions(); workers never touch that state directly.
type Runner struct {
	completions chan func()
	group       *syncs.SizedGroup
}

// NewRunner makes a runner. With maxWorkers 0 every submission gets its own
// goroutine, matching the unbounded dispatch of the interactive use case.
// A positive maxWorkers bounds concurrent operations for heavier loads.
func NewRunner(maxWorkers int) *Runner {
	res := &Runner{completions: make(chan func(), 64)}
	if maxWorkers > 0 {
		res.group = syncs.NewSizedGroup(maxWorkers)
	}
	return res
}

// Completions delivers one callback per submitted task, each applying that
// task's terminal result. Consume from a single goroutine.
func (r *Runner) Completions() <-chan func() { return r.completions }

func (r *Runner) run(task func(ctx context.Context)) {
	if r.group != nil {
		r.group.Go(task)
		return
	}
	go task(context.Background())
}

// Go submits op for execution off the consumer goroutine. The done callback
// receives the operation's result or failure and is delivered exactly once
// through Completions. A panicking op is captured as a failure, not a crash.
// There is no cancellation: a submitted op always runs to completion, and no
// ordering is guaranteed between concurrently submitted ops.
func Go[T any](r *Runner, op func(ctx context.Context) (T, error), done func(T, error)) {
	r.run(func(ctx context.Context) {
		var res T
		var err error
		func() {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("operation panic: %v", p)
				}
			}()
			res, err = op(ctx)
		}()
		r.completions <- func() { done(res, err) }
	})
}

package pipeline

import (
	"context"
	"time"
)

// Input carries the deploy request through every stage. Project is the
// already-normalized slug; callers are responsible for slugifying the
// raw project name before starting a run.
type Input struct {
	Project string
	Source  string
}

// Emission is one log message produced by an executor. Delay is the
// simulated (or real) work time that must elapse before the entry
// becomes visible; the Runner sleeps it before appending to the log.
type Emission struct {
	Kind    Kind
	Message string
	Delay   time.Duration
}

// EmitFunc forwards an emission to the Runner. It returns a non-nil
// error only when the run can no longer proceed (context expiry), in
// which case the executor must return that error unchanged.
type EmitFunc func(Emission) error

// Executor performs the work of a single stage. It must emit at least
// one entry before returning, and must not touch stage status or state
// directly; the Runner alone applies transitions. On success the
// returned payload carries the stage's result (repository address,
// branch ref, published URL); the final stage's payload becomes the
// run result.
type Executor interface {
	Execute(ctx context.Context, in Input, emit EmitFunc) (payload string, err error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, in Input, emit EmitFunc) (string, error)

func (f ExecutorFunc) Execute(ctx context.Context, in Input, emit EmitFunc) (string, error) {
	return f(ctx, in, emit)
}

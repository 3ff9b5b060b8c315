package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SleepFunc suspends for d, returning early with the context's error if
// it expires first. Tests substitute an instant implementation.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Runner executes the registry's stages in order against a State it
// exclusively owns for the duration of a run. A Runner is safe for use
// from multiple goroutines; at most one run is ever in flight.
type Runner struct {
	reg   *Registry
	state *State
	sleep SleepFunc
	log   zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithSleep replaces the timer-backed suspension between emissions.
func WithSleep(fn SleepFunc) Option {
	return func(r *Runner) { r.sleep = fn }
}

// WithLogger attaches a zerolog logger for stage transition debugging.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// NewRunner creates a Runner over the given registry and state.
func NewRunner(reg *Registry, state *State, opts ...Option) *Runner {
	r := &Runner{
		reg:   reg,
		state: state,
		sleep: sleepContext,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the observable state the Runner writes to.
func (r *Runner) State() *State { return r.state }

// Run executes every stage in registry order, stopping at the first
// failure. It blocks until the run reaches a terminal outcome and
// returns the failing stage's error, or nil when the run completed.
// When a run is already active it returns ErrRunInProgress without
// touching state or log.
func (r *Runner) Run(ctx context.Context, in Input) error {
	if !r.state.beginRun() {
		return ErrRunInProgress
	}
	r.log.Debug().Str("project", in.Project).Msg("run started")
	r.state.appendLog(KindInfo, fmt.Sprintf("Starting deployment of %q", in.Project))

	var result string
	for i, def := range r.reg.defs {
		r.state.setStageStatus(i, StatusRunning)
		r.log.Debug().Str("stage", def.ID).Msg("stage running")

		payload, err := r.execute(ctx, def, in)
		if err != nil {
			if isFault(ctx, err) {
				// Not attributable to the stage: reset it so no stage
				// reads as failed, and surface a dedicated entry.
				r.state.setStageStatus(i, StatusIdle)
				r.state.appendLog(KindError, fmt.Sprintf("internal error: %v", err))
				r.state.endRun("", "")
				r.log.Error().Err(err).Str("stage", def.ID).Msg("run aborted by fault")
				return err
			}
			r.state.setStageStatus(i, StatusError)
			r.state.appendLog(KindError, fmt.Sprintf("%s failed: %v", def.Label, err))
			r.state.endRun("", err.Error())
			r.log.Debug().Err(err).Str("stage", def.ID).Msg("stage failed")
			return err
		}

		r.state.setStageStatus(i, StatusSuccess)
		r.log.Debug().Str("stage", def.ID).Msg("stage succeeded")
		result = payload
	}

	r.state.appendLog(KindSuccess, fmt.Sprintf("Deployment complete — %s", result))
	r.state.endRun(result, "")
	r.log.Debug().Str("result", result).Msg("run completed")
	return nil
}

// execute invokes one stage's executor, forwarding its emissions into
// the log as they occur so partial progress is observable before the
// terminal outcome lands. A panicking executor is converted to an error.
func (r *Runner) execute(ctx context.Context, def StageDef, in Input) (payload string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &panicError{stage: def.ID, value: rec}
		}
	}()

	emit := func(e Emission) error {
		if serr := r.sleep(ctx, e.Delay); serr != nil {
			return serr
		}
		r.state.appendLog(e.Kind, e.Message)
		return nil
	}
	return def.Executor.Execute(ctx, in, emit)
}

// panicError wraps a value recovered from a panicking executor.
type panicError struct {
	stage string
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("stage %s panicked: %v", e.stage, e.value)
}

// isFault reports whether err is an orchestration fault rather than a
// clean stage failure: a recovered panic or a context expiry that
// interrupted the run as a whole.
func isFault(ctx context.Context, err error) bool {
	var pe *panicError
	if errors.As(err, &pe) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return ctx.Err() != nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

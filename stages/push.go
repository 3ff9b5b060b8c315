package stages

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/slipway-sh/slipway/pipeline"
)

// PushExecutor simulates the push service: it commits the source and
// pushes it to the default branch, reporting the ref as its payload.
// The commit hash is derived deterministically from the source so the
// same payload always yields the same ref.
type PushExecutor struct {
	Unit       time.Duration
	FailReason string
}

func (e *PushExecutor) Execute(ctx context.Context, in pipeline.Input, emit pipeline.EmitFunc) (string, error) {
	if err := emit(pipeline.Emission{Kind: pipeline.KindInfo, Message: "Writing objects", Delay: e.Unit}); err != nil {
		return "", err
	}
	if e.FailReason != "" {
		return "", &pipeline.ProviderError{Provider: "push service", Reason: e.FailReason}
	}

	ref := fmt.Sprintf("main@%s", shortHash(in.Source))
	if err := emit(pipeline.Emission{Kind: pipeline.KindInfo, Message: "Pushing to main", Delay: e.Unit}); err != nil {
		return "", err
	}
	if err := emit(pipeline.Emission{
		Kind:    pipeline.KindSuccess,
		Message: fmt.Sprintf("Pushed %s", ref),
		Delay:   e.Unit,
	}); err != nil {
		return "", err
	}
	return ref, nil
}

func shortHash(source string) string {
	h := fnv.New32a()
	h.Write([]byte(source)) //nolint:errcheck
	return fmt.Sprintf("%07x", h.Sum32()&0xfffffff)
}

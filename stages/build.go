package stages

import (
	"context"
	"fmt"
	"time"

	"github.com/slipway-sh/slipway/pipeline"
)

// BuildExecutor simulates the hosting provider's remote build, reporting
// the build duration as its payload.
type BuildExecutor struct {
	Unit       time.Duration
	FailReason string
}

func (e *BuildExecutor) Execute(ctx context.Context, in pipeline.Input, emit pipeline.EmitFunc) (string, error) {
	start := time.Now()
	if err := emit(pipeline.Emission{Kind: pipeline.KindInfo, Message: "Starting remote build", Delay: e.Unit}); err != nil {
		return "", err
	}
	if e.FailReason != "" {
		return "", &pipeline.ProviderError{Provider: "hosting provider", Reason: e.FailReason}
	}

	if err := emit(pipeline.Emission{Kind: pipeline.KindInfo, Message: "Installing dependencies", Delay: e.Unit}); err != nil {
		return "", err
	}
	elapsed := time.Since(start).Round(time.Millisecond)
	if err := emit(pipeline.Emission{
		Kind:    pipeline.KindSuccess,
		Message: fmt.Sprintf("Build finished in %s", elapsed),
		Delay:   e.Unit,
	}); err != nil {
		return "", err
	}
	return elapsed.String(), nil
}

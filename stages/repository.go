package stages

import (
	"context"
	"fmt"
	"time"

	"github.com/slipway-sh/slipway/pipeline"
)

// RepoExecutor simulates the source-control provider: it creates a
// remote repository and reports its address as the stage payload.
type RepoExecutor struct {
	Host       string
	Unit       time.Duration
	FailReason string
}

func (e *RepoExecutor) Execute(ctx context.Context, in pipeline.Input, emit pipeline.EmitFunc) (string, error) {
	if err := emit(pipeline.Emission{Kind: pipeline.KindInfo, Message: "Creating remote repository", Delay: e.Unit}); err != nil {
		return "", err
	}
	if e.FailReason != "" {
		return "", &pipeline.ProviderError{Provider: "source control", Reason: e.FailReason}
	}

	addr := fmt.Sprintf("git.%s/%s.git", e.Host, in.Project)
	if err := emit(pipeline.Emission{
		Kind:    pipeline.KindSuccess,
		Message: fmt.Sprintf("Repository created at %s", addr),
		Delay:   e.Unit,
	}); err != nil {
		return "", err
	}
	return addr, nil
}

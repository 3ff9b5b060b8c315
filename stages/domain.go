package stages

import (
	"context"
	"fmt"
	"time"

	"github.com/slipway-sh/slipway/pipeline"
)

// DomainExecutor simulates the domain/verification service: it assigns
// a subdomain under Host, waits for propagation, and verifies it. Its
// payload is the published URL, which becomes the run result.
type DomainExecutor struct {
	Host       string
	Unit       time.Duration
	FailReason string
}

func (e *DomainExecutor) Execute(ctx context.Context, in pipeline.Input, emit pipeline.EmitFunc) (string, error) {
	url := fmt.Sprintf("https://%s.%s", in.Project, e.Host)
	if err := emit(pipeline.Emission{
		Kind:    pipeline.KindInfo,
		Message: fmt.Sprintf("Assigning domain %s", url),
		Delay:   e.Unit,
	}); err != nil {
		return "", err
	}
	if e.FailReason != "" {
		return "", &pipeline.ProviderError{Provider: "domain service", Reason: e.FailReason}
	}

	if err := emit(pipeline.Emission{Kind: pipeline.KindInfo, Message: "Waiting for DNS propagation", Delay: e.Unit}); err != nil {
		return "", err
	}
	if err := emit(pipeline.Emission{
		Kind:    pipeline.KindSuccess,
		Message: fmt.Sprintf("Domain verified: %s", url),
		Delay:   e.Unit,
	}); err != nil {
		return "", err
	}
	return url, nil
}

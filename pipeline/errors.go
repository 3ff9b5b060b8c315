package pipeline

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned by Runner.Run when a run is already
// active. The start request is a no-op: no state or log mutation occurs.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// ValidationError indicates the submitted source failed structural
// checks in the validation stage.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// ProviderError indicates a stage-bound external collaborator failed:
// a naming conflict, network fault, quota, or remote build failure.
type ProviderError struct {
	Provider string
	Reason   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

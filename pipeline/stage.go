// Package pipeline implements the deployment pipeline engine: an ordered
// registry of stages executed sequentially by a Runner, with per-stage
// status transitions, an append-only log stream, and an observable State
// snapshot consumed by presentation layers.
package pipeline

// StageStatus is the lifecycle state of a single stage within a run.
type StageStatus int

const (
	StatusIdle StageStatus = iota
	StatusRunning
	StatusSuccess
	StatusError
)

// String returns the lowercase name of the status.
func (s StageStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is an end state for a stage.
func (s StageStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// Stage is the observable view of one pipeline stage.
type Stage struct {
	ID     string
	Label  string
	Status StageStatus
}

// StageDef binds a stage identity to the executor performing its work.
type StageDef struct {
	ID       string
	Label    string
	Executor Executor
}

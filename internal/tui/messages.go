package tui

// StateChangedMsg signals that the pipeline state mutated; the view
// re-reads the snapshot.
type StateChangedMsg struct{}

// RunDoneMsg carries the terminal outcome of the pipeline run.
type RunDoneMsg struct {
	Err error
}

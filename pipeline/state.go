package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a consistent, read-only view of the pipeline at a point
// in time. Slices are copies; mutating them does not affect the State.
type Snapshot struct {
	RunID   string
	Stages  []Stage
	Log     []Entry
	Running bool
	Result  string // published URL, set only on a completed run
	Failure string // reason, set only on a failed run
}

// CurrentStage returns the stage currently in the running status, if
// any. It is a pure query over the snapshot, never cached.
func (s Snapshot) CurrentStage() (Stage, bool) {
	for _, st := range s.Stages {
		if st.Status == StatusRunning {
			return st, true
		}
	}
	return Stage{}, false
}

// State owns all mutable pipeline data: stage statuses, the log stream,
// the running flag, and the run result. It has exactly one writer at a
// time (the active Runner; all mutators are package-private) and any
// number of readers through Snapshot. Observers may Subscribe for a
// change signal and re-read the snapshot on each tick.
type State struct {
	mu      sync.RWMutex
	runID   string
	stages  []Stage
	log     *Stream
	running bool
	result  string
	failure string

	subs []chan struct{}
}

// NewState creates a State seeded from the registry: all stages idle,
// empty log, not running, no result.
func NewState(reg *Registry) *State {
	return &State{
		stages: reg.Stages(),
		log:    &Stream{},
	}
}

// Snapshot returns a consistent copy of the entire state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stages := make([]Stage, len(s.stages))
	copy(stages, s.stages)
	return Snapshot{
		RunID:   s.runID,
		Stages:  stages,
		Log:     s.log.All(),
		Running: s.running,
		Result:  s.result,
		Failure: s.failure,
	}
}

// Running reports whether a run is in progress.
func (s *State) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Log returns the underlying log stream for read access.
func (s *State) Log() *Stream {
	return s.log
}

// Subscribe registers a change listener. The returned channel receives
// a coalesced signal after every mutation; listeners re-read Snapshot
// for the authoritative state. Cancel removes the listener.
func (s *State) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, c := range s.subs {
			if c == ch {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
	return ch, cancel
}

// notify signals every subscriber without blocking. Callers must not
// hold s.mu; a capacity-1 channel coalesces back-to-back signals.
func (s *State) notify() {
	s.mu.RLock()
	subs := make([]chan struct{}, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// beginRun atomically transitions idle→running. It returns false,
// mutating nothing, when a run is already active. On success the
// previous run's statuses, log, and result are cleared.
func (s *State) beginRun() bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return false
	}
	s.runID = uuid.NewString()
	for i := range s.stages {
		s.stages[i].Status = StatusIdle
	}
	s.log.reset()
	s.running = true
	s.result = ""
	s.failure = ""
	s.mu.Unlock()
	s.notify()
	return true
}

// setStageStatus transitions the stage at index i.
func (s *State) setStageStatus(i int, status StageStatus) {
	s.mu.Lock()
	s.stages[i].Status = status
	s.mu.Unlock()
	s.notify()
}

// appendLog appends an entry stamped with the current time.
func (s *State) appendLog(kind Kind, message string) {
	s.log.Append(Entry{Time: time.Now(), Kind: kind, Message: message})
	s.notify()
}

// endRun leaves the running state. Exactly one of result or failure may
// be set; both empty marks an orchestration fault outcome.
func (s *State) endRun(result, failure string) {
	s.mu.Lock()
	s.running = false
	s.result = result
	s.failure = failure
	s.mu.Unlock()
	s.notify()
}

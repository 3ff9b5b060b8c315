package pipeline

import (
	"sync"
	"time"
)

// Kind classifies a log entry.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
	KindWarning
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	case KindWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Entry is one timestamped record in the pipeline log.
type Entry struct {
	Time    time.Time
	Kind    Kind
	Message string
}

// Stream is an append-only ordered log. Entries are never mutated or
// removed once appended; the stream is reset only when a new run starts.
type Stream struct {
	mu      sync.RWMutex
	entries []Entry
}

// Append adds an entry to the end of the stream.
func (s *Stream) Append(e Entry) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

// All returns a snapshot copy of every entry in append order.
func (s *Stream) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries appended so far.
func (s *Stream) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// reset discards all entries. Called only by State when a run begins.
func (s *Stream) reset() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

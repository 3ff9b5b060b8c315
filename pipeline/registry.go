package pipeline

import "fmt"

// Registry is the fixed, ordered definition of the pipeline's stages.
// The set and order are established once and never change afterwards.
type Registry struct {
	defs []StageDef
}

// NewRegistry creates a Registry from the given stage definitions in
// order. Every definition must have a unique, non-empty ID and a bound
// executor.
func NewRegistry(defs ...StageDef) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("registry needs at least one stage")
	}
	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("stage %d has an empty id", i)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("duplicate stage id %q", d.ID)
		}
		if d.Executor == nil {
			return nil, fmt.Errorf("stage %q has no executor", d.ID)
		}
		seen[d.ID] = true
	}
	out := make([]StageDef, len(defs))
	copy(out, defs)
	return &Registry{defs: out}, nil
}

// Defs returns a copy of the stage definitions in registry order.
func (r *Registry) Defs() []StageDef {
	out := make([]StageDef, len(r.defs))
	copy(out, r.defs)
	return out
}

// Len returns the number of stages.
func (r *Registry) Len() int { return len(r.defs) }

// Stages returns a fresh ordered stage list with every status idle,
// suitable for seeding a new State.
func (r *Registry) Stages() []Stage {
	out := make([]Stage, len(r.defs))
	for i, d := range r.defs {
		out[i] = Stage{ID: d.ID, Label: d.Label, Status: StatusIdle}
	}
	return out
}

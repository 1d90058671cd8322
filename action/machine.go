// Package action implements the per-entity action state machine: one
// optional running action per category drawn from a small, user-supplied
// finite enumeration. It is deliberately the thinnest possible state
// machine — no regions, no guards, no hierarchy — because category
// selection and transition conditions are an external judgment
// collaborator's job (package collab), not this package's.
package action

import (
	"sync"

	"github.com/lixenwraith/tickforge/collab"
	"github.com/lixenwraith/tickforge/tick"
)

// Machine holds, for one entity, a running collab.ExecutableAction per
// category C. C is typically a small user-defined int or string enum
// (e.g. "movement", "combat", "interaction"); the same C must be used
// consistently for every Machine sharing a registry.
type Machine[C comparable] struct {
	mu      sync.Mutex
	running map[C]collab.ExecutableAction
}

// NewMachine creates a Machine with no running actions. categories is used
// only as a size hint for the internal map; no entry is created for any
// category until the first StartAction names it.
func NewMachine[C comparable](categories []C) *Machine[C] {
	m := &Machine[C]{
		running: make(map[C]collab.ExecutableAction, len(categories)),
	}
	return m
}

// StartAction replaces whatever action is currently running under
// category (if any, without calling anything on it — a host wanting
// cancellation semantics checks CanCancel via GetCurrentAction before
// calling StartAction) and calls OnEnter on the new one.
func (m *Machine[C]) StartAction(category C, executable collab.ExecutableAction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running[category] = executable
	executable.OnEnter()
}

// GetCurrentAction returns the action currently running under category,
// if any.
func (m *Machine[C]) GetCurrentAction(category C) (collab.ExecutableAction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.running[category]
	return a, ok
}

// Tick advances every running action by delta, then clears any that
// report IsComplete. Per category, at most one action runs at a time, so
// advancing and clearing within a single pass over the map is race-free
// with respect to category identity.
func (m *Machine[C]) Tick(delta tick.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for cat, a := range m.running {
		a.Tick(delta)
		if a.IsComplete() {
			delete(m.running, cat)
		}
	}
}

// Categories returns the categories currently holding a running action.
func (m *Machine[C]) Categories() []C {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]C, 0, len(m.running))
	for cat := range m.running {
		out = append(out, cat)
	}
	return out
}

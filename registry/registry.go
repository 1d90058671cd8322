// Package registry maps type-erased entity handles to their per-entity
// context. It is the second tier of tickforge's entity model: the arena
// package owns slot liveness, registry owns everything phases 2-6 read and
// write about a live entity (its action state machine, its judgment
// vector, and its deletion bookkeeping).
package registry

import (
	"sync"

	"github.com/lixenwraith/tickforge/action"
	"github.com/lixenwraith/tickforge/arena"
	"github.com/lixenwraith/tickforge/collab"
)

// Context is the per-entity state the registry owns. C is the user-chosen
// finite action-category enumeration (see package action); the same C must
// be used consistently for one Registry instance.
type Context[C comparable] struct {
	Handle arena.AnyHandle

	// Actions is this entity's action state machine, one running action
	// per category. Phase 4 (Execution) is the only phase that advances
	// it; phase 3 (Decision) only reads it via GetCurrentAction to
	// evaluate transition overrides.
	Actions *action.Machine[C]

	// Judgments is the entity's judgment vector, read by the
	// orchestrator's phase 3 (Decision), which calls each Judgment's
	// Evaluate and Priority. The registry only stores the slice.
	Judgments []collab.Judgment

	// LOD and SpawnController are optional references to external
	// level-of-detail and spawn-staging collaborators. Both are
	// out-of-scope collaborators (spec.md §1); the registry only holds
	// the reference so a host can look it up via the handle, the core
	// never calls through it.
	LOD             collab.LODController
	SpawnController collab.SpawnController

	isActive           bool
	isMarkedForDeletion bool
}

// IsActive reports the entity's active flag.
func (c *Context[C]) IsActive() bool { return c.isActive }

// SetActive updates the entity's active flag. Only phase 2 (Message) may
// legally change this per spec.md's mutation-locality invariant; the
// registry itself does not enforce that — it is a contract the
// orchestrator upholds by only invoking command behaviors (which call
// this) from inside the message phase.
func (c *Context[C]) SetActive(active bool) { c.isActive = active }

// IsMarkedForDeletion reports whether MarkForDeletion has been called and
// ProcessDeletions has not yet run for this entity.
func (c *Context[C]) IsMarkedForDeletion() bool { return c.isMarkedForDeletion }

// Registry owns the handle -> Context mapping and the insertion-ordered
// live list that makes GetAllEntities deterministic across runs.
type Registry[C comparable] struct {
	mu sync.RWMutex

	contexts map[arena.AnyHandle]*Context[C]
	order    []arena.AnyHandle // insertion order; the live list

	marked map[arena.AnyHandle]struct{}
}

// New creates an empty Registry.
func New[C comparable]() *Registry[C] {
	return &Registry[C]{
		contexts: make(map[arena.AnyHandle]*Context[C]),
		marked:   make(map[arena.AnyHandle]struct{}),
	}
}

// Register creates a fresh Context for h and appends it to the live list.
// Re-registering the same index with an advanced generation (a new handle
// that happens to reuse a slot) is permitted and creates an entirely new
// Context; any context still held under a stale handle to the same arena
// slot is removed, so only the newest handle for a slot is registered.
func (r *Registry[C]) Register(h arena.AnyHandle, categories []C) *Context[C] {
	r.mu.Lock()
	defer r.mu.Unlock()

	for old := range r.contexts {
		if old != h && old.Arena == h.Arena && old.Index == h.Index {
			r.unregisterLocked(old)
		}
	}

	ctx := &Context[C]{
		Handle:   h,
		Actions:  action.NewMachine[C](categories),
		isActive: true,
	}
	r.contexts[h] = ctx
	r.order = append(r.order, h)
	return ctx
}

// Unregister removes h's context and drops it from the live list
// immediately. Orchestrator code should prefer MarkForDeletion +
// ProcessDeletions during phase 6; Unregister is the primitive both of
// those are built from, and is also what a host calls for an entity that
// was never subject to mark-for-deletion bookkeeping (e.g. a rollback).
func (r *Registry[C]) Unregister(h arena.AnyHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterLocked(h)
}

func (r *Registry[C]) unregisterLocked(h arena.AnyHandle) {
	if _, ok := r.contexts[h]; !ok {
		return
	}
	delete(r.contexts, h)
	delete(r.marked, h)
	for i, e := range r.order {
		if e == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Exists reports whether h currently has a registered context.
func (r *Registry[C]) Exists(h arena.AnyHandle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.contexts[h]
	return ok
}

// GetContext returns h's context and true if registered.
func (r *Registry[C]) GetContext(h arena.AnyHandle) (*Context[C], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contexts[h]
	return c, ok
}

// MarkForDeletion flags h for removal at the next ProcessDeletions call.
// It may be called from any phase; the context is left fully intact (and
// Exists keeps returning true) until Cleanup actually runs, preserving
// mid-frame reference integrity. Returns false if h is not registered.
func (r *Registry[C]) MarkForDeletion(h arena.AnyHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx, ok := r.contexts[h]
	if !ok {
		return false
	}
	ctx.isMarkedForDeletion = true
	r.marked[h] = struct{}{}
	return true
}

// GetMarkedForDeletion returns the handles currently marked for deletion,
// in live-list order. The slice is a snapshot; it is not invalidated by a
// concurrent MarkForDeletion call.
func (r *Registry[C]) GetMarkedForDeletion() []arena.AnyHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]arena.AnyHandle, 0, len(r.marked))
	for _, h := range r.order {
		if _, ok := r.marked[h]; ok {
			out = append(out, h)
		}
	}
	return out
}

// ProcessDeletions removes every currently marked entity's context from
// the registry and the live list, returning the handles removed. It does
// not call any external despawner — the orchestrator's cleanup phase is
// responsible for invoking the despawn collaborator per handle before (or
// after) calling ProcessDeletions; the registry only owns its own
// bookkeeping.
func (r *Registry[C]) ProcessDeletions() []arena.AnyHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := make([]arena.AnyHandle, 0, len(r.marked))
	for _, h := range r.order {
		if _, ok := r.marked[h]; ok {
			removed = append(removed, h)
		}
	}
	for _, h := range removed {
		r.unregisterLocked(h)
	}
	return removed
}

// GetAllEntities returns every registered handle in insertion order. The
// returned slice is a copy; callers iterating it concurrently with a
// Register/Unregister are safe but see a point-in-time view.
func (r *Registry[C]) GetAllEntities() []arena.AnyHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]arena.AnyHandle, len(r.order))
	copy(out, r.order)
	return out
}

// GetActiveEntities returns every registered handle whose context is
// currently active, in insertion order.
func (r *Registry[C]) GetActiveEntities() []arena.AnyHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]arena.AnyHandle, 0, len(r.order))
	for _, h := range r.order {
		if c := r.contexts[h]; c != nil && c.isActive {
			out = append(out, h)
		}
	}
	return out
}

// Len reports the number of registered entities.
func (r *Registry[C]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

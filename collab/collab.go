// Package collab names the external-collaborator contracts tickforge
// consumes but never implements: collision detection, input, action
// selection, dependency-ordered reconciliation, despawning, and snapshot
// serialization. spec.md §1 lists these as deliberately out of scope; this
// package is the interface-level seam at which a host plugs its own
// collision math, A* pathfinder, inventory rules, or binary codec in
// without the core importing any of it.
package collab

import (
	"github.com/lixenwraith/tickforge/arena"
	"github.com/lixenwraith/tickforge/tick"
)

// Vector3 is a plain three-component vector used only to describe contact
// geometry in CollisionPair. tickforge performs no vector math on it.
type Vector3 struct {
	X, Y, Z float64
}

// CollisionPair carries two colliding entities and the contact geometry an
// external collision-shape collaborator computed for them.
type CollisionPair struct {
	A, B    arena.AnyHandle
	Point   Vector3
	Normal  Vector3
}

// CollisionSource is the phase-1 collaborator: it owns the frame's
// collision results and is cleared once the orchestrator has consumed
// them.
type CollisionSource interface {
	Collisions() []CollisionPair
	Clear()
}

// CollisionEmitter translates a frame's collision pairs into per-entity
// commands enqueued on the message queue. It is the only path by which
// phase 1 (Collision) affects phase 2 (Message); the core never inspects
// or interprets a CollisionPair itself.
type CollisionEmitter interface {
	EmitMessages(pairs []CollisionPair)
}

// InputState is opaque to the core: whatever a host's input collaborator
// produces is passed through untouched to judgments during phase 3.
type InputState any

// InputProvider supplies the current input snapshot for a given entity.
type InputProvider interface {
	InputState(h arena.AnyHandle) InputState
}

// FrameState is the read-only context handed to a Judgment's Priority and
// Evaluate during phase 3 (Decision). It is intentionally a thin, opaque
// carrier: the core does not know what a host puts in it.
type FrameState any

// Judgment is a condition-plus-priority record proposing an action for a
// category. The decision phase asks every judgment registered against an
// entity for its priority and its evaluation, and selects among those that
// evaluate true by descending priority; tie-breaking among equal
// priorities is the host's judgment-ordering responsibility, not the
// core's.
type Judgment interface {
	Label() string
	Category() any
	Priority(fs FrameState) int32
	Evaluate(fs FrameState) bool
	TransitionableJudgments() []Judgment
}

// ExecutableAction is a tickable, per-entity, per-category action
// instance. The action state machine (package action) owns advancing it
// once per tick; it never inspects category-specific behavior beyond this
// interface.
type ExecutableAction interface {
	OnEnter()
	Tick(delta tick.Duration)
	ElapsedTicks() tick.Duration
	IsComplete() bool
	CanCancel() bool
	Category() any
}

// ActionFactory instantiates an ExecutableAction for an action identifier
// and category, consulted by phase 4 (Execution) once phase 3 has selected
// a winning judgment.
type ActionFactory interface {
	Create(actionID string, category any) ExecutableAction
}

// DependencyResolveResult is returned by DependencyResolver.Resolve.
type DependencyResolveResult int

const (
	// ResolveSuccess means sorted is a full topological order of entities.
	ResolveSuccess DependencyResolveResult = iota
	// ResolveCycleDetected means the dependency graph contains a cycle;
	// sorted still holds the resolver's own fallback order, which the core
	// uses unmodified (see DESIGN.md, "Dependency-cycle fallback order").
	ResolveCycleDetected
)

// DependencyResolver orders the active entity set by an external
// dependency graph (e.g. "must reconcile parent transform before child")
// ahead of phase 5 (Reconciliation).
type DependencyResolver interface {
	Resolve(entities []arena.AnyHandle) (sorted []arena.AnyHandle, result DependencyResolveResult)
}

// PositionReconciler applies position reconciliation for a single entity
// during phase 5, in the order DependencyResolver produced.
type PositionReconciler interface {
	Reconcile(h arena.AnyHandle)
}

// EntityDespawner performs a host's own teardown (freeing render
// resources, releasing physics bodies, etc.) for an entity about to be
// removed during phase 6 (Cleanup), before the registry drops its context.
type EntityDespawner interface {
	Despawn(h arena.AnyHandle)
}

// SnapshotableArena is the host-facing shape of arena.Arena[T] used by an
// external serialization collaborator that cannot itself be generic over
// T; arena.Arena[T] implements it via CaptureSnapshotAny/RestoreSnapshotAny.
type SnapshotableArena interface {
	CaptureSnapshotAny() any
	RestoreSnapshotAny(s any)
}

// LODController is an opaque reference to an external level-of-detail
// staging collaborator (spec.md §1 Non-goals). The core never calls
// through it; registry.Context only holds the reference so a host can
// retrieve it by handle.
type LODController any

// SpawnController is an opaque reference to an external resource-staging
// collaborator, analogous to LODController.
type SpawnController any

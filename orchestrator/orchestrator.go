// Package orchestrator drives the six-phase tick: two phase groups,
// Update (Collision, Message, Decision, Execution) and Late
// (Reconciliation, Cleanup), wiring together the registry, command
// queues, action state machines, and the external collaborators of
// package collab. It owns no entity payload data itself — that lives in
// whatever arenas the host maintains — only the phase sequencing and the
// bookkeeping a tick needs to carry from one phase to the next.
package orchestrator

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/tickforge/arena"
	"github.com/lixenwraith/tickforge/collab"
	"github.com/lixenwraith/tickforge/command"
	"github.com/lixenwraith/tickforge/pipeline"
	"github.com/lixenwraith/tickforge/registry"
	"github.com/lixenwraith/tickforge/tick"
)

// Decision is one entity's selected action for one category, produced by
// the Decision phase and consumed by the Execution phase.
type Decision[C comparable] struct {
	Category C
	ActionID string
	Judgment collab.Judgment
}

// Diagnostics accumulates the non-fatal conditions spec.md §7 says are
// reported rather than raised: depth-exceeded step convergence,
// dependency-graph cycles, and canceled parallel stages. Counters, not
// timestamps: a host wanting history should sample these into its own
// metrics sink on whatever cadence it prefers.
type Diagnostics struct {
	StepDepthExceeded atomic.Int64
	DependencyCycle   atomic.Int64
	StageCanceled     atomic.Int64
}

// Config carries the external collaborators and tunables an Orchestrator
// needs. Every collaborator field is optional except where noted; a nil
// collaborator degrades its phase to a no-op rather than panicking, since
// a host may legitimately not need every phase in every deployment (e.g.
// a headless simulation with no collision source).
type Config[C comparable] struct {
	Registry *registry.Registry[C]

	MessageQueue    *command.Queue
	MessageMaxDepth int

	CollisionSource  collab.CollisionSource
	CollisionEmitter collab.CollisionEmitter

	FrameState    func(h arena.AnyHandle) collab.FrameState
	ActionFactory collab.ActionFactory

	DependencyResolver collab.DependencyResolver
	Reconciler         collab.PositionReconciler
	Despawner          collab.EntityDespawner

	Workers int
	Log     zerolog.Logger
}

// Orchestrator drives the tick phases for one entity population.
type Orchestrator[C comparable] struct {
	cfg Config[C]

	messageProcessor *command.StepProcessor
	decisionPipeline *pipeline.Pipeline
	decisionBuffer   *pipeline.HandleMap[[]Decision[C]]

	// runningJudgment records, per entity per category, which Judgment
	// most recently won the Execution phase — consulted by the next
	// Decision phase to know which overrides are legal against the
	// action currently running for that category. It is written by the
	// (serial) Execution phase, pruned of deleted entities by the (serial)
	// Cleanup phase, and read by the (parallel, read-only) Decision phase,
	// so writers and readers never run at the same time; a plain map under
	// a mutex is enough since no phase writes to it concurrently.
	runningMu      sync.Mutex
	runningJudgment map[arena.AnyHandle]map[C]collab.Judgment

	Diag Diagnostics

	currentTick tick.Tick
}

// New creates an Orchestrator from cfg.
func New[C comparable](cfg Config[C]) *Orchestrator[C] {
	o := &Orchestrator[C]{
		cfg:             cfg,
		decisionBuffer:  pipeline.NewHandleMap[[]Decision[C]](),
		runningJudgment: make(map[arena.AnyHandle]map[C]collab.Judgment),
	}
	if cfg.MessageQueue != nil {
		o.messageProcessor = command.NewStepProcessor(cfg.MessageQueue)
	}
	o.decisionPipeline = pipeline.NewPipeline(cfg.Registry.GetActiveEntities, cfg.Workers, cfg.Log)
	return o
}

// Tick runs the update group: Collision, Message, Decision, Execution.
func (o *Orchestrator[C]) Tick(delta tick.Duration) {
	o.currentTick = o.currentTick.Advance(delta)

	o.collisionPhase()
	o.messagePhase()
	o.decisionPhase(delta)
	o.executionPhase(delta)
}

// LateTick runs the late group: Reconciliation, Cleanup. A host may call
// Tick and LateTick back to back for a single combined advance, or
// separately (e.g. to interleave with its own rendering step).
func (o *Orchestrator[C]) LateTick(delta tick.Duration) {
	o.reconciliationPhase()
	o.cleanupPhase()
}

// collisionPhase pulls the frame's collision results from the external
// source, hands them to the emitter to enqueue per-entity commands into
// the message queue, then clears the source.
func (o *Orchestrator[C]) collisionPhase() {
	if o.cfg.CollisionSource == nil {
		return
	}
	pairs := o.cfg.CollisionSource.Collisions()
	if o.cfg.CollisionEmitter != nil && len(pairs) > 0 {
		o.cfg.CollisionEmitter.EmitMessages(pairs)
	}
	o.cfg.CollisionSource.Clear()
}

// messagePhase runs the step processor over the message queue to
// convergence or depth limit. This is the only phase in which logical
// entity state changes (spec.md's mutation-locality invariant).
func (o *Orchestrator[C]) messagePhase() {
	if o.messageProcessor == nil {
		return
	}
	result := o.messageProcessor.ProcessAllSteps(o.cfg.MessageMaxDepth)
	if !result.Converged {
		o.Diag.StepDepthExceeded.Add(1)
		o.cfg.Log.Warn().Int("depth", result.Depth).Msg("message phase step processor depth exceeded")
	}
}

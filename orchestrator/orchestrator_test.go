package orchestrator

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/tickforge/arena"
	"github.com/lixenwraith/tickforge/collab"
	"github.com/lixenwraith/tickforge/registry"
	"github.com/lixenwraith/tickforge/tick"
)

type category int

const categoryMovement category = 0

type stubPayload struct{ N int }

type fakeJudgment struct {
	label      string
	category   category
	priority   int32
	evalResult bool
	transition []collab.Judgment
}

func (j *fakeJudgment) Label() string                          { return j.label }
func (j *fakeJudgment) Category() any                          { return j.category }
func (j *fakeJudgment) Priority(collab.FrameState) int32       { return j.priority }
func (j *fakeJudgment) Evaluate(collab.FrameState) bool        { return j.evalResult }
func (j *fakeJudgment) TransitionableJudgments() []collab.Judgment { return j.transition }

type fakeExecutableAction struct {
	complete bool
	ticks    tick.Duration
	entered  int
}

func (a *fakeExecutableAction) OnEnter()                   { a.entered++ }
func (a *fakeExecutableAction) Tick(d tick.Duration)        { a.ticks = a.ticks.Add(d) }
func (a *fakeExecutableAction) ElapsedTicks() tick.Duration { return a.ticks }
func (a *fakeExecutableAction) IsComplete() bool            { return a.complete }
func (a *fakeExecutableAction) CanCancel() bool             { return true }
func (a *fakeExecutableAction) Category() any               { return categoryMovement }

type fakeActionFactory struct {
	created []string
}

func (f *fakeActionFactory) Create(actionID string, cat any) collab.ExecutableAction {
	f.created = append(f.created, actionID)
	return &fakeExecutableAction{}
}

func newTestOrchestrator(t *testing.T) (*Orchestrator[category], *registry.Registry[category], arena.AnyHandle) {
	t.Helper()
	a := arena.New[stubPayload](arena.Config{})
	h, err := a.Spawn(stubPayload{})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	reg := registry.New[category]()
	ctx := reg.Register(h.Any(), []category{categoryMovement})
	ctx.Judgments = []collab.Judgment{
		&fakeJudgment{label: "walk", category: categoryMovement, priority: 1, evalResult: true},
	}

	factory := &fakeActionFactory{}
	o := New[category](Config[category]{
		Registry:      reg,
		ActionFactory: factory,
		Workers:       2,
		Log:           zerolog.Nop(),
	})
	return o, reg, h.Any()
}

func TestTickDrivesDecisionIntoExecution(t *testing.T) {
	o, reg, h := newTestOrchestrator(t)

	o.Tick(tick.FromTicks(1))

	entityCtx, ok := reg.GetContext(h)
	if !ok {
		t.Fatal("expected entity context to still exist")
	}
	if _, running := entityCtx.Actions.GetCurrentAction(categoryMovement); !running {
		t.Fatal("expected an action to be running for categoryMovement after Tick")
	}
}

func TestTickWithNoJudgmentsLeavesNoRunningAction(t *testing.T) {
	a := arena.New[stubPayload](arena.Config{})
	h, _ := a.Spawn(stubPayload{})
	reg := registry.New[category]()
	reg.Register(h.Any(), []category{categoryMovement})

	o := New[category](Config[category]{
		Registry:      reg,
		ActionFactory: &fakeActionFactory{},
		Workers:       1,
		Log:           zerolog.Nop(),
	})

	o.Tick(tick.FromTicks(1))

	entityCtx, _ := reg.GetContext(h.Any())
	if _, running := entityCtx.Actions.GetCurrentAction(categoryMovement); running {
		t.Fatal("no judgment evaluated true, so no action should be running")
	}
}

func TestLateTickInvokesDespawnerAndRemovesFromRegistry(t *testing.T) {
	a := arena.New[stubPayload](arena.Config{})
	h, _ := a.Spawn(stubPayload{})
	reg := registry.New[category]()
	reg.Register(h.Any(), []category{categoryMovement})
	reg.MarkForDeletion(h.Any())

	var despawned []arena.AnyHandle
	o := New[category](Config[category]{
		Registry: reg,
		Despawner: despawnerFunc(func(dh arena.AnyHandle) {
			despawned = append(despawned, dh)
		}),
		Workers: 1,
		Log:     zerolog.Nop(),
	})

	o.LateTick(tick.FromTicks(1))

	if len(despawned) != 1 || despawned[0] != h.Any() {
		t.Fatalf("despawned = %v, want [%v]", despawned, h.Any())
	}
	if reg.Exists(h.Any()) {
		t.Fatal("entity must be removed from the registry after cleanup")
	}
}

type despawnerFunc func(arena.AnyHandle)

func (f despawnerFunc) Despawn(h arena.AnyHandle) { f(h) }

func TestReconciliationSurvivesCycleReport(t *testing.T) {
	a := arena.New[stubPayload](arena.Config{})
	h1, _ := a.Spawn(stubPayload{})
	h2, _ := a.Spawn(stubPayload{})
	reg := registry.New[category]()
	reg.Register(h1.Any(), nil)
	reg.Register(h2.Any(), nil)

	var reconciled []arena.AnyHandle
	o := New[category](Config[category]{
		Registry: reg,
		DependencyResolver: resolverFunc(func(entities []arena.AnyHandle) ([]arena.AnyHandle, collab.DependencyResolveResult) {
			return entities, collab.ResolveCycleDetected
		}),
		Reconciler: reconcilerFunc(func(h arena.AnyHandle) {
			reconciled = append(reconciled, h)
		}),
		Workers: 1,
		Log:     zerolog.Nop(),
	})

	o.LateTick(tick.FromTicks(1))

	if len(reconciled) != 2 {
		t.Fatalf("reconciled = %v, want 2 entries despite the reported cycle", reconciled)
	}
	if o.Diag.DependencyCycle.Load() != 1 {
		t.Fatalf("DependencyCycle diagnostic = %d, want 1", o.Diag.DependencyCycle.Load())
	}
}

type resolverFunc func([]arena.AnyHandle) ([]arena.AnyHandle, collab.DependencyResolveResult)

func (f resolverFunc) Resolve(entities []arena.AnyHandle) ([]arena.AnyHandle, collab.DependencyResolveResult) {
	return f(entities)
}

type reconcilerFunc func(arena.AnyHandle)

func (f reconcilerFunc) Reconcile(h arena.AnyHandle) { f(h) }

package orchestrator

import (
	"github.com/lixenwraith/tickforge/arena"
	"github.com/lixenwraith/tickforge/collab"
	"github.com/lixenwraith/tickforge/pipeline"
	"github.com/lixenwraith/tickforge/tick"
)

// decisionSystem adapts Orchestrator's per-entity decision logic to
// pipeline.ParallelSystem so it runs through the same worker-pool
// dispatcher every other parallel stage uses.
type decisionSystem[C comparable] struct {
	o *Orchestrator[C]
}

func (d *decisionSystem[C]) Name() string          { return "decision" }
func (d *decisionSystem[C]) Enabled() bool         { return true }
func (d *decisionSystem[C]) Kind() pipeline.Kind    { return pipeline.KindParallel }
func (d *decisionSystem[C]) Query() pipeline.Query  { return nil }

// ProcessEntity evaluates h's judgments against the current frame state,
// consulting its currently running action per category for which
// overrides are legal, and writes any category that needs a (re)start
// into the orchestrator's decision buffer. It performs no writes to
// entity state — it only reads judgments and the read-only current-action
// view, and writes to the out-of-stage sink, per spec.md's Decision-phase
// read-only contract.
func (d *decisionSystem[C]) ProcessEntity(h arena.AnyHandle, ctx *pipeline.Context) {
	o := d.o
	entityCtx, ok := o.cfg.Registry.GetContext(h)
	if !ok {
		return
	}

	var fs collab.FrameState
	if o.cfg.FrameState != nil {
		fs = o.cfg.FrameState(h)
	}

	byCategory := make(map[C][]collab.Judgment)
	for _, j := range entityCtx.Judgments {
		cat, ok := j.Category().(C)
		if !ok {
			continue
		}
		byCategory[cat] = append(byCategory[cat], j)
	}

	o.runningMu.Lock()
	runningForEntity := o.runningJudgment[h]
	o.runningMu.Unlock()

	var decisions []Decision[C]
	for cat, judgments := range byCategory {
		candidates := judgments

		current, hasCurrent := entityCtx.Actions.GetCurrentAction(cat)
		if hasCurrent && !current.IsComplete() {
			winner, hasWinner := runningForEntity[cat]
			if !hasWinner {
				continue
			}
			candidates = winner.TransitionableJudgments()
		}

		best, found := pickHighestPriority(candidates, fs)
		if !found {
			continue
		}
		decisions = append(decisions, Decision[C]{
			Category: cat,
			ActionID: best.Label(),
			Judgment: best,
		})
	}

	// Every processed entity gets an entry, even an empty one: the
	// Execution phase advances every entity's action machine by walking
	// the decision buffer, not just the ones with a fresh selection this
	// tick.
	o.decisionBuffer.Set(h, decisions)
}

// pickHighestPriority returns the judgment with the highest Priority
// among those whose Evaluate returns true, breaking ties by the order
// judgments appear in candidates (the entity's own judgment-ordering
// responsibility, per spec.md §4.5).
func pickHighestPriority(candidates []collab.Judgment, fs collab.FrameState) (collab.Judgment, bool) {
	var best collab.Judgment
	var bestPriority int32
	found := false
	for _, j := range candidates {
		if !j.Evaluate(fs) {
			continue
		}
		p := j.Priority(fs)
		if !found || p > bestPriority {
			best = j
			bestPriority = p
			found = true
		}
	}
	return best, found
}

// decisionPhase runs the decision system over the active entity set via
// the shared pipeline dispatcher, resetting the decision buffer first so
// stale entries from a prior tick never leak into Execution.
func (o *Orchestrator[C]) decisionPhase(delta tick.Duration) {
	o.decisionBuffer.Reset()

	g := pipeline.NewGroup()
	g.Add(&decisionSystem[C]{o: o})

	pctx := o.decisionPipeline.Execute(g, delta)
	if pctx.Canceled() {
		o.Diag.StageCanceled.Add(1)
		o.cfg.Log.Warn().Msg("decision phase canceled")
	}
}

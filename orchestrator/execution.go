package orchestrator

import (
	"github.com/lixenwraith/tickforge/arena"
	"github.com/lixenwraith/tickforge/collab"
	"github.com/lixenwraith/tickforge/tick"
)

// executionPhase consumes the decision buffer in handle order: for every
// decision present it instantiates the selected action via the external
// factory, starts it (recording which judgment won, for the next tick's
// override check), then advances every visited entity's action machine by
// delta.
func (o *Orchestrator[C]) executionPhase(delta tick.Duration) {
	if o.cfg.ActionFactory == nil {
		o.decisionBuffer.Range(func(h arena.AnyHandle, decisions []Decision[C]) bool {
			o.tickEntityActions(h, delta)
			return true
		})
		return
	}

	o.decisionBuffer.Range(func(h arena.AnyHandle, decisions []Decision[C]) bool {
		entityCtx, ok := o.cfg.Registry.GetContext(h)
		if !ok {
			return true
		}

		for _, d := range decisions {
			executable := o.cfg.ActionFactory.Create(d.ActionID, any(d.Category))
			entityCtx.Actions.StartAction(d.Category, executable)
			o.recordRunningJudgment(h, d.Category, d.Judgment)
		}

		o.tickEntityActions(h, delta)
		return true
	})
}

func (o *Orchestrator[C]) tickEntityActions(h arena.AnyHandle, delta tick.Duration) {
	entityCtx, ok := o.cfg.Registry.GetContext(h)
	if !ok {
		return
	}
	entityCtx.Actions.Tick(delta)
}

// recordRunningJudgment remembers which Judgment started h's category's
// currently running action, so the next tick's Decision phase knows which
// overrides (TransitionableJudgments) are legal against it.
func (o *Orchestrator[C]) recordRunningJudgment(h arena.AnyHandle, category C, j collab.Judgment) {
	o.runningMu.Lock()
	defer o.runningMu.Unlock()
	if o.runningJudgment[h] == nil {
		o.runningJudgment[h] = make(map[C]collab.Judgment)
	}
	o.runningJudgment[h][category] = j
}

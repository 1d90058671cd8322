package orchestrator

import "github.com/lixenwraith/tickforge/collab"

// reconciliationPhase asks the external dependency resolver for a
// topological order over the active entity set, then invokes the
// external reconciler per handle in that order. A reported cycle does not
// abort the phase: reconciliation still runs, in whatever fallback order
// the resolver produced.
func (o *Orchestrator[C]) reconciliationPhase() {
	if o.cfg.Reconciler == nil {
		return
	}

	entities := o.cfg.Registry.GetActiveEntities()

	ordered := entities
	if o.cfg.DependencyResolver != nil {
		sorted, result := o.cfg.DependencyResolver.Resolve(entities)
		if result == collab.ResolveCycleDetected {
			o.Diag.DependencyCycle.Add(1)
			o.cfg.Log.Warn().Msg("dependency cycle detected during reconciliation; using fallback order")
		}
		ordered = sorted
	}

	for _, h := range ordered {
		o.cfg.Reconciler.Reconcile(h)
	}
}

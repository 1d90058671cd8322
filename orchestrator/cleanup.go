package orchestrator

// cleanupPhase invokes the external despawner on every entity marked for
// deletion, then removes them from the registry. Despawner invocation
// happens before the registry drop so a despawner that still needs to
// read the entity's context (e.g. to free arena-held resources) can do
// so.
func (o *Orchestrator[C]) cleanupPhase() {
	marked := o.cfg.Registry.GetMarkedForDeletion()

	if o.cfg.Despawner != nil {
		for _, h := range marked {
			o.cfg.Despawner.Despawn(h)
		}
	}

	o.cfg.Registry.ProcessDeletions()

	o.runningMu.Lock()
	for _, h := range marked {
		delete(o.runningJudgment, h)
	}
	o.runningMu.Unlock()
}

package command

// DefaultMaxDepth is the step-processor's default convergence budget.
const DefaultMaxDepth = 100

// StepResult is the outcome of ProcessAllSteps.
type StepResult struct {
	// Converged is true if every registered queue emptied within the
	// depth budget.
	Converged bool
	// Depth is the number of steps actually executed.
	Depth int
}

// StepProcessor drives a set of registered queues through step
// convergence: at each step it promotes every queue's next-step list to
// pending, drains every queue, and repeats until all queues are empty or
// the depth budget is exceeded. Queues are registered once (typically at
// setup) and processed together so that "Step N sees exactly what Step
// N-1's drains enqueued" holds across the whole queue set, not per queue.
type StepProcessor struct {
	queues []*Queue
}

// NewStepProcessor creates a processor over the given queues.
func NewStepProcessor(queues ...*Queue) *StepProcessor {
	return &StepProcessor{queues: queues}
}

// Register adds a queue to the processor's set.
func (p *StepProcessor) Register(q *Queue) {
	p.queues = append(p.queues, q)
}

// ProcessAllSteps runs the convergence loop described in spec.md §4.3.
// Step 0 drains the caller's pre-existing pending lists together with any
// next-step residuals left by an earlier call; subsequent steps promote
// each queue's next-step list before draining. When the budget is
// exceeded, residual next-step commands are left in place for the
// following call's Step 0 — ProcessAllSteps never discards work, it only
// stops accounting for it as part of this call's depth.
func (p *StepProcessor) ProcessAllSteps(maxDepth int) StepResult {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	for _, q := range p.queues {
		q.mu.Lock()
		q.pending = append(q.pending, q.nextStep...)
		q.nextStep = q.nextStep[:0]
		q.mu.Unlock()
	}

	depth := 0
	for {
		if depth > 0 {
			for _, q := range p.queues {
				q.PromoteNextStep()
			}
		}

		if p.allEmpty() {
			return StepResult{Converged: true, Depth: depth}
		}

		for _, q := range p.queues {
			q.Drain(Clear)
		}

		depth++
		if depth >= maxDepth {
			return StepResult{Converged: false, Depth: depth}
		}
	}
}

func (p *StepProcessor) allEmpty() bool {
	for _, q := range p.queues {
		if q.PendingLen() > 0 {
			return false
		}
	}
	return true
}

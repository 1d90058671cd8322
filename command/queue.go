package command

import "sync"

// ClearPolicy controls what Drain does to the pending list after
// execution.
type ClearPolicy int

const (
	// Clear empties the pending list after drain (the default).
	Clear ClearPolicy = iota
	// Keep preserves the pending list (and signal markers) for replay.
	Keep
)

// Queue owns a pending list, a next-step list filled by enqueues made
// during a drain, per-type signal markers, and one Pool per command type.
// A Queue may be global or attached to a single entity; tickforge treats
// both the same way.
type Queue struct {
	mu sync.Mutex

	pools map[string]*Pool

	pending  []*Command
	nextStep []*Command

	signalPresent map[string]bool
	draining      bool

	seq uint64
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		pools:         make(map[string]*Pool),
		signalPresent: make(map[string]bool),
	}
}

// poolFor returns (creating if absent) the pool for commandType, using
// initialCapacity for first creation only.
func (q *Queue) poolFor(commandType string, initialCapacity int) *Pool {
	p, ok := q.pools[commandType]
	if !ok {
		p = NewPool(initialCapacity)
		q.pools[commandType] = p
	}
	return p
}

// Enqueue acquires a pooled Command for commandType (creating its pool
// with initialCapacity on first use), invokes initFn to populate it, and
// places it in the pending list — or the next-step list, if a drain is
// currently in progress for this queue. signal marks the command as a
// signal command: if one of the same commandType is already present,
// Enqueue returns false without acquiring a pooled object.
//
// priority and signal are set from the arguments before initFn runs;
// initFn (which may be nil) populates the remaining fields of c in place.
func (q *Queue) Enqueue(commandType string, priority int32, signal bool, initialCapacity int, initFn func(c *Command)) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if signal && q.signalPresent[commandType] {
		return false
	}

	pool := q.poolFor(commandType, initialCapacity)
	c := pool.Acquire()
	c.Type = commandType
	c.Priority = priority
	c.Signal = signal
	if initFn != nil {
		initFn(c)
	}
	q.seq++
	c.seq = q.seq

	if signal {
		q.signalPresent[commandType] = true
	}

	if q.draining {
		q.nextStep = append(q.nextStep, c)
	} else {
		q.pending = append(q.pending, c)
	}
	return true
}

// PendingLen reports the current pending-list length.
func (q *Queue) PendingLen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// NextStepLen reports the current next-step-list length.
func (q *Queue) NextStepLen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.nextStep)
}

// PromoteNextStep moves the next-step list into the pending list, leaving
// next-step empty. It is step 1 of the step-processor loop ("Step N").
func (q *Queue) PromoteNextStep() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending, q.nextStep = q.nextStep, q.pending[:0]
}

// Drain sorts the pending list by priority descending (ties broken by
// enqueue order), invokes each command's Execute against its Target
// handle, and returns each command to its pool. Enqueues made by a
// command's own Execute during this call are deferred into the next-step
// list, never observed by this drain. With policy == Keep, the pending
// list (and signal markers) survive the drain for replay.
func (q *Queue) Drain(policy ClearPolicy) {
	q.mu.Lock()
	q.draining = true
	batch := q.pending
	q.mu.Unlock()

	sortStable(batch)

	for _, c := range batch {
		if c.Execute != nil {
			c.Execute(c.Target)
		}
	}

	q.mu.Lock()
	q.draining = false
	if policy == Clear {
		for _, c := range batch {
			if pool, ok := q.pools[c.Type]; ok {
				pool.Release(c)
			}
		}
		q.pending = q.pending[:0]
		q.signalPresent = make(map[string]bool)
		for _, c := range q.nextStep {
			if c.Signal {
				q.signalPresent[c.Type] = true
			}
		}
	}
	q.mu.Unlock()
}

// sortStable sorts cmds by Priority descending, ties broken by seq
// ascending (enqueue order), in place.
func sortStable(cmds []*Command) {
	// Insertion sort: queue batches are small (bounded by per-tick command
	// volume for one entity or one phase), and stability must be exact.
	for i := 1; i < len(cmds); i++ {
		j := i
		for j > 0 && less(cmds[j], cmds[j-1]) {
			cmds[j], cmds[j-1] = cmds[j-1], cmds[j]
			j--
		}
	}
}

func less(a, b *Command) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.seq < b.seq
}

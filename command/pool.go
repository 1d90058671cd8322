package command

import "sync"

// DefaultPoolCapacity is the default initial capacity for a (queue,
// command-type) pool, per spec.md §4.3.
const DefaultPoolCapacity = 8

// Pool recycles Command instances for a single command type within a
// single queue. One Pool per (queue, type) pair, grounded on the
// teacher's per-payload-type sync.Pool instances (event/pool.go) rather
// than a single shared pool keyed by type at runtime.
type Pool struct {
	pool sync.Pool
}

// NewPool creates a Pool whose New hook allocates one fresh Command on a
// miss. initialCapacity (DefaultPoolCapacity when <= 0) only pre-warms the
// sync.Pool by priming it with that many fresh instances.
func NewPool(initialCapacity int) *Pool {
	if initialCapacity <= 0 {
		initialCapacity = DefaultPoolCapacity
	}
	p := &Pool{
		pool: sync.Pool{
			New: func() any { return &Command{} },
		},
	}
	primed := make([]*Command, 0, initialCapacity)
	for i := 0; i < initialCapacity; i++ {
		primed = append(primed, &Command{})
	}
	for _, c := range primed {
		p.pool.Put(c)
	}
	return p
}

// Acquire returns a Command from the pool, fields zeroed by the last
// Release.
func (p *Pool) Acquire() *Command {
	return p.pool.Get().(*Command)
}

// Release clears the command's signal state and returns it to the pool.
func (p *Pool) Release(c *Command) {
	if c == nil {
		return
	}
	c.Reset()
	p.pool.Put(c)
}

package pipeline

import (
	"sync/atomic"

	"github.com/lixenwraith/tickforge/tick"
)

// Context is the per-execute() value every stage in a group shares:
// the tick delta for this call, the running tick and frame counters, and
// a cooperative cancel signal a host can raise from another goroutine.
type Context struct {
	DeltaTicks  tick.Duration
	CurrentTick tick.Tick
	FrameCount  uint64

	canceled atomic.Bool
}

// Cancel raises the cooperative cancel signal. Parallel stages observe it
// at entity boundaries; in-flight entity invocations are allowed to
// finish.
func (c *Context) Cancel() { c.canceled.Store(true) }

// Canceled reports whether Cancel has been called for this Context.
func (c *Context) Canceled() bool { return c.canceled.Load() }

// Package command implements per-entity and global command queues and the
// step processor that drains them to a fixed point. Commands are the only
// path by which logical entity state changes (spec.md §3 mutation
// locality): every mutation the message phase performs is the execute
// behavior of some command.
package command

import "github.com/lixenwraith/tickforge/arena"

// Command is one unit of deferred work: a priority (larger runs earlier),
// an optional signal flag, a target handle, and a behavior invoked
// against that handle during drain.
type Command struct {
	Priority int32
	Signal   bool
	Type     string
	Target   arena.AnyHandle
	Execute  func(h arena.AnyHandle)

	// seq is the enqueue-order tiebreaker for stable priority sort; set by
	// the queue on enqueue, not by callers.
	seq uint64
}

// Reset clears every field except Type, which identifies which pool the
// command returns to: priority, signal flag, target, behavior, and the
// enqueue sequence number are all zeroed (Target becomes arena.Invalid),
// so a reused command never carries a stale Execute into its next enqueue.
func (c *Command) Reset() {
	c.Priority = 0
	c.Signal = false
	c.Target = arena.Invalid
	c.Execute = nil
	c.seq = 0
}

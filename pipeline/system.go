package pipeline

import (
	"github.com/lixenwraith/tickforge/arena"
	"github.com/lixenwraith/tickforge/command"
)

// Query filters the registered entity set down to the ones a stage should
// process. A nil Query means "all registered entities" (spec.md's `None`
// query).
type Query func(all []arena.AnyHandle) []arena.AnyHandle

// Kind distinguishes the three system variants a SystemGroup can hold.
type Kind int

const (
	KindSerial Kind = iota
	KindParallel
	KindQueueDrain
)

// System is the behavior common to every stage: a name for diagnostics, an
// enabled flag checked before dispatch, which variant it is, and an
// optional entity filter.
type System interface {
	Name() string
	Enabled() bool
	Kind() Kind
	Query() Query
}

// SerialSystem is given the full filtered entity list, in order, for one
// call. It must be deterministic given its inputs.
type SerialSystem interface {
	System
	ProcessSerial(entities []arena.AnyHandle, ctx *Context)
}

// ParallelSystem is invoked once per entity, with no cross-entity shared
// mutable state; any result that must survive the stage is written to an
// out-of-stage sink such as a HandleMap.
type ParallelSystem interface {
	System
	ProcessEntity(h arena.AnyHandle, ctx *Context)
}

// QueueDrainSystem runs the step processor over its queue set.
type QueueDrainSystem interface {
	System
	Processor() *command.StepProcessor
	MaxDepth() int
}

// Group is an ordered list of systems; execution order is definition
// order, per spec.md §3.
type Group struct {
	systems []System
}

// NewGroup creates an empty Group.
func NewGroup() *Group {
	return &Group{}
}

// Add appends a system to the end of the group.
func (g *Group) Add(s System) {
	g.systems = append(g.systems, s)
}

// Systems returns the group's systems in definition order.
func (g *Group) Systems() []System {
	return g.systems
}

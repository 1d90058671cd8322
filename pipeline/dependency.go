package pipeline

import "github.com/lixenwraith/tickforge/arena"

// OrderResult distinguishes a clean topological sort from one that had to
// fall back to a stable order because the dependency graph contained a
// cycle.
type OrderResult int

const (
	// OrderSuccess means sorted is a full topological order.
	OrderSuccess OrderResult = iota
	// OrderCycleDetected means sorted is a stable fallback order; cycle
	// detection and the fallback itself are the OrderEntities callback's
	// responsibility, not this package's.
	OrderCycleDetected
)

// OrderEntities produces a permutation of input, returning whether it
// found a full topological order or had to fall back for a cycle.
type OrderEntities func(input []arena.AnyHandle) (sorted []arena.AnyHandle, result OrderResult)

// DependencySerial is a SerialSystem variant that orders its input with an
// external OrderEntities callback before the embedded process runs over
// it; this is how reconciliation (spec.md phase 5) and any other
// dependency-ordered serial stage get their ordering without this package
// knowing anything about dependency graphs.
type DependencySerial struct {
	name    string
	enabled bool
	query   Query
	order   OrderEntities
	process func(entities []arena.AnyHandle, ctx *Context)

	lastResult OrderResult
}

// NewDependencySerial creates a DependencySerial stage. process receives
// entities already sorted by order (or in fallback order, on a detected
// cycle).
func NewDependencySerial(name string, order OrderEntities, process func(entities []arena.AnyHandle, ctx *Context)) *DependencySerial {
	return &DependencySerial{name: name, enabled: true, order: order, process: process}
}

func (d *DependencySerial) Name() string    { return d.name }
func (d *DependencySerial) Enabled() bool   { return d.enabled }
func (d *DependencySerial) Kind() Kind      { return KindSerial }
func (d *DependencySerial) Query() Query    { return d.query }
func (d *DependencySerial) SetEnabled(v bool) { d.enabled = v }
func (d *DependencySerial) SetQuery(q Query) { d.query = q }

// LastResult reports whether the most recent ProcessSerial call found a
// cycle.
func (d *DependencySerial) LastResult() OrderResult { return d.lastResult }

// ProcessSerial orders entities via the configured callback, then runs
// process over the result. A detected cycle does not abort the stage: it
// degrades to the callback's fallback order and is recorded on
// LastResult for the host to surface as a diagnostic.
func (d *DependencySerial) ProcessSerial(entities []arena.AnyHandle, ctx *Context) {
	sorted, result := d.order(entities)
	d.lastResult = result
	d.process(sorted, ctx)
}

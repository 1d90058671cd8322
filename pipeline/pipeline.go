// Package pipeline implements the system pipeline: an ordered group of
// systems executed once per tick against the active entity set, with
// three dispatch variants (serial, parallel, queue-drain) and a
// per-stage, per-frame query cache.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/lixenwraith/tickforge/arena"
	"github.com/lixenwraith/tickforge/tick"
)

// DefaultWorkers is used when Pipeline is constructed with workers <= 0.
const DefaultWorkers = 4

// Pipeline owns the tick/frame counters and drives one Group's systems in
// definition order against a host-supplied view of the registered entity
// set.
type Pipeline struct {
	mu          sync.Mutex
	frameCount  uint64
	totalTicks  tick.Tick
	allEntities func() []arena.AnyHandle
	workers     int
	log         zerolog.Logger

	queryGroup singleflight.Group
	cacheMu    sync.Mutex
	cache      map[string][]arena.AnyHandle
}

// NewPipeline creates a Pipeline. allEntities supplies the full registered
// entity list each stage's Query filters down from; it is typically
// registry.Registry[C].GetAllEntities or GetActiveEntities. workers <= 0
// falls back to DefaultWorkers. A zero zerolog.Logger (zerolog.Nop())
// disables diagnostic logging entirely.
func NewPipeline(allEntities func() []arena.AnyHandle, workers int, log zerolog.Logger) *Pipeline {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		allEntities: allEntities,
		workers:     workers,
		log:         log,
		cache:       make(map[string][]arena.AnyHandle),
	}
}

// Reset zeros the frame and tick counters without touching the registry.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frameCount = 0
	p.totalTicks = 0
}

// FrameCount reports the number of Execute calls since construction or the
// last Reset.
func (p *Pipeline) FrameCount() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameCount
}

// TotalTicks reports the accumulated tick position since construction or
// the last Reset.
func (p *Pipeline) TotalTicks() tick.Tick {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalTicks
}

// Execute runs every enabled system in group in definition order against
// the entity set, in a freshly built Context carrying delta. Each system
// is dispatched by its Kind; a disabled system is skipped entirely
// (including its query). The returned Context can be inspected for
// Canceled() after the call.
func (p *Pipeline) Execute(group *Group, delta tick.Duration) *Context {
	p.mu.Lock()
	p.frameCount++
	p.totalTicks = p.totalTicks.Advance(delta)
	ctx := &Context{
		DeltaTicks:  delta,
		CurrentTick: p.totalTicks,
		FrameCount:  p.frameCount,
	}
	frame := p.frameCount
	p.mu.Unlock()

	p.resetCacheForFrame(frame)

	for _, sys := range group.Systems() {
		if !sys.Enabled() {
			continue
		}

		entities := p.queryEntities(sys, frame)

		switch sys.Kind() {
		case KindSerial:
			ss, ok := sys.(SerialSystem)
			if !ok {
				p.log.Warn().Str("system", sys.Name()).Msg("system declares KindSerial but does not implement SerialSystem")
				continue
			}
			ss.ProcessSerial(entities, ctx)

		case KindParallel:
			ps, ok := sys.(ParallelSystem)
			if !ok {
				p.log.Warn().Str("system", sys.Name()).Msg("system declares KindParallel but does not implement ParallelSystem")
				continue
			}
			p.dispatchParallel(ps, entities, ctx)

		case KindQueueDrain:
			qs, ok := sys.(QueueDrainSystem)
			if !ok {
				p.log.Warn().Str("system", sys.Name()).Msg("system declares KindQueueDrain but does not implement QueueDrainSystem")
				continue
			}
			result := qs.Processor().ProcessAllSteps(qs.MaxDepth())
			if !result.Converged {
				p.log.Warn().Str("system", sys.Name()).Int("depth", result.Depth).Msg("step processor depth exceeded")
			}
		}

		if ctx.Canceled() {
			p.log.Debug().Str("system", sys.Name()).Msg("stage canceled, remaining systems in group skipped")
			break
		}
	}

	return ctx
}

// queryEntities applies sys's Query (or "all" for a nil Query) against the
// live entity set, caching the result for (sys.Name(), frame) so that each
// stage's query is computed at most once per frame; concurrent calls for
// the same key collapse into one evaluation. The cache is keyed by system
// name, so distinct systems sharing a Query each evaluate it separately.
func (p *Pipeline) queryEntities(sys System, frame uint64) []arena.AnyHandle {
	key := fmt.Sprintf("%d:%s", frame, sys.Name())

	p.cacheMu.Lock()
	if cached, ok := p.cache[key]; ok {
		p.cacheMu.Unlock()
		return cached
	}
	p.cacheMu.Unlock()

	v, _, _ := p.queryGroup.Do(key, func() (any, error) {
		all := p.allEntities()
		var result []arena.AnyHandle
		if q := sys.Query(); q != nil {
			result = q(all)
		} else {
			result = all
		}

		p.cacheMu.Lock()
		p.cache[key] = result
		p.cacheMu.Unlock()
		return result, nil
	})
	return v.([]arena.AnyHandle)
}

func (p *Pipeline) resetCacheForFrame(frame uint64) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	if len(p.cache) == 0 {
		return
	}
	prefix := fmt.Sprintf("%d:", frame)
	for k := range p.cache {
		if len(k) < len(prefix) || k[:len(prefix)] != prefix {
			delete(p.cache, k)
		}
	}
}

// dispatchParallel partitions entities across p.workers goroutines via
// errgroup, each invoking ProcessEntity independently. Cancellation is
// cooperative: a worker checks ctx.Canceled() before taking its next
// entity and lets any already-started invocation finish.
func (p *Pipeline) dispatchParallel(ps ParallelSystem, entities []arena.AnyHandle, ctx *Context) {
	if len(entities) == 0 {
		return
	}

	workers := p.workers
	if workers > len(entities) {
		workers = len(entities)
	}

	var g errgroup.Group
	next := make(chan int)
	g.Go(func() error {
		defer close(next)
		for i := range entities {
			next <- i
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range next {
				if ctx.Canceled() {
					continue
				}
				ps.ProcessEntity(entities[i], ctx)
			}
			return nil
		})
	}

	_ = g.Wait()
}

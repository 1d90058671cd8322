package pipeline

import (
	"sort"
	"sync"

	"github.com/lixenwraith/tickforge/arena"
)

// HandleMap is the thread-safe, last-writer-wins sink a parallel stage
// writes one entry per entity into; spec.md §5 calls this out as the
// canonical decision-result buffer. Readers that must process entries in
// a deterministic order (a serial stage consuming a parallel stage's
// output) use Range, which visits entries in ascending handle order.
type HandleMap[V any] struct {
	mu      sync.RWMutex
	entries map[arena.AnyHandle]V
}

// NewHandleMap creates an empty HandleMap.
func NewHandleMap[V any]() *HandleMap[V] {
	return &HandleMap[V]{entries: make(map[arena.AnyHandle]V)}
}

// Set writes v for h, overwriting any prior value. Concurrent Set calls
// for distinct handles never contend on the same entry; spec.md notes
// there is no real contention here since each entity writes exactly one
// entry.
func (m *HandleMap[V]) Set(h arena.AnyHandle, v V) {
	m.mu.Lock()
	m.entries[h] = v
	m.mu.Unlock()
}

// Get returns h's value, if present.
func (m *HandleMap[V]) Get(h arena.AnyHandle) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[h]
	return v, ok
}

// Len reports the number of entries currently held.
func (m *HandleMap[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Range invokes fn once per entry in ascending handle order (by index,
// then generation), stopping early if fn returns false.
func (m *HandleMap[V]) Range(fn func(h arena.AnyHandle, v V) bool) {
	m.mu.RLock()
	ordered := make([]arena.AnyHandle, 0, len(m.entries))
	for h := range m.entries {
		ordered = append(ordered, h)
	}
	snapshot := make(map[arena.AnyHandle]V, len(m.entries))
	for h, v := range m.entries {
		snapshot[h] = v
	}
	m.mu.RUnlock()

	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.Generation < b.Generation
	})

	for _, h := range ordered {
		if !fn(h, snapshot[h]) {
			return
		}
	}
}

// Reset clears every entry for reuse across frames by replacing the map
// with a fresh one; reusing the old map's backing storage is not
// attempted — clarity over a tactical allocation win for a container this
// small.
func (m *HandleMap[V]) Reset() {
	m.mu.Lock()
	m.entries = make(map[arena.AnyHandle]V)
	m.mu.Unlock()
}

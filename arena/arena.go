// Package arena implements the generation-checked slot pool that backs
// every entity and every other handle-addressed payload in tickforge.
// Slots never move once allocated; reuse bumps a generation counter so a
// handle captured before a despawn can never silently alias a different
// logical entity after reuse.
package arena

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultInitialCapacity mirrors the teacher's ECS resource-limit style of
// naming a concrete starting size rather than growing from zero.
const DefaultInitialCapacity = 64

// ErrCapacityExceeded is returned by Spawn when the arena's configured
// MaxCapacity would be exceeded by a required growth. It is the only
// fatal, host-visible error surface in the arena/handle subsystem — every
// other failure mode (operating on an invalid handle) is reported as a
// bool, never as an error.
var ErrCapacityExceeded = errors.New("arena: capacity exceeded")

// Config tunes a single Arena instance. The zero Config is valid and
// selects the package defaults.
type Config struct {
	// InitialCapacity is the slot count allocated up front. Defaults to
	// DefaultInitialCapacity when zero.
	InitialCapacity int
	// MaxCapacity bounds how large the slot array may grow. Zero means
	// unbounded (subject only to the Go runtime's actual memory limits).
	MaxCapacity int
}

func (c Config) initialCapacity() int {
	if c.InitialCapacity > 0 {
		return c.InitialCapacity
	}
	return DefaultInitialCapacity
}

// slot holds one payload's occupancy state. Slots are stored by value in a
// contiguous slice so index -> slot lookup never chases a pointer.
type slot[T any] struct {
	generation uint32
	occupied   bool
	payload    T
}

// Arena is a generation-checked slot pool for payloads of type T. An Arena
// is single-writer: Spawn, Despawn, and payload mutation must happen from
// one goroutine (the orchestrator thread), though concurrent read-only
// access to Get is safe via the embedded mutex for parallel pipeline
// stages that only read.
type Arena[T any] struct {
	mu sync.RWMutex

	id       ID
	cfg      Config
	elemType reflect.Type
	seq      uint64

	slots    []slot[T]
	freeList []int32
}

// New creates an Arena for payload type T with the given configuration.
func New[T any](cfg Config) *Arena[T] {
	var zero T
	a := &Arena[T]{
		id:       uuid.New(),
		cfg:      cfg,
		elemType: reflect.TypeOf(zero),
		slots:    make([]slot[T], 0, cfg.initialCapacity()),
	}
	return a
}

// ID returns the arena's unique identity, embedded in every handle it
// mints.
func (a *Arena[T]) ID() ID {
	return a.id
}

// ElemType reports the payload type this arena stores, useful for
// diagnostics and snapshot labeling.
func (a *Arena[T]) ElemType() reflect.Type {
	return a.elemType
}

// Spawn allocates a fresh handle, reusing a freed slot if one is
// available, else growing the slot array (doubling capacity, as the
// teacher's Store[T] does for its dense entity slice). Returns
// ErrCapacityExceeded if growth would exceed Config.MaxCapacity.
func (a *Arena[T]) Spawn(payload T) (Handle[T], error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		s := &a.slots[idx]
		s.occupied = true
		s.payload = payload
		return Handle[T]{AnyHandle{Arena: a.id, Index: idx, Generation: s.generation}}, nil
	}

	if a.cfg.MaxCapacity > 0 && len(a.slots) >= a.cfg.MaxCapacity {
		return Handle[T]{}, errors.Wrapf(ErrCapacityExceeded, "arena %s: max capacity %d reached", a.id, a.cfg.MaxCapacity)
	}

	a.growLocked()
	idx := int32(len(a.slots))
	a.slots = append(a.slots, slot[T]{generation: 0, occupied: true, payload: payload})
	return Handle[T]{AnyHandle{Arena: a.id, Index: idx, Generation: 0}}, nil
}

// growLocked doubles backing capacity when the slice is about to need to
// grow past its current capacity. append() already does this, but we make
// it explicit so the new capacity is clamped to Config.MaxCapacity and
// follows the "capacity grows by doubling" design note rather than Go's
// slice-growth heuristic.
func (a *Arena[T]) growLocked() {
	if len(a.slots) < cap(a.slots) {
		return
	}
	newCap := cap(a.slots) * 2
	if newCap == 0 {
		newCap = DefaultInitialCapacity
	}
	if a.cfg.MaxCapacity > 0 && newCap > a.cfg.MaxCapacity {
		newCap = a.cfg.MaxCapacity
	}
	grown := make([]slot[T], len(a.slots), newCap)
	copy(grown, a.slots)
	a.slots = grown
}

// Despawn invalidates h if it is currently valid, returning true on
// success. A despawn of an already-invalid handle is a no-op returning
// false; it never panics. On success the payload is reset to its zero
// value, the slot is pushed onto the free list, and its generation is
// incremented so no previously issued handle to the slot is ever valid
// again.
func (a *Arena[T]) Despawn(h AnyHandle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.validLocked(h.Index, h.Generation) {
		return false
	}
	s := &a.slots[h.Index]
	var zero T
	s.payload = zero
	s.occupied = false
	s.generation++
	a.freeList = append(a.freeList, h.Index)
	return true
}

// IsValid reports whether index/generation currently refer to a live,
// occupied slot. Constant time.
func (a *Arena[T]) IsValid(index int32, generation uint32) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.validLocked(index, generation)
}

// HandleValid is a convenience wrapper over IsValid for a full handle,
// also verifying arena identity.
func (a *Arena[T]) HandleValid(h AnyHandle) bool {
	if h.Arena != a.id {
		return false
	}
	return a.IsValid(h.Index, h.Generation)
}

func (a *Arena[T]) validLocked(index int32, generation uint32) bool {
	if index < 0 || int(index) >= len(a.slots) {
		return false
	}
	s := &a.slots[index]
	return s.occupied && s.generation == generation
}

// Get returns the payload referenced by h and true if h is valid. The
// returned value is a copy; mutate through Set.
func (a *Arena[T]) Get(h AnyHandle) (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var zero T
	if !a.validLocked(h.Index, h.Generation) {
		return zero, false
	}
	return a.slots[h.Index].payload, true
}

// Set overwrites the payload referenced by h, returning false (no-op) if h
// is no longer valid.
func (a *Arena[T]) Set(h AnyHandle, payload T) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.validLocked(h.Index, h.Generation) {
		return false
	}
	a.slots[h.Index].payload = payload
	return true
}

// Len reports the number of currently occupied slots.
func (a *Arena[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.slots) - len(a.freeList)
}

package arena

import "github.com/google/uuid"

// ID identifies a single Arena instance. Every Arena mints a fresh ID at
// construction so handles minted by distinct arenas (including a
// snapshot-restored shadow arena used for rollback testing) can never be
// confused with one another, even if their indices and generations collide.
type ID = uuid.UUID

// AnyHandle is the type-erased form of a handle: arena identity, slot
// index, and generation, with no payload type attached. It is the key type
// the entity registry and decision-result sinks index by.
//
// The invalid handle is the zero ID with Index -1 and Generation 0; it never
// compares equal to any handle minted by Spawn.
type AnyHandle struct {
	Arena      ID
	Index      int32
	Generation uint32
}

// Invalid is the canonical invalid handle value.
var Invalid = AnyHandle{Index: -1}

// IsZero reports whether h is the invalid handle sentinel. It does not
// consult any Arena; use Arena.IsValid for a liveness check.
func (h AnyHandle) IsZero() bool {
	return h == Invalid
}

// Hash combines index and generation into a single value suitable for use
// as a shard key in concurrent handle-keyed structures.
// Arena identity is intentionally excluded: within one process a single
// logical arena's handles dominate any given map, and folding in the full
// 128-bit arena ID would cost more than it resolves.
func (h AnyHandle) Hash() uint64 {
	return uint64(uint32(h.Index))<<32 | uint64(h.Generation)
}

// Handle is the typed form of AnyHandle: a handle minted by Arena[T] for
// payload type T. T never appears in the struct's runtime representation —
// type safety comes from which Arena[T] produced the handle — but the
// generic parameter lets callers avoid a type-erased reinterpretation at
// every call site the way the core/event packages in typical hand-rolled
// ECS code had to do via runtime reflection.
type Handle[T any] struct {
	AnyHandle
}

// Any erases the payload type, yielding the AnyHandle used by the registry
// and by any cross-arena collaborator (dependency resolver, reconciler).
func (h Handle[T]) Any() AnyHandle {
	return h.AnyHandle
}

// As attempts to recover a typed Handle[T] from an AnyHandle, given the
// Arena[T] that is claimed to own it. It succeeds only if the arena's
// identity matches the handle's — which is also sufficient to guarantee T
// is correct, since each Arena[T] mints handles under its own unique ID.
func As[T any](h AnyHandle, a *Arena[T]) (Handle[T], bool) {
	if h.Arena != a.id {
		return Handle[T]{}, false
	}
	return Handle[T]{AnyHandle: h}, true
}

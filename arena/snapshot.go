package arena

// Snapshot is the opaque value produced by Arena.CaptureSnapshot. Its
// encoding is the arena's own business; nothing outside this package
// interprets its fields. Per spec.md §6, the wire/byte encoding of a
// Snapshot into a persisted or transmitted form is the job of an external
// serialization collaborator the core never imports.
type Snapshot[T any] struct {
	// SeqNo is a monotonic counter bumped on every capture. It is never
	// consulted by RestoreSnapshot — two snapshots with different SeqNo
	// but identical slot content restore identically — it exists purely
	// so a host can cheaply tell whether a held snapshot is stale before
	// deciding whether to re-capture.
	SeqNo uint64

	id       ID
	slots    []slot[T]
	freeList []int32
}

// CaptureSnapshot serializes slot occupancy, generations, and payloads
// into a value that can later be handed back to RestoreSnapshot, on this
// arena or a freshly constructed one of the same type.
func (a *Arena[T]) CaptureSnapshot() Snapshot[T] {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seq++
	slots := make([]slot[T], len(a.slots))
	copy(slots, a.slots)
	free := make([]int32, len(a.freeList))
	copy(free, a.freeList)

	return Snapshot[T]{
		SeqNo:    a.seq,
		id:       a.id,
		slots:    slots,
		freeList: free,
	}
}

// RestoreSnapshot replaces the arena's entire state with s. The arena's own
// identity (and therefore every handle previously minted from it) is
// preserved; only slot occupancy, generations, and payloads are replaced.
//
// restore_snapshot(capture_snapshot(arena)) == arena for every arena state:
// capturing immediately after a restore and comparing slot-by-slot
// reproduces the same snapshot modulo SeqNo.
func (a *Arena[T]) RestoreSnapshot(s Snapshot[T]) {
	a.mu.Lock()
	defer a.mu.Unlock()

	slots := make([]slot[T], len(s.slots))
	copy(slots, s.slots)
	free := make([]int32, len(s.freeList))
	copy(free, s.freeList)

	a.slots = slots
	a.freeList = free
}

// CaptureSnapshotAny is CaptureSnapshot with the result boxed as any, so an
// Arena[T] satisfies collab.SnapshotableArena for an external serialization
// collaborator that cannot itself be generic over T.
func (a *Arena[T]) CaptureSnapshotAny() any {
	return a.CaptureSnapshot()
}

// RestoreSnapshotAny is RestoreSnapshot accepting a boxed Snapshot[T]; it
// panics if s does not hold a Snapshot[T], which indicates a collaborator
// wiring bug rather than a recoverable runtime condition.
func (a *Arena[T]) RestoreSnapshotAny(s any) {
	a.RestoreSnapshot(s.(Snapshot[T]))
}

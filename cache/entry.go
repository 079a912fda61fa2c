package cache

// Priority biases eviction for LRU caches with a high-priority pool.
type Priority uint8

const (
	// PriorityLow marks an entry as a regular eviction candidate.
	PriorityLow Priority = iota
	// PriorityHigh admits an entry directly into the protected pool
	// when the cache was built with a HighPriorityPoolRatio above zero.
	PriorityHigh
)

// Deleter is invoked exactly once when the cache relinquishes ownership of
// a value: on eviction, on erase, on displacement by a re-insert, or on
// Close. If the entry is pinned at that moment, the call is deferred to the
// final Handle release. Deleters run outside shard locks and must not call
// back into the cache for the same key.
type Deleter func(key []byte, value any)

// entry flag bits, guarded by the owning shard's mutex.
const (
	// entryInCache is set while the shard table references the entry.
	entryInCache uint8 = 1 << iota
	// entryHighPri records the insert priority.
	entryHighPri
	// entryInPool is set while an LRU entry sits in the high-priority pool.
	entryInPool
	// entryWasHit is set on first lookup; LRU re-admission promotes hit
	// entries into the pool.
	entryWasHit
	// entryClockRef is the clock policy's reference bit.
	entryClockRef
	// entryInPolicy is set while the entry is linked into the policy
	// structure and therefore an eviction candidate.
	entryInPolicy
)

// entry is the internal representation of one cached key/value pair.
// All fields are guarded by the owning shard's mutex.
type entry struct {
	key     []byte
	value   any
	charge  int64
	deleter Deleter

	// prev/next link the entry into its policy structure: the recency
	// list for LRU, the ring for clock.
	prev, next *entry

	// refs counts outstanding handles. Entries with refs > 0 are pinned.
	refs  int32
	flags uint8
}

func (e *entry) has(flag uint8) bool { return e.flags&flag != 0 }
func (e *entry) set(flag uint8)      { e.flags |= flag }
func (e *entry) clear(flag uint8)    { e.flags &^= flag }

// Handle pins a cache entry, keeping its value alive and un-evictable.
// Handles are not safe for concurrent use. Callers must Release exactly
// once and must not touch the handle afterwards.
type Handle struct {
	e *entry
	s *shard
}

// Key returns the entry's key. The slice is owned by the cache and must be
// treated as read-only.
func (h *Handle) Key() []byte { return h.e.key }

// Value returns the cached value. It stays valid until Release, even if the
// entry is erased or displaced concurrently.
func (h *Handle) Value() any { return h.e.value }

// Charge returns the capacity charge the entry was inserted with.
func (h *Handle) Charge() int64 { return h.e.charge }

// Release unpins the entry. The final release of an entry that has left the
// cache invokes its deleter. Releasing a handle twice panics.
func (h *Handle) Release() {
	h.s.release(h.e)
}

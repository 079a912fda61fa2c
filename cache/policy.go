package cache

// policy keeps the eviction order for a single shard. Implementations are
// not safe for concurrent use; the owning shard's mutex serializes every
// call. Entries handed to a policy are resident (in the shard table);
// whether pinned entries stay linked is the policy's own business, but
// evictOne must never return a pinned entry.
type policy interface {
	name() string

	// admit links a new, unpinned resident entry into eviction order.
	admit(e *entry)

	// touch records a lookup hit on a resident entry.
	touch(e *entry)

	// pin tells the policy that e acquired its first reference.
	pin(e *entry)

	// unpin tells the policy that e dropped back to zero references while
	// still resident.
	unpin(e *entry)

	// remove unlinks e when it leaves the cache (erase, displacement,
	// close). It must tolerate entries that are not currently linked.
	remove(e *entry)

	// evictOne unlinks and returns the next victim, or nil when no
	// unpinned candidate exists.
	evictOne() *entry

	// setCapacity informs the policy of the shard's capacity so derived
	// budgets (the high-priority pool) can resize.
	setCapacity(capacity int64)
}

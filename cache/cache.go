package cache

import (
	"hash/maphash"
	"sync/atomic"
)

// Cache is a concurrent, capacity-bounded mapping from byte keys to opaque
// values. Implementations are safe for concurrent use; Close must not race
// other operations.
type Cache interface {
	// Name identifies the eviction flavor, e.g. "LRUCache" or "ClockCache".
	Name() string

	// Insert adds or replaces the value for key, accounting charge units
	// against the shard's capacity. A displaced value's deleter fires once
	// its last pin is gone. Under StrictCapacityLimit an entry that cannot
	// fit fails with ErrCacheFull and the cache is left unchanged; the
	// caller keeps ownership of value and the deleter is not invoked.
	Insert(key []byte, value any, charge int64, pri Priority, deleter Deleter) error

	// Lookup returns a pinned handle to the value for key. The boolean is
	// false on miss. Every returned handle must be released exactly once.
	Lookup(key []byte) (*Handle, bool)

	// Erase removes the entry for key, if any. Pinned values stay alive
	// until their last release; the deleter fires exactly once either way.
	Erase(key []byte)

	// SetCapacity redistributes a new total capacity across shards and
	// evicts unpinned entries until each shard fits. Shards holding only
	// pinned entries converge as their pins drain.
	SetCapacity(capacity int64)

	// Capacity returns the sum of the shard capacities.
	Capacity() int64

	// Usage returns the total charge the cache currently owns, including
	// pinned entries that have already left the table.
	Usage() int64

	// PinnedUsage returns the charge held by entries with outstanding
	// handles.
	PinnedUsage() int64

	// Stats returns aggregated operation counters.
	Stats() Stats

	// Close evicts everything and releases shared budget reservations.
	// Values pinned at close are freed by their final Release. Close is
	// idempotent.
	Close() error
}

// Stats aggregates operation counters across shards.
type Stats struct {
	Hits      int64
	Misses    int64
	Inserts   int64
	Evictions int64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// shardedCache fans operations out to 2^shardBits independent shards using
// the top bits of a seeded maphash of the key.
type shardedCache struct {
	name      string
	seed      maphash.Seed
	shardBits uint
	shards    []*shard
	closed    atomic.Bool
}

var _ Cache = (*shardedCache)(nil)

func (c *shardedCache) shardFor(key []byte) *shard {
	if c.shardBits == 0 {
		return c.shards[0]
	}
	h := maphash.Bytes(c.seed, key)
	return c.shards[h>>(64-c.shardBits)]
}

func (c *shardedCache) Name() string { return c.name }

func (c *shardedCache) Insert(key []byte, value any, charge int64, pri Priority, deleter Deleter) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if charge < 0 {
		return &ConfigError{Option: "charge", Reason: "must be non-negative"}
	}
	return c.shardFor(key).insert(key, value, charge, pri, deleter)
}

func (c *shardedCache) Lookup(key []byte) (*Handle, bool) {
	if c.closed.Load() {
		return nil, false
	}
	return c.shardFor(key).lookup(key)
}

func (c *shardedCache) Erase(key []byte) {
	if c.closed.Load() {
		return
	}
	c.shardFor(key).erase(key)
}

func (c *shardedCache) SetCapacity(capacity int64) {
	if capacity < 0 {
		capacity = 0
	}
	per, rem := splitCapacity(capacity, len(c.shards))
	for i, s := range c.shards {
		if i == 0 {
			s.setCapacity(per + rem)
		} else {
			s.setCapacity(per)
		}
	}
}

func (c *shardedCache) Capacity() int64 {
	var total int64
	for _, s := range c.shards {
		total += s.capacitySnapshot()
	}
	return total
}

func (c *shardedCache) Usage() int64 {
	var total int64
	for _, s := range c.shards {
		total += s.usageSnapshot()
	}
	return total
}

func (c *shardedCache) PinnedUsage() int64 {
	var total int64
	for _, s := range c.shards {
		total += s.pinnedSnapshot()
	}
	return total
}

func (c *shardedCache) Stats() Stats {
	var st Stats
	for _, s := range c.shards {
		st.Hits += s.hits.Load()
		st.Misses += s.misses.Load()
		st.Inserts += s.inserts.Load()
		st.Evictions += s.evictions.Load()
	}
	return st
}

func (c *shardedCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	for _, s := range c.shards {
		s.purge()
	}
	return nil
}

// splitCapacity divides total capacity over n shards. The remainder goes to
// shard 0 so the shard capacities always sum to the configured total.
func splitCapacity(total int64, n int) (per, rem int64) {
	return total / int64(n), total % int64(n)
}

// Package cache provides a sharded, capacity-bounded key/value cache with
// pluggable eviction.
//
// # Architecture
//
//	┌─────────────────────────────────────────────┐
//	│                shardedCache                  │
//	│  hash(key) top bits select one of 2^n shards │
//	└───────┬──────────┬──────────┬───────────────┘
//	        │          │          │
//	   ┌────▼───┐ ┌────▼───┐ ┌────▼───┐
//	   │ shard 0│ │ shard 1│ │ shard n│   each: mutex + table + policy
//	   └────────┘ └────────┘ └────────┘
//
// Every shard owns an independent hash table and eviction structure behind
// its own mutex, so operations on different shards never contend. Keys are
// hashed with a per-cache maphash seed; the top bits of the hash select the
// shard.
//
// # Eviction
//
// Two policies are built in, selected at construction time:
//
//   - LRU: doubly-linked recency list with an optional high-priority pool.
//     Entries inserted with PriorityHigh, and entries that have seen a hit,
//     live in a protected segment sized by HighPriorityPoolRatio. When the
//     pool overflows, its oldest entry is demoted to the top of the low
//     priority segment rather than evicted.
//   - Clock: a ring swept by a hand. A lookup sets the entry's reference
//     bit; the sweep clears set bits and evicts the first unreferenced,
//     unpinned entry it finds.
//
// # Pinning
//
// Lookup returns a Handle that pins the entry: pinned entries are never
// evicted and their release callback is deferred until the final Release,
// even if the entry is erased or displaced by a re-insert in the meantime.
// Usage may therefore transiently exceed capacity while handles are
// outstanding.
//
// # Capacity
//
// Total capacity is split evenly across shards (the remainder goes to shard
// 0). With StrictCapacityLimit an insert that cannot fit, even after
// evicting every unpinned entry, fails with ErrCacheFull and leaves the
// shard untouched. Without it the insert proceeds and the cache overshoots
// until pressure releases.
package cache

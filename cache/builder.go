package cache

import (
	"hash/maphash"

	"github.com/hupe1980/lsmkit/resource"
)

const (
	// maxShardBits bounds explicit shard configuration; 2^20 shards is
	// already far past any useful contention win.
	maxShardBits = 20

	// autoShardBitsLimit caps the derived shard count at 64 shards.
	autoShardBitsLimit = 6

	// minShardSize is the smallest per-shard capacity the auto heuristic
	// will produce. Smaller shards evict too eagerly to be useful.
	minShardSize = 512 * 1024
)

type policyKind uint8

const (
	policyLRU policyKind = iota
	policyClock
)

// Builder configures and constructs a Cache.
//
// Builders are immutable: every method returns an updated copy, so a
// partially applied builder can be stored and reused safely.
//
//	c, err := cache.LRU(64 << 20).
//		NumShardBits(4).
//		StrictCapacityLimit(true).
//		HighPriorityPoolRatio(0.3).
//		Build()
type Builder struct {
	kind             policyKind
	capacity         int64
	numShardBits     int
	strict           bool
	highPriPoolRatio float64
	rc               *resource.Controller
}

// LRU starts a builder for a sharded LRU cache with the given total
// capacity in charge units.
func LRU(capacity int64) Builder {
	return Builder{kind: policyLRU, capacity: capacity, numShardBits: -1}
}

// Clock starts a builder for a sharded clock (second chance) cache with the
// given total capacity in charge units.
func Clock(capacity int64) Builder {
	return Builder{kind: policyClock, capacity: capacity, numShardBits: -1}
}

// NumShardBits fixes the shard count at 2^bits. Negative values restore the
// default heuristic: enough shards to keep each at minShardSize or more,
// capped at 64 shards.
func (b Builder) NumShardBits(bits int) Builder {
	b.numShardBits = bits
	return b
}

// StrictCapacityLimit makes Insert fail with ErrCacheFull instead of
// letting usage overshoot capacity.
func (b Builder) StrictCapacityLimit(strict bool) Builder {
	b.strict = strict
	return b
}

// HighPriorityPoolRatio reserves the given fraction of each shard's
// capacity for high-priority and previously hit entries. Only LRU caches
// support a pool.
func (b Builder) HighPriorityPoolRatio(ratio float64) Builder {
	b.highPriPoolRatio = ratio
	return b
}

// Resources attaches a shared budget controller. Every insert reserves its
// charge against the controller's memory limit and every free returns it,
// so multiple caches can share one bound.
func (b Builder) Resources(rc *resource.Controller) Builder {
	b.rc = rc
	return b
}

// Build validates the configuration and constructs the cache.
func (b Builder) Build() (Cache, error) {
	if b.capacity <= 0 {
		return nil, &ConfigError{Option: "Capacity", Reason: "must be positive"}
	}
	if b.numShardBits >= maxShardBits {
		return nil, &ConfigError{Option: "NumShardBits", Reason: "must be below 20"}
	}
	if b.highPriPoolRatio < 0 || b.highPriPoolRatio > 1 {
		return nil, &ConfigError{Option: "HighPriorityPoolRatio", Reason: "must be within [0.0, 1.0]"}
	}
	if b.kind == policyClock && b.highPriPoolRatio != 0 {
		return nil, &ConfigError{Option: "HighPriorityPoolRatio", Reason: "clock caches have no priority pool"}
	}

	bits := b.numShardBits
	if bits < 0 {
		bits = defaultShardBits(b.capacity)
	}

	n := 1 << bits
	per, rem := splitCapacity(b.capacity, n)

	c := &shardedCache{
		name:      "LRUCache",
		seed:      maphash.MakeSeed(),
		shardBits: uint(bits),
		shards:    make([]*shard, n),
	}
	if b.kind == policyClock {
		c.name = "ClockCache"
	}

	for i := range c.shards {
		shardCap := per
		if i == 0 {
			shardCap += rem
		}
		var pol policy
		switch b.kind {
		case policyClock:
			pol = newClockPolicy()
		default:
			pol = newLRUPolicy(shardCap, b.highPriPoolRatio)
		}
		c.shards[i] = newShard(shardCap, b.strict, pol, b.rc)
	}

	return c, nil
}

// defaultShardBits picks enough shard bits to keep every shard at
// minShardSize capacity or more, up to autoShardBitsLimit.
func defaultShardBits(capacity int64) int {
	numShards := capacity / minShardSize
	bits := 0
	for numShards >>= 1; numShards > 0; numShards >>= 1 {
		bits++
		if bits >= autoShardBitsLimit {
			return bits
		}
	}
	return bits
}

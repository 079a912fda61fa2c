package cache

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustLRU builds a single-shard LRU cache so eviction order is observable.
func mustLRU(t *testing.T, capacity int64, optFns ...func(Builder) Builder) Cache {
	t.Helper()

	b := LRU(capacity).NumShardBits(0)
	for _, fn := range optFns {
		b = fn(b)
	}
	c, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c
}

func has(c Cache, key string) bool {
	h, ok := c.Lookup([]byte(key))
	if ok {
		h.Release()
	}
	return ok
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := mustLRU(t, 2)

	require.NoError(t, c.Insert([]byte("a"), "va", 1, PriorityLow, nil))
	require.NoError(t, c.Insert([]byte("b"), "vb", 1, PriorityLow, nil))

	// Touch a so b becomes the eviction candidate.
	require.True(t, has(c, "a"))

	require.NoError(t, c.Insert([]byte("c"), "vc", 1, PriorityLow, nil))

	assert.True(t, has(c, "a"))
	assert.False(t, has(c, "b"))
	assert.True(t, has(c, "c"))
	assert.Equal(t, int64(2), c.Usage())
}

func TestLRU_UsageTracksCharges(t *testing.T) {
	c := mustLRU(t, 100)

	require.NoError(t, c.Insert([]byte("a"), nil, 10, PriorityLow, nil))
	require.NoError(t, c.Insert([]byte("b"), nil, 30, PriorityLow, nil))
	assert.Equal(t, int64(40), c.Usage())

	c.Erase([]byte("a"))
	assert.Equal(t, int64(30), c.Usage())

	// Zero-charge entries are legal and free.
	require.NoError(t, c.Insert([]byte("z"), nil, 0, PriorityLow, nil))
	assert.Equal(t, int64(30), c.Usage())
}

func TestLRU_ReplaceUpdatesValueAndCharge(t *testing.T) {
	c := mustLRU(t, 100)

	var deleted atomic.Int32
	deleter := func(key []byte, value any) { deleted.Add(1) }

	require.NoError(t, c.Insert([]byte("k"), "v1", 2, PriorityLow, deleter))
	require.NoError(t, c.Insert([]byte("k"), "v2", 5, PriorityLow, deleter))

	assert.Equal(t, int64(5), c.Usage())
	assert.Equal(t, int32(1), deleted.Load(), "displaced value freed exactly once")

	h, ok := c.Lookup([]byte("k"))
	require.True(t, ok)
	assert.Equal(t, "v2", h.Value())
	assert.Equal(t, int64(5), h.Charge())
	h.Release()
}

func TestLRU_HighPriorityPoolProtects(t *testing.T) {
	c := mustLRU(t, 10, func(b Builder) Builder {
		return b.HighPriorityPoolRatio(0.3)
	})

	for i := range 3 {
		key := fmt.Sprintf("p%d", i)
		require.NoError(t, c.Insert([]byte(key), nil, 1, PriorityHigh, nil))
	}
	for i := range 7 {
		key := fmt.Sprintf("x%d", i)
		require.NoError(t, c.Insert([]byte(key), nil, 1, PriorityLow, nil))
	}
	require.Equal(t, int64(10), c.Usage())

	// One more low-priority insert evicts the oldest low-priority entry,
	// never a pool resident.
	require.NoError(t, c.Insert([]byte("x7"), nil, 1, PriorityLow, nil))

	assert.False(t, has(c, "x0"))
	for i := range 3 {
		assert.True(t, has(c, fmt.Sprintf("p%d", i)), "pool entry p%d must survive", i)
	}
}

func TestLRU_PoolOverflowDemotesOldest(t *testing.T) {
	c := mustLRU(t, 10, func(b Builder) Builder {
		return b.HighPriorityPoolRatio(0.3)
	})

	// Pool capacity is 3; the fourth high-priority insert demotes p0 to the
	// top of the low-priority segment.
	for i := range 4 {
		require.NoError(t, c.Insert([]byte(fmt.Sprintf("p%d", i)), nil, 1, PriorityHigh, nil))
	}
	for i := range 6 {
		require.NoError(t, c.Insert([]byte(fmt.Sprintf("x%d", i)), nil, 1, PriorityLow, nil))
	}
	require.Equal(t, int64(10), c.Usage())

	// The demoted p0 is now the oldest low-priority entry.
	require.NoError(t, c.Insert([]byte("y"), nil, 1, PriorityLow, nil))

	assert.False(t, has(c, "p0"))
	assert.True(t, has(c, "p1"))
	assert.True(t, has(c, "p2"))
	assert.True(t, has(c, "p3"))
	assert.True(t, has(c, "x0"))
}

func TestLRU_HitPromotesIntoPool(t *testing.T) {
	c := mustLRU(t, 10, func(b Builder) Builder {
		return b.HighPriorityPoolRatio(0.3)
	})

	require.NoError(t, c.Insert([]byte("k"), nil, 1, PriorityLow, nil))
	require.True(t, has(c, "k"))

	// Flood with low-priority entries; the hit entry re-entered through the
	// pool and outlives the flood.
	for i := range 10 {
		require.NoError(t, c.Insert([]byte(fmt.Sprintf("x%d", i)), nil, 1, PriorityLow, nil))
	}

	assert.True(t, has(c, "k"))
	assert.False(t, has(c, "x0"))
}

func TestLRU_StrictCapacityLimit(t *testing.T) {
	c := mustLRU(t, 100, func(b Builder) Builder {
		return b.StrictCapacityLimit(true)
	})

	require.NoError(t, c.Insert([]byte("a"), nil, 60, PriorityLow, nil))
	require.NoError(t, c.Insert([]byte("b"), nil, 60, PriorityLow, nil))
	assert.False(t, has(c, "a"), "a evicted to admit b")

	// An entry larger than the whole shard can never be admitted.
	err := c.Insert([]byte("huge"), nil, 150, PriorityLow, nil)
	assert.ErrorIs(t, err, ErrCacheFull)
	assert.Equal(t, int64(60), c.Usage(), "failed insert must not disturb usage")
	assert.True(t, has(c, "b"), "failed insert must not evict")
}

func TestLRU_OversizedInsertWithoutStrictProceeds(t *testing.T) {
	c := mustLRU(t, 100)

	require.NoError(t, c.Insert([]byte("huge"), nil, 150, PriorityLow, nil))
	assert.Equal(t, int64(150), c.Usage())

	// The overshoot drains on the next insert.
	require.NoError(t, c.Insert([]byte("small"), nil, 10, PriorityLow, nil))
	assert.Equal(t, int64(10), c.Usage())
	assert.False(t, has(c, "huge"))
}

package cache

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lsmkit/resource"
)

func TestCache_LookupMissIsNotAnError(t *testing.T) {
	c := mustLRU(t, 100)

	h, ok := c.Lookup([]byte("absent"))
	assert.False(t, ok)
	assert.Nil(t, h)

	st := c.Stats()
	assert.Equal(t, int64(0), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
}

func TestCache_EraseIsIdempotent(t *testing.T) {
	c := mustLRU(t, 100)

	var deleted atomic.Int32
	require.NoError(t, c.Insert([]byte("k"), "v", 1, PriorityLow, func([]byte, any) {
		deleted.Add(1)
	}))

	c.Erase([]byte("k"))
	c.Erase([]byte("k"))
	c.Erase([]byte("never-existed"))

	assert.False(t, has(c, "k"))
	assert.Equal(t, int32(1), deleted.Load())
	assert.Zero(t, c.Usage())
}

func TestCache_NegativeChargeRejected(t *testing.T) {
	c := mustLRU(t, 100)

	err := c.Insert([]byte("k"), "v", -1, PriorityLow, nil)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Zero(t, c.Usage())
}

func TestCache_SetCapacity(t *testing.T) {
	c := mustLRU(t, 100)

	for i := range 10 {
		require.NoError(t, c.Insert([]byte(fmt.Sprintf("k%d", i)), nil, 10, PriorityLow, nil))
	}
	require.Equal(t, int64(100), c.Usage())

	c.SetCapacity(30)
	assert.Equal(t, int64(30), c.Capacity())
	assert.LessOrEqual(t, c.Usage(), int64(30))

	c.SetCapacity(200)
	assert.Equal(t, int64(200), c.Capacity())
	assert.LessOrEqual(t, c.Usage(), int64(30), "growing must not resurrect evicted entries")
}

func TestCache_SetCapacityWithPinnedEntries(t *testing.T) {
	c := mustLRU(t, 100)

	var deleted atomic.Int32
	require.NoError(t, c.Insert([]byte("k"), nil, 10, PriorityLow, func([]byte, any) {
		deleted.Add(1)
	}))

	h, ok := c.Lookup([]byte("k"))
	require.True(t, ok)

	// The pinned entry cannot be evicted yet.
	c.SetCapacity(5)
	assert.Equal(t, int64(5), c.Capacity())
	assert.Equal(t, int64(10), c.Usage())
	assert.Zero(t, deleted.Load())

	// Convergence happens as pins drain.
	h.Release()
	assert.Zero(t, c.Usage())
	assert.Equal(t, int32(1), deleted.Load())
}

func TestCache_CapacitySumsAcrossShards(t *testing.T) {
	c, err := LRU(103).NumShardBits(2).Build()
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, int64(103), c.Capacity())

	c.SetCapacity(41)
	assert.Equal(t, int64(41), c.Capacity())
}

func TestCache_ShardDistribution(t *testing.T) {
	c, err := LRU(1 << 30).NumShardBits(4).Build()
	require.NoError(t, err)
	defer c.Close()

	sc := c.(*shardedCache)
	require.Len(t, sc.shards, 16)

	for i := range 10000 {
		key := fmt.Sprintf("key-%06d", i)
		require.NoError(t, c.Insert([]byte(key), nil, 1, PriorityLow, nil))
	}

	// Top-bit sharding over a seeded hash spreads keys roughly evenly.
	for i, s := range sc.shards {
		s.mu.Lock()
		n := len(s.table)
		s.mu.Unlock()
		assert.Greater(t, n, 300, "shard %d starved: %d entries", i, n)
	}

	// Same key always routes to the same shard, so lookups succeed.
	for i := range 100 {
		assert.True(t, has(c, fmt.Sprintf("key-%06d", i)))
	}
}

func TestCache_StatsAggregation(t *testing.T) {
	c := mustLRU(t, 2)

	require.NoError(t, c.Insert([]byte("a"), nil, 1, PriorityLow, nil))
	require.NoError(t, c.Insert([]byte("b"), nil, 1, PriorityLow, nil))
	require.NoError(t, c.Insert([]byte("c"), nil, 1, PriorityLow, nil)) // evicts a

	has(c, "b") // hit
	has(c, "a") // miss

	st := c.Stats()
	assert.Equal(t, int64(3), st.Inserts)
	assert.Equal(t, int64(1), st.Evictions)
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.InDelta(t, 0.5, st.HitRate(), 1e-9)

	assert.Zero(t, Stats{}.HitRate())
}

func TestCache_CloseFreesEverything(t *testing.T) {
	c := mustLRU(t, 100)

	var deleted atomic.Int32
	deleter := func([]byte, any) { deleted.Add(1) }

	for i := range 5 {
		require.NoError(t, c.Insert([]byte(fmt.Sprintf("k%d", i)), nil, 1, PriorityLow, deleter))
	}

	require.NoError(t, c.Close())
	assert.Equal(t, int32(5), deleted.Load())
	assert.Zero(t, c.Usage())

	// Closed caches reject inserts and miss lookups; Close is idempotent.
	assert.ErrorIs(t, c.Insert([]byte("x"), nil, 1, PriorityLow, nil), ErrCacheClosed)
	_, ok := c.Lookup([]byte("k0"))
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}

func TestCache_CloseWithPinnedEntry(t *testing.T) {
	c := mustLRU(t, 100)

	var deleted atomic.Int32
	require.NoError(t, c.Insert([]byte("k"), "v", 1, PriorityLow, func([]byte, any) {
		deleted.Add(1)
	}))

	h, ok := c.Lookup([]byte("k"))
	require.True(t, ok)

	require.NoError(t, c.Close())
	assert.Zero(t, deleted.Load(), "pinned value outlives Close")
	assert.Equal(t, "v", h.Value())

	h.Release()
	assert.Equal(t, int32(1), deleted.Load())
}

func TestCache_SharedResourceBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})

	build := func() Cache {
		c, err := LRU(100).NumShardBits(0).Resources(rc).Build()
		require.NoError(t, err)
		return c
	}
	a := build()
	b := build()
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.Insert([]byte("big"), nil, 80, PriorityLow, nil))
	assert.Equal(t, int64(80), rc.MemoryUsage())

	// The second cache is empty but the shared budget is nearly spent.
	err := b.Insert([]byte("k"), nil, 50, PriorityLow, nil)
	assert.ErrorIs(t, err, ErrCacheFull)
	assert.Zero(t, b.Usage())

	a.Erase([]byte("big"))
	assert.Zero(t, rc.MemoryUsage())
	require.NoError(t, b.Insert([]byte("k"), nil, 50, PriorityLow, nil))
	assert.Equal(t, int64(50), rc.MemoryUsage())
}

package integration_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lsmkit/cache"
	"github.com/hupe1980/lsmkit/resource"
	"github.com/hupe1980/lsmkit/sstable"
	"github.com/hupe1980/lsmkit/testutil"
)

func TestSharedMemoryBudget(t *testing.T) {
	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 1000})

	// Two caches, each large enough on its own, draw from one budget.
	a, err := cache.LRU(10000).NumShardBits(0).Resources(ctrl).Build()
	require.NoError(t, err)
	defer a.Close()

	b, err := cache.LRU(10000).NumShardBits(0).Resources(ctrl).Build()
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Insert([]byte("a1"), "v", 600, cache.PriorityLow, nil))
	assert.Equal(t, int64(600), ctrl.MemoryUsage())

	// The second cache is empty but the shared budget is nearly spent.
	err = b.Insert([]byte("b1"), "v", 600, cache.PriorityLow, nil)
	assert.ErrorIs(t, err, cache.ErrCacheFull)
	assert.Zero(t, b.Usage())

	require.NoError(t, b.Insert([]byte("b2"), "v", 300, cache.PriorityLow, nil))
	assert.Equal(t, int64(900), ctrl.MemoryUsage())

	// Closing one cache frees its share for the other.
	require.NoError(t, a.Close())
	assert.Equal(t, int64(300), ctrl.MemoryUsage())

	require.NoError(t, b.Insert([]byte("b3"), "v", 600, cache.PriorityLow, nil))
	assert.Equal(t, int64(900), ctrl.MemoryUsage())
}

func TestBuildAndServeUnderOneController(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.sst")

	ctrl := resource.NewController(resource.Config{
		MemoryLimitBytes:   1 << 20,
		IOLimitBytesPerSec: 64 << 20,
	})

	// Build with IO pacing against the controller.
	keys := testutil.SortedKeys(2000, 12)
	values := testutil.NewRNG(9).CompressibleValues(2000, 100)

	w := sstable.NewWriter(sstable.WithResources(ctrl))
	require.NoError(t, w.Open(path))
	for i, key := range keys {
		require.NoError(t, w.Add(key, values[i]))
	}
	summary, err := w.Finish()
	require.NoError(t, err)

	// The finished writer holds no memory reservation.
	assert.Zero(t, ctrl.MemoryUsage())

	// Serve with a block cache charging the same controller.
	bc, err := cache.LRU(1 << 20).Resources(ctrl).Build()
	require.NoError(t, err)
	defer bc.Close()

	r, err := sstable.OpenReader(path, sstable.WithBlockCache(bc))
	require.NoError(t, err)
	defer r.Close()

	for i, key := range keys {
		got, ok, err := r.Get(key)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, values[i], got)
	}

	assert.Positive(t, ctrl.MemoryUsage(), "cached blocks must be reserved against the controller")
	assert.LessOrEqual(t, ctrl.MemoryUsage(), ctrl.MemoryLimit())
	assert.Equal(t, uint64(2000), summary.EntryCount)
}

func TestReadsSurviveExhaustedBudget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.sst")

	keys := testutil.SortedKeys(500, 12)
	w := sstable.NewWriter(sstable.WithBlockSize(512))
	require.NoError(t, w.Open(path))
	for _, key := range keys {
		require.NoError(t, w.Add(key, key))
	}
	_, err := w.Finish()
	require.NoError(t, err)

	// A budget too small for even one block: every admission is denied,
	// reads must still be answered from disk.
	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 16})
	bc, err := cache.LRU(1 << 20).Resources(ctrl).Build()
	require.NoError(t, err)
	defer bc.Close()

	r, err := sstable.OpenReader(path, sstable.WithBlockCache(bc))
	require.NoError(t, err)
	defer r.Close()

	for _, key := range keys {
		got, ok, err := r.Get(key)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, key, got)
	}

	assert.Zero(t, bc.Usage())
}

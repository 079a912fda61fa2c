package integration_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/lsmkit/cache"
	"github.com/hupe1980/lsmkit/sstable"
	"github.com/hupe1980/lsmkit/testutil"
)

func TestE2E_BuildThenServe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.sst")

	// 1. Build
	keys := testutil.SortedKeys(5000, 16)
	values := testutil.NewRNG(1).Values(5000, 128)

	w := sstable.NewWriter(sstable.WithCompression(sstable.CompressionLZ4))
	require.NoError(t, w.Open(path))
	for i, key := range keys {
		require.NoError(t, w.Add(key, values[i]))
	}
	summary, err := w.Finish()
	require.NoError(t, err)
	require.Equal(t, uint64(5000), summary.EntryCount)

	// 2. Reopen and serve concurrent reads through a shared block cache
	bc, err := cache.LRU(8 << 20).Build()
	require.NoError(t, err)
	defer bc.Close()

	r, err := sstable.OpenReader(path, sstable.WithBlockCache(bc))
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, summary, r.Summary())

	var g errgroup.Group
	for worker := range 8 {
		g.Go(func() error {
			for i := worker; i < len(keys); i += 8 {
				got, ok, err := r.Get(keys[i])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("key %q missing", keys[i])
				}
				if string(got) != string(values[i]) {
					return fmt.Errorf("key %q: wrong value", keys[i])
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	stats := bc.Stats()
	require.Positive(t, stats.Inserts, "reads must populate the block cache")
}

func TestE2E_CacheServesAcrossTables(t *testing.T) {
	dir := t.TempDir()

	bc, err := cache.LRU(8 << 20).Build()
	require.NoError(t, err)
	defer bc.Close()

	// Two tables with overlapping key ranges share one block cache.
	keys := testutil.SortedKeys(1000, 12)
	readers := make([]*sstable.Reader, 2)
	for i := range readers {
		path := filepath.Join(dir, fmt.Sprintf("%d.sst", i))

		w := sstable.NewWriter()
		require.NoError(t, w.Open(path))
		for _, key := range keys {
			require.NoError(t, w.Add(key, append([]byte{byte(i)}, key...)))
		}
		_, err := w.Finish()
		require.NoError(t, err)

		readers[i], err = sstable.OpenReader(path, sstable.WithBlockCache(bc))
		require.NoError(t, err)
		defer readers[i].Close()
	}

	// Both tables answer from their own blocks despite identical offsets.
	for i, r := range readers {
		got, ok, err := r.Get(keys[42])
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, byte(i), got[0])
	}
}

func TestE2E_ConcurrentScansAndLookups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.sst")

	keys := testutil.SortedKeys(2000, 12)
	w := sstable.NewWriter(sstable.WithBlockSize(512))
	require.NoError(t, w.Open(path))
	for i, key := range keys {
		require.NoError(t, w.Add(key, []byte(fmt.Sprintf("value-%d", i))))
	}
	_, err := w.Finish()
	require.NoError(t, err)

	bc, err := cache.Clock(4 << 20).Build()
	require.NoError(t, err)
	defer bc.Close()

	r, err := sstable.OpenReader(path, sstable.WithBlockCache(bc))
	require.NoError(t, err)
	defer r.Close()

	var g errgroup.Group
	for range 4 {
		g.Go(func() error {
			it := r.NewIterator()
			n := 0
			for it.Next() {
				n++
			}
			if err := it.Err(); err != nil {
				return err
			}
			if n != len(keys) {
				return fmt.Errorf("scanned %d records, want %d", n, len(keys))
			}
			return nil
		})
	}
	for range 4 {
		g.Go(func() error {
			rng := testutil.NewRNG(7)
			for range 1000 {
				key := keys[rng.Intn(len(keys))]
				if _, ok, err := r.Get(key); err != nil {
					return err
				} else if !ok {
					return fmt.Errorf("key %q missing", key)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestE2E_VerifyAfterBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.sst")

	keys := testutil.SortedKeys(3000, 12)
	values := testutil.NewRNG(3).CompressibleValues(3000, 200)

	w := sstable.NewWriter(sstable.WithCompression(sstable.CompressionZSTD), sstable.WithBlockSize(1024))
	require.NoError(t, w.Open(path))
	for i, key := range keys {
		require.NoError(t, w.Add(key, values[i]))
	}
	_, err := w.Finish()
	require.NoError(t, err)

	r, err := sstable.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.VerifyChecksums())
}

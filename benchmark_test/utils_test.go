package benchmark_test

import (
	"path/filepath"
	"testing"

	"github.com/hupe1980/lsmkit/sstable"
	"github.com/hupe1980/lsmkit/testutil"
)

const (
	benchKeyWidth  = 16
	benchValueSize = 256
)

// buildBenchTable writes a table with n compressible records and returns its
// path together with the keys it holds.
func buildBenchTable(b *testing.B, n int, optFns ...func(*sstable.WriterOptions)) (string, [][]byte) {
	b.Helper()

	path := filepath.Join(b.TempDir(), "bench.sst")
	keys := testutil.SortedKeys(n, benchKeyWidth)
	values := testutil.NewRNG(1).CompressibleValues(n, benchValueSize)

	w := sstable.NewWriter(optFns...)
	if err := w.Open(path); err != nil {
		b.Fatal(err)
	}
	for i, key := range keys {
		if err := w.Add(key, values[i]); err != nil {
			b.Fatal(err)
		}
	}
	if _, err := w.Finish(); err != nil {
		b.Fatal(err)
	}
	return path, keys
}

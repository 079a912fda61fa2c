// Package sstable writes and reads immutable, sorted, range-indexed table
// files for bulk ingestion into an LSM storage engine.
//
// # Writing
//
// A Writer consumes keys in strictly increasing comparator order and is
// single-use:
//
//	w := sstable.NewWriter(
//		sstable.WithCompression(sstable.CompressionZSTD),
//	)
//	if err := w.Open("ingest-000001.sst"); err != nil { ... }
//	for _, kv := range sorted {
//		if err := w.Add(kv.Key, kv.Value); err != nil { ... }
//	}
//	summary, err := w.Finish()
//
// Every record is stamped with sequence number zero: the file carries no
// write order of its own, the ingesting engine assigns one. Any IO failure
// or ordering violation moves the writer to a terminal failed state and
// every later call returns the first error. A failed build leaves its
// partial file at the caller's path to inspect or delete; a build that
// died before the footer hit the disk has no valid footer and is rejected
// by every reader, so it is never addressable as a finished table.
//
// # On-disk layout
//
//	┌─────────────────────┐
//	│ data block 0        │  records: uvarint klen|vlen|seqno, key, value
//	│ data block …        │
//	├─────────────────────┤
//	│ index block         │  last key → block handle, one per data block
//	├─────────────────────┤
//	│ properties block    │  comparator, compression, counts, key bounds
//	├─────────────────────┤
//	│ footer (48 bytes)   │  handles, version, checksum, magic
//	└─────────────────────┘
//
// Every block ends in a one-byte compression tag and a masked CRC32C over
// payload and tag. Data blocks are optionally LZ4- or ZSTD-compressed per
// block; blocks that do not shrink are stored raw under the none tag.
//
// # Reading
//
// A Reader validates footer, index and properties up front, then serves
// point lookups and ordered scans. Uncompressed data blocks can be cached
// in a cache.Cache shared across tables:
//
//	r, err := sstable.OpenReader("ingest-000001.sst",
//		sstable.WithBlockCache(blockCache),
//	)
//	value, ok, err := r.Get([]byte("user:42"))
//
// The comparator name is persisted in the table and checked on open, so a
// table can never silently be read under the wrong ordering.
package sstable

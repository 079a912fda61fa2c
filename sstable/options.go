package sstable

import (
	"log/slog"

	"github.com/hupe1980/lsmkit/cache"
	"github.com/hupe1980/lsmkit/comparator"
	"github.com/hupe1980/lsmkit/internal/fs"
	"github.com/hupe1980/lsmkit/resource"
)

// DefaultBlockSize is the uncompressed data block size threshold. Blocks
// are cut at the first record that reaches it.
const DefaultBlockSize = 4 * 1024

// WriterOptions configures a Writer.
type WriterOptions struct {
	// Comparator defines the required key ordering. Defaults to
	// comparator.Bytewise. Its name is persisted in the table properties
	// and enforced on read.
	Comparator comparator.Comparator

	// Compression selects the per-block compression. Defaults to
	// CompressionNone. Incompressible blocks are stored raw regardless.
	Compression CompressionType

	// BlockSize is the uncompressed size at which data blocks are cut.
	// Defaults to DefaultBlockSize.
	BlockSize int

	// FS is the file system the table is written to. Defaults to the
	// local file system. Tests inject fault-injecting implementations.
	FS fs.FileSystem

	// Logger receives lifecycle events (opened, finished, failed). The
	// per-record path never logs. Defaults to a discard logger.
	Logger *slog.Logger

	// Resources, when set, paces block flushes against the controller's
	// IO budget.
	Resources *resource.Controller

	// InvalidatePageCache drops the written ranges from the OS page cache
	// after Finish. Bulk-built files are typically ingested and re-read
	// through a block cache, so keeping them in the page cache twice just
	// evicts hotter data. No-op on platforms without fadvise.
	InvalidatePageCache bool
}

// WithComparator sets the key ordering for a Writer or Reader.
func WithComparator(cmp comparator.Comparator) func(*WriterOptions) {
	return func(o *WriterOptions) {
		o.Comparator = cmp
	}
}

// WithCompression sets the block compression type.
func WithCompression(ctype CompressionType) func(*WriterOptions) {
	return func(o *WriterOptions) {
		o.Compression = ctype
	}
}

// WithBlockSize sets the uncompressed data block size threshold.
func WithBlockSize(size int) func(*WriterOptions) {
	return func(o *WriterOptions) {
		o.BlockSize = size
	}
}

// WithFS sets the file system implementation.
func WithFS(fsys fs.FileSystem) func(*WriterOptions) {
	return func(o *WriterOptions) {
		o.FS = fsys
	}
}

// WithLogger sets the logger for writer lifecycle events.
func WithLogger(l *slog.Logger) func(*WriterOptions) {
	return func(o *WriterOptions) {
		o.Logger = l
	}
}

// WithResources attaches a shared resource controller for IO pacing.
func WithResources(rc *resource.Controller) func(*WriterOptions) {
	return func(o *WriterOptions) {
		o.Resources = rc
	}
}

// WithInvalidatePageCache controls page cache invalidation at Finish.
func WithInvalidatePageCache(invalidate bool) func(*WriterOptions) {
	return func(o *WriterOptions) {
		o.InvalidatePageCache = invalidate
	}
}

func defaultWriterOptions() WriterOptions {
	return WriterOptions{
		Comparator:  comparator.Bytewise,
		Compression: CompressionNone,
		BlockSize:   DefaultBlockSize,
		FS:          fs.Default,
		Logger:      slog.New(slog.DiscardHandler),
	}
}

// ReaderOptions configures a Reader.
type ReaderOptions struct {
	// Comparator must match the ordering the table was written under.
	// Defaults to comparator.Bytewise. OpenReader fails with
	// ErrComparatorMismatch when the table properties disagree.
	Comparator comparator.Comparator

	// FS is the file system the table is read from. Defaults to the local
	// file system.
	FS fs.FileSystem

	// Logger receives open/close events. Defaults to a discard logger.
	Logger *slog.Logger

	// BlockCache, when set, caches uncompressed data blocks keyed by file
	// path and block offset. Entries are charged by payload size.
	BlockCache cache.Cache

	// VerifyChecksums controls per-block checksum verification on read.
	// Defaults to true; the footer and metadata blocks are always
	// verified.
	VerifyChecksums bool

	// DisableMmap forces pread access even where memory mapping is
	// available.
	DisableMmap bool
}

// WithReaderComparator sets the expected key ordering.
func WithReaderComparator(cmp comparator.Comparator) func(*ReaderOptions) {
	return func(o *ReaderOptions) {
		o.Comparator = cmp
	}
}

// WithReaderFS sets the file system implementation.
func WithReaderFS(fsys fs.FileSystem) func(*ReaderOptions) {
	return func(o *ReaderOptions) {
		o.FS = fsys
	}
}

// WithReaderLogger sets the logger for reader lifecycle events.
func WithReaderLogger(l *slog.Logger) func(*ReaderOptions) {
	return func(o *ReaderOptions) {
		o.Logger = l
	}
}

// WithBlockCache caches uncompressed data blocks in c across reads.
func WithBlockCache(c cache.Cache) func(*ReaderOptions) {
	return func(o *ReaderOptions) {
		o.BlockCache = c
	}
}

// WithVerifyChecksums toggles per-block checksum verification.
func WithVerifyChecksums(verify bool) func(*ReaderOptions) {
	return func(o *ReaderOptions) {
		o.VerifyChecksums = verify
	}
}

// WithDisableMmap forces pread access for block reads.
func WithDisableMmap(disable bool) func(*ReaderOptions) {
	return func(o *ReaderOptions) {
		o.DisableMmap = disable
	}
}

func defaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		Comparator:      comparator.Bytewise,
		FS:              fs.Default,
		Logger:          slog.New(slog.DiscardHandler),
		VerifyChecksums: true,
	}
}

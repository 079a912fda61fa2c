package sstable

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"sync/atomic"

	"github.com/hupe1980/lsmkit/cache"
	"github.com/hupe1980/lsmkit/internal/fs"
	"github.com/hupe1980/lsmkit/internal/hash"
	"github.com/hupe1980/lsmkit/internal/mmap"
)

// Reader provides random access to a finished table file.
//
// OpenReader validates the footer, index and properties before returning,
// so a Reader only ever exists for structurally sound tables; partial
// files left behind by failed writers are rejected. Readers are safe for
// concurrent use. Close must not race in-flight reads.
type Reader struct {
	opts ReaderOptions

	path string
	file fs.File
	mm   *mmap.Mapping
	size int64

	index   []indexEntry
	props   properties
	summary FileSummary

	cachePrefix []byte
	closed      atomic.Bool
}

// OpenReader opens the table file at path and loads its metadata.
func OpenReader(path string, optFns ...func(*ReaderOptions)) (*Reader, error) {
	opts := defaultReaderOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	f, err := opts.FS.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open table file: %w", err)
	}

	r, err := newReader(path, f, opts)
	if err != nil {
		_ = f.Close()
		opts.Logger.Error("table open failed", "path", path, "error", err)
		return nil, err
	}

	opts.Logger.Debug("table opened",
		"path", path,
		"entries", r.summary.EntryCount,
		"blocks", len(r.index),
		"mmap", r.mm != nil,
	)
	return r, nil
}

func newReader(path string, f fs.File, opts ReaderOptions) (*Reader, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat table file: %w", err)
	}
	size := st.Size()
	if size < footerSize {
		return nil, fmt.Errorf("file is %d bytes, smaller than a footer: %w", size, ErrInvalidTable)
	}

	r := &Reader{
		opts:        opts,
		path:        path,
		file:        f,
		size:        size,
		cachePrefix: append([]byte(path), '#'),
	}

	// Mapping is best effort: without a real descriptor, or on platforms
	// without mmap, block reads fall back to ReadAt.
	if !opts.DisableMmap {
		if fd, ok := f.(interface{ Fd() uintptr }); ok {
			if m, err := mmap.Map(fd.Fd(), size); err == nil {
				_ = m.Advise(mmap.AccessRandom)
				r.mm = m
			}
		}
	}

	ftrBuf := make([]byte, footerSize)
	if err := r.readAt(ftrBuf, size-footerSize); err != nil {
		r.unmap()
		return nil, fmt.Errorf("failed to read footer: %w", err)
	}
	ftr, err := decodeFooter(ftrBuf)
	if err != nil {
		r.unmap()
		return nil, err
	}

	indexPayload, err := r.readBlock(ftr.indexHandle, true)
	if err != nil {
		r.unmap()
		return nil, fmt.Errorf("failed to read index block: %w", err)
	}
	r.index, err = parseIndexBlock(indexPayload)
	if err != nil {
		r.unmap()
		return nil, err
	}

	propsPayload, err := r.readBlock(ftr.propsHandle, true)
	if err != nil {
		r.unmap()
		return nil, fmt.Errorf("failed to read properties block: %w", err)
	}
	r.props, err = parsePropertiesBlock(propsPayload)
	if err != nil {
		r.unmap()
		return nil, err
	}

	if name := string(r.props[propComparator]); name != opts.Comparator.Name() {
		r.unmap()
		return nil, &ErrComparatorMismatch{FileComparator: name, ReaderComparator: opts.Comparator.Name()}
	}
	// Blocks carry their own compression tag, but an unknown algorithm in
	// the properties means no block of this file can be decompressed here.
	if name := string(r.props[propCompression]); name != "" {
		if _, known := compressionByName(name); !known {
			r.unmap()
			return nil, fmt.Errorf("table compressed with unknown algorithm %q: %w", name, ErrInvalidTable)
		}
	}

	entries, err := r.props.uintValue(propNumEntries)
	if err != nil {
		r.unmap()
		return nil, err
	}
	seqno, err := r.props.uintValue(propGlobalSeqno)
	if err != nil {
		r.unmap()
		return nil, err
	}

	r.summary = FileSummary{
		Path:           path,
		SmallestKey:    r.props[propSmallestKey],
		LargestKey:     r.props[propLargestKey],
		EntryCount:     entries,
		FileSize:       size,
		SequenceNumber: seqno,
		FormatVersion:  ftr.version,
	}
	return r, nil
}

// Summary returns the table metadata recorded at write time.
func (r *Reader) Summary() FileSummary { return r.summary }

// Path returns the file path the reader was opened with.
func (r *Reader) Path() string { return r.path }

// Properties returns the raw properties block entries. The returned map is
// shared; callers must not mutate it.
func (r *Reader) Properties() map[string][]byte { return r.props }

// Get returns the value stored for key. The boolean is false when the key
// is not in the table; an error means the lookup could not be carried out.
// The returned slice must be treated as read-only.
func (r *Reader) Get(key []byte) ([]byte, bool, error) {
	if r.closed.Load() {
		return nil, false, ErrReaderClosed
	}

	cmp := r.opts.Comparator
	// First block whose last key is >= key; later blocks cannot hold it.
	i := sort.Search(len(r.index), func(i int) bool {
		return cmp.Compare(r.index[i].lastKey, key) >= 0
	})
	if i == len(r.index) {
		return nil, false, nil
	}

	payload, err := r.dataBlock(r.index[i].handle)
	if err != nil {
		return nil, false, err
	}

	for off := 0; off < len(payload); {
		rkey, rvalue, _, next, err := decodeRecord(payload, off)
		if err != nil {
			return nil, false, err
		}
		switch c := cmp.Compare(rkey, key); {
		case c == 0:
			return rvalue, true, nil
		case c > 0:
			return nil, false, nil
		}
		off = next
	}
	return nil, false, nil
}

// VerifyChecksums re-reads every data block with checksum verification
// forced on and checks record ordering within and across blocks against
// the index. It returns the first problem found.
func (r *Reader) VerifyChecksums() error {
	if r.closed.Load() {
		return ErrReaderClosed
	}

	cmp := r.opts.Comparator
	var prevKey []byte
	var entries uint64

	for bi, ent := range r.index {
		payload, err := r.readBlock(ent.handle, true)
		if err != nil {
			return fmt.Errorf("data block %d: %w", bi, err)
		}
		var lastKey []byte
		for off := 0; off < len(payload); {
			key, _, seqno, next, err := decodeRecord(payload, off)
			if err != nil {
				return fmt.Errorf("data block %d: %w", bi, err)
			}
			if seqno != writerSeqno {
				return fmt.Errorf("data block %d: record seqno %d: %w", bi, seqno, ErrCorruptBlock)
			}
			if prevKey != nil && cmp.Compare(key, prevKey) <= 0 {
				return fmt.Errorf("data block %d: key %q not above %q: %w", bi, key, prevKey, ErrCorruptBlock)
			}
			prevKey = key
			lastKey = key
			entries++
			off = next
		}
		if lastKey == nil {
			return fmt.Errorf("data block %d is empty: %w", bi, ErrCorruptBlock)
		}
		if cmp.Compare(lastKey, ent.lastKey) != 0 {
			return fmt.Errorf("data block %d ends at %q, index says %q: %w", bi, lastKey, ent.lastKey, ErrCorruptBlock)
		}
	}

	if entries != r.summary.EntryCount {
		return fmt.Errorf("table holds %d entries, properties say %d: %w", entries, r.summary.EntryCount, ErrCorruptBlock)
	}
	return nil
}

// Close releases the mapping and the underlying file. It is idempotent.
func (r *Reader) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	r.unmap()
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("failed to close table file: %w", err)
	}
	return nil
}

func (r *Reader) unmap() {
	if r.mm != nil {
		_ = r.mm.Close()
		r.mm = nil
	}
}

func (r *Reader) readAt(p []byte, off int64) error {
	if r.mm != nil {
		_, err := r.mm.ReadAt(p, off)
		return err
	}
	_, err := r.file.ReadAt(p, off)
	return err
}

// readBlock fetches, verifies and decompresses the block at handle. The
// returned payload is always a private heap slice.
func (r *Reader) readBlock(handle blockHandle, verify bool) ([]byte, error) {
	end := handle.Offset + handle.Size + blockTrailerSize
	if end > uint64(r.size) || end < handle.Offset {
		return nil, fmt.Errorf("block [%d,%d) outside file: %w", handle.Offset, end, ErrCorruptBlock)
	}

	raw := make([]byte, handle.Size+blockTrailerSize)
	if err := r.readAt(raw, int64(handle.Offset)); err != nil {
		return nil, fmt.Errorf("failed to read block at %d: %w", handle.Offset, err)
	}

	tag := CompressionType(raw[handle.Size])
	if verify {
		stored := binary.LittleEndian.Uint32(raw[handle.Size+1:])
		if computed := hash.Mask(hash.CRC32C(raw[:handle.Size+1])); stored != computed {
			return nil, fmt.Errorf("block at %d: stored %#x, computed %#x: %w", handle.Offset, stored, computed, ErrChecksumMismatch)
		}
	}
	return decompressBlock(raw[:handle.Size], tag)
}

// dataBlock returns the uncompressed payload for a data block, serving it
// from the block cache when one is configured.
func (r *Reader) dataBlock(handle blockHandle) ([]byte, error) {
	bc := r.opts.BlockCache
	if bc == nil {
		return r.readBlock(handle, r.opts.VerifyChecksums)
	}

	key := r.blockCacheKey(handle.Offset)
	if h, ok := bc.Lookup(key); ok {
		payload := h.Value().([]byte)
		h.Release()
		return payload, nil
	}

	payload, err := r.readBlock(handle, r.opts.VerifyChecksums)
	if err != nil {
		return nil, err
	}
	// A full cache is a cache problem, not a read failure.
	_ = bc.Insert(key, payload, int64(len(payload)), cache.PriorityLow, nil)
	return payload, nil
}

func (r *Reader) blockCacheKey(offset uint64) []byte {
	key := make([]byte, len(r.cachePrefix), len(r.cachePrefix)+binary.MaxVarintLen64)
	copy(key, r.cachePrefix)
	return binary.AppendUvarint(key, offset)
}

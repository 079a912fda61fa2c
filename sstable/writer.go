package sstable

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/hupe1980/lsmkit/internal/fs"
	"github.com/hupe1980/lsmkit/internal/hash"
	"github.com/hupe1980/lsmkit/resource"
)

// writerState tracks the writer's single-use lifecycle. Failed is terminal:
// every entry point short-circuits to the first error until the writer is
// discarded.
type writerState uint8

const (
	stateNew writerState = iota
	stateWriting
	stateFinished
	stateFailed
)

// Writer serializes a strictly increasing key/value stream into an
// immutable, range-indexed table file.
//
// A Writer is single-use: Open once, Add keys in ascending comparator
// order, Finish once. Any IO failure or ordering violation is terminal.
// Writers are not safe for concurrent use; callers needing parallelism
// shard by file, not by writer. The progress accessors FileSize and
// EntryCount are the exception and may be read from other goroutines.
type Writer struct {
	opts WriterOptions

	state writerState
	err   error

	path string
	file fs.File
	bw   *bufio.Writer

	// offset counts every byte handed to the output stream, buffered or
	// not, so FileSize is exact without flushing.
	offset atomic.Int64

	block blockBuilder
	index indexBuilder

	firstKey   []byte
	lastKey    []byte
	entryCount atomic.Uint64
	rawKeySize uint64
	rawValSize uint64
}

// NewWriter creates a table writer. The writer owns no file until Open.
func NewWriter(optFns ...func(*WriterOptions)) *Writer {
	opts := defaultWriterOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}
	return &Writer{opts: opts}
}

// Open creates the table file at path for exclusive sequential writing.
// It fails if the path already exists.
func (w *Writer) Open(path string) error {
	switch w.state {
	case stateFailed:
		return w.err
	case stateWriting:
		return ErrWriterOpen
	case stateFinished:
		return ErrWriterFinished
	}

	f, err := w.opts.FS.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return w.fail(fmt.Errorf("failed to create table file: %w", err))
	}

	w.path = path
	w.file = f
	w.bw = bufio.NewWriter(resource.NewPacedWriter(context.Background(), f, w.opts.Resources))
	w.state = stateWriting

	w.opts.Logger.Debug("table opened for writing",
		"path", path,
		"compression", w.opts.Compression.String(),
		"block_size", w.opts.BlockSize,
	)
	return nil
}

// Add appends one key/value record. The key must compare strictly greater
// than the previously added key under the configured comparator; a
// violation fails with ErrOutOfOrder and poisons the writer.
func (w *Writer) Add(key, value []byte) error {
	switch w.state {
	case stateFailed:
		return w.err
	case stateNew:
		return ErrWriterNotOpen
	case stateFinished:
		return ErrWriterFinished
	}

	if w.entryCount.Load() > 0 && w.opts.Comparator.Compare(key, w.lastKey) <= 0 {
		return w.fail(fmt.Errorf("key %q does not sort after %q: %w", key, w.lastKey, ErrOutOfOrder))
	}

	w.block.add(key, value)

	if w.entryCount.Load() == 0 {
		w.firstKey = append([]byte(nil), key...)
	}
	w.lastKey = append(w.lastKey[:0], key...)
	w.entryCount.Add(1)
	w.rawKeySize += uint64(len(key))
	w.rawValSize += uint64(len(value))

	if w.block.size() >= w.opts.BlockSize {
		if err := w.flushBlock(); err != nil {
			return w.fail(err)
		}
	}
	return nil
}

// Finish flushes all pending data, writes the index, properties and footer,
// syncs and closes the file, and returns the summary of what was written.
// Finishing with zero entries fails with ErrEmptyFile; the summary is
// produced only on success.
func (w *Writer) Finish() (FileSummary, error) {
	switch w.state {
	case stateFailed:
		return FileSummary{}, w.err
	case stateNew:
		return FileSummary{}, ErrWriterNotOpen
	case stateFinished:
		return FileSummary{}, ErrWriterFinished
	}

	if w.entryCount.Load() == 0 {
		return FileSummary{}, w.fail(ErrEmptyFile)
	}

	if !w.block.empty() {
		if err := w.flushBlock(); err != nil {
			return FileSummary{}, w.fail(err)
		}
	}

	indexHandle, err := w.writeBlock(w.index.finish(), CompressionNone)
	if err != nil {
		return FileSummary{}, w.fail(fmt.Errorf("failed to write index block: %w", err))
	}
	propsHandle, err := w.writeBlock(w.buildProperties().encode(), CompressionNone)
	if err != nil {
		return FileSummary{}, w.fail(fmt.Errorf("failed to write properties block: %w", err))
	}

	ftr := footer{indexHandle: indexHandle, propsHandle: propsHandle, version: FormatVersion}
	if _, err := w.bw.Write(ftr.encode()); err != nil {
		return FileSummary{}, w.fail(fmt.Errorf("failed to write footer: %w", err))
	}
	w.offset.Add(footerSize)

	if err := w.bw.Flush(); err != nil {
		return FileSummary{}, w.fail(fmt.Errorf("failed to flush table file: %w", err))
	}
	if err := w.file.Sync(); err != nil {
		return FileSummary{}, w.fail(fmt.Errorf("failed to sync table file: %w", err))
	}
	if w.opts.InvalidatePageCache {
		// Advisory only; a cold page cache is never worth failing a build.
		dropPageCache(w.file, w.offset.Load())
	}
	if err := w.file.Close(); err != nil {
		w.file = nil
		return FileSummary{}, w.fail(fmt.Errorf("failed to close table file: %w", err))
	}
	w.file = nil
	w.state = stateFinished

	summary := FileSummary{
		Path:           w.path,
		SmallestKey:    w.firstKey,
		LargestKey:     append([]byte(nil), w.lastKey...),
		EntryCount:     w.entryCount.Load(),
		FileSize:       w.offset.Load(),
		SequenceNumber: writerSeqno,
		FormatVersion:  FormatVersion,
	}

	w.opts.Logger.Info("table finished",
		"path", w.path,
		"entries", summary.EntryCount,
		"size", summary.FileSize,
		"blocks", w.index.blocks,
	)
	return summary, nil
}

// FileSize returns the number of bytes emitted so far, including data still
// sitting in the write buffer.
func (w *Writer) FileSize() int64 { return w.offset.Load() }

// EntryCount returns the number of records added so far.
func (w *Writer) EntryCount() uint64 { return w.entryCount.Load() }

// Path returns the file path passed to Open, or "" before Open.
func (w *Writer) Path() string { return w.path }

// flushBlock compresses and writes the current data block and records its
// index entry under the block's last key.
func (w *Writer) flushBlock() error {
	handle, err := w.writeBlock(w.block.buf, w.opts.Compression)
	if err != nil {
		return fmt.Errorf("failed to write data block: %w", err)
	}
	w.index.add(w.lastKey, handle)
	w.block.reset()
	return nil
}

// writeBlock writes one block payload plus its trailer and returns the
// handle locating the on-disk payload.
func (w *Writer) writeBlock(payload []byte, ctype CompressionType) (blockHandle, error) {
	onDisk, tag, err := compressBlock(payload, ctype)
	if err != nil {
		return blockHandle{}, err
	}

	crc := hash.NewCRC32C()
	crc.Write(onDisk)
	crc.Write([]byte{byte(tag)})

	var trailer [blockTrailerSize]byte
	trailer[0] = byte(tag)
	binary.LittleEndian.PutUint32(trailer[1:], hash.Mask(crc.Sum32()))

	handle := blockHandle{Offset: uint64(w.offset.Load()), Size: uint64(len(onDisk))}
	if _, err := w.bw.Write(onDisk); err != nil {
		return blockHandle{}, err
	}
	if _, err := w.bw.Write(trailer[:]); err != nil {
		return blockHandle{}, err
	}
	w.offset.Add(int64(len(onDisk)) + blockTrailerSize)
	return handle, nil
}

func (w *Writer) buildProperties() properties {
	props := properties{
		propComparator:  []byte(w.opts.Comparator.Name()),
		propCompression: []byte(w.opts.Compression.String()),
		propSmallestKey: w.firstKey,
		propLargestKey:  w.lastKey,
	}
	props.setUint(propNumEntries, w.entryCount.Load())
	props.setUint(propNumDataBlocks, uint64(w.index.blocks))
	props.setUint(propRawKeySize, w.rawKeySize)
	props.setUint(propRawValueSize, w.rawValSize)
	props.setUint(propGlobalSeqno, writerSeqno)
	return props
}

// fail records the first error, closes the file if one is open and moves
// the writer to its terminal state. The partial output stays on disk; it
// has no footer, so no reader will accept it as a finished table.
func (w *Writer) fail(err error) error {
	w.state = stateFailed
	w.err = err
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
	w.opts.Logger.Error("table build failed",
		"path", w.path,
		"entries", w.entryCount.Load(),
		"error", err,
	)
	return err
}

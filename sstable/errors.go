package sstable

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfOrder is returned by Add when a key does not compare
	// strictly greater than the previously added key. The violation is
	// terminal: the writer moves to its failed state.
	ErrOutOfOrder = errors.New("sstable: keys must be added in strictly increasing order")

	// ErrEmptyFile is returned by Finish when no entries were added. An
	// empty table carries no key range and cannot be ingested, so it is
	// rejected rather than written.
	ErrEmptyFile = errors.New("sstable: no entries added")

	// ErrWriterNotOpen is returned by Add and Finish before a successful
	// Open.
	ErrWriterNotOpen = errors.New("sstable: writer not open")

	// ErrWriterOpen is returned by Open on a writer that is already open.
	ErrWriterOpen = errors.New("sstable: writer already open")

	// ErrWriterFinished is returned by Open, Add and Finish after a
	// successful Finish. Writers are single-use.
	ErrWriterFinished = errors.New("sstable: writer already finished")

	// ErrInvalidTable is returned by OpenReader for files that are not
	// lsmkit tables: too small, wrong magic, or a mangled footer.
	ErrInvalidTable = errors.New("sstable: not a valid table file")

	// ErrUnsupportedVersion is returned by OpenReader for tables written
	// with a format version this package does not read.
	ErrUnsupportedVersion = errors.New("sstable: unsupported format version")

	// ErrChecksumMismatch is returned when a block or footer checksum does
	// not match its content.
	ErrChecksumMismatch = errors.New("sstable: checksum mismatch")

	// ErrCorruptBlock is returned when a block payload cannot be parsed.
	ErrCorruptBlock = errors.New("sstable: corrupt block")

	// ErrReaderClosed is returned by reader operations after Close.
	ErrReaderClosed = errors.New("sstable: reader closed")
)

// ErrComparatorMismatch indicates that a table was written under a different
// key ordering than the reader was configured with.
type ErrComparatorMismatch struct {
	FileComparator   string
	ReaderComparator string
}

func (e *ErrComparatorMismatch) Error() string {
	return fmt.Sprintf("sstable: table ordered by %q, reader configured with %q", e.FileComparator, e.ReaderComparator)
}

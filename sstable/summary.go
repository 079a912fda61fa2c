package sstable

import "fmt"

// writerSeqno is the sequence number stamped on every record. Bulk files
// are built outside any write path, so they carry no ordering of their own;
// engines ingesting the file assign a real global sequence then.
const writerSeqno = uint64(0)

// FileSummary describes a finished table file. It is produced exactly once,
// by Finish, and by Reader.Summary for reopened files.
type FileSummary struct {
	// Path the file was written to.
	Path string

	// SmallestKey is the first key added, LargestKey the last. Under the
	// strict ordering invariant these are the key range bounds.
	SmallestKey []byte
	LargestKey  []byte

	// EntryCount is the number of key/value records in the file.
	EntryCount uint64

	// FileSize is the size of the finished file in bytes.
	FileSize int64

	// SequenceNumber is the sequence stamped on every record, always 0.
	SequenceNumber uint64

	// FormatVersion is the table format the file was written with.
	FormatVersion uint32
}

func (s FileSummary) String() string {
	return fmt.Sprintf("FileSummary{#%d path: %q, key: %q..%q, entries: %d, size: %d}",
		s.SequenceNumber, s.Path, s.SmallestKey, s.LargestKey, s.EntryCount, s.FileSize)
}

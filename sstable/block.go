package sstable

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/lsmkit/internal/conv"
)

// blockBuilder accumulates records for one data block.
type blockBuilder struct {
	buf     []byte
	records int
}

func (b *blockBuilder) add(key, value []byte) {
	b.buf = appendRecord(b.buf, key, value, writerSeqno)
	b.records++
}

func (b *blockBuilder) empty() bool { return b.records == 0 }

func (b *blockBuilder) size() int { return len(b.buf) }

func (b *blockBuilder) reset() {
	b.buf = b.buf[:0]
	b.records = 0
}

// indexBuilder accumulates one entry per flushed data block:
//
//	uvarint(len(lastKey)) lastKey uvarint(offset) uvarint(size)
//
// Entries are appended in block order, so the index inherits the table's
// key ordering and readers can binary search it.
type indexBuilder struct {
	buf    []byte
	blocks int
}

func (b *indexBuilder) add(lastKey []byte, handle blockHandle) {
	b.buf = binary.AppendUvarint(b.buf, uint64(len(lastKey)))
	b.buf = append(b.buf, lastKey...)
	b.buf = binary.AppendUvarint(b.buf, handle.Offset)
	b.buf = binary.AppendUvarint(b.buf, handle.Size)
	b.blocks++
}

func (b *indexBuilder) finish() []byte { return b.buf }

// indexEntry is one parsed index block entry: the last key of a data block
// and where to find it.
type indexEntry struct {
	lastKey []byte
	handle  blockHandle
}

// parseIndexBlock decodes an index block payload into its entries.
func parseIndexBlock(payload []byte) ([]indexEntry, error) {
	var entries []indexEntry
	off := 0
	for off < len(payload) {
		k64, n := binary.Uvarint(payload[off:])
		if n <= 0 {
			return nil, fmt.Errorf("index entry key length at offset %d: %w", off, ErrCorruptBlock)
		}
		off += n
		klen, err := conv.Uint64ToInt(k64)
		if err != nil || klen > len(payload)-off {
			return nil, fmt.Errorf("index entry key extends past block end: %w", ErrCorruptBlock)
		}
		key := payload[off : off+klen]
		off += klen

		blockOff, n := binary.Uvarint(payload[off:])
		if n <= 0 {
			return nil, fmt.Errorf("index entry offset: %w", ErrCorruptBlock)
		}
		off += n
		blockSize, n := binary.Uvarint(payload[off:])
		if n <= 0 {
			return nil, fmt.Errorf("index entry size: %w", ErrCorruptBlock)
		}
		off += n

		entries = append(entries, indexEntry{
			lastKey: key,
			handle:  blockHandle{Offset: blockOff, Size: blockSize},
		})
	}
	return entries, nil
}

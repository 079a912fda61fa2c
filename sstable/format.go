package sstable

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/lsmkit/internal/conv"
	"github.com/hupe1980/lsmkit/internal/hash"
)

const (
	// tableMagic identifies lsmkit table files (ASCII: "LSMKTBL1").
	tableMagic = uint64(0x4c534d4b54424c31)

	// FormatVersion is the table format written by this package. Readers
	// accept only this version.
	FormatVersion = uint32(1)

	// footerSize is the fixed footer at the end of every table file:
	// index handle (16) + properties handle (16) + version (4) +
	// footer checksum (4) + magic (8).
	footerSize = 48

	// blockTrailerSize follows every block payload on disk:
	// compression tag (1) + masked CRC32C of payload+tag (4).
	blockTrailerSize = 5
)

// blockHandle locates a block payload inside the file. Size excludes the
// trailer.
type blockHandle struct {
	Offset uint64
	Size   uint64
}

func (h blockHandle) encodeTo(dst []byte) {
	binary.LittleEndian.PutUint64(dst[0:8], h.Offset)
	binary.LittleEndian.PutUint64(dst[8:16], h.Size)
}

func decodeBlockHandle(src []byte) blockHandle {
	return blockHandle{
		Offset: binary.LittleEndian.Uint64(src[0:8]),
		Size:   binary.LittleEndian.Uint64(src[8:16]),
	}
}

// footer is the entry point of a finished table. A file without a valid
// footer is not a table, which is what keeps partially written files
// unaddressable.
type footer struct {
	indexHandle blockHandle
	propsHandle blockHandle
	version     uint32
}

func (f footer) encode() []byte {
	buf := make([]byte, footerSize)
	f.indexHandle.encodeTo(buf[0:16])
	f.propsHandle.encodeTo(buf[16:32])
	binary.LittleEndian.PutUint32(buf[32:36], f.version)
	binary.LittleEndian.PutUint32(buf[36:40], hash.Mask(hash.CRC32C(buf[0:36])))
	binary.LittleEndian.PutUint64(buf[40:48], tableMagic)
	return buf
}

func decodeFooter(buf []byte) (footer, error) {
	if len(buf) != footerSize {
		return footer{}, fmt.Errorf("footer is %d bytes, want %d: %w", len(buf), footerSize, ErrInvalidTable)
	}
	if magic := binary.LittleEndian.Uint64(buf[40:48]); magic != tableMagic {
		return footer{}, fmt.Errorf("bad magic %#x: %w", magic, ErrInvalidTable)
	}
	stored := binary.LittleEndian.Uint32(buf[36:40])
	if computed := hash.Mask(hash.CRC32C(buf[0:36])); stored != computed {
		return footer{}, fmt.Errorf("footer checksum %#x, computed %#x: %w", stored, computed, ErrChecksumMismatch)
	}

	f := footer{
		indexHandle: decodeBlockHandle(buf[0:16]),
		propsHandle: decodeBlockHandle(buf[16:32]),
		version:     binary.LittleEndian.Uint32(buf[32:36]),
	}
	if f.version != FormatVersion {
		return footer{}, fmt.Errorf("format version %d: %w", f.version, ErrUnsupportedVersion)
	}
	return f, nil
}

// appendRecord encodes one key/value record into a data block payload.
//
//	uvarint(len(key)) uvarint(len(value)) uvarint(seqno) key value
//
// The sequence number is fixed at zero for every record a Writer produces;
// it is carried per record so bulk-ingested files slot into engines that
// assign a global sequence on ingestion.
func appendRecord(dst []byte, key, value []byte, seqno uint64) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(key)))
	dst = binary.AppendUvarint(dst, uint64(len(value)))
	dst = binary.AppendUvarint(dst, seqno)
	dst = append(dst, key...)
	dst = append(dst, value...)
	return dst
}

// decodeRecord parses the record at payload[off:] and returns the key,
// value, sequence number and the offset of the next record.
func decodeRecord(payload []byte, off int) (key, value []byte, seqno uint64, next int, err error) {
	k64, n := binary.Uvarint(payload[off:])
	if n <= 0 {
		return nil, nil, 0, 0, fmt.Errorf("record key length at offset %d: %w", off, ErrCorruptBlock)
	}
	off += n
	v64, n := binary.Uvarint(payload[off:])
	if n <= 0 {
		return nil, nil, 0, 0, fmt.Errorf("record value length at offset %d: %w", off, ErrCorruptBlock)
	}
	off += n
	seqno, n = binary.Uvarint(payload[off:])
	if n <= 0 {
		return nil, nil, 0, 0, fmt.Errorf("record seqno at offset %d: %w", off, ErrCorruptBlock)
	}
	off += n

	klen, err := conv.Uint64ToInt(k64)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("record key length %d: %w", k64, ErrCorruptBlock)
	}
	vlen, err := conv.Uint64ToInt(v64)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("record value length %d: %w", v64, ErrCorruptBlock)
	}
	end := off + klen + vlen
	if end > len(payload) || end < off {
		return nil, nil, 0, 0, fmt.Errorf("record extends past block end: %w", ErrCorruptBlock)
	}
	key = payload[off : off+klen]
	value = payload[off+klen : end]
	return key, value, seqno, end, nil
}

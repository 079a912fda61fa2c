package sstable

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects the per-block compression algorithm.
type CompressionType uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast, good for hot data).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD block compression (better ratio, good for
	// cold data).
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

func compressionByName(name string) (CompressionType, bool) {
	switch name {
	case "none":
		return CompressionNone, true
	case "lz4":
		return CompressionLZ4, true
	case "zstd":
		return CompressionZSTD, true
	default:
		return CompressionNone, false
	}
}

// ZSTD encoder/decoder pools for efficiency.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compressBlock compresses a block payload and returns the on-disk bytes
// plus the tag actually used. Blocks that do not shrink below 90% of their
// raw size are stored uncompressed so reads never pay decompression for
// incompressible data.
func compressBlock(payload []byte, ctype CompressionType) ([]byte, CompressionType, error) {
	if ctype == CompressionNone || len(payload) == 0 {
		return payload, CompressionNone, nil
	}

	var compressed []byte
	switch ctype {
	case CompressionLZ4:
		// LZ4 block decompression needs the raw size up front, so it is
		// prefixed as a uvarint. ZSTD frames carry their own size.
		buf := binary.AppendUvarint(nil, uint64(len(payload)))
		head := len(buf)
		buf = append(buf, make([]byte, lz4.CompressBlockBound(len(payload)))...)
		n, err := lz4.CompressBlock(payload, buf[head:], nil)
		if err != nil {
			return nil, 0, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 {
			// Incompressible.
			return payload, CompressionNone, nil
		}
		compressed = buf[:head+n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(payload, nil)
		putZstdEncoder(enc)
	default:
		return nil, 0, fmt.Errorf("unknown compression type %d", ctype)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(payload))*0.9 {
		return payload, CompressionNone, nil
	}
	return compressed, ctype, nil
}

// decompressBlock reverses compressBlock for the given tag.
func decompressBlock(data []byte, ctype CompressionType) ([]byte, error) {
	switch ctype {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		rawSize, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, fmt.Errorf("lz4 block size prefix: %w", ErrCorruptBlock)
		}
		// The format cannot expand anywhere near this far; a larger claim
		// is corruption and must not drive an allocation.
		if rawSize > uint64(len(data))*256+64 {
			return nil, fmt.Errorf("lz4 block claims %d raw bytes from %d on disk: %w", rawSize, len(data), ErrCorruptBlock)
		}
		out := make([]byte, rawSize)
		m, err := lz4.UncompressBlock(data[n:], out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w: %w", ErrCorruptBlock, err)
		}
		if uint64(m) != rawSize {
			return nil, fmt.Errorf("lz4 decompressed %d bytes, expected %d: %w", m, rawSize, ErrCorruptBlock)
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w: %w", ErrCorruptBlock, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression tag %d: %w", ctype, ErrCorruptBlock)
	}
}

package sstable

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"

	"github.com/hupe1980/lsmkit/internal/conv"
)

// Well-known property keys. The properties block is an open string→bytes
// map so future versions can add keys without a format bump.
const (
	propComparator    = "lsmkit.comparator"
	propCompression   = "lsmkit.compression"
	propNumEntries    = "lsmkit.num-entries"
	propNumDataBlocks = "lsmkit.num-data-blocks"
	propSmallestKey   = "lsmkit.smallest-key"
	propLargestKey    = "lsmkit.largest-key"
	propRawKeySize    = "lsmkit.raw-key-bytes"
	propRawValueSize  = "lsmkit.raw-value-bytes"
	propGlobalSeqno   = "lsmkit.global-seqno"
)

// properties is the decoded properties block.
type properties map[string][]byte

func (p properties) uintValue(key string) (uint64, error) {
	raw, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("missing property %q: %w", key, ErrCorruptBlock)
	}
	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("property %q = %q is not a number: %w", key, raw, ErrCorruptBlock)
	}
	return v, nil
}

func (p properties) setUint(key string, v uint64) {
	p[key] = []byte(strconv.FormatUint(v, 10))
}

// encode serializes the map with keys in sorted order so identical inputs
// produce byte-identical tables.
//
//	uvarint(n) then n × ( uvarint(len(k)) k uvarint(len(v)) v )
func (p properties) encode() []byte {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := binary.AppendUvarint(nil, uint64(len(keys)))
	for _, k := range keys {
		buf = binary.AppendUvarint(buf, uint64(len(k)))
		buf = append(buf, k...)
		buf = binary.AppendUvarint(buf, uint64(len(p[k])))
		buf = append(buf, p[k]...)
	}
	return buf
}

func parsePropertiesBlock(payload []byte) (properties, error) {
	count, off := binary.Uvarint(payload)
	if off <= 0 {
		return nil, fmt.Errorf("properties count: %w", ErrCorruptBlock)
	}
	// Every entry needs at least two bytes, so a count beyond that is
	// corrupt. Checking up front keeps the map pre-size honest.
	if count > uint64(len(payload))/2 {
		return nil, fmt.Errorf("properties count %d exceeds block: %w", count, ErrCorruptBlock)
	}

	props := make(properties, count)
	for range count {
		k64, n := binary.Uvarint(payload[off:])
		if n <= 0 {
			return nil, fmt.Errorf("property key length: %w", ErrCorruptBlock)
		}
		off += n
		klen, err := conv.Uint64ToInt(k64)
		if err != nil || klen > len(payload)-off {
			return nil, fmt.Errorf("property key extends past block end: %w", ErrCorruptBlock)
		}
		key := string(payload[off : off+klen])
		off += klen

		v64, n := binary.Uvarint(payload[off:])
		if n <= 0 {
			return nil, fmt.Errorf("property value length: %w", ErrCorruptBlock)
		}
		off += n
		vlen, err := conv.Uint64ToInt(v64)
		if err != nil || vlen > len(payload)-off {
			return nil, fmt.Errorf("property value extends past block end: %w", ErrCorruptBlock)
		}
		props[key] = append([]byte(nil), payload[off:off+vlen]...)
		off += vlen
	}
	return props, nil
}

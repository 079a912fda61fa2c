package sstable

import "sort"

// Iterator walks a table's records in comparator order.
//
//	it := r.NewIterator()
//	for it.Next() {
//		use(it.Key(), it.Value())
//	}
//	if err := it.Err(); err != nil { ... }
//
// An Iterator is not safe for concurrent use; open one per goroutine.
type Iterator struct {
	r *Reader

	blockIdx int
	payload  []byte
	off      int

	key   []byte
	value []byte
	err   error
}

// NewIterator returns an iterator positioned before the first record.
func (r *Reader) NewIterator() *Iterator {
	return &Iterator{r: r}
}

// Next advances to the next record. It returns false at the end of the
// table or on error; the two are told apart by Err.
func (i *Iterator) Next() bool {
	if i.err != nil {
		return false
	}
	if i.r.closed.Load() {
		i.err = ErrReaderClosed
		return false
	}

	for i.off >= len(i.payload) {
		if i.blockIdx >= len(i.r.index) {
			return false
		}
		payload, err := i.r.dataBlock(i.r.index[i.blockIdx].handle)
		if err != nil {
			i.err = err
			return false
		}
		i.blockIdx++
		i.payload = payload
		i.off = 0
	}

	key, value, _, next, err := decodeRecord(i.payload, i.off)
	if err != nil {
		i.err = err
		return false
	}
	i.key = key
	i.value = value
	i.off = next
	return true
}

// Seek positions the iterator so the following Next returns the first
// record with key >= target (in comparator order). Seeking past the last
// key exhausts the iterator.
func (i *Iterator) Seek(target []byte) {
	if i.err != nil {
		return
	}

	cmp := i.r.opts.Comparator
	bi := sort.Search(len(i.r.index), func(n int) bool {
		return cmp.Compare(i.r.index[n].lastKey, target) >= 0
	})
	if bi == len(i.r.index) {
		i.blockIdx = bi
		i.payload = nil
		i.off = 0
		return
	}

	payload, err := i.r.dataBlock(i.r.index[bi].handle)
	if err != nil {
		i.err = err
		return
	}
	i.blockIdx = bi + 1
	i.payload = payload
	i.off = 0

	// Skip records below the target inside the block.
	for i.off < len(i.payload) {
		key, _, _, next, err := decodeRecord(i.payload, i.off)
		if err != nil {
			i.err = err
			return
		}
		if cmp.Compare(key, target) >= 0 {
			return
		}
		i.off = next
	}
}

// Key returns the current record's key. Valid until the next call to Next
// or Seek; treat as read-only.
func (i *Iterator) Key() []byte { return i.key }

// Value returns the current record's value, with the same lifetime rules
// as Key.
func (i *Iterator) Value() []byte { return i.value }

// Err returns the first error the iterator ran into, if any.
func (i *Iterator) Err() error { return i.err }

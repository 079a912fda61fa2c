// Package comparator defines the key ordering contract shared by the table
// writer and reader.
//
// Lsmkit intentionally treats comparator selection as a breaking-change
// boundary: a table written under one ordering is unreadable under another,
// so the comparator name is persisted in the table properties and verified
// on open.
package comparator

import "bytes"

// Comparator imposes a total order on keys.
// Implementations must be stateless and safe for concurrent use.
type Comparator interface {
	// Compare returns a negative value when a sorts before b, zero when the
	// keys are equal and a positive value when a sorts after b.
	Compare(a, b []byte) int

	// Name is the stable identifier persisted alongside data written under
	// this ordering. Changing the name invalidates existing files on purpose.
	Name() string
}

// Bytewise orders keys by their raw bytes, shorter prefixes first.
// It is the default ordering everywhere a comparator is optional.
var Bytewise Comparator = bytewise{}

// ReverseBytewise orders keys by their raw bytes, descending.
var ReverseBytewise Comparator = reverseBytewise{}

type bytewise struct{}

func (bytewise) Compare(a, b []byte) int { return bytes.Compare(a, b) }
func (bytewise) Name() string            { return "lsmkit.bytewise" }

type reverseBytewise struct{}

func (reverseBytewise) Compare(a, b []byte) int { return bytes.Compare(b, a) }
func (reverseBytewise) Name() string            { return "lsmkit.bytewise.reverse" }

// ByName returns a built-in comparator by its stable name.
//
// This is used by self-describing file formats that store the comparator
// name in their properties block.
func ByName(name string) (Comparator, bool) {
	switch name {
	case Bytewise.Name():
		return Bytewise, true
	case ReverseBytewise.Name():
		return ReverseBytewise, true
	default:
		return nil, false
	}
}

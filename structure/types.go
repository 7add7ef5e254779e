// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Item sum type (Unary/Binary), slot policies, sentinel errors and the
//       Structure contract shared by Graph and Sequence.

package structure

import (
	"errors"
	"strings"
)

// Sentinel errors for structure operations.
var (
	// ErrEmptyID indicates an item with an empty node identifier.
	ErrEmptyID = errors.New("structure: item id is empty")

	// ErrItemNotFound indicates a lookup or removal of an absent item.
	ErrItemNotFound = errors.New("structure: item not found")

	// ErrWrongItemKind indicates an item of a kind the structure cannot hold,
	// e.g. a Binary item passed to a Sequence. It is a precondition violation.
	ErrWrongItemKind = errors.New("structure: wrong item kind")

	// ErrUndefinedOrientation indicates a Binary item whose Orientation was never set.
	ErrUndefinedOrientation = errors.New("structure: binary item orientation undefined")

	// ErrKindMismatch indicates a Merge between structures of different concrete kinds.
	ErrKindMismatch = errors.New("structure: cannot merge structures of different kinds")
)

// Mode controls how many distinct items a single slot may hold.
type Mode int

const (
	// Single allows at most one item per slot; competing items are resolved
	// by the Overwrite policy.
	Single Mode = iota
	// Multi lets distinct items coexist in one slot.
	Multi
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	if m == Multi {
		return "multi"
	}

	return "single"
}

// Overwrite is the conflict policy applied when a new item competes for an occupied slot.
type Overwrite int

const (
	// Max replaces the occupant when the incoming weight is greater or equal.
	Max Overwrite = iota
	// Conserve never displaces an occupant.
	Conserve
)

// String returns the lower-case policy name.
func (o Overwrite) String() string {
	if o == Conserve {
		return "conserve"
	}

	return "max"
}

// Orientation says whether a binary relation has a mirrored slot.
// The zero value is deliberately invalid so that a forgotten flag is caught.
type Orientation int

const (
	// OrientationUnset is the undefined orientation; structures reject it.
	OrientationUnset Orientation = iota
	// Ordered relations live only in the (First, Second) slot.
	Ordered
	// Unordered relations also occupy the mirrored (Second, First) slot.
	Unordered
)

// ItemKind discriminates the Item variants.
type ItemKind int

const (
	// KindUnary marks a node relation.
	KindUnary ItemKind = iota + 1
	// KindBinary marks an edge relation.
	KindBinary
)

// Item is a typed relation instance. It is implemented only by Unary and
// Binary; callers switch exhaustively over those two types.
type Item interface {
	// Key is the equality key of the item within a structure.
	Key() string
	// Kind reports the variant.
	Kind() ItemKind

	isItem()
}

const keySep = "|"

// keyEscaper makes joined keys injective for ids that contain keySep.
var keyEscaper = strings.NewReplacer(`\`, `\\`, keySep, `\`+keySep)

func joinKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = keyEscaper.Replace(p)
	}

	return strings.Join(parts, keySep)
}

// Unary is a label attached to a single node. ID is the node identifier
// and doubles as the slot key.
type Unary struct {
	ID   string
	Type string
}

// Key implements Item.
func (u Unary) Key() string {
	return joinKey("u", u.Type, u.ID)
}

// Kind implements Item.
func (u Unary) Kind() ItemKind { return KindUnary }

func (Unary) isItem() {}

// Binary is a label between two nodes. ID optionally names the relation
// instance and is not part of equality; Orientation is, so an ordered and
// an unordered edge of the same type and endpoints are distinct items.
type Binary struct {
	ID          string
	Type        string
	First       string
	Second      string
	Orientation Orientation
}

// Key implements Item.
func (b Binary) Key() string {
	prefix := "b"
	if b.Orientation == Unordered {
		prefix = "B"
	}

	return joinKey(prefix, b.Type, b.First, b.Second)
}

// Kind implements Item.
func (b Binary) Kind() ItemKind { return KindBinary }

func (Binary) isItem() {}

// Entry is an item together with its weight and provenance.
type Entry struct {
	Item   Item
	Weight float64
	Source any
}

// Structure is a mergeable, weighted container of relation items.
//
// Implementations are safe for concurrent use. Passing an item of a kind
// the implementation cannot hold returns ErrWrongItemKind.
type Structure interface {
	// Add inserts item at weight, resolving slot conflicts by policy.
	// It reports whether the structure changed.
	Add(item Item, weight float64, source any) (bool, error)

	// Remove deletes item and reports whether it was present.
	Remove(item Item) (bool, error)

	// Weight returns the weight recorded for item or ErrItemNotFound.
	Weight(item Item) (float64, error)

	// Merge replays every entry of other through Add.
	Merge(other Structure) error

	// ToList returns every distinct item once, in deterministic order.
	ToList() []Item

	// Entries is ToList with weights and sources.
	Entries() []Entry

	// ItemCount is the number of distinct items held.
	ItemCount() int

	// TotalWeight is the sum of all item weights.
	TotalWeight() float64

	// NewEmpty returns an empty structure with identical configuration.
	NewEmpty() Structure
}

// MeanWeight returns TotalWeight/ItemCount, or 0 for an empty structure.
func MeanWeight(s Structure) float64 {
	n := s.ItemCount()
	if n == 0 {
		return 0
	}

	return s.TotalWeight() / float64(n)
}

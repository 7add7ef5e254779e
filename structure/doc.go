// SPDX-License-Identifier: MIT

// Package structure provides mergeable, weighted containers of typed
// relation items, the shared merge target of the sieve.
//
// Items are a closed sum type:
//
//   - Unary{ID, Type}: a label on node ID.
//   - Binary{ID, Type, First, Second, Orientation}: a label on the pair
//     (First, Second). Unordered items also occupy the mirrored slot
//     (Second, First), stored with the inverse type.
//
// Two structures implement the Structure contract:
//
//   - Graph: node slots and (first, second) edge slots, nested maps
//     adjacency[first][second][key] in the style of an adjacency list.
//   - Sequence: an insertion-ordered list of Unary items.
//
// Graph configuration (GraphOption):
//
//	WithEdgeMode(Single|Multi)   at most one / many items per edge slot
//	WithNodeMode(Single|Multi)   same for node slots
//	WithOverwrite(Max|Conserve)  conflict policy for occupied slots
//	WithInverse(map)             mirrored type of unordered edges
//
// Conflict resolution (Single mode):
//
//	equal item present    Max: replace iff new weight >= current
//	                      Conserve: no-op
//	different occupant    Max: incoming wins unless an occupant is strictly
//	                      heavier; losers leave both their slots
//	                      Conserve: no-op
//
// Invariants:
//
//   - ItemCount() == len(ToList()) after any sequence of operations.
//   - An unordered item and its mirror share one weight.
//   - ToList/Entries are sorted by item key (Graph) or insertion order (Sequence).
//
// Errors:
//
//	ErrEmptyID              empty node id
//	ErrItemNotFound         Weight of an absent item
//	ErrWrongItemKind        item kind the structure cannot hold
//	ErrUndefinedOrientation Binary with OrientationUnset
//	ErrKindMismatch         Merge across concrete structure kinds
//
// All types are safe for concurrent use.
package structure

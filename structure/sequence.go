// SPDX-License-Identifier: MIT
//
// File: sequence.go
// Role: Sequence, an insertion-ordered weighted structure of Unary items.

package structure

import "sync"

// Sequence holds Unary items in insertion order, one slot per item key.
// Re-adding an equal item follows the overwrite policy. Binary items are
// rejected with ErrWrongItemKind.
type Sequence struct {
	mu        sync.RWMutex
	overwrite Overwrite
	order     []*entry
	index     map[string]*entry
}

// NewSequence creates an empty Sequence with the given overwrite policy.
func NewSequence(overwrite Overwrite) *Sequence {
	return &Sequence{
		overwrite: overwrite,
		index:     make(map[string]*entry),
	}
}

func asUnary(item Item) (Unary, error) {
	u, ok := item.(Unary)
	if !ok {
		return Unary{}, ErrWrongItemKind
	}
	if u.ID == "" {
		return Unary{}, ErrEmptyID
	}

	return u, nil
}

// Add implements Structure. Complexity: O(1) amortized.
func (s *Sequence) Add(item Item, weight float64, source any) (bool, error) {
	u, err := asUnary(item)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.index[u.Key()]; ok {
		if s.overwrite == Conserve || weight <= e.weight {
			return false, nil
		}
		e.weight, e.source = weight, source

		return true, nil
	}
	e := &entry{item: u, weight: weight, source: source}
	s.index[u.Key()] = e
	s.order = append(s.order, e)

	return true, nil
}

// Remove implements Structure. Complexity: O(N).
func (s *Sequence) Remove(item Item) (bool, error) {
	u, err := asUnary(item)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.index[u.Key()]
	if !ok {
		return false, nil
	}
	delete(s.index, u.Key())
	for i := range s.order {
		if s.order[i] == e {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}

	return true, nil
}

// Weight implements Structure.
func (s *Sequence) Weight(item Item) (float64, error) {
	u, err := asUnary(item)
	if err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.index[u.Key()]
	if !ok {
		return 0, ErrItemNotFound
	}

	return e.weight, nil
}

// Merge appends every entry of other through Add. other must be a *Sequence.
func (s *Sequence) Merge(other Structure) error {
	seq, ok := other.(*Sequence)
	if !ok {
		return ErrKindMismatch
	}
	if seq == s {
		return nil
	}
	var e Entry
	for _, e = range seq.Entries() {
		if _, err := s.Add(e.Item, e.Weight, e.Source); err != nil {
			return err
		}
	}

	return nil
}

// Entries implements Structure; entries come in insertion order.
func (s *Sequence) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.order))
	for i, e := range s.order {
		out[i] = Entry{Item: e.item, Weight: e.weight, Source: e.source}
	}

	return out
}

// ToList implements Structure; items come in insertion order.
func (s *Sequence) ToList() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, len(s.order))
	for i, e := range s.order {
		out[i] = e.item
	}

	return out
}

// ItemCount implements Structure.
func (s *Sequence) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}

// TotalWeight implements Structure.
func (s *Sequence) TotalWeight() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	var e *entry
	for _, e = range s.order {
		total += e.weight
	}

	return total
}

// NewEmpty implements Structure.
func (s *Sequence) NewEmpty() Structure {
	return NewSequence(s.overwrite)
}

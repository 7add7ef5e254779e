// SPDX-License-Identifier: MIT
//
// File: graph.go
// Role: Graph construction, options and the add/remove/merge lifecycle.
// Determinism:
//   - ToList/Entries are sorted by item key.
// Concurrency:
//   - One sync.RWMutex guards nodes, adjacency and itemCount.

package structure

import (
	"errors"
	"sort"
	"sync"
)

// GraphOption configures a Graph before creation.
type GraphOption func(g *Graph)

// WithEdgeMode sets how many items one (first, second) slot may hold.
func WithEdgeMode(m Mode) GraphOption {
	return func(g *Graph) { g.edgeMode = m }
}

// WithNodeMode sets how many items one node slot may hold.
func WithNodeMode(m Mode) GraphOption {
	return func(g *Graph) { g.nodeMode = m }
}

// WithOverwrite sets the conflict policy.
func WithOverwrite(o Overwrite) GraphOption {
	return func(g *Graph) { g.overwrite = o }
}

// WithInverse maps an unordered relation type to the type stored in its
// mirrored slot (e.g. BEFORE -> AFTER). Types missing from the map mirror
// to themselves. The mapping is applied in both directions.
func WithInverse(inverse map[string]string) GraphOption {
	return func(g *Graph) {
		var k, v string
		for k, v = range inverse {
			g.inverse[k] = v
			g.inverse[v] = k
		}
	}
}

// entry is the single shared record behind one logical item. Unordered
// edges point both slots at the same entry so their weights stay equal.
type entry struct {
	item   Item
	weight float64
	source any
}

// Graph is a weighted structure of node (Unary) and edge (Binary) items.
//
// Slots:
//
//	nodes[nodeID][itemKey]                  -> *entry
//	adjacency[first][second][orientedKey]   -> *entry
//
// An unordered edge is linked under (first, second) with its own key and
// under (second, first) with the key of its mirrored item.
type Graph struct {
	mu sync.RWMutex

	edgeMode  Mode
	nodeMode  Mode
	overwrite Overwrite
	inverse   map[string]string

	nodes     map[string]map[string]*entry
	adjacency map[string]map[string]map[string]*entry
	itemCount int
}

// NewGraph creates an empty Graph. Defaults: Single edge and node mode, Max overwrite.
// Complexity: O(len(opts)).
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		inverse:   make(map[string]string),
		nodes:     make(map[string]map[string]*entry),
		adjacency: make(map[string]map[string]map[string]*entry),
	}
	var opt GraphOption
	for _, opt = range opts {
		opt(g)
	}

	return g
}

// EdgeMode reports the edge slot mode.
func (g *Graph) EdgeMode() Mode { return g.edgeMode }

// NodeMode reports the node slot mode.
func (g *Graph) NodeMode() Mode { return g.nodeMode }

// Overwrite reports the conflict policy.
func (g *Graph) Overwrite() Overwrite { return g.overwrite }

// options rebuilds the construction options of g.
func (g *Graph) options() []GraphOption {
	inv := make(map[string]string, len(g.inverse))
	var k, v string
	for k, v = range g.inverse {
		inv[k] = v
	}

	return []GraphOption{
		WithEdgeMode(g.edgeMode),
		WithNodeMode(g.nodeMode),
		WithOverwrite(g.overwrite),
		WithInverse(inv),
	}
}

// InverseType returns the type stored in the mirrored slot of an unordered edge of type t.
func (g *Graph) InverseType(t string) string {
	if inv, ok := g.inverse[t]; ok {
		return inv
	}

	return t
}

// Mirror returns b as seen from its mirrored slot.
func (g *Graph) Mirror(b Binary) Binary {
	return Binary{
		ID:          b.ID,
		Type:        g.InverseType(b.Type),
		First:       b.Second,
		Second:      b.First,
		Orientation: b.Orientation,
	}
}

// Add inserts item at weight.
//
// Steps (binary):
//  1. Reject undefined orientation and empty endpoints.
//  2. Equal item already in the slot: Max raises the weight when it is greater, Conserve is a no-op.
//  3. Single mode: collect competing occupants of the slot and, for unordered
//     items, of the mirrored slot. Conserve keeps them; Max keeps them if any
//     is strictly heavier, else removes every loser from both slots.
//  4. Link the new entry and bump itemCount.
//
// Unary items follow steps 2-4 on the node slot without mirroring.
// Complexity: O(1) amortized plus O(k) competitors.
func (g *Graph) Add(item Item, weight float64, source any) (bool, error) {
	switch it := item.(type) {
	case Unary:
		return g.addNode(it, weight, source)
	case Binary:
		return g.addEdge(it, weight, source)
	default:
		return false, ErrWrongItemKind
	}
}

func (g *Graph) addNode(u Unary, weight float64, source any) (bool, error) {
	if u.ID == "" {
		return false, ErrEmptyID
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	slot := g.nodes[u.ID]
	if e, ok := slot[u.Key()]; ok {
		return g.reweight(e, weight, source), nil
	}
	if g.nodeMode == Single && len(slot) > 0 {
		competitors := make([]*entry, 0, len(slot))
		var e *entry
		for _, e = range slot {
			competitors = append(competitors, e)
		}
		if !g.displace(competitors, weight) {
			return false, nil
		}
	}
	g.link(&entry{item: u, weight: weight, source: source})

	return true, nil
}

func (g *Graph) addEdge(b Binary, weight float64, source any) (bool, error) {
	// 1) Preconditions
	if b.Orientation != Ordered && b.Orientation != Unordered {
		return false, ErrUndefinedOrientation
	}
	if b.First == "" || b.Second == "" {
		return false, ErrEmptyID
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	// 2) Equal item
	slot := g.adjacency[b.First][b.Second]
	if e, ok := slot[b.Key()]; ok {
		return g.reweight(e, weight, source), nil
	}
	if b.Orientation == Unordered && b.First != b.Second {
		if e, ok := g.adjacency[b.Second][b.First][g.Mirror(b).Key()]; ok {
			return g.reweight(e, weight, source), nil
		}
	}

	// 3) Competitors under Single mode
	if g.edgeMode == Single {
		seen := make(map[*entry]struct{})
		competitors := make([]*entry, 0, 2)
		collect := func(s map[string]*entry) {
			var e *entry
			for _, e = range s {
				if _, dup := seen[e]; dup {
					continue
				}
				seen[e] = struct{}{}
				competitors = append(competitors, e)
			}
		}
		collect(slot)
		if b.Orientation == Unordered && b.First != b.Second {
			collect(g.adjacency[b.Second][b.First])
		}
		if len(competitors) > 0 && !g.displace(competitors, weight) {
			return false, nil
		}
	}

	// 4) Link
	g.link(&entry{item: b, weight: weight, source: source})

	return true, nil
}

// reweight applies the overwrite policy to an equal item already present.
// It reports whether the stored weight increased. The source follows the
// weight, so an equal re-add keeps the recorded provenance.
func (g *Graph) reweight(e *entry, weight float64, source any) bool {
	if g.overwrite == Conserve || weight <= e.weight {
		return false
	}
	e.weight = weight
	e.source = source

	return true
}

// displace decides a slot contest. It returns true when the incoming item
// wins, after unlinking every competitor. Ties favor the incoming item.
func (g *Graph) displace(competitors []*entry, weight float64) bool {
	if g.overwrite == Conserve {
		return false
	}
	var e *entry
	for _, e = range competitors {
		if e.weight > weight {
			return false
		}
	}
	for _, e = range competitors {
		g.unlink(e)
	}

	return true
}

// link stores e in its slot(s) and counts it. Caller holds mu.
func (g *Graph) link(e *entry) {
	switch it := e.item.(type) {
	case Unary:
		if g.nodes[it.ID] == nil {
			g.nodes[it.ID] = make(map[string]*entry)
		}
		g.nodes[it.ID][it.Key()] = e
	case Binary:
		g.linkSlot(it.First, it.Second, it.Key(), e)
		if it.Orientation == Unordered && it.First != it.Second {
			g.linkSlot(it.Second, it.First, g.Mirror(it).Key(), e)
		}
	}
	g.itemCount++
}

func (g *Graph) linkSlot(first, second, key string, e *entry) {
	if g.adjacency[first] == nil {
		g.adjacency[first] = make(map[string]map[string]*entry)
	}
	if g.adjacency[first][second] == nil {
		g.adjacency[first][second] = make(map[string]*entry)
	}
	g.adjacency[first][second][key] = e
}

// unlink removes e from its slot(s), drops empty buckets and uncounts it. Caller holds mu.
func (g *Graph) unlink(e *entry) {
	switch it := e.item.(type) {
	case Unary:
		delete(g.nodes[it.ID], it.Key())
		if len(g.nodes[it.ID]) == 0 {
			delete(g.nodes, it.ID)
		}
	case Binary:
		g.unlinkSlot(it.First, it.Second, it.Key())
		if it.Orientation == Unordered && it.First != it.Second {
			g.unlinkSlot(it.Second, it.First, g.Mirror(it).Key())
		}
	}
	g.itemCount--
}

func (g *Graph) unlinkSlot(first, second, key string) {
	inner := g.adjacency[first][second]
	delete(inner, key)
	if len(inner) == 0 {
		delete(g.adjacency[first], second)
	}
	if len(g.adjacency[first]) == 0 {
		delete(g.adjacency, first)
	}
}

// lookup finds the entry for item in its slot. Caller holds mu.
func (g *Graph) lookup(item Item) (*entry, error) {
	switch it := item.(type) {
	case Unary:
		if e, ok := g.nodes[it.ID][it.Key()]; ok {
			return e, nil
		}
	case Binary:
		if it.Orientation != Ordered && it.Orientation != Unordered {
			return nil, ErrUndefinedOrientation
		}
		if e, ok := g.adjacency[it.First][it.Second][it.Key()]; ok {
			return e, nil
		}
	default:
		return nil, ErrWrongItemKind
	}

	return nil, ErrItemNotFound
}

// Remove deletes item (and its mirror) and reports whether it was present.
// Complexity: O(1).
func (g *Graph) Remove(item Item) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, err := g.lookup(item)
	if errors.Is(err, ErrItemNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	g.unlink(e)

	return true, nil
}

// Weight returns the recorded weight of item.
// Complexity: O(1).
func (g *Graph) Weight(item Item) (float64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, err := g.lookup(item)
	if err != nil {
		return 0, err
	}

	return e.weight, nil
}

// Merge replays every entry of other through Add. other must be a *Graph.
// Merging a graph into itself is a no-op.
// Complexity: O(E' log E') for the snapshot of other plus O(E') adds.
func (g *Graph) Merge(other Structure) error {
	og, ok := other.(*Graph)
	if !ok {
		return ErrKindMismatch
	}
	if og == g {
		return nil
	}
	var e Entry
	for _, e = range og.Entries() {
		if _, err := g.Add(e.Item, e.Weight, e.Source); err != nil {
			return err
		}
	}

	return nil
}

// entries collects every distinct entry once. Caller holds mu.
func (g *Graph) entries() []*entry {
	out := make([]*entry, 0, g.itemCount)
	var slot map[string]*entry
	var e *entry
	for _, slot = range g.nodes {
		for _, e = range slot {
			out = append(out, e)
		}
	}
	seen := make(map[*entry]struct{})
	var row map[string]map[string]*entry
	for _, row = range g.adjacency {
		for _, slot = range row {
			for _, e = range slot {
				if _, dup := seen[e]; dup {
					continue
				}
				seen[e] = struct{}{}
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].item.Key() < out[j].item.Key() })

	return out
}

// Entries returns every distinct item with weight and source, sorted by item key.
// Complexity: O(N log N).
func (g *Graph) Entries() []Entry {
	g.mu.RLock()
	defer g.mu.RUnlock()

	raw := g.entries()
	out := make([]Entry, len(raw))
	for i, e := range raw {
		out[i] = Entry{Item: e.item, Weight: e.weight, Source: e.source}
	}

	return out
}

// ToList returns every distinct item once, sorted by item key.
func (g *Graph) ToList() []Item {
	g.mu.RLock()
	defer g.mu.RUnlock()

	raw := g.entries()
	out := make([]Item, len(raw))
	for i, e := range raw {
		out[i] = e.item
	}

	return out
}

// ItemCount returns the number of distinct items. Complexity: O(1).
func (g *Graph) ItemCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.itemCount
}

// TotalWeight returns the sum of all item weights. Complexity: O(N).
func (g *Graph) TotalWeight() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var total float64
	var e *entry
	for _, e = range g.entries() {
		total += e.weight
	}

	return total
}

// NewEmpty implements Structure.
func (g *Graph) NewEmpty() Structure {
	return g.CloneEmpty()
}

// CloneEmpty returns an empty Graph with identical configuration.
func (g *Graph) CloneEmpty() *Graph {
	return NewGraph(g.options()...)
}

// Clone returns a deep copy of g. Entries are copied, never shared.
// Complexity: O(N).
func (g *Graph) Clone() *Graph {
	clone := g.CloneEmpty()
	g.mu.RLock()
	defer g.mu.RUnlock()

	var e *entry
	for _, e = range g.entries() {
		clone.link(&entry{item: e.item, weight: e.weight, source: e.source})
	}

	return clone
}

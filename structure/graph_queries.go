// SPDX-License-Identifier: MIT
//
// File: graph_queries.go
// Role: Read-only queries over a Graph: nodes, slot contents, neighbors,
//       simple edge paths and open triangles.
// Determinism:
//   - Every list is sorted (node ids, item keys); path enumeration walks
//     nodes and neighbors in ascending order.
// Concurrency:
//   - Read lock on mu for the duration of each query.

package structure

import (
	"sort"
)

// Path is a chain of edges in which consecutive edges share a node.
// EdgePaths yields chains with e(i).Second == e(i+1).First; an open
// triangle may hold an ordered edge walked against its direction, which
// keeps its stored First and Second.
type Path struct {
	Edges   []Binary
	Weights []float64
	Sources []any
}

// Weight returns the total weight of the path.
func (p Path) Weight() float64 {
	var total float64
	var w float64
	for _, w = range p.Weights {
		total += w
	}

	return total
}

// Nodes returns the visited node ids in order.
func (p Path) Nodes() []string {
	if len(p.Edges) == 0 {
		return nil
	}
	start := p.Edges[0].First
	if len(p.Edges) > 1 {
		next := p.Edges[1]
		if start == next.First || start == next.Second {
			start = p.Edges[0].Second
		}
	}
	out := make([]string, 0, len(p.Edges)+1)
	out = append(out, start)
	cur := start
	var e Binary
	for _, e = range p.Edges {
		if e.First == cur {
			cur = e.Second
		} else {
			cur = e.First
		}
		out = append(out, cur)
	}

	return out
}

// orient returns the item stored behind e as seen from the (from, ...) side of a slot.
func (g *Graph) orient(e *entry, from string) Binary {
	b := e.item.(Binary)
	if b.First == from {
		return b
	}

	return g.Mirror(b)
}

// Nodes returns every node id that carries a node item or an edge endpoint, sorted.
// Complexity: O(V log V).
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.nodeIDs()
}

// nodeIDs lists node ids in ascending order. Caller holds mu.
func (g *Graph) nodeIDs() []string {
	set := make(map[string]struct{}, len(g.nodes)+len(g.adjacency))
	var id string
	var row map[string]map[string]*entry
	for id = range g.nodes {
		set[id] = struct{}{}
	}
	for id, row = range g.adjacency {
		set[id] = struct{}{}
		var to string
		for to = range row {
			set[to] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for id = range set {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}

// NodeItems returns the node items held for id, sorted by key.
func (g *Graph) NodeItems(id string) []Entry {
	g.mu.RLock()
	defer g.mu.RUnlock()

	slot := g.nodes[id]
	out := make([]Entry, 0, len(slot))
	var e *entry
	for _, e = range slot {
		out = append(out, Entry{Item: e.item, Weight: e.weight, Source: e.source})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.Key() < out[j].Item.Key() })

	return out
}

// EdgeItems returns the edge items held in slot (first, second), oriented
// from first to second and sorted by key. Mirrored unordered items appear
// with their inverse type.
func (g *Graph) EdgeItems(first, second string) []Entry {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.slotEntries(first, second, nil)
}

// slotEntries lists slot (first, second) minus ignored types. Caller holds mu.
func (g *Graph) slotEntries(first, second string, ignore map[string]struct{}) []Entry {
	slot := g.adjacency[first][second]
	out := make([]Entry, 0, len(slot))
	var e *entry
	for _, e = range slot {
		b := g.orient(e, first)
		if _, skip := ignore[b.Type]; skip {
			continue
		}
		out = append(out, Entry{Item: b, Weight: e.weight, Source: e.source})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.Key() < out[j].Item.Key() })

	return out
}

// HasEdge reports whether slot (first, second) holds at least one item.
// Unordered items are mirrored, so HasEdge works both ways for them.
func (g *Graph) HasEdge(first, second string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.adjacency[first][second]) > 0
}

// Neighbors returns the ids reachable from id through one occupied slot, sorted.
func (g *Graph) Neighbors(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.neighbors(id)
}

func (g *Graph) neighbors(id string) []string {
	row := g.adjacency[id]
	out := make([]string, 0, len(row))
	var to string
	for to = range row {
		out = append(out, to)
	}
	sort.Strings(out)

	return out
}

// pathWalker carries state for simple-path enumeration.
type pathWalker struct {
	g       *Graph
	length  int
	ignore  map[string]struct{}
	visited map[string]bool
	edges   []Binary
	weights []float64
	sources []any
	out     []Path
}

// EdgePaths returns every simple path of exactly length edges, skipping
// edges whose type is in ignore. A path whose reverse is also walkable
// (all edges unordered) is reported once, from its lexicographically
// smaller endpoint.
//
// Steps:
//  1. Walk depth-first from every node in ascending order.
//  2. Extend along each neighbor slot item, never revisiting a node.
//  3. At the target length, keep the path unless it is the reverse twin.
//
// Complexity: O(V·d^length) in the worst case.
func (g *Graph) EdgePaths(length int, ignore ...string) []Path {
	if length <= 0 {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	w := &pathWalker{
		g:       g,
		length:  length,
		ignore:  toSet(ignore),
		visited: make(map[string]bool),
	}
	var starts []string
	var id string
	for id = range g.adjacency {
		starts = append(starts, id)
	}
	sort.Strings(starts)
	for _, id = range starts {
		w.walk(id)
	}

	return w.out
}

func (w *pathWalker) walk(id string) {
	w.visited[id] = true
	defer delete(w.visited, id)

	if len(w.edges) == w.length {
		w.emit()

		return
	}
	var to string
	for _, to = range w.g.neighbors(id) {
		if w.visited[to] {
			continue
		}
		var e Entry
		for _, e = range w.g.slotEntries(id, to, w.ignore) {
			w.edges = append(w.edges, e.Item.(Binary))
			w.weights = append(w.weights, e.Weight)
			w.sources = append(w.sources, e.Source)
			w.walk(to)
			w.edges = w.edges[:len(w.edges)-1]
			w.weights = w.weights[:len(w.weights)-1]
			w.sources = w.sources[:len(w.sources)-1]
		}
	}
}

func (w *pathWalker) emit() {
	reversible := true
	var b Binary
	for _, b = range w.edges {
		if b.Orientation != Unordered {
			reversible = false

			break
		}
	}
	start, end := w.edges[0].First, w.edges[len(w.edges)-1].Second
	if reversible && start > end {
		return
	}
	w.out = append(w.out, Path{
		Edges:   append([]Binary(nil), w.edges...),
		Weights: append([]float64(nil), w.weights...),
		Sources: append([]any(nil), w.sources...),
	})
}

// incident is one edge touching a node, seen from that node.
type incident struct {
	other string
	e     *entry
}

// OpenTriangles returns every pair of edges a-b, b-c sharing node b, with
// a != c, for which neither slot (a, c) nor (c, a) holds a non-ignored
// item. Edges count whatever their direction, so two ordered edges into b
// or out of b also form an open triangle.
//
// Steps:
//  1. Index the non-ignored edges incident to each node, outgoing and
//     incoming, skipping self-loops.
//  2. For each node b in ascending order, pair its incident edges sorted by
//     (other endpoint, item key) so that a < c.
//  3. Drop closed pairs; orient unordered edges a->b and b->c.
//
// Complexity: O(E + sum over b of deg(b)^2).
func (g *Graph) OpenTriangles(ignore ...string) []Path {
	g.mu.RLock()
	defer g.mu.RUnlock()

	skip := toSet(ignore)

	// 1) incidence: unordered entries are linked from both ends, ordered
	// ones only under their First, so ordered edges are also indexed at Second
	touching := make(map[string][]incident)
	var from, to string
	var row map[string]map[string]*entry
	var slot map[string]*entry
	var e *entry
	for from, row = range g.adjacency {
		for to, slot = range row {
			if from == to {
				continue
			}
			for _, e = range slot {
				b := e.item.(Binary)
				if _, ignored := skip[g.orient(e, from).Type]; ignored {
					continue
				}
				touching[from] = append(touching[from], incident{other: to, e: e})
				if b.Orientation == Ordered {
					touching[to] = append(touching[to], incident{other: from, e: e})
				}
			}
		}
	}

	// 2-3) pairs around each shared node
	var out []Path
	var mid string
	for _, mid = range g.nodeIDs() {
		edges := touching[mid]
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].other != edges[j].other {
				return edges[i].other < edges[j].other
			}

			return edges[i].e.item.Key() < edges[j].e.item.Key()
		})
		for i := 0; i < len(edges); i++ {
			for j := i + 1; j < len(edges); j++ {
				a, c := edges[i].other, edges[j].other
				if a == c {
					continue
				}
				if len(g.slotEntries(a, c, skip)) > 0 || len(g.slotEntries(c, a, skip)) > 0 {
					continue
				}
				out = append(out, Path{
					Edges:   []Binary{g.towards(edges[i].e, a), g.towards(edges[j].e, mid)},
					Weights: []float64{edges[i].e.weight, edges[j].e.weight},
					Sources: []any{edges[i].e.source, edges[j].e.source},
				})
			}
		}
	}

	return out
}

// towards returns the item behind e starting at from when it is unordered,
// and as stored when it is ordered.
func (g *Graph) towards(e *entry, from string) Binary {
	b := e.item.(Binary)
	if b.Orientation == Ordered {
		return b
	}

	return g.orient(e, from)
}

// PathGraph returns a new Graph with g's configuration holding the edges of
// p, with their recorded sources.
func (g *Graph) PathGraph(p Path) *Graph {
	sub := g.CloneEmpty()
	for i, b := range p.Edges {
		var source any
		if i < len(p.Sources) {
			source = p.Sources[i]
		}
		// cannot fail: p was produced from valid items
		_, _ = sub.Add(b, p.Weights[i], source)
	}

	return sub
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	var v string
	for _, v = range values {
		set[v] = struct{}{}
	}

	return set
}

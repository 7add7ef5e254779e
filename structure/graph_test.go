// SPDX-License-Identifier: MIT
// Package structure_test verifies Graph slot policies and lifecycle contracts.

package structure_test

import (
	"math/rand"
	"testing"

	"github.com/cmunell/micro-util-sub002/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Common node ids and relation types used across structure tests.
const (
	NodeA = "a"
	NodeB = "b"
	NodeC = "c"
	NodeD = "d"

	TypeX      = "X"
	TypeY      = "Y"
	TypeBefore = "BEFORE"
	TypeAfter  = "AFTER"
)

func edge(t, first, second string) structure.Binary {
	return structure.Binary{Type: t, First: first, Second: second, Orientation: structure.Unordered}
}

func arc(t, first, second string) structure.Binary {
	return structure.Binary{Type: t, First: first, Second: second, Orientation: structure.Ordered}
}

func mustAdd(t *testing.T, s structure.Structure, item structure.Item, w float64) bool {
	t.Helper()
	changed, err := s.Add(item, w, nil)
	require.NoError(t, err)

	return changed
}

// TestGraph_MaxMonotonicity checks that non-increasing re-adds never lower
// the occupant weight and a strictly greater weight always raises it.
func TestGraph_MaxMonotonicity(t *testing.T) {
	g := structure.NewGraph(structure.WithOverwrite(structure.Max))
	x := edge(TypeX, NodeA, NodeB)

	require.True(t, mustAdd(t, g, x, 0.5))
	for _, w := range []float64{0.5, 0.4, 0.1, 0} {
		mustAdd(t, g, x, w)
		got, err := g.Weight(x)
		require.NoError(t, err)
		assert.Equal(t, 0.5, got)
	}

	require.True(t, mustAdd(t, g, x, 0.75))
	got, err := g.Weight(x)
	require.NoError(t, err)
	assert.Equal(t, 0.75, got)
	assert.Equal(t, 1, g.ItemCount())
}

// TestGraph_SourceFollowsWeight checks that the recorded source changes only
// when the weight strictly increases.
func TestGraph_SourceFollowsWeight(t *testing.T) {
	g := structure.NewGraph()
	x := edge(TypeX, NodeA, NodeB)
	sourceOf := func() any {
		entries := g.Entries()
		require.Len(t, entries, 1)

		return entries[0].Source
	}

	_, err := g.Add(x, 0.5, "d1")
	require.NoError(t, err)
	changed, err := g.Add(x, 0.5, "derived")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "d1", sourceOf())

	changed, err = g.Add(x, 0.8, "d2")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "d2", sourceOf())
}

// TestGraph_ConserveMonotonicity checks that no later add displaces or reweights an occupant.
func TestGraph_ConserveMonotonicity(t *testing.T) {
	g := structure.NewGraph(structure.WithOverwrite(structure.Conserve))
	x := edge(TypeX, NodeA, NodeB)
	y := edge(TypeY, NodeA, NodeB)

	require.True(t, mustAdd(t, g, x, 0.2))
	require.False(t, mustAdd(t, g, x, 0.9))
	require.False(t, mustAdd(t, g, y, 1.0))
	require.False(t, mustAdd(t, g, edge(TypeY, NodeB, NodeA), 1.0))

	got, err := g.Weight(x)
	require.NoError(t, err)
	assert.Equal(t, 0.2, got)
	assert.Equal(t, []structure.Item{x}, g.ToList())
}

// TestGraph_SingleSlotScenarios fixes the two-classifier outcomes: under Max the
// heavier label wins regardless of order, under Conserve the first label stays.
func TestGraph_SingleSlotScenarios(t *testing.T) {
	x := edge(TypeX, NodeA, NodeB)
	y := edge(TypeY, NodeA, NodeB)

	tests := []struct {
		name      string
		overwrite structure.Overwrite
		first     structure.Binary
		firstW    float64
		second    structure.Binary
		secondW   float64
		want      structure.Binary
	}{
		{"max X then Y", structure.Max, x, 0.90, y, 0.99, y},
		{"max Y then X", structure.Max, y, 0.99, x, 0.90, y},
		{"conserve X then Y", structure.Conserve, x, 0.90, y, 0.99, x},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := structure.NewGraph(structure.WithEdgeMode(structure.Single), structure.WithOverwrite(tc.overwrite))
			mustAdd(t, g, tc.first, tc.firstW)
			mustAdd(t, g, tc.second, tc.secondW)

			require.Equal(t, 1, g.ItemCount())
			assert.Equal(t, []structure.Item{tc.want}, g.ToList())
			items := g.EdgeItems(NodeB, NodeA)
			require.Len(t, items, 1)
			assert.Equal(t, tc.want.Type, items[0].Item.(structure.Binary).Type)
		})
	}
}

// TestGraph_MaxTieFavorsIncoming checks that equal weights let the new item win.
func TestGraph_MaxTieFavorsIncoming(t *testing.T) {
	g := structure.NewGraph()
	mustAdd(t, g, edge(TypeX, NodeA, NodeB), 0.5)
	require.True(t, mustAdd(t, g, edge(TypeY, NodeA, NodeB), 0.5))
	assert.Equal(t, []structure.Item{edge(TypeY, NodeA, NodeB)}, g.ToList())
}

// TestGraph_UndirectedSymmetry checks that an unordered edge appears mirrored
// with its inverse type and the same weight, in the same operation.
func TestGraph_UndirectedSymmetry(t *testing.T) {
	g := structure.NewGraph(structure.WithInverse(map[string]string{TypeBefore: TypeAfter}))
	before := edge(TypeBefore, NodeA, NodeB)
	mustAdd(t, g, before, 0.8)

	mirror := g.Mirror(before)
	assert.Equal(t, edge(TypeAfter, NodeB, NodeA), mirror)
	w, err := g.Weight(mirror)
	require.NoError(t, err)
	assert.Equal(t, 0.8, w)
	assert.True(t, g.HasEdge(NodeB, NodeA))
	assert.Equal(t, 1, g.ItemCount())

	// Raising the mirror raises the original.
	mustAdd(t, g, mirror, 0.9)
	w, err = g.Weight(before)
	require.NoError(t, err)
	assert.Equal(t, 0.9, w)
	assert.Equal(t, 1, g.ItemCount())
}

// TestGraph_OrderedEdgeHasNoMirror checks that ordered items occupy only their own slot.
func TestGraph_OrderedEdgeHasNoMirror(t *testing.T) {
	g := structure.NewGraph()
	mustAdd(t, g, arc(TypeX, NodeA, NodeB), 1)
	assert.True(t, g.HasEdge(NodeA, NodeB))
	assert.False(t, g.HasEdge(NodeB, NodeA))

	// A competing ordered item in the reverse slot coexists.
	require.True(t, mustAdd(t, g, arc(TypeY, NodeB, NodeA), 0.1))
	assert.Equal(t, 2, g.ItemCount())
}

// TestGraph_MirrorSlotCompetition checks that an unordered incoming item contests
// both slots and the loser leaves both of its slots.
func TestGraph_MirrorSlotCompetition(t *testing.T) {
	g := structure.NewGraph()
	mustAdd(t, g, arc(TypeX, NodeB, NodeA), 0.4)

	// Heavier unordered item evicts the ordered occupant of the mirror slot.
	require.True(t, mustAdd(t, g, edge(TypeY, NodeA, NodeB), 0.6))
	assert.Equal(t, []structure.Item{edge(TypeY, NodeA, NodeB)}, g.ToList())

	// Lighter ordered item loses against the unordered occupant.
	require.False(t, mustAdd(t, g, arc(TypeX, NodeB, NodeA), 0.5))

	// Heavier ordered item evicts the unordered occupant from both slots.
	require.True(t, mustAdd(t, g, arc(TypeX, NodeA, NodeB), 0.7))
	assert.False(t, g.HasEdge(NodeB, NodeA))
	assert.Equal(t, 1, g.ItemCount())
}

// TestGraph_OrientationIsIdentity checks that an ordered and an unordered item
// with the same type and endpoints are distinct items.
func TestGraph_OrientationIsIdentity(t *testing.T) {
	assert.NotEqual(t, arc(TypeX, NodeA, NodeB).Key(), edge(TypeX, NodeA, NodeB).Key())

	multi := structure.NewGraph(structure.WithEdgeMode(structure.Multi))
	require.True(t, mustAdd(t, multi, arc(TypeX, NodeA, NodeB), 0.5))
	require.True(t, mustAdd(t, multi, edge(TypeX, NodeA, NodeB), 0.9))
	assert.Equal(t, 2, multi.ItemCount())
	assert.True(t, multi.HasEdge(NodeB, NodeA))
	w, err := multi.Weight(arc(TypeX, NodeA, NodeB))
	require.NoError(t, err)
	assert.Equal(t, 0.5, w)

	// Single/Max: the unordered item contests the slot and takes the mirror too.
	single := structure.NewGraph()
	mustAdd(t, single, arc(TypeX, NodeA, NodeB), 0.5)
	require.True(t, mustAdd(t, single, edge(TypeX, NodeA, NodeB), 0.9))
	assert.Equal(t, 1, single.ItemCount())
	assert.True(t, single.HasEdge(NodeB, NodeA))
	assert.Equal(t, []structure.Item{edge(TypeX, NodeA, NodeB)}, single.ToList())
}

// TestGraph_KeyEscaping checks that ids containing the key separator do not collide.
func TestGraph_KeyEscaping(t *testing.T) {
	left := structure.Binary{Type: TypeX, First: "a|b", Second: "c", Orientation: structure.Ordered}
	right := structure.Binary{Type: TypeX, First: "a", Second: "b|c", Orientation: structure.Ordered}
	assert.NotEqual(t, left.Key(), right.Key())
	assert.NotEqual(t,
		structure.Unary{ID: `a\`, Type: "|b"}.Key(),
		structure.Unary{ID: `a\|`, Type: "b"}.Key())

	g := structure.NewGraph(structure.WithEdgeMode(structure.Multi))
	require.True(t, mustAdd(t, g, left, 0.4))
	require.True(t, mustAdd(t, g, right, 0.6))
	assert.Equal(t, 2, g.ItemCount())
	assert.Equal(t, g.ToList(), g.ToList())
	assert.ElementsMatch(t, []structure.Item{left, right}, g.ToList())
}

// TestGraph_MultiMode checks coexistence of distinct items and dedup of equal ones.
func TestGraph_MultiMode(t *testing.T) {
	g := structure.NewGraph(structure.WithEdgeMode(structure.Multi), structure.WithNodeMode(structure.Multi))
	require.True(t, mustAdd(t, g, edge(TypeX, NodeA, NodeB), 0.3))
	require.True(t, mustAdd(t, g, edge(TypeY, NodeA, NodeB), 0.9))
	require.False(t, mustAdd(t, g, edge(TypeX, NodeA, NodeB), 0.3))
	require.True(t, mustAdd(t, g, structure.Unary{ID: NodeA, Type: TypeX}, 1))
	require.True(t, mustAdd(t, g, structure.Unary{ID: NodeA, Type: TypeY}, 1))

	assert.Equal(t, 4, g.ItemCount())
	assert.Len(t, g.EdgeItems(NodeB, NodeA), 2)
	assert.Len(t, g.NodeItems(NodeA), 2)
}

// TestGraph_NodeSingleMode checks unary conflict resolution without mirroring.
func TestGraph_NodeSingleMode(t *testing.T) {
	g := structure.NewGraph()
	mustAdd(t, g, structure.Unary{ID: NodeA, Type: TypeX}, 0.9)
	require.False(t, mustAdd(t, g, structure.Unary{ID: NodeA, Type: TypeY}, 0.1))
	require.True(t, mustAdd(t, g, structure.Unary{ID: NodeA, Type: TypeY}, 0.95))

	items := g.NodeItems(NodeA)
	require.Len(t, items, 1)
	assert.Equal(t, structure.Unary{ID: NodeA, Type: TypeY}, items[0].Item)
}

// TestGraph_Preconditions checks the fail-fast errors.
func TestGraph_Preconditions(t *testing.T) {
	g := structure.NewGraph()

	_, err := g.Add(structure.Binary{Type: TypeX, First: NodeA, Second: NodeB}, 1, nil)
	require.ErrorIs(t, err, structure.ErrUndefinedOrientation)

	_, err = g.Add(edge(TypeX, "", NodeB), 1, nil)
	require.ErrorIs(t, err, structure.ErrEmptyID)

	_, err = g.Add(structure.Unary{Type: TypeX}, 1, nil)
	require.ErrorIs(t, err, structure.ErrEmptyID)

	_, err = g.Weight(edge(TypeX, NodeA, NodeB))
	require.ErrorIs(t, err, structure.ErrItemNotFound)

	require.ErrorIs(t, g.Merge(structure.NewSequence(structure.Max)), structure.ErrKindMismatch)
	assert.Equal(t, 0, g.ItemCount())
}

// TestGraph_Remove checks removal of items and of mirrored items.
func TestGraph_Remove(t *testing.T) {
	g := structure.NewGraph(structure.WithInverse(map[string]string{TypeBefore: TypeAfter}))
	before := edge(TypeBefore, NodeA, NodeB)
	mustAdd(t, g, before, 1)
	mustAdd(t, g, structure.Unary{ID: NodeC, Type: TypeX}, 1)

	ok, err := g.Remove(g.Mirror(before))
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, g.HasEdge(NodeA, NodeB))
	assert.False(t, g.HasEdge(NodeB, NodeA))

	ok, err = g.Remove(before)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = g.Remove(structure.Unary{ID: NodeC, Type: TypeX})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, g.ItemCount())
	assert.Empty(t, g.Nodes())
}

// TestGraph_MergeUnion checks that merging disjoint structures yields the
// union of their lists and that merging an empty structure is a no-op.
func TestGraph_MergeUnion(t *testing.T) {
	s1 := structure.NewGraph()
	mustAdd(t, s1, edge(TypeX, NodeA, NodeB), 1)
	mustAdd(t, s1, structure.Unary{ID: NodeA, Type: TypeX}, 0.5)
	s2 := structure.NewGraph()
	mustAdd(t, s2, arc(TypeY, NodeC, NodeD), 2)

	want := append(s1.ToList(), s2.ToList()...)

	require.NoError(t, s1.Merge(s2))
	assert.ElementsMatch(t, want, s1.ToList())
	assert.Equal(t, 3, s1.ItemCount())
	assert.InDelta(t, 3.5, s1.TotalWeight(), 1e-9)

	before := s1.Entries()
	require.NoError(t, s1.Merge(s1.CloneEmpty()))
	require.NoError(t, s1.Merge(s1))
	assert.Equal(t, before, s1.Entries())
}

// TestGraph_ItemCountInvariant drives a random add/remove sequence and checks
// ItemCount against ToList after every step.
func TestGraph_ItemCountInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	nodes := []string{NodeA, NodeB, NodeC, NodeD}
	types := []string{TypeX, TypeY, TypeBefore}
	for _, mode := range []structure.Mode{structure.Single, structure.Multi} {
		for _, ow := range []structure.Overwrite{structure.Max, structure.Conserve} {
			g := structure.NewGraph(structure.WithEdgeMode(mode), structure.WithNodeMode(mode), structure.WithOverwrite(ow),
				structure.WithInverse(map[string]string{TypeBefore: TypeAfter}))
			for i := 0; i < 500; i++ {
				var item structure.Item
				switch rng.Intn(3) {
				case 0:
					item = structure.Unary{ID: nodes[rng.Intn(len(nodes))], Type: types[rng.Intn(len(types))]}
				case 1:
					item = edge(types[rng.Intn(len(types))], nodes[rng.Intn(len(nodes))], nodes[rng.Intn(len(nodes))])
				default:
					item = arc(types[rng.Intn(len(types))], nodes[rng.Intn(len(nodes))], nodes[rng.Intn(len(nodes))])
				}
				if rng.Intn(4) == 0 {
					_, err := g.Remove(item)
					require.NoError(t, err)
				} else {
					_, err := g.Add(item, rng.Float64(), nil)
					require.NoError(t, err)
				}
				require.Equal(t, len(g.ToList()), g.ItemCount(), "mode=%s overwrite=%s step=%d", mode, ow, i)
			}
		}
	}
}

// TestGraph_Clone checks that a clone is deep and keeps configuration.
func TestGraph_Clone(t *testing.T) {
	g := structure.NewGraph(structure.WithOverwrite(structure.Conserve))
	mustAdd(t, g, edge(TypeX, NodeA, NodeB), 1)

	c := g.Clone()
	assert.Equal(t, g.Entries(), c.Entries())
	assert.Equal(t, structure.Conserve, c.Overwrite())

	mustAdd(t, c, edge(TypeX, NodeC, NodeD), 1)
	assert.Equal(t, 1, g.ItemCount())
	assert.Equal(t, 2, c.ItemCount())
}

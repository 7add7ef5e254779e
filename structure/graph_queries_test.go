// SPDX-License-Identifier: MIT

package structure_test

import (
	"testing"

	"github.com/cmunell/micro-util-sub002/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGraph_EdgePathsChain fixes the chain scenario: a-b-c with two unordered
// edges of weight 1 yields exactly one length-2 path of weight 2.
func TestGraph_EdgePathsChain(t *testing.T) {
	g := structure.NewGraph()
	mustAdd(t, g, edge(TypeX, NodeA, NodeB), 1)
	mustAdd(t, g, edge(TypeX, NodeB, NodeC), 1)

	paths := g.EdgePaths(2)
	require.Len(t, paths, 1)
	assert.Equal(t, []structure.Binary{edge(TypeX, NodeA, NodeB), edge(TypeX, NodeB, NodeC)}, paths[0].Edges)
	assert.Equal(t, 2.0, paths[0].Weight())
	assert.Equal(t, []string{NodeA, NodeB, NodeC}, paths[0].Nodes())

	assert.Len(t, g.EdgePaths(1), 2)
	assert.Empty(t, g.EdgePaths(3))
	assert.Empty(t, g.EdgePaths(0))
}

// TestGraph_EdgePathsOrdered checks that ordered edges are walked one way only.
func TestGraph_EdgePathsOrdered(t *testing.T) {
	g := structure.NewGraph()
	mustAdd(t, g, arc(TypeX, NodeC, NodeB), 1)
	mustAdd(t, g, arc(TypeX, NodeB, NodeA), 0.5)

	paths := g.EdgePaths(2)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{NodeC, NodeB, NodeA}, paths[0].Nodes())
	assert.Equal(t, 1.5, paths[0].Weight())
}

// TestGraph_EdgePathsIgnore checks that ignored types break paths.
func TestGraph_EdgePathsIgnore(t *testing.T) {
	g := structure.NewGraph()
	mustAdd(t, g, edge(TypeX, NodeA, NodeB), 1)
	mustAdd(t, g, edge(TypeY, NodeB, NodeC), 1)

	assert.Len(t, g.EdgePaths(2), 1)
	assert.Empty(t, g.EdgePaths(2, TypeY))
}

// TestGraph_OpenTriangles checks that closed triangles are not reported.
func TestGraph_OpenTriangles(t *testing.T) {
	g := structure.NewGraph()
	mustAdd(t, g, edge(TypeX, NodeA, NodeB), 1)
	mustAdd(t, g, edge(TypeX, NodeB, NodeC), 1)

	open := g.OpenTriangles()
	require.Len(t, open, 1)
	assert.Equal(t, []string{NodeA, NodeB, NodeC}, open[0].Nodes())

	mustAdd(t, g, edge(TypeY, NodeA, NodeC), 1)
	assert.Empty(t, g.OpenTriangles())
	// Ignoring the closing type reopens a-b-c only.
	reopened := g.OpenTriangles(TypeY)
	require.Len(t, reopened, 1)
	assert.Equal(t, []string{NodeA, NodeB, NodeC}, reopened[0].Nodes())
}

// TestGraph_OpenTrianglesOrdered checks that two ordered edges sharing a node
// form an open triangle whichever way they point.
func TestGraph_OpenTrianglesOrdered(t *testing.T) {
	tests := []struct {
		name   string
		first  structure.Binary
		second structure.Binary
	}{
		{"chain", arc(TypeX, NodeA, NodeB), arc(TypeX, NodeB, NodeC)},
		{"both into b", arc(TypeX, NodeA, NodeB), arc(TypeX, NodeC, NodeB)},
		{"both out of b", arc(TypeX, NodeB, NodeA), arc(TypeX, NodeB, NodeC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := structure.NewGraph()
			mustAdd(t, g, tt.first, 0.25)
			mustAdd(t, g, tt.second, 0.5)

			open := g.OpenTriangles()
			require.Len(t, open, 1)
			assert.Equal(t, []string{NodeA, NodeB, NodeC}, open[0].Nodes())
			assert.Equal(t, []structure.Binary{tt.first, tt.second}, open[0].Edges)
			assert.Equal(t, 0.75, open[0].Weight())

			mustAdd(t, g, arc(TypeY, NodeC, NodeA), 1)
			assert.Empty(t, g.OpenTriangles())
		})
	}
}

// TestGraph_PathGraph checks the sub-graph view of a path.
func TestGraph_PathGraph(t *testing.T) {
	g := structure.NewGraph(structure.WithOverwrite(structure.Conserve))
	mustAdd(t, g, edge(TypeX, NodeA, NodeB), 1)
	mustAdd(t, g, edge(TypeX, NodeB, NodeC), 3)

	sub := g.PathGraph(g.EdgePaths(2)[0])
	assert.Equal(t, 2, sub.ItemCount())
	assert.Equal(t, 4.0, sub.TotalWeight())
	assert.Equal(t, 2.0, structure.MeanWeight(sub))
	assert.Equal(t, structure.Conserve, sub.Overwrite())
}

// TestGraph_PathGraphKeepsSources checks that path sub-graphs carry the
// provenance recorded in the parent.
func TestGraph_PathGraphKeepsSources(t *testing.T) {
	g := structure.NewGraph()
	_, err := g.Add(edge(TypeX, NodeA, NodeB), 1, "d1")
	require.NoError(t, err)
	_, err = g.Add(edge(TypeX, NodeB, NodeC), 1, "d2")
	require.NoError(t, err)

	for _, p := range append(g.EdgePaths(2), g.OpenTriangles()...) {
		require.Equal(t, []any{"d1", "d2"}, p.Sources)
		sources := make(map[string]any)
		for _, e := range g.PathGraph(p).Entries() {
			sources[e.Item.Key()] = e.Source
		}
		assert.Equal(t, map[string]any{
			edge(TypeX, NodeA, NodeB).Key(): "d1",
			edge(TypeX, NodeB, NodeC).Key(): "d2",
		}, sources)
	}
}

// TestGraph_NodesAndNeighbors checks sorted listings.
func TestGraph_NodesAndNeighbors(t *testing.T) {
	g := structure.NewGraph()
	mustAdd(t, g, arc(TypeX, NodeC, NodeA), 1)
	mustAdd(t, g, edge(TypeX, NodeC, NodeB), 1)
	mustAdd(t, g, structure.Unary{ID: NodeD, Type: TypeX}, 1)

	assert.Equal(t, []string{NodeA, NodeB, NodeC, NodeD}, g.Nodes())
	assert.Equal(t, []string{NodeA, NodeB}, g.Neighbors(NodeC))
	assert.Equal(t, []string{NodeC}, g.Neighbors(NodeB))
	assert.Empty(t, g.Neighbors(NodeA))
}

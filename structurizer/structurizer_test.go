// SPDX-License-Identifier: MIT

package structurizer_test

import (
	"testing"

	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/structure"
	"github.com/cmunell/micro-util-sub002/structurizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(id, partition, first, second string) model.PairDatum {
	return model.PairDatum{ID: id, Partition: partition, First: first, Second: second}
}

func TestBestLabel(t *testing.T) {
	cases := []struct {
		name   string
		labels map[string]float64
		want   string
		weight float64
		ok     bool
	}{
		{"empty", map[string]float64{}, "", 0, false},
		{"nil", nil, "", 0, false},
		{"single", map[string]float64{"X": 0.3}, "X", 0.3, true},
		{"max wins", map[string]float64{"X": 0.3, "Y": 0.9, "Z": 0.5}, "Y", 0.9, true},
		{"tie is lexicographic", map[string]float64{"Z": 0.7, "B": 0.7, "M": 0.7}, "B", 0.7, true},
		{"zero weight", map[string]float64{"X": 0}, "X", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				label, w, ok := structurizer.BestLabel(tc.labels)
				require.Equal(t, tc.ok, ok)
				require.Equal(t, tc.want, label)
				require.Equal(t, tc.weight, w)
			}
		})
	}
}

func TestChanges(t *testing.T) {
	ch := structurizer.NewChanges()
	ch.Record("doc2", structure.Unary{ID: "a", Type: "X"})
	ch.Record("doc1", nil)
	ch.Record("doc2", structure.Unary{ID: "b", Type: "X"})

	assert.Equal(t, []string{"doc1", "doc2"}, ch.Partitions())
	assert.Equal(t, 2, ch.Len())
	assert.Len(t, ch.Items("doc2"), 2)
	assert.Empty(t, ch.Items("doc1"))

	ch.Reset()
	assert.Zero(t, ch.Len())
	assert.Empty(t, ch.Partitions())
}

func TestPairs_AddAndLabels(t *testing.T) {
	p := structurizer.NewPairs("pairs", structurizer.WithGraphOptions(
		structure.WithInverse(map[string]string{"BEFORE": "AFTER"}),
	))
	s := p.MakeStructures()
	assert.Empty(t, s)

	ch := structurizer.NewChanges()
	changed, err := p.AddToStructures(pair("d1", "doc1", "e1", "e2"), "BEFORE", 0.8, s, ch)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Contains(t, s, "doc1")
	assert.Equal(t, []string{"doc1"}, ch.Partitions())

	labels, err := p.Labels(pair("d1", "doc1", "e1", "e2"), s)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"BEFORE": 0.8}, labels)

	// the reverse pair reads the inverse relation
	labels, err = p.Labels(pair("d2", "doc1", "e2", "e1"), s)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"AFTER": 0.8}, labels)

	// unknown partition and empty slot are not errors
	labels, err = p.Labels(pair("d3", "doc9", "e1", "e2"), s)
	require.NoError(t, err)
	assert.Empty(t, labels)
}

func TestPairs_Contest(t *testing.T) {
	cases := []struct {
		name      string
		overwrite structure.Overwrite
		want      string
	}{
		{"max keeps heavier", structure.Max, "Y"},
		{"conserve keeps first", structure.Conserve, "X"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := structurizer.NewPairs("pairs", structurizer.WithGraphOptions(structure.WithOverwrite(tc.overwrite)))
			s := p.MakeStructures()
			d := pair("d1", "doc1", "a", "b")
			_, err := p.AddToStructures(d, "X", 0.90, s, nil)
			require.NoError(t, err)
			_, err = p.AddToStructures(d, "Y", 0.99, s, nil)
			require.NoError(t, err)

			ds := &model.Dataset{Name: "dev", Kind: structurizer.KindPair, Data: []model.Datum{d}}
			out, err := structurizer.Extract(p, ds, s)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out["d1"].Label)
		})
	}
}

func TestPairs_Ordered(t *testing.T) {
	p := structurizer.NewPairs("pairs", structurizer.WithOrdered(true))
	s := p.MakeStructures()
	_, err := p.AddToStructures(pair("d1", "doc1", "a", "b"), "X", 1, s, nil)
	require.NoError(t, err)

	labels, err := p.Labels(pair("d2", "doc1", "b", "a"), s)
	require.NoError(t, err)
	assert.Empty(t, labels)
}

func TestPairs_WrongInputs(t *testing.T) {
	p := structurizer.NewPairs("pairs")
	s := p.MakeStructures()

	_, err := p.AddToStructures(model.NodeDatum{ID: "n", Partition: "doc1", Node: "a"}, "X", 1, s, nil)
	require.ErrorIs(t, err, structurizer.ErrWrongDatum)

	s["doc1"] = structure.NewSequence(structure.Max)
	_, err = p.Labels(pair("d1", "doc1", "a", "b"), s)
	require.ErrorIs(t, err, structurizer.ErrWrongStructure)

	_, err = p.AddToStructures(pair("d1", "doc1", "a", "b"), "X", 1, s, nil)
	require.ErrorIs(t, err, structure.ErrWrongItemKind)

	assert.True(t, p.MatchesData(&model.Dataset{Kind: structurizer.KindPair}))
	assert.False(t, p.MatchesData(&model.Dataset{Kind: structurizer.KindNode}))
}

func TestNodes(t *testing.T) {
	factories := map[string]func() structure.Structure{
		"graph":    func() structure.Structure { return structure.NewGraph() },
		"sequence": func() structure.Structure { return structure.NewSequence(structure.Max) },
	}
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			n := structurizer.NewNodes("nodes", structurizer.WithFactory(factory), structurizer.WithKinds("entity"))
			assert.True(t, n.MatchesData(&model.Dataset{Kind: "entity"}))

			s := n.MakeStructures()
			ch := structurizer.NewChanges()
			for _, w := range []struct {
				node, label string
				score       float64
			}{{"a", "PER", 0.6}, {"a", "ORG", 0.7}, {"b", "LOC", 0.5}} {
				_, err := n.AddToStructures(model.NodeDatum{ID: w.node, Partition: "doc1", Node: w.node}, w.label, w.score, s, ch)
				require.NoError(t, err)
			}
			labels, err := n.Labels(model.NodeDatum{ID: "x", Partition: "doc1", Node: "b"}, s)
			require.NoError(t, err)
			assert.Equal(t, map[string]float64{"LOC": 0.5}, labels)

			ds := &model.Dataset{Kind: "entity", Data: []model.Datum{
				model.NodeDatum{ID: "a", Partition: "doc1", Node: "a"},
				model.NodeDatum{ID: "c", Partition: "doc1", Node: "c"},
			}}
			out, err := structurizer.Extract(n, ds, s)
			require.NoError(t, err)
			assert.NotContains(t, out, "c")
			assert.Equal(t, model.Scored{Label: "ORG", Score: 0.7}, out["a"])
		})
	}
}

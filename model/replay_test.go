// SPDX-License-Identifier: MIT

package model_test

import (
	"context"
	"testing"

	"github.com/cmunell/micro-util-sub002/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairs(name string, gold map[string]string, ids ...string) *model.Dataset {
	ds := &model.Dataset{Name: name, Kind: "pair", Gold: gold}
	for _, id := range ids {
		ds.Data = append(ds.Data, model.PairDatum{ID: id, Partition: "doc1", First: id + "a", Second: id + "b"})
	}

	return ds
}

func TestReplay_Classify(t *testing.T) {
	ctx := context.Background()
	r := model.NewReplay("rules", []string{"pair"}, map[string]map[string]model.Scored{
		"dev": {"d1": {Label: "X", Score: 0.9}, "zz": {Label: "Y", Score: 1}},
	})
	ds := pairs("dev", nil, "d1", "d2")

	assert.True(t, r.MatchesData(ds))
	assert.False(t, r.MatchesData(&model.Dataset{Kind: "node"}))
	require.NoError(t, r.Init(ctx, ds))

	scored, err := r.ClassifyWithScore(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, map[string]model.Scored{"d1": {Label: "X", Score: 0.9}}, scored)

	labels, err := r.Classify(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"d1": "X"}, labels)
}

func TestAccuracyQuality(t *testing.T) {
	ctx := context.Background()
	ds := pairs("dev", map[string]string{"d1": "X", "d2": "Y", "d3": "X", "d4": "Y"}, "d1", "d2", "d3", "d4")
	r := model.NewReplay("m", nil, map[string]map[string]model.Scored{
		"dev": {"d1": {Label: "X"}, "d2": {Label: "X"}, "d3": {Label: "X"}},
	})
	q := model.NewAccuracyQuality(r, ds)

	v, err := q.Compute(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)
	n, err := q.SampleSize(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = model.NewAccuracyQuality(r, pairs("dev", nil, "d1")).Compute(ctx, true)
	require.ErrorIs(t, err, model.ErrNoGold)
}

func TestSortedIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, model.SortedIDs(map[string]int{"c": 1, "a": 2, "b": 3}))
	assert.Equal(t, []string{"d1", "d2"}, pairs("x", nil, "d1", "d2").IDs())
}

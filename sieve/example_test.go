// SPDX-License-Identifier: MIT

package sieve_test

import (
	"context"
	"fmt"

	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/sieve"
	"github.com/cmunell/micro-util-sub002/structure"
	"github.com/cmunell/micro-util-sub002/structurizer"
)

// ExampleNew merges a precise rule system with a broader tagger. Under
// Conserve the earlier, higher-quality method keeps contested slots.
func ExampleNew() {
	ds := &model.Dataset{Name: "dev", Kind: structurizer.KindPair, Data: []model.Datum{
		model.PairDatum{ID: "d1", Partition: "doc1", First: "e1", Second: "e2"},
		model.PairDatum{ID: "d2", Partition: "doc1", First: "e2", Second: "e3"},
	}}
	rules := model.NewReplay("rules", nil, map[string]map[string]model.Scored{
		"dev": {"d1": {Label: "BEFORE", Score: 0.9}},
	})
	tagger := model.NewReplay("tagger", nil, map[string]map[string]model.Scored{
		"dev": {"d1": {Label: "AFTER", Score: 0.95}, "d2": {Label: "BEFORE", Score: 0.6}},
	})

	e, err := sieve.New(
		[]sieve.Method{
			{Classifier: tagger, Quality: model.FixedQuality{Value: 0.7, N: 100}},
			{Classifier: rules, Quality: model.FixedQuality{Value: 0.9, N: 100}},
		},
		[]structurizer.Structurizer{structurizer.NewPairs("pairs",
			structurizer.WithGraphOptions(structure.WithOverwrite(structure.Conserve)))},
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	out, err := e.Classify(context.Background(), []*model.Dataset{ds})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(out[0]["d1"], out[0]["d2"])
	// Output: BEFORE BEFORE
}

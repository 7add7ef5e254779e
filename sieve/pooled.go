// SPDX-License-Identifier: MIT
//
// File: pooled.go
// Role: the pooled engine shared by RandomSieve and PrecedenceScore, and
//       PrecedenceScore itself.

package sieve

import (
	"context"
	"sort"

	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/structurizer"
)

// drawn is a prediction with the score that places it in the pooled order.
type drawn struct {
	pred  model.Prediction
	score float64
}

// applyPooled pushes every prediction in one global order of descending
// score. Predictions sharing a score form a batch: the dirty partitions are
// transformed only when the score changes, and once more at the end.
// Equal scores keep the input order.
func applyPooled(ctx context.Context, p *pass, preds []drawn) (IterationStats, error) {
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].score > preds[j].score })

	var stats IterationStats
	batch := 0
	closeBatch := func(score float64) error {
		derived, err := p.transformDirty(ctx)
		if err != nil {
			return err
		}
		batch += derived
		stats.Added += batch
		stats.WeightedAdds += score * float64(batch)
		batch = 0

		return nil
	}

	for i, d := range preds {
		if i > 0 && d.score != preds[i-1].score {
			if err := closeBatch(preds[i-1].score); err != nil {
				return stats, err
			}
		}
		added, err := p.add(d.pred)
		if err != nil {
			return stats, err
		}
		batch += added
	}
	if len(preds) > 0 {
		if err := closeBatch(preds[len(preds)-1].score); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// collectAll gathers the predictions of every method in configuration order.
func collectAll(ctx context.Context, methods []Method, datasets []*model.Dataset) ([]model.Prediction, error) {
	var out []model.Prediction
	for mi, m := range methods {
		preds, err := collect(ctx, mi, m, datasets)
		if err != nil {
			return nil, err
		}
		out = append(out, preds...)
	}

	return out, nil
}

// PrecedenceScore pools the predictions of all classifiers and applies them
// by descending confidence in a single deterministic pass.
type PrecedenceScore struct {
	methods       []Method
	structurizers []structurizer.Structurizer
	opts          Options
}

// NewPrecedenceScore creates a PrecedenceScore engine.
// Errors: ErrNoMethods, ErrNoStructurizer when structurizers is empty.
func NewPrecedenceScore(methods []Method, structurizers []structurizer.Structurizer, opts ...Option) (*PrecedenceScore, error) {
	if len(methods) == 0 {
		return nil, ErrNoMethods
	}
	if len(structurizers) == 0 {
		return nil, ErrNoStructurizer
	}

	return &PrecedenceScore{methods: methods, structurizers: structurizers, opts: applyOptions(opts)}, nil
}

// ClassifyWithScore implements Engine.
func (e *PrecedenceScore) ClassifyWithScore(ctx context.Context, datasets []*model.Dataset) ([]map[string]model.Scored, error) {
	slot, err := resolveStructurizers(datasets, e.structurizers)
	if err != nil {
		return nil, err
	}
	logUncovered(e.methods, datasets)

	preds, err := collectAll(ctx, e.methods, datasets)
	if err != nil {
		return nil, err
	}
	pool := make([]drawn, len(preds))
	for i, pr := range preds {
		pool[i] = drawn{pred: pr, score: pr.Score}
	}

	p := newPass(&e.opts, datasets, e.structurizers, slot)
	if _, err = applyPooled(ctx, p, pool); err != nil {
		return nil, err
	}

	return p.extract()
}

// Classify implements Engine.
func (e *PrecedenceScore) Classify(ctx context.Context, datasets []*model.Dataset) ([]map[string]string, error) {
	scored, err := e.ClassifyWithScore(ctx, datasets)
	if err != nil {
		return nil, err
	}

	return labelsOf(scored), nil
}

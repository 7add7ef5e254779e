// SPDX-License-Identifier: MIT
//
// File: random.go
// Role: RandomSieve, a Monte-Carlo search over classifier precedence.

package sieve

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cmunell/micro-util-sub002/logger"
	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/structurizer"
)

// RandomSieve pools every prediction and orders it by a score drawn inside
// the confidence interval of its classifier's quality. The draw-apply-extract
// cycle repeats for Iterations draws and the best iteration is returned.
type RandomSieve struct {
	methods       []Method
	structurizers []structurizer.Structurizer
	opts          Options
}

// NewRandomSieve creates a RandomSieve.
// Errors: ErrNoMethods, ErrNoStructurizer when structurizers is empty.
func NewRandomSieve(methods []Method, structurizers []structurizer.Structurizer, opts ...Option) (*RandomSieve, error) {
	if len(methods) == 0 {
		return nil, ErrNoMethods
	}
	if len(structurizers) == 0 {
		return nil, ErrNoStructurizer
	}

	return &RandomSieve{methods: methods, structurizers: structurizers, opts: applyOptions(opts)}, nil
}

// DrawScore draws a precedence score for a classifier of quality q measured
// on n samples: uniform in [q-h, q+h] clipped to [0, 1], where
// h = z*sqrt(q(1-q)/n). With n = 0 the score is uniform in [0, 1).
func DrawScore(rng *rand.Rand, q float64, n int, z float64) float64 {
	u := rng.Float64()
	if n <= 0 {
		return u
	}
	q = math.Min(math.Max(q, 0), 1)
	h := z * math.Sqrt(q*(1-q)/float64(n))
	s := q - h + 2*h*u

	return math.Min(math.Max(s, 0), 1)
}

func (r *RandomSieve) newRand() *rand.Rand {
	seed := time.Now().UnixNano()
	if r.opts.Seed != nil {
		seed = *r.opts.Seed
	}

	return rand.New(rand.NewSource(seed))
}

// ClassifyWithScore implements Engine.
//
// Steps:
//  1. Classify once with every method and read every quality estimate.
//  2. Per iteration: draw a score per prediction, apply the pool in
//     descending order on fresh structures, extract labels and score the
//     iteration with the Best policy.
//  3. Return the labels of the best iteration, the earliest on ties.
func (r *RandomSieve) ClassifyWithScore(ctx context.Context, datasets []*model.Dataset) ([]map[string]model.Scored, error) {
	slot, err := resolveStructurizers(datasets, r.structurizers)
	if err != nil {
		return nil, err
	}
	logUncovered(r.methods, datasets)

	// 1) classify and measure
	preds, err := collectAll(ctx, r.methods, datasets)
	if err != nil {
		return nil, err
	}
	quality := make([]float64, len(r.methods))
	samples := make([]int, len(r.methods))
	for i, m := range r.methods {
		if quality[i], samples[i], err = m.quality(ctx); err != nil {
			return nil, fmt.Errorf("quality of %s: %w", m.Name(), err)
		}
	}

	// 2) iterate
	rng := r.newRand()
	var best []map[string]model.Scored
	bestScore := math.Inf(-1)
	for it := 0; it < r.opts.Iterations; it++ {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		pool := make([]drawn, len(preds))
		for i, pr := range preds {
			pool[i] = drawn{pred: pr, score: DrawScore(rng, quality[pr.Method], samples[pr.Method], r.opts.Z)}
		}
		p := newPass(&r.opts, datasets, r.structurizers, slot)
		stats, err := applyPooled(ctx, p, pool)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", it, err)
		}
		stats.Iteration = it
		out, err := p.extract()
		if err != nil {
			return nil, err
		}
		score := r.opts.Best(stats)
		logger.Debug("[RandomSieve] iteration", "iteration", it, "added", stats.Added, "weighted", stats.WeightedAdds, "score", score)

		// 3) keep the best, earliest on ties
		if best == nil || score > bestScore {
			best, bestScore = out, score
		}
	}

	return best, nil
}

// Classify implements Engine.
func (r *RandomSieve) Classify(ctx context.Context, datasets []*model.Dataset) ([]map[string]string, error) {
	scored, err := r.ClassifyWithScore(ctx, datasets)
	if err != nil {
		return nil, err
	}

	return labelsOf(scored), nil
}

// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Engine contract, methods, options and sentinel errors shared by
//       Sieve, RandomSieve and PrecedenceScore.

package sieve

import (
	"context"
	"errors"

	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/transform"
	"github.com/cmunell/micro-util-sub002/workpool"
)

var (
	// ErrNoMethods indicates an engine configured without classifiers.
	ErrNoMethods = errors.New("sieve: no methods configured")

	// ErrNoStructurizer indicates a dataset no configured structurizer matches.
	ErrNoStructurizer = errors.New("sieve: no structurizer matches dataset")

	// ErrUnknownMethod indicates an explicit order naming an unconfigured method.
	ErrUnknownMethod = errors.New("sieve: unknown method in order")
)

// Engine is the public face of every sieve variant. Both calls return one
// map per input dataset, in input order, keyed by datum id. Data without a
// label after extraction are absent.
type Engine interface {
	Classify(ctx context.Context, datasets []*model.Dataset) ([]map[string]string, error)
	ClassifyWithScore(ctx context.Context, datasets []*model.Dataset) ([]map[string]model.Scored, error)
}

// Method is one classifier taking part in a sieve, with the measure used to
// rank it. A nil Quality ranks as 0 with sample size 0.
type Method struct {
	Classifier model.Classifier
	Quality    model.QualityMeasure
}

// Name returns the classifier name.
func (m Method) Name() string { return m.Classifier.Name() }

// quality returns the cached quality estimate and its sample size.
func (m Method) quality(ctx context.Context) (float64, int, error) {
	if m.Quality == nil {
		return 0, 0, nil
	}
	q, err := m.Quality.Compute(ctx, false)
	if err != nil {
		return 0, 0, err
	}
	n, err := m.Quality.SampleSize(ctx, false)
	if err != nil {
		return 0, 0, err
	}

	return q, n, nil
}

// IterationStats summarizes one RandomSieve iteration.
type IterationStats struct {
	// Iteration is the zero-based iteration index.
	Iteration int
	// Added counts items added to the structures, transform-derived items
	// included. Reweights and one-for-one displacements add nothing.
	Added int
	// WeightedAdds is the sum over batches of score times items added.
	WeightedAdds float64
}

// BestIteration scores an iteration; RandomSieve keeps the iteration with
// the greatest score, the earliest one on ties.
type BestIteration func(stats IterationStats) float64

// MaxWeightedAdds prefers the iteration with the largest cumulative
// score times items added.
func MaxWeightedAdds(stats IterationStats) float64 { return stats.WeightedAdds }

// Option configures an engine.
type Option func(*Options)

// Options holds engine parameters. Each engine reads the fields it uses.
type Options struct {
	// Transforms run, in order, over every dirty partition after a batch.
	Transforms []transform.Transform

	// Pool runs the per-partition transforms. Defaults to a GOMAXPROCS pool.
	Pool *workpool.Pool

	// Order fixes the Sieve method order by name. Named methods run first in
	// the given order; the rest follow by descending quality.
	Order []string

	// Iterations is the number of RandomSieve draws. Default 10.
	Iterations int

	// Z scales the RandomSieve confidence interval. Default 1.96.
	Z float64

	// Seed makes RandomSieve reproducible; nil seeds from the clock.
	Seed *int64

	// Best selects the RandomSieve iteration to return. Default MaxWeightedAdds.
	Best BestIteration
}

// DefaultOptions returns Options with no transforms, a GOMAXPROCS pool,
// quality ordering, 10 iterations, z = 1.96, clock seeding and MaxWeightedAdds.
func DefaultOptions() Options {
	return Options{
		Iterations: 10,
		Z:          1.96,
		Best:       MaxWeightedAdds,
	}
}

// WithTransforms sets the per-partition transforms.
func WithTransforms(ts ...transform.Transform) Option {
	return func(o *Options) { o.Transforms = ts }
}

// WithPool shares p with the engine. Passing nil keeps the default.
func WithPool(p *workpool.Pool) Option {
	return func(o *Options) {
		if p != nil {
			o.Pool = p
		}
	}
}

// WithOrder fixes the Sieve method order by classifier name.
func WithOrder(names ...string) Option {
	return func(o *Options) { o.Order = names }
}

// WithIterations sets the RandomSieve iteration count; values < 1 are ignored.
func WithIterations(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Iterations = n
		}
	}
}

// WithZ sets the RandomSieve interval scale.
func WithZ(z float64) Option {
	return func(o *Options) { o.Z = z }
}

// WithSeed makes RandomSieve draws reproducible.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = &seed }
}

// WithBestIteration replaces the RandomSieve iteration selection policy.
func WithBestIteration(best BestIteration) Option {
	return func(o *Options) {
		if best != nil {
			o.Best = best
		}
	}
}

func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	var fn Option
	for _, fn = range opts {
		fn(&o)
	}
	if o.Pool == nil {
		o.Pool = workpool.New(0)
	}

	return o
}

// labelsOf drops scores from every per-dataset map.
func labelsOf(scored []map[string]model.Scored) []map[string]string {
	out := make([]map[string]string, len(scored))
	for i, m := range scored {
		out[i] = model.Labels(m)
	}

	return out
}

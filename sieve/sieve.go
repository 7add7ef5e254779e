// SPDX-License-Identifier: MIT
//
// File: sieve.go
// Role: Sieve, strict per-classifier precedence.

package sieve

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmunell/micro-util-sub002/logger"
	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/structurizer"
)

// Sieve applies whole classifiers one after another: every prediction of an
// earlier method is in the structures before a later method writes, so
// earlier methods claim contested slots first.
type Sieve struct {
	methods       []Method
	structurizers []structurizer.Structurizer
	opts          Options
}

// New creates a Sieve.
// Errors: ErrNoMethods, ErrNoStructurizer when structurizers is empty,
// ErrUnknownMethod when WithOrder names an unconfigured method.
func New(methods []Method, structurizers []structurizer.Structurizer, opts ...Option) (*Sieve, error) {
	if len(methods) == 0 {
		return nil, ErrNoMethods
	}
	if len(structurizers) == 0 {
		return nil, ErrNoStructurizer
	}
	s := &Sieve{methods: methods, structurizers: structurizers, opts: applyOptions(opts)}
	known := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		known[m.Name()] = struct{}{}
	}
	for _, name := range s.opts.Order {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
		}
	}

	return s, nil
}

// Methods returns the configured methods in configuration order.
func (s *Sieve) Methods() []Method { return s.methods }

// OrderMethods returns the methods in application order: names of the
// explicit order first, then the rest by descending quality. Equal quality
// keeps configuration order.
func (s *Sieve) OrderMethods(ctx context.Context) ([]Method, error) {
	byName := make(map[string]int, len(s.methods))
	for i, m := range s.methods {
		byName[m.Name()] = i
	}
	used := make([]bool, len(s.methods))
	out := make([]Method, 0, len(s.methods))
	for _, name := range s.opts.Order {
		i, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
		}
		if !used[i] {
			used[i] = true
			out = append(out, s.methods[i])
		}
	}

	type ranked struct {
		method  Method
		quality float64
	}
	var rest []ranked
	for i, m := range s.methods {
		if used[i] {
			continue
		}
		q, _, err := m.quality(ctx)
		if err != nil {
			return nil, fmt.Errorf("quality of %s: %w", m.Name(), err)
		}
		rest = append(rest, ranked{method: m, quality: q})
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].quality > rest[j].quality })
	for _, r := range rest {
		out = append(out, r.method)
	}

	return out, nil
}

// ClassifyWithScore implements Engine.
//
// Steps:
//  1. Order methods once.
//  2. For each method: classify every matching dataset, push the
//     predictions by descending score (then datum id), transform the dirty
//     partitions on the pool and join.
//  3. Extract the best label of every datum.
func (s *Sieve) ClassifyWithScore(ctx context.Context, datasets []*model.Dataset) ([]map[string]model.Scored, error) {
	slot, err := resolveStructurizers(datasets, s.structurizers)
	if err != nil {
		return nil, err
	}

	// 1) order
	ordered, err := s.OrderMethods(ctx)
	if err != nil {
		return nil, err
	}
	logUncovered(ordered, datasets)

	// 2) apply method by method
	p := newPass(&s.opts, datasets, s.structurizers, slot)
	for mi, m := range ordered {
		preds, err := collect(ctx, mi, m, datasets)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(preds, func(i, j int) bool {
			if preds[i].Score != preds[j].Score {
				return preds[i].Score > preds[j].Score
			}

			return preds[i].Datum.DatumID() < preds[j].Datum.DatumID()
		})
		added := 0
		for _, pr := range preds {
			n, err := p.add(pr)
			if err != nil {
				return nil, err
			}
			added += n
		}
		derived, err := p.transformDirty(ctx)
		if err != nil {
			return nil, fmt.Errorf("after %s: %w", m.Name(), err)
		}
		logger.Debug("[Sieve] method applied", "method", m.Name(), "predictions", len(preds), "added", added, "derived", derived)
	}

	// 3) extract
	return p.extract()
}

// Classify implements Engine.
func (s *Sieve) Classify(ctx context.Context, datasets []*model.Dataset) ([]map[string]string, error) {
	scored, err := s.ClassifyWithScore(ctx, datasets)
	if err != nil {
		return nil, err
	}

	return labelsOf(scored), nil
}

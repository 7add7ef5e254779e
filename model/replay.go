// SPDX-License-Identifier: MIT
//
// File: replay.go
// Role: Replay, a classifier answering from recorded predictions, and the
//       quality measures used to rank classifiers.

package model

import (
	"context"
	"sync"
)

// Replay is a classifier that answers from recorded predictions keyed by
// dataset name and datum id. It is how offline classifier outputs enter the sieve.
type Replay struct {
	name        string
	kinds       map[string]struct{}
	predictions map[string]map[string]Scored
}

// NewReplay creates a Replay for the given datum kinds (empty = every kind).
// predictions maps dataset name -> datum id -> scored label.
func NewReplay(name string, kinds []string, predictions map[string]map[string]Scored) *Replay {
	set := make(map[string]struct{}, len(kinds))
	var k string
	for _, k = range kinds {
		set[k] = struct{}{}
	}
	if predictions == nil {
		predictions = make(map[string]map[string]Scored)
	}

	return &Replay{name: name, kinds: set, predictions: predictions}
}

// Name implements Classifier.
func (r *Replay) Name() string { return r.name }

// MatchesData implements Classifier.
func (r *Replay) MatchesData(ds *Dataset) bool {
	if len(r.kinds) == 0 {
		return true
	}
	_, ok := r.kinds[ds.Kind]

	return ok
}

// Init implements Classifier; replay needs no preparation.
func (r *Replay) Init(context.Context, *Dataset) error { return nil }

// ClassifyWithScore implements Classifier. Data without a recorded
// prediction are absent from the result.
func (r *Replay) ClassifyWithScore(_ context.Context, ds *Dataset) (map[string]Scored, error) {
	recorded := r.predictions[ds.Name]
	out := make(map[string]Scored, len(recorded))
	var d Datum
	for _, d = range ds.Data {
		if s, ok := recorded[d.DatumID()]; ok {
			out[d.DatumID()] = s
		}
	}

	return out, nil
}

// Classify implements Classifier.
func (r *Replay) Classify(ctx context.Context, ds *Dataset) (map[string]string, error) {
	scored, err := r.ClassifyWithScore(ctx, ds)
	if err != nil {
		return nil, err
	}

	return Labels(scored), nil
}

// FixedQuality is a QualityMeasure with a known value and sample size.
type FixedQuality struct {
	Value float64
	N     int
}

// Compute implements QualityMeasure.
func (q FixedQuality) Compute(context.Context, bool) (float64, error) { return q.Value, nil }

// SampleSize implements QualityMeasure.
func (q FixedQuality) SampleSize(context.Context, bool) (int, error) { return q.N, nil }

// AccuracyQuality measures a classifier's accuracy against the gold labels
// of a dataset. The sample size is the number of gold-labeled data.
type AccuracyQuality struct {
	classifier Classifier
	dataset    *Dataset

	mu       sync.Mutex
	computed bool
	value    float64
}

// NewAccuracyQuality creates an AccuracyQuality for c over ds.
func NewAccuracyQuality(c Classifier, ds *Dataset) *AccuracyQuality {
	return &AccuracyQuality{classifier: c, dataset: ds}
}

// Compute implements QualityMeasure. Data without a prediction count as errors.
func (q *AccuracyQuality) Compute(ctx context.Context, recompute bool) (float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.computed && !recompute {
		return q.value, nil
	}
	if len(q.dataset.Gold) == 0 {
		return 0, ErrNoGold
	}
	labels, err := q.classifier.Classify(ctx, q.dataset)
	if err != nil {
		return 0, err
	}
	correct := 0
	var id, gold string
	for id, gold = range q.dataset.Gold {
		if labels[id] == gold {
			correct++
		}
	}
	q.value = float64(correct) / float64(len(q.dataset.Gold))
	q.computed = true

	return q.value, nil
}

// SampleSize implements QualityMeasure.
func (q *AccuracyQuality) SampleSize(context.Context, bool) (int, error) {
	return len(q.dataset.Gold), nil
}

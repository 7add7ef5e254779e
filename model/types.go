// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Datum/Dataset model and the classifier and quality contracts the
//       sieve consumes.

package model

import (
	"context"
	"errors"
	"sort"
)

// ErrNoGold indicates a quality computation over a dataset without gold labels.
var ErrNoGold = errors.New("model: dataset has no gold labels")

// Datum is one unit of classification. Ids are unique within a Dataset.
type Datum interface {
	// DatumID identifies the datum within its dataset.
	DatumID() string
	// PartitionID names the independent unit of inference (e.g. a document)
	// the datum belongs to.
	PartitionID() string
}

// PairDatum is a datum about the relation between two nodes.
type PairDatum struct {
	ID        string `json:"id" yaml:"id"`
	Partition string `json:"partition" yaml:"partition"`
	First     string `json:"first" yaml:"first"`
	Second    string `json:"second" yaml:"second"`
}

// DatumID implements Datum.
func (d PairDatum) DatumID() string { return d.ID }

// PartitionID implements Datum.
func (d PairDatum) PartitionID() string { return d.Partition }

// NodeDatum is a datum about a single node.
type NodeDatum struct {
	ID        string `json:"id" yaml:"id"`
	Partition string `json:"partition" yaml:"partition"`
	Node      string `json:"node" yaml:"node"`
}

// DatumID implements Datum.
func (d NodeDatum) DatumID() string { return d.ID }

// PartitionID implements Datum.
func (d NodeDatum) PartitionID() string { return d.Partition }

// Dataset is a named collection of data of one kind, optionally with gold labels.
type Dataset struct {
	Name string
	Kind string
	Data []Datum
	Gold map[string]string
}

// IDs returns the datum ids in dataset order.
func (ds *Dataset) IDs() []string {
	out := make([]string, len(ds.Data))
	for i, d := range ds.Data {
		out[i] = d.DatumID()
	}

	return out
}

// Scored is a label with the confidence or structure weight behind it.
type Scored struct {
	Label string  `json:"label" yaml:"label"`
	Score float64 `json:"score" yaml:"score"`
}

// Labeled is a datum with a (pseudo-)label and a training weight.
type Labeled struct {
	Datum  Datum
	Label  string
	Weight float64
}

// Prediction is one classifier output, alive for one sieve pass.
type Prediction struct {
	Method  int
	Dataset int
	Datum   Datum
	Label   string
	Score   float64
}

// Classifier labels the data of matching datasets.
type Classifier interface {
	// Name identifies the classifier in configuration and logs.
	Name() string
	// MatchesData reports whether the classifier applies to ds.
	MatchesData(ds *Dataset) bool
	// Init prepares the classifier for ds.
	Init(ctx context.Context, ds *Dataset) error
	// Classify returns datum id -> label.
	Classify(ctx context.Context, ds *Dataset) (map[string]string, error)
	// ClassifyWithScore returns datum id -> (label, confidence).
	ClassifyWithScore(ctx context.Context, ds *Dataset) (map[string]Scored, error)
}

// Trainable is a classifier that can learn from (pseudo-)labeled data.
type Trainable interface {
	Classifier
	// IterateTraining runs one incremental update on labels.
	IterateTraining(ctx context.Context, labels []Labeled) error
	// Train retrains from scratch on data.
	Train(ctx context.Context, data []Labeled) error
}

// QualityMeasure estimates a classifier's quality in [0,1] and the sample
// size behind the estimate. Implementations cache unless recompute is set.
type QualityMeasure interface {
	Compute(ctx context.Context, recompute bool) (float64, error)
	SampleSize(ctx context.Context, recompute bool) (int, error)
}

// Labels drops the scores of a scored map.
func Labels(scored map[string]Scored) map[string]string {
	out := make(map[string]string, len(scored))
	var id string
	var s Scored
	for id, s = range scored {
		out[id] = s.Label
	}

	return out
}

// SortedIDs returns the keys of m in ascending order.
func SortedIDs[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	var id string
	for id = range m {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}

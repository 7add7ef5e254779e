// SPDX-License-Identifier: MIT
//
// File: training.go
// Role: joint training and self-training driven by an engine's merged output.

package sieve

import (
	"context"
	"fmt"

	"github.com/cmunell/micro-util-sub002/logger"
	"github.com/cmunell/micro-util-sub002/model"
)

// JointTrainer feeds an engine's merged output back to its trainable
// classifiers as pseudo-gold, one incremental update per round.
type JointTrainer struct {
	engine      Engine
	classifiers []model.Classifier
	iterations  int
	trainData   []*model.Dataset
}

// NewJointTrainer creates a JointTrainer running iterations rounds.
// Classifiers that do not implement model.Trainable are left untouched.
func NewJointTrainer(engine Engine, classifiers []model.Classifier, iterations int) *JointTrainer {
	return &JointTrainer{engine: engine, classifiers: classifiers, iterations: iterations}
}

// SetTrainData replaces the datasets classified each round.
func (t *JointTrainer) SetTrainData(datasets ...*model.Dataset) { t.trainData = datasets }

// TrainData returns the datasets classified each round.
func (t *JointTrainer) TrainData() []*model.Dataset { return t.trainData }

// Train runs the configured rounds. Each round classifies the training data
// with the engine and hands every trainable the pseudo-labels of the
// datasets it matches.
func (t *JointTrainer) Train(ctx context.Context) error {
	for round := 0; round < t.iterations; round++ {
		scored, err := t.engine.ClassifyWithScore(ctx, t.trainData)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		for _, c := range t.classifiers {
			tr, ok := c.(model.Trainable)
			if !ok {
				continue
			}
			labels := pseudoLabels(c, t.trainData, scored)
			if err = tr.IterateTraining(ctx, labels); err != nil {
				return fmt.Errorf("round %d: train %s: %w", round, c.Name(), err)
			}
		}
		logger.Debug("[JointTrainer] round done", "round", round)
	}

	return nil
}

// pseudoLabels lists the merged labels of the datasets c matches, in dataset
// then datum order, at weight 1.
func pseudoLabels(c model.Classifier, datasets []*model.Dataset, scored []map[string]model.Scored) []model.Labeled {
	var out []model.Labeled
	for i, ds := range datasets {
		if !c.MatchesData(ds) {
			continue
		}
		for _, d := range ds.Data {
			if s, ok := scored[i][d.DatumID()]; ok {
				out = append(out, model.Labeled{Datum: d, Label: s.Label, Weight: 1})
			}
		}
	}

	return out
}

// SelfTrainer grows each trainable's permanent training set with confidently
// labeled, previously unlabeled data and retrains from scratch every round.
type SelfTrainer struct {
	engine      Engine
	classifiers []model.Classifier
	iterations  int

	// ScoreThreshold is the minimum merged score for a pseudo-label to be kept.
	ScoreThreshold float64
	// WeightByScore weights pseudo-labels by score instead of 1.
	WeightByScore bool

	trainData []*model.Dataset
	unlabeled []*model.Dataset
	folded    map[string]map[string]model.Labeled // dataset -> datum id -> label
}

// NewSelfTrainer creates a SelfTrainer running at most iterations rounds.
func NewSelfTrainer(engine Engine, classifiers []model.Classifier, iterations int) *SelfTrainer {
	return &SelfTrainer{
		engine:      engine,
		classifiers: classifiers,
		iterations:  iterations,
		folded:      make(map[string]map[string]model.Labeled),
	}
}

// SetTrainData replaces the gold-labeled datasets.
func (t *SelfTrainer) SetTrainData(datasets ...*model.Dataset) { t.trainData = datasets }

// TrainData returns the gold-labeled datasets.
func (t *SelfTrainer) TrainData() []*model.Dataset { return t.trainData }

// SetUnlabeledData replaces the datasets pseudo-labels are drawn from and
// forgets everything folded so far.
func (t *SelfTrainer) SetUnlabeledData(datasets ...*model.Dataset) {
	t.unlabeled = datasets
	t.folded = make(map[string]map[string]model.Labeled)
}

// Folded returns the number of pseudo-labeled data folded in so far.
func (t *SelfTrainer) Folded() int {
	n := 0
	for _, m := range t.folded {
		n += len(m)
	}

	return n
}

// Train runs up to the configured rounds, stopping early when a round folds
// in no new data.
//
// Steps per round:
//  1. Classify the unlabeled data with the engine.
//  2. Fold in data not folded before whose score reaches ScoreThreshold.
//  3. Retrain every trainable on gold plus folded data of the datasets it matches.
func (t *SelfTrainer) Train(ctx context.Context) error {
	for round := 0; round < t.iterations; round++ {
		// 1) classify
		scored, err := t.engine.ClassifyWithScore(ctx, t.unlabeled)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}

		// 2) fold
		added := 0
		for i, ds := range t.unlabeled {
			seen := t.folded[ds.Name]
			if seen == nil {
				seen = make(map[string]model.Labeled)
				t.folded[ds.Name] = seen
			}
			for _, d := range ds.Data {
				s, ok := scored[i][d.DatumID()]
				if !ok || s.Score < t.ScoreThreshold {
					continue
				}
				if _, done := seen[d.DatumID()]; done {
					continue
				}
				w := 1.0
				if t.WeightByScore {
					w = s.Score
				}
				seen[d.DatumID()] = model.Labeled{Datum: d, Label: s.Label, Weight: w}
				added++
			}
		}
		logger.Debug("[SelfTrainer] folded", "round", round, "added", added)
		if added == 0 {
			return nil
		}

		// 3) retrain
		for _, c := range t.classifiers {
			tr, ok := c.(model.Trainable)
			if !ok {
				continue
			}
			if err = tr.Train(ctx, t.trainingSet(c)); err != nil {
				return fmt.Errorf("round %d: train %s: %w", round, c.Name(), err)
			}
		}
	}

	return nil
}

// trainingSet is the gold data plus folded data of the datasets c matches.
func (t *SelfTrainer) trainingSet(c model.Classifier) []model.Labeled {
	var out []model.Labeled
	for _, ds := range t.trainData {
		if !c.MatchesData(ds) {
			continue
		}
		for _, d := range ds.Data {
			if label, ok := ds.Gold[d.DatumID()]; ok {
				out = append(out, model.Labeled{Datum: d, Label: label, Weight: 1})
			}
		}
	}
	for _, ds := range t.unlabeled {
		if !c.MatchesData(ds) {
			continue
		}
		seen := t.folded[ds.Name]
		for _, d := range ds.Data {
			if l, ok := seen[d.DatumID()]; ok {
				out = append(out, l)
			}
		}
	}

	return out
}

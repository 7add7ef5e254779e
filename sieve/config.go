// SPDX-License-Identifier: MIT

package sieve

import (
	"context"
	"fmt"

	"github.com/cmunell/micro-util-sub002/config"
	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/structurizer"
	"github.com/cmunell/micro-util-sub002/transform"
	"github.com/cmunell/micro-util-sub002/workpool"
)

// Trainer is the training contract shared by JointTrainer and SelfTrainer.
type Trainer interface {
	Train(ctx context.Context) error
	SetTrainData(datasets ...*model.Dataset)
	TrainData() []*model.Dataset
}

// Structurizers builds the Pairs and Nodes structurizers for the structure
// section of cfg.
func Structurizers(cfg config.StructureConfig) ([]structurizer.Structurizer, error) {
	opts, err := cfg.GraphOptions()
	if err != nil {
		return nil, err
	}

	return []structurizer.Structurizer{
		structurizer.NewPairs("pairs", structurizer.WithGraphOptions(opts...), structurizer.WithOrdered(cfg.Ordered)),
		structurizer.NewNodes("nodes", structurizer.WithGraphOptions(opts...)),
	}, nil
}

// FromConfig builds the engine selected by cfg.Sieve.Kind.
func FromConfig(cfg *config.Config, methods []Method, structurizers []structurizer.Structurizer) (Engine, error) {
	ts, err := transform.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithTransforms(ts...),
		WithPool(workpool.New(cfg.Sieve.Workers)),
		WithIterations(cfg.Sieve.Random.Iterations),
		WithZ(cfg.Sieve.Random.Z),
	}
	if cfg.Sieve.Random.Seed != nil {
		opts = append(opts, WithSeed(*cfg.Sieve.Random.Seed))
	}

	switch cfg.Sieve.Kind {
	case config.KindSieve:
		return New(methods, structurizers, append(opts, WithOrder(cfg.Sieve.Order...))...)
	case config.KindRandom:
		return NewRandomSieve(methods, structurizers, opts...)
	case config.KindPrecedence:
		return NewPrecedenceScore(methods, structurizers, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidKind, cfg.Sieve.Kind)
	}
}

// TrainerFromConfig builds the trainer selected by cfg.Training.Mode, or
// nil for mode "none".
func TrainerFromConfig(cfg *config.Config, engine Engine, classifiers []model.Classifier) (Trainer, error) {
	switch cfg.Training.Mode {
	case config.TrainingNone:
		return nil, nil
	case config.TrainingJoint:
		return NewJointTrainer(engine, classifiers, cfg.Training.Iterations), nil
	case config.TrainingSelf:
		t := NewSelfTrainer(engine, classifiers, cfg.Training.Iterations)
		t.ScoreThreshold = cfg.Training.ScoreThreshold
		t.WeightByScore = cfg.Training.WeightByScore

		return t, nil
	default:
		return nil, fmt.Errorf("%w: mode %q", config.ErrInvalidTraining, cfg.Training.Mode)
	}
}

// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cmunell/micro-util-sub002/structure"
)

// Sentinel errors for invalid configuration.
var (
	ErrInvalidKind      = errors.New("config: invalid sieve kind")
	ErrInvalidMode      = errors.New("config: invalid slot mode")
	ErrInvalidOverwrite = errors.New("config: invalid overwrite policy")
	ErrInvalidTransform = errors.New("config: invalid transform")
	ErrInvalidTraining  = errors.New("config: invalid training")
	ErrInvalidValue     = errors.New("config: invalid value")
)

// Default returns the configuration used for every unset field.
func Default() *Config {
	return &Config{
		Sieve: SieveConfig{
			Kind:   KindSieve,
			Random: RandomConfig{Iterations: 10, Z: 1.96},
		},
		Structure: StructureConfig{
			EdgeMode:  "single",
			NodeMode:  "single",
			Overwrite: "max",
		},
		Closure: ClosureConfig{
			MaxIterations: 10,
			Split:         TransformOpenTriangles,
			Length:        2,
		},
		Training: TrainingConfig{
			Mode:           TrainingNone,
			Iterations:     1,
			ScoreThreshold: 0.9,
		},
		Store: StoreConfig{Path: "sieve.db"},
	}
}

// Load reads, parses and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse overlays YAML data on Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every enumerated field and numeric range.
func (c *Config) Validate() error {
	switch c.Sieve.Kind {
	case KindSieve, KindRandom, KindPrecedence:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, c.Sieve.Kind)
	}
	if c.Sieve.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidValue, c.Sieve.Workers)
	}
	if c.Sieve.Random.Iterations <= 0 {
		return fmt.Errorf("%w: random iterations %d", ErrInvalidValue, c.Sieve.Random.Iterations)
	}
	if c.Sieve.Random.Z < 0 {
		return fmt.Errorf("%w: random z %g", ErrInvalidValue, c.Sieve.Random.Z)
	}

	if _, err := c.Structure.GraphOptions(); err != nil {
		return err
	}

	switch c.Closure.Split {
	case TransformOpenTriangles:
	case TransformPaths:
		if c.Closure.Length <= 0 {
			return fmt.Errorf("%w: closure split length %d", ErrInvalidTransform, c.Closure.Length)
		}
	default:
		return fmt.Errorf("%w: closure split %q", ErrInvalidTransform, c.Closure.Split)
	}
	for i, row := range c.Closure.Compositions {
		if row.First == "" || row.Second == "" || row.Result == "" {
			return fmt.Errorf("%w: composition %d is incomplete", ErrInvalidTransform, i)
		}
	}
	for i, t := range c.Transforms {
		switch t.Kind {
		case TransformOpenTriangles, TransformClosure:
		case TransformPaths:
			if t.Length <= 0 {
				return fmt.Errorf("%w: transform %d: length %d", ErrInvalidTransform, i, t.Length)
			}
		default:
			return fmt.Errorf("%w: transform %d: kind %q", ErrInvalidTransform, i, t.Kind)
		}
	}

	switch c.Training.Mode {
	case TrainingNone, TrainingJoint, TrainingSelf:
	default:
		return fmt.Errorf("%w: mode %q", ErrInvalidTraining, c.Training.Mode)
	}
	if c.Training.Mode != TrainingNone && c.Training.Iterations <= 0 {
		return fmt.Errorf("%w: iterations %d", ErrInvalidTraining, c.Training.Iterations)
	}
	if c.Training.ScoreThreshold < 0 || c.Training.ScoreThreshold > 1 {
		return fmt.Errorf("%w: score threshold %g", ErrInvalidTraining, c.Training.ScoreThreshold)
	}

	return nil
}

func parseMode(s string) (structure.Mode, error) {
	switch s {
	case "single":
		return structure.Single, nil
	case "multi":
		return structure.Multi, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// GraphOptions converts the section into structure.Graph options.
func (s StructureConfig) GraphOptions() ([]structure.GraphOption, error) {
	edge, err := parseMode(s.EdgeMode)
	if err != nil {
		return nil, fmt.Errorf("edge_mode: %w", err)
	}
	node, err := parseMode(s.NodeMode)
	if err != nil {
		return nil, fmt.Errorf("node_mode: %w", err)
	}
	var overwrite structure.Overwrite
	switch s.Overwrite {
	case "max":
		overwrite = structure.Max
	case "conserve":
		overwrite = structure.Conserve
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOverwrite, s.Overwrite)
	}

	opts := []structure.GraphOption{
		structure.WithEdgeMode(edge),
		structure.WithNodeMode(node),
		structure.WithOverwrite(overwrite),
	}
	if len(s.Inverse) > 0 {
		opts = append(opts, structure.WithInverse(s.Inverse))
	}

	return opts, nil
}

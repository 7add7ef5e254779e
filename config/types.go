// SPDX-License-Identifier: MIT

package config

// Engine kinds.
const (
	KindSieve      = "sieve"
	KindRandom     = "random"
	KindPrecedence = "precedence"
)

// Transform kinds.
const (
	TransformPaths         = "paths"
	TransformOpenTriangles = "open_triangles"
	TransformClosure       = "closure"
)

// Training modes.
const (
	TrainingNone  = "none"
	TrainingJoint = "joint"
	TrainingSelf  = "self"
)

// Config is the whole sieve configuration, usually read from sieve.yaml.
type Config struct {
	Sieve      SieveConfig       `yaml:"sieve"`
	Structure  StructureConfig   `yaml:"structure"`
	Closure    ClosureConfig     `yaml:"closure"`
	Transforms []TransformConfig `yaml:"transforms"`
	Training   TrainingConfig    `yaml:"training"`
	Store      StoreConfig       `yaml:"store"`
	Log        LogConfig         `yaml:"log"`
}

// SieveConfig selects and tunes the engine.
type SieveConfig struct {
	Kind    string       `yaml:"kind"`              // "sieve", "random" or "precedence"
	Order   []string     `yaml:"order,omitempty"`   // explicit method order by name (sieve only)
	Workers int          `yaml:"workers,omitempty"` // transform pool size, 0 = GOMAXPROCS
	Random  RandomConfig `yaml:"random"`
}

// RandomConfig tunes the randomized sieve.
type RandomConfig struct {
	Iterations int     `yaml:"iterations"`
	Z          float64 `yaml:"z"`
	// Seed makes runs reproducible when set.
	Seed *int64 `yaml:"seed,omitempty"`
}

// StructureConfig describes the graph created for every partition.
type StructureConfig struct {
	EdgeMode  string            `yaml:"edge_mode"` // "single" or "multi"
	NodeMode  string            `yaml:"node_mode"` // "single" or "multi"
	Overwrite string            `yaml:"overwrite"` // "max" or "conserve"
	Ordered   bool              `yaml:"ordered"`   // write ordered pair edges
	Inverse   map[string]string `yaml:"inverse,omitempty"`
}

// ClosureConfig configures the greedy rule closure transform.
type ClosureConfig struct {
	MaxIterations int                 `yaml:"max_iterations"`
	Split         string              `yaml:"split"`            // "open_triangles" or "paths"
	Length        int                 `yaml:"length,omitempty"` // path length for split "paths"
	Ignore        []string            `yaml:"ignore,omitempty"`
	Compositions  []CompositionConfig `yaml:"compositions"`
}

// CompositionConfig is one row of a composition table: First then Second implies Result.
type CompositionConfig struct {
	First  string `yaml:"first"`
	Second string `yaml:"second"`
	Result string `yaml:"result"`
}

// TransformConfig is one per-partition transform, applied in list order.
type TransformConfig struct {
	Kind   string   `yaml:"kind"`
	Length int      `yaml:"length,omitempty"`
	Ignore []string `yaml:"ignore,omitempty"`
}

// TrainingConfig configures joint and self-training.
type TrainingConfig struct {
	Mode           string  `yaml:"mode"`
	Iterations     int     `yaml:"iterations"`
	ScoreThreshold float64 `yaml:"score_threshold"`
	WeightByScore  bool    `yaml:"weight_by_score"`
}

// StoreConfig locates the label store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures the console logger.
type LogConfig struct {
	Debug bool `yaml:"debug"`
}

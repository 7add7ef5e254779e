// SPDX-License-Identifier: MIT

package transform

import (
	"fmt"

	"github.com/cmunell/micro-util-sub002/config"
)

// FromConfig builds the per-partition transform list of cfg, in order.
func FromConfig(cfg *config.Config) ([]Transform, error) {
	out := make([]Transform, 0, len(cfg.Transforms))
	for i, tc := range cfg.Transforms {
		switch tc.Kind {
		case config.TransformPaths:
			out = append(out, Paths(tc.Length, tc.Ignore...))
		case config.TransformOpenTriangles:
			out = append(out, OpenTriangles(tc.Ignore...))
		case config.TransformClosure:
			out = append(out, ClosureFromConfig(cfg.Closure))
		default:
			return nil, fmt.Errorf("%w: transform %d: kind %q", config.ErrInvalidTransform, i, tc.Kind)
		}
	}

	return out, nil
}

// ClosureFromConfig builds a single-step composition closure.
func ClosureFromConfig(cc config.ClosureConfig) Transform {
	table := make(map[Composition]string, len(cc.Compositions))
	for _, row := range cc.Compositions {
		table[Composition{First: row.First, Second: row.Second}] = row.Result
	}
	split := SplitOpenTriangles(cc.Ignore...)
	if cc.Split == config.TransformPaths {
		split = SplitPaths(cc.Length, cc.Ignore...)
	}

	return Closure(cc.MaxIterations, ClosureStep{
		Rules: RuleSet{CompositionRule(table)},
		Split: split,
	})
}

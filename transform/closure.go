// SPDX-License-Identifier: MIT
//
// File: closure.go
// Role: greedy rule closure over scored graph parts.
// Determinism:
//   - parts are ordered by mean weight, ties keep split then emission order.

package transform

import (
	"fmt"
	"sort"

	"github.com/cmunell/micro-util-sub002/structure"
)

// ClosureSource is the source recorded on items derived by Closure.
const ClosureSource = "closure"

// Rule derives items from one part of a graph.
type Rule func(part *structure.Graph) []structure.Item

// RuleSet is applied in order to every part produced by its split function.
type RuleSet []Rule

// SplitFunc cuts a graph into parts for rule application.
type SplitFunc func(g *structure.Graph) []*structure.Graph

// ClosureStep pairs a split function with the rules run over its parts.
type ClosureStep struct {
	Rules RuleSet
	Split SplitFunc
}

// SplitPaths splits a graph into its simple paths of exactly length edges.
func SplitPaths(length int, ignore ...string) SplitFunc {
	return func(g *structure.Graph) []*structure.Graph {
		return subGraphs(g, g.EdgePaths(length, ignore...))
	}
}

// SplitOpenTriangles splits a graph into its open two-edge paths.
func SplitOpenTriangles(ignore ...string) SplitFunc {
	return func(g *structure.Graph) []*structure.Graph {
		return subGraphs(g, g.OpenTriangles(ignore...))
	}
}

func subGraphs(g *structure.Graph, paths []structure.Path) []*structure.Graph {
	out := make([]*structure.Graph, len(paths))
	for i, p := range paths {
		out[i] = g.PathGraph(p)
	}

	return out
}

// part is one split output with the rules to run over it.
type part struct {
	graph *structure.Graph
	rules RuleSet
	score float64
}

// Closure returns a Transform that greedily closes a graph under the rules
// of steps and emits the closed graph. The input graph is not modified.
//
// Steps of one pass:
//  1. Split the working graph with every step's split function.
//  2. Score each part by its mean item weight and stable-sort descending.
//  3. Run each part's rules and add their items at the part score.
//
// Passes repeat until one adds no items or maxIterations passes ran.
// maxIterations <= 0 means no bound.
func Closure(maxIterations int, steps ...ClosureStep) Transform {
	return func(s structure.Structure) ([]structure.Structure, error) {
		g, err := asGraph(s)
		if err != nil {
			return nil, err
		}
		work := g.Clone()
		for iter := 0; maxIterations <= 0 || iter < maxIterations; iter++ {
			added, err := closurePass(work, steps)
			if err != nil {
				return nil, fmt.Errorf("closure pass %d: %w", iter, err)
			}
			if added <= 0 {
				break
			}
		}

		return []structure.Structure{work}, nil
	}
}

func closurePass(g *structure.Graph, steps []ClosureStep) (int, error) {
	before := g.ItemCount()

	// 1) split
	var parts []part
	var step ClosureStep
	for _, step = range steps {
		if step.Split == nil {
			continue
		}
		var sub *structure.Graph
		for _, sub = range step.Split(g) {
			parts = append(parts, part{graph: sub, rules: step.Rules, score: structure.MeanWeight(sub)})
		}
	}

	// 2) order
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].score > parts[j].score })

	// 3) apply
	var p part
	var rule Rule
	for _, p = range parts {
		for _, rule = range p.rules {
			var item structure.Item
			for _, item = range rule(p.graph) {
				if _, err := g.Add(item, p.score, ClosureSource); err != nil {
					return g.ItemCount() - before, err
				}
			}
		}
	}

	return g.ItemCount() - before, nil
}

// Composition is the pair of relation types along a two-edge path a-b-c.
type Composition struct {
	First  string
	Second string
}

// CompositionRule returns a Rule that, for every two-edge path a-b-c of a
// part whose types are in table, derives the composed relation a-c. A path
// of unordered edges is also read backwards (c-b-a, inverse types), and the
// derived edge is unordered only when both path edges are.
func CompositionRule(table map[Composition]string) Rule {
	return func(part *structure.Graph) []structure.Item {
		var out []structure.Item
		var p structure.Path
		for _, p = range part.EdgePaths(2) {
			ab, bc := p.Edges[0], p.Edges[1]
			unordered := ab.Orientation == structure.Unordered && bc.Orientation == structure.Unordered
			orientation := structure.Ordered
			if unordered {
				orientation = structure.Unordered
			}
			if typ, ok := table[Composition{First: ab.Type, Second: bc.Type}]; ok {
				out = append(out, structure.Binary{Type: typ, First: ab.First, Second: bc.Second, Orientation: orientation})

				continue
			}
			if !unordered {
				continue
			}
			cb, ba := part.Mirror(bc), part.Mirror(ab)
			if typ, ok := table[Composition{First: cb.Type, Second: ba.Type}]; ok {
				out = append(out, structure.Binary{Type: typ, First: cb.First, Second: ba.Second, Orientation: orientation})
			}
		}

		return out
	}
}

// SPDX-License-Identifier: MIT
//
// File: transform.go
// Role: Transform type, graph path extraction and left-to-right application.

package transform

import (
	"errors"
	"fmt"

	"github.com/cmunell/micro-util-sub002/structure"
)

// ErrNotGraph indicates a graph transform applied to a non-graph structure.
var ErrNotGraph = errors.New("transform: structure is not a graph")

// Transform derives structures from s. It must not mutate s.
type Transform func(s structure.Structure) ([]structure.Structure, error)

func asGraph(s structure.Structure) (*structure.Graph, error) {
	g, ok := s.(*structure.Graph)
	if !ok {
		return nil, ErrNotGraph
	}

	return g, nil
}

// Paths returns a Transform emitting one sub-graph per simple path of
// exactly length edges, skipping edge types in ignore. A path and its
// reverse are emitted once.
func Paths(length int, ignore ...string) Transform {
	return func(s structure.Structure) ([]structure.Structure, error) {
		g, err := asGraph(s)
		if err != nil {
			return nil, err
		}

		return pathGraphs(g, g.EdgePaths(length, ignore...)), nil
	}
}

// OpenTriangles returns a Transform emitting one sub-graph per two-edge path
// whose endpoints are not joined by a non-ignored edge.
func OpenTriangles(ignore ...string) Transform {
	return func(s structure.Structure) ([]structure.Structure, error) {
		g, err := asGraph(s)
		if err != nil {
			return nil, err
		}

		return pathGraphs(g, g.OpenTriangles(ignore...)), nil
	}
}

func pathGraphs(g *structure.Graph, paths []structure.Path) []structure.Structure {
	out := make([]structure.Structure, len(paths))
	for i, p := range paths {
		out[i] = g.PathGraph(p)
	}

	return out
}

// Apply runs every transform on s in order and merges each output back into
// s before the next transform runs. It returns the net number of items added.
func Apply(s structure.Structure, transforms ...Transform) (int, error) {
	before := s.ItemCount()
	var t Transform
	for i := range transforms {
		t = transforms[i]
		outs, err := t(s)
		if err != nil {
			return s.ItemCount() - before, fmt.Errorf("transform %d: %w", i, err)
		}
		var out structure.Structure
		for _, out = range outs {
			if err = s.Merge(out); err != nil {
				return s.ItemCount() - before, fmt.Errorf("transform %d: merge: %w", i, err)
			}
		}
	}

	return s.ItemCount() - before, nil
}

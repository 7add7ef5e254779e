// SPDX-License-Identifier: MIT

// Package transform derives new structure items from existing ones.
//
// A Transform reads a structure and returns derived structures; Apply merges
// those back into the source left to right. Paths and OpenTriangles expose
// graph shapes as sub-graphs. Closure runs greedy rule closure: the graph is
// split into parts, parts are ranked by mean item weight, and each part's
// rules add their conclusions at the part's weight until a pass adds nothing.
// CompositionRule is the stock rule: a composition table over two-edge paths,
// as used for temporal relation closure (BEFORE then BEFORE gives BEFORE).
package transform

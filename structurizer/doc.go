// SPDX-License-Identifier: MIT

// Package structurizer adapts typed data to weighted structures.
//
// A Structurizer owns three steps of a sieve pass: MakeStructures creates
// the per-partition map, AddToStructures writes one prediction into the
// partition of its datum (recording dirty partitions in a Changes set), and
// Labels reads the candidate labels of a datum back out. BestLabel picks the
// heaviest candidate, breaking ties by the lexicographically smallest label
// so that extraction never depends on map iteration order.
//
// Pairs and Nodes are the graph-backed adapters for model.PairDatum and
// model.NodeDatum. They create partitions lazily on first write, since the
// set of documents is unknown when a pass starts.
package structurizer

// SPDX-License-Identifier: MIT

// Package sieve merges the predictions of several classifiers into one
// consistent labeling by writing them, in a chosen order, into shared
// weighted structures where earlier or stronger predictions can block later
// ones.
//
// Engines:
//
//   - Sieve: whole-classifier precedence. Methods run one after another,
//     ordered explicitly (WithOrder) or by descending quality.
//   - RandomSieve: every prediction gets a score drawn inside its
//     classifier's quality interval; the pool is applied in score order and
//     the search keeps the best of several draws (WithBestIteration).
//   - PrecedenceScore: the pool is applied by prediction confidence.
//
// After each batch the dirty partitions are transformed in parallel on a
// workpool.Pool. A pass is deterministic for Sieve and PrecedenceScore and
// for RandomSieve given WithSeed.
//
// JointTrainer and SelfTrainer reuse an engine's merged output as
// pseudo-labels for trainable classifiers.
//
// Errors:
//
//   - ErrNoMethods, ErrNoStructurizer, ErrUnknownMethod: configuration, the
//     call fails with no output.
//   - structure precondition and classifier/transform errors abort the pass.
package sieve

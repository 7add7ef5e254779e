// SPDX-License-Identifier: MIT

// Package model declares the data and collaborator contracts of the sieve:
// Datum and Dataset, the Classifier/Trainable/QualityMeasure interfaces
// implemented by external models, and the ephemeral Prediction tuple.
//
// Replay, FixedQuality and AccuracyQuality are ready-made implementations
// for replaying recorded classifier outputs and ranking them.
package model

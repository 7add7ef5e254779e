// SPDX-License-Identifier: MIT

// Package microutil is a joint-inference toolkit: it merges the labels of
// several imperfect classifiers into one consistent labeling per partition
// (typically a document), closing the merged structure under relational
// rules as it goes.
//
// What is in here?
//
//	structure/     Graph and Sequence label stores with Max/Conserve overwrite
//	structurizer/  maps data to structure items and reads labels back
//	transform/     per-partition transforms: paths, open triangles, rule closure
//	model/         Datum, Dataset, Classifier and QualityMeasure contracts
//	sieve/         the engines: Sieve, RandomSieve, PrecedenceScore, trainers
//	config/        YAML configuration (gopkg.in/yaml.v3)
//	workpool/      bounded partition workers (errgroup + semaphore)
//	logger/        pluggable logging, console backend on charmbracelet/log
//	labelstore/    SQLite store of datasets, predictions and runs
//	cmd/sieve/     the command-line driver (cobra)
//
// Pipeline:
//
//	 classifiers ──► predictions ──► ordered by method / score
//	                                        │
//	                                        ▼
//	 partition structures ◄── structurizer.AddToStructures
//	        │
//	        ▼
//	 transforms (dirty partitions only) ──► Extract ──► labels
//
// Quick start:
//
//	e, _ := sieve.New(methods, []structurizer.Structurizer{structurizer.NewPairs("pairs")})
//	labels, _ := e.Classify(ctx, []*model.Dataset{ds})
package microutil

// SPDX-License-Identifier: MIT
//
// File: pass.go
// Role: state of one classification pass: structures per structurizer,
//       dirty tracking, pooled partition transforms and label extraction.
// Concurrency:
//   - adds run on the calling goroutine, in the chosen order.
//   - transforms run on the pool, one job per dirty partition; mu guards only
//     the structures map entry swap and the added-items counter.

package sieve

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/cmunell/micro-util-sub002/logger"
	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/structurizer"
	"github.com/cmunell/micro-util-sub002/transform"
)

// pass holds the structures of one classification pass.
type pass struct {
	opts          *Options
	datasets      []*model.Dataset
	structurizers []structurizer.Structurizer
	slot          []int // dataset index -> structurizer index
	structures    []structurizer.Structures
	changes       []*structurizer.Changes

	mu    sync.Mutex
	added int
}

// resolveStructurizers maps every dataset to the first matching structurizer.
func resolveStructurizers(datasets []*model.Dataset, structurizers []structurizer.Structurizer) ([]int, error) {
	slot := make([]int, len(datasets))
	for i, ds := range datasets {
		slot[i] = -1
		for j, st := range structurizers {
			if st.MatchesData(ds) {
				slot[i] = j

				break
			}
		}
		if slot[i] < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoStructurizer, ds.Name)
		}
	}

	return slot, nil
}

func newPass(opts *Options, datasets []*model.Dataset, structurizers []structurizer.Structurizer, slot []int) *pass {
	p := &pass{
		opts:          opts,
		datasets:      datasets,
		structurizers: structurizers,
		slot:          slot,
		structures:    make([]structurizer.Structures, len(structurizers)),
		changes:       make([]*structurizer.Changes, len(structurizers)),
	}
	for i, st := range structurizers {
		p.structures[i] = st.MakeStructures()
		p.changes[i] = structurizer.NewChanges()
	}

	return p
}

// add pushes one prediction through the structurizer of its dataset and
// returns the growth in item count of the datum's partition. Reweights and
// one-for-one displacements add nothing.
func (p *pass) add(pr model.Prediction) (int, error) {
	si := p.slot[pr.Dataset]
	partition := pr.Datum.PartitionID()
	before := p.itemCount(si, partition)
	if _, err := p.structurizers[si].AddToStructures(pr.Datum, pr.Label, pr.Score, p.structures[si], p.changes[si]); err != nil {
		return 0, fmt.Errorf("add %s to %s: %w", pr.Datum.DatumID(), p.datasets[pr.Dataset].Name, err)
	}

	return max(0, p.itemCount(si, partition)-before), nil
}

func (p *pass) itemCount(si int, partition string) int {
	if s, ok := p.structures[si][partition]; ok {
		return s.ItemCount()
	}

	return 0
}

type job struct {
	slot      int
	partition string
}

// transformDirty runs the configured transforms over every partition touched
// since the last call and returns the number of items they added.
//
// Steps:
//  1. Collect dirty partitions of every structurizer and clear the marks.
//  2. Run one pool job per partition: copy the structure, apply the
//     transforms outside the lock, swap the copy in under the lock.
//  3. Join before returning; the first error aborts the pass.
func (p *pass) transformDirty(ctx context.Context) (int, error) {
	// 1) collect
	jobs := make(map[string]job)
	var keys []string
	for si, ch := range p.changes {
		for _, partition := range ch.Partitions() {
			key := strconv.Itoa(si) + "/" + partition
			jobs[key] = job{slot: si, partition: partition}
			keys = append(keys, key)
		}
		ch.Reset()
	}
	if len(keys) == 0 || len(p.opts.Transforms) == 0 {
		return 0, nil
	}

	// 2-3) transform and join
	p.mu.Lock()
	p.added = 0
	p.mu.Unlock()
	err := p.opts.Pool.Run(ctx, keys, func(_ context.Context, key string) error {
		return p.transformPartition(jobs[key])
	})
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	logger.Debug("[Sieve] transformed partitions", "partitions", len(keys), "added", p.added)

	return p.added, nil
}

func (p *pass) transformPartition(j job) error {
	p.mu.Lock()
	current := p.structures[j.slot][j.partition]
	p.mu.Unlock()

	work := current.NewEmpty()
	if err := work.Merge(current); err != nil {
		return fmt.Errorf("copy partition %s: %w", j.partition, err)
	}
	added, err := transform.Apply(work, p.opts.Transforms...)
	if err != nil {
		return fmt.Errorf("transform partition %s: %w", j.partition, err)
	}

	p.mu.Lock()
	p.structures[j.slot][j.partition] = work
	p.added += added
	p.mu.Unlock()

	return nil
}

// extract reads the best label of every datum of every dataset.
func (p *pass) extract() ([]map[string]model.Scored, error) {
	out := make([]map[string]model.Scored, len(p.datasets))
	for i, ds := range p.datasets {
		si := p.slot[i]
		labels, err := structurizer.Extract(p.structurizers[si], ds, p.structures[si])
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", ds.Name, err)
		}
		out[i] = labels
	}

	return out, nil
}

// collect classifies every dataset method m applies to and returns its
// predictions in dataset then datum order.
func collect(ctx context.Context, index int, m Method, datasets []*model.Dataset) ([]model.Prediction, error) {
	var out []model.Prediction
	for di, ds := range datasets {
		if !m.Classifier.MatchesData(ds) {
			continue
		}
		if err := m.Classifier.Init(ctx, ds); err != nil {
			return nil, fmt.Errorf("init %s on %s: %w", m.Name(), ds.Name, err)
		}
		scored, err := m.Classifier.ClassifyWithScore(ctx, ds)
		if err != nil {
			return nil, fmt.Errorf("classify %s with %s: %w", ds.Name, m.Name(), err)
		}
		for _, d := range ds.Data {
			if s, ok := scored[d.DatumID()]; ok {
				out = append(out, model.Prediction{Method: index, Dataset: di, Datum: d, Label: s.Label, Score: s.Score})
			}
		}
	}

	return out, nil
}

// logUncovered reports datasets no method applies to. They are skipped.
func logUncovered(methods []Method, datasets []*model.Dataset) {
	for _, ds := range datasets {
		covered := false
		for _, m := range methods {
			if m.Classifier.MatchesData(ds) {
				covered = true

				break
			}
		}
		if !covered {
			logger.Debug("[Sieve] no applicable classifier", "dataset", ds.Name)
		}
	}
}

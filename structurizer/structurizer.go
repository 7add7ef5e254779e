// SPDX-License-Identifier: MIT
//
// File: structurizer.go
// Role: Structurizer contract, per-pass change tracking and label extraction.

package structurizer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/structure"
)

// Sentinel errors for structurizer operations.
var (
	// ErrWrongDatum indicates a datum type the structurizer does not translate.
	ErrWrongDatum = errors.New("structurizer: unsupported datum type")

	// ErrWrongStructure indicates a partition holding a structure kind the
	// structurizer cannot read.
	ErrWrongStructure = errors.New("structurizer: unsupported structure kind")
)

// Structures maps a partition id to its structure. One partition is one
// independent unit of inference, typically a document.
type Structures map[string]structure.Structure

// Structurizer translates predictions about data into structure writes and
// reads final labels back out.
type Structurizer interface {
	// Name identifies the structurizer in configuration and logs.
	Name() string

	// MatchesData reports whether the structurizer handles ds.
	MatchesData(ds *model.Dataset) bool

	// MakeStructures returns the empty structures map for a new pass.
	MakeStructures() Structures

	// AddToStructures writes label at score for d into the partition of d,
	// records the touched partition and item in ch, and reports whether the
	// structure changed.
	AddToStructures(d model.Datum, label string, score float64, s Structures, ch *Changes) (bool, error)

	// Labels returns every candidate label for d with its weight. A datum
	// whose partition holds nothing yields an empty map.
	Labels(d model.Datum, s Structures) (map[string]float64, error)
}

// Changes records which partitions and items were touched since the last
// Reset. It is safe for concurrent use.
type Changes struct {
	mu    sync.Mutex
	items map[string][]structure.Item
}

// NewChanges returns an empty change set.
func NewChanges() *Changes {
	return &Changes{items: make(map[string][]structure.Item)}
}

// Record marks partition as dirty and appends item when non-nil.
func (c *Changes) Record(partition string, item structure.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item == nil {
		if _, ok := c.items[partition]; !ok {
			c.items[partition] = nil
		}

		return
	}
	c.items[partition] = append(c.items[partition], item)
}

// Partitions returns the dirty partition ids in ascending order.
func (c *Changes) Partitions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.items))
	var id string
	for id = range c.items {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}

// Items returns the items recorded for partition in recording order.
func (c *Changes) Items(partition string) []structure.Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]structure.Item(nil), c.items[partition]...)
}

// Len is the number of dirty partitions.
func (c *Changes) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// Reset forgets every recorded change.
func (c *Changes) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string][]structure.Item)
}

// BestLabel picks the label with the greatest weight. Equal weights resolve
// to the lexicographically smallest label. An empty map reports ok=false.
func BestLabel(labels map[string]float64) (label string, weight float64, ok bool) {
	var l string
	var w float64
	for l, w = range labels {
		if !ok || w > weight || (w == weight && l < label) {
			label, weight, ok = l, w, true
		}
	}

	return label, weight, ok
}

// Extract reads the best label of every datum of ds out of s. Data without
// any label are absent from the result.
func Extract(st Structurizer, ds *model.Dataset, s Structures) (map[string]model.Scored, error) {
	out := make(map[string]model.Scored, len(ds.Data))
	var d model.Datum
	for _, d = range ds.Data {
		labels, err := st.Labels(d, s)
		if err != nil {
			return nil, fmt.Errorf("labels of %s: %w", d.DatumID(), err)
		}
		if label, w, ok := BestLabel(labels); ok {
			out[d.DatumID()] = model.Scored{Label: label, Score: w}
		}
	}

	return out, nil
}

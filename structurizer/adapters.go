// SPDX-License-Identifier: MIT
//
// File: adapters.go
// Role: Pairs and Nodes, the graph-backed structurizers for pair and node data.

package structurizer

import (
	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/structure"
)

// Default dataset kinds matched by the adapters.
const (
	KindPair = "pair"
	KindNode = "node"
)

// Option configures Pairs and Nodes.
type Option func(*settings)

type settings struct {
	kinds       []string
	orientation structure.Orientation
	factory     func() structure.Structure
}

// WithKinds overrides the dataset kinds the adapter matches.
func WithKinds(kinds ...string) Option {
	return func(s *settings) { s.kinds = kinds }
}

// WithOrdered makes Pairs write ordered edges. Unordered is the default.
func WithOrdered(ordered bool) Option {
	return func(s *settings) {
		if ordered {
			s.orientation = structure.Ordered
		} else {
			s.orientation = structure.Unordered
		}
	}
}

// WithGraphOptions sets the options of every lazily created partition graph.
func WithGraphOptions(opts ...structure.GraphOption) Option {
	return func(s *settings) {
		s.factory = func() structure.Structure { return structure.NewGraph(opts...) }
	}
}

// WithFactory sets the constructor of every lazily created partition.
func WithFactory(factory func() structure.Structure) Option {
	return func(s *settings) { s.factory = factory }
}

func newSettings(kind string, opts []Option) settings {
	s := settings{
		kinds:       []string{kind},
		orientation: structure.Unordered,
		factory:     func() structure.Structure { return structure.NewGraph() },
	}
	var opt Option
	for _, opt = range opts {
		opt(&s)
	}

	return s
}

func (s settings) matches(ds *model.Dataset) bool {
	var k string
	for _, k = range s.kinds {
		if k == ds.Kind {
			return true
		}
	}

	return false
}

// partition returns the structure of id, creating it on first write.
func (s settings) partition(id string, structures Structures) structure.Structure {
	st, ok := structures[id]
	if !ok {
		st = s.factory()
		structures[id] = st
	}

	return st
}

// add writes item and records it in ch when the structure changed.
func add(st structure.Structure, partition string, item structure.Item, score float64, source any, ch *Changes) (bool, error) {
	changed, err := st.Add(item, score, source)
	if err != nil {
		return false, err
	}
	if changed && ch != nil {
		ch.Record(partition, item)
	}

	return changed, nil
}

// Pairs writes each model.PairDatum prediction as a Binary edge whose type
// is the predicted label.
type Pairs struct {
	name string
	settings
}

// NewPairs creates a Pairs structurizer matching KindPair datasets.
func NewPairs(name string, opts ...Option) *Pairs {
	return &Pairs{name: name, settings: newSettings(KindPair, opts)}
}

// Name implements Structurizer.
func (p *Pairs) Name() string { return p.name }

// MatchesData implements Structurizer.
func (p *Pairs) MatchesData(ds *model.Dataset) bool { return p.matches(ds) }

// MakeStructures implements Structurizer. Partitions are created lazily.
func (p *Pairs) MakeStructures() Structures { return make(Structures) }

// AddToStructures implements Structurizer.
func (p *Pairs) AddToStructures(d model.Datum, label string, score float64, s Structures, ch *Changes) (bool, error) {
	pd, ok := d.(model.PairDatum)
	if !ok {
		return false, ErrWrongDatum
	}
	item := structure.Binary{
		ID:          pd.ID,
		Type:        label,
		First:       pd.First,
		Second:      pd.Second,
		Orientation: p.orientation,
	}

	return add(p.partition(pd.Partition, s), pd.Partition, item, score, pd.ID, ch)
}

// Labels implements Structurizer. Every item in the (First, Second) slot
// contributes its type, read in the datum's direction.
func (p *Pairs) Labels(d model.Datum, s Structures) (map[string]float64, error) {
	pd, ok := d.(model.PairDatum)
	if !ok {
		return nil, ErrWrongDatum
	}
	out := make(map[string]float64)
	st, ok := s[pd.Partition]
	if !ok {
		return out, nil
	}
	g, ok := st.(*structure.Graph)
	if !ok {
		return nil, ErrWrongStructure
	}
	var e structure.Entry
	for _, e = range g.EdgeItems(pd.First, pd.Second) {
		b := e.Item.(structure.Binary)
		if w, seen := out[b.Type]; !seen || e.Weight > w {
			out[b.Type] = e.Weight
		}
	}

	return out, nil
}

// Nodes writes each model.NodeDatum prediction as a Unary item whose type is
// the predicted label. Partitions may be graphs or sequences.
type Nodes struct {
	name string
	settings
}

// NewNodes creates a Nodes structurizer matching KindNode datasets.
func NewNodes(name string, opts ...Option) *Nodes {
	return &Nodes{name: name, settings: newSettings(KindNode, opts)}
}

// Name implements Structurizer.
func (n *Nodes) Name() string { return n.name }

// MatchesData implements Structurizer.
func (n *Nodes) MatchesData(ds *model.Dataset) bool { return n.matches(ds) }

// MakeStructures implements Structurizer. Partitions are created lazily.
func (n *Nodes) MakeStructures() Structures { return make(Structures) }

// AddToStructures implements Structurizer.
func (n *Nodes) AddToStructures(d model.Datum, label string, score float64, s Structures, ch *Changes) (bool, error) {
	nd, ok := d.(model.NodeDatum)
	if !ok {
		return false, ErrWrongDatum
	}
	item := structure.Unary{ID: nd.Node, Type: label}

	return add(n.partition(nd.Partition, s), nd.Partition, item, score, nd.ID, ch)
}

// Labels implements Structurizer.
func (n *Nodes) Labels(d model.Datum, s Structures) (map[string]float64, error) {
	nd, ok := d.(model.NodeDatum)
	if !ok {
		return nil, ErrWrongDatum
	}
	out := make(map[string]float64)
	st, ok := s[nd.Partition]
	if !ok {
		return out, nil
	}

	var entries []structure.Entry
	switch v := st.(type) {
	case *structure.Graph:
		entries = v.NodeItems(nd.Node)
	case *structure.Sequence:
		entries = v.Entries()
	default:
		return nil, ErrWrongStructure
	}
	var e structure.Entry
	for _, e = range entries {
		u := e.Item.(structure.Unary)
		if u.ID != nd.Node {
			continue
		}
		if w, seen := out[u.Type]; !seen || e.Weight > w {
			out[u.Type] = e.Weight
		}
	}

	return out, nil
}

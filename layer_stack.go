package states

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-states/layering"
)

var (
	// ErrNamespaceRequired indicates a missing namespace.
	ErrNamespaceRequired = errors.New("states: namespace must be provided")
	// ErrDuplicateNamespace indicates a stack received the same namespace twice.
	ErrDuplicateNamespace = errors.New("states: namespaces must be unique")
	// ErrPriorityOrder indicates duplicate priorities in a stack.
	ErrPriorityOrder = errors.New("states: priorities must be strictly ordered")
	// ErrEmptyStack indicates Merge was called without layers.
	ErrEmptyStack = errors.New("states: stack must include at least one layer")
)

// Layer pairs a namespace with the snapshot value it contributed. Higher
// priority layers win when merged.
type Layer struct {
	Namespace  Namespace
	Priority   int
	Snapshot   layering.Map
	SnapshotID string
	Version    int64
}

// NewLayer builds a layer holding a private copy of snapshot.
func NewLayer(namespace Namespace, priority int, snapshot layering.Map) Layer {
	return Layer{
		Namespace: namespace,
		Priority:  priority,
		Snapshot:  snapshot.Clone(),
	}
}

// LayerFromSnapshot builds a layer from a fetched snapshot, keeping its
// version and identifier for provenance.
func LayerFromSnapshot(namespace Namespace, priority int, snapshot Snapshot) Layer {
	layer := NewLayer(namespace, priority, snapshot.Data())
	layer.SnapshotID = snapshot.SnapshotID
	layer.Version = snapshot.Version
	return layer
}

func (l Layer) clone() Layer {
	out := l
	out.Snapshot = l.Snapshot.Clone()
	return out
}

// Stack is an immutable set of namespace layers ordered strongest first.
type Stack struct {
	layers []Layer
}

// NewStack validates and sorts layers so that the highest priority comes
// first. Layers are deep copied.
func NewStack(layers ...Layer) (*Stack, error) {
	if len(layers) == 0 {
		return &Stack{}, nil
	}

	seen := make(map[Namespace]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		if layer.Namespace == "" {
			return nil, ErrNamespaceRequired
		}
		if _, ok := seen[layer.Namespace]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNamespace, layer.Namespace)
		}
		seen[layer.Namespace] = struct{}{}
		copied[i] = layer.clone()
	}

	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Priority > copied[j].Priority
	})
	for i := 1; i < len(copied); i++ {
		if copied[i-1].Priority == copied[i].Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Priority)
		}
	}

	return &Stack{layers: copied}, nil
}

// Layers returns copies of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = s.layers[i].clone()
	}
	return out
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Namespaces lists the stacked namespaces, strongest first.
func (s *Stack) Namespaces() []Namespace {
	if s == nil {
		return nil
	}
	out := make([]Namespace, len(s.layers))
	for i, layer := range s.layers {
		out[i] = layer.Namespace
	}
	return out
}

// Merge overlays the layers weakest to strongest with layering.MergeOverwrite
// and keeps per-layer provenance for Trace.
func (s *Stack) Merge(pruneEmpty bool) (*Combined, error) {
	if s == nil || len(s.layers) == 0 {
		return nil, ErrEmptyStack
	}
	snapshots := make([]layering.Map, len(s.layers))
	for i := range s.layers {
		snapshots[i] = s.layers[i].Snapshot
	}
	return &Combined{
		Value:  layering.MergeLayers(pruneEmpty, snapshots...),
		layers: s.Layers(),
	}, nil
}

// Combined is the merged result of a Stack.
type Combined struct {
	Value  layering.Map
	layers []Layer
}

// Layers returns the contributing layers, strongest first.
func (c *Combined) Layers() []Layer {
	if c == nil || len(c.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(c.layers))
	for i := range c.layers {
		out[i] = c.layers[i].clone()
	}
	return out
}

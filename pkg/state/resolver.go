package state

import (
	"fmt"

	states "github.com/goliatone/go-states"
)

// Source names one namespace to layer and its priority. Higher priorities win.
type Source struct {
	Namespace states.Namespace
	Priority  int
}

// Resolver fetches several namespaces for an anchor and merges them.
type Resolver struct {
	Fetcher    states.Fetcher
	PruneEmpty bool
}

// Resolve builds one layer per Set source and merges them. Pending and None
// sources are skipped; ErrNoLayers is returned when nothing is Set.
func (r Resolver) Resolve(anchor states.Anchor, sources ...Source) (*states.Combined, error) {
	if r.Fetcher == nil {
		return nil, fmt.Errorf("state: fetcher is required")
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("state: at least one source is required")
	}

	layers := make([]states.Layer, 0, len(sources))
	for _, src := range sources {
		snapshot := r.Fetcher.Fetch(src.Namespace, anchor)
		if !snapshot.IsSet() {
			continue
		}
		layers = append(layers, states.LayerFromSnapshot(src.Namespace, src.Priority, snapshot))
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w for anchor %s", ErrNoLayers, anchor.Label())
	}

	stack, err := states.NewStack(layers...)
	if err != nil {
		return nil, fmt.Errorf("state: stack: %w", err)
	}
	return stack.Merge(r.PruneEmpty)
}

package states

import (
	"encoding/json"
	"strings"
)

// Trace lists, for one path, what each stacked namespace held there.
type Trace struct {
	Path   string       `json:"path"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how one namespace contributed to a traced path.
type Provenance struct {
	Namespace  string `json:"namespace"`
	Priority   int    `json:"priority"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Version    int64  `json:"version,omitempty"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// Trace reports the contribution of every layer at path, strongest first.
func (c *Combined) Trace(path ...string) Trace {
	trace := Trace{Path: strings.Join(path, "/")}
	if c == nil {
		return trace
	}
	for _, layer := range c.layers {
		entry := Provenance{
			Namespace:  string(layer.Namespace),
			Priority:   layer.Priority,
			SnapshotID: layer.SnapshotID,
			Version:    layer.Version,
		}
		if value, ok := layer.Snapshot.Lookup(path...); ok {
			entry.Found = true
			entry.Value = value.Any()
		}
		trace.Layers = append(trace.Layers, entry)
	}
	return trace
}

// Winner returns the strongest layer holding a value at the traced path.
func (t Trace) Winner() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace for logging.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

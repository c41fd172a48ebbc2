package states

import (
	"strconv"

	"github.com/goliatone/go-states/layering"
	"github.com/google/uuid"
)

// Namespace identifies a shared state producer, typically an extension name.
type Namespace string

func (n Namespace) String() string {
	return string(n)
}

// Anchor is the triggering event an aggregation is scoped to. Version orders
// anchors; snapshots are resolved relative to it.
type Anchor struct {
	ID      string
	Name    string
	Version int64
}

// NewAnchor builds an anchor with a fresh identifier.
func NewAnchor(name string, version int64) Anchor {
	return Anchor{
		ID:      uuid.NewString(),
		Name:    name,
		Version: version,
	}
}

// Label returns a short description suitable for log fields.
func (a Anchor) Label() string {
	if a.ID == "" {
		return "v" + strconv.FormatInt(a.Version, 10)
	}
	return a.ID + "@" + strconv.FormatInt(a.Version, 10)
}

// Status describes how far a producer has got for a given anchor.
type Status int

const (
	// StatusPending means the producer has not answered for this or any
	// earlier anchor yet.
	StatusPending Status = iota
	// StatusSet means a value is available.
	StatusSet
	// StatusNone means the producer will never answer; it never blocks.
	StatusNone
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSet:
		return "set"
	case StatusNone:
		return "none"
	default:
		return "unknown"
	}
}

// ResolutionPolicy selects which snapshot version satisfies a fetch.
type ResolutionPolicy int

const (
	// ResolutionAny accepts the most recent available version.
	ResolutionAny ResolutionPolicy = iota
)

// Snapshot is the point-in-time state of one namespace. Value is non-nil only
// when Status is StatusSet; use the constructors to keep that true.
type Snapshot struct {
	Status     Status
	Value      layering.Map
	Version    int64
	SnapshotID string
}

// PendingSnapshot reports a producer that has not answered yet.
func PendingSnapshot() Snapshot {
	return Snapshot{Status: StatusPending}
}

// NoneSnapshot reports a producer that will never answer.
func NoneSnapshot() Snapshot {
	return Snapshot{Status: StatusNone}
}

// SetSnapshot wraps value. A nil value is stored as an empty map.
func SetSnapshot(value layering.Map) Snapshot {
	if value == nil {
		value = layering.Map{}
	}
	return Snapshot{Status: StatusSet, Value: value}
}

// IsSet reports whether the snapshot carries a value.
func (s Snapshot) IsSet() bool {
	return s.Status == StatusSet
}

// Data returns the snapshot value, or nil unless the status is StatusSet.
// Pending and None both read as an empty contribution.
func (s Snapshot) Data() layering.Map {
	if s.Status != StatusSet {
		return nil
	}
	return s.Value
}

// Fetcher resolves the snapshot of one namespace for an anchor. Implementations
// must be synchronous.
type Fetcher interface {
	Fetch(namespace Namespace, anchor Anchor) Snapshot
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(namespace Namespace, anchor Anchor) Snapshot

// Fetch implements Fetcher. A nil function reports StatusNone.
func (fn FetchFunc) Fetch(namespace Namespace, anchor Anchor) Snapshot {
	if fn == nil {
		return NoneSnapshot()
	}
	return fn(namespace, anchor)
}

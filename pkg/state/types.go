package state

import (
	"errors"
	"time"

	states "github.com/goliatone/go-states"
)

var (
	// ErrNotRegistered is returned when writing to an unknown namespace.
	ErrNotRegistered = errors.New("state: namespace not registered")
	// ErrVersionOrder is returned when an entry would go behind the latest one.
	ErrVersionOrder = errors.New("state: version must not decrease")
	// ErrStopped is returned when writing to a stopped namespace.
	ErrStopped = errors.New("state: namespace stopped")
	// ErrNotPending is returned by Resolve when no pending entry matches.
	ErrNotPending = errors.New("state: no pending entry for anchor")
	// ErrNoLayers is returned by Resolver when no source namespace is set.
	ErrNoLayers = errors.New("state: no layers found")
)

// Meta describes a stored entry.
type Meta struct {
	SnapshotID string           `json:"snapshot_id,omitempty"`
	Namespace  states.Namespace `json:"namespace"`
	Version    int64            `json:"version"`
	Status     states.Status    `json:"status"`
	CreatedAt  time.Time        `json:"created_at,omitempty"`
}

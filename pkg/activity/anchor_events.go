package activity

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// Verbs emitted by the states pipeline.
const (
	VerbGatePending          = "states.gate.pending"
	VerbAggregationCompleted = "states.aggregation.completed"
	VerbSnapshotCreated      = "states.snapshot.created"
)

// AnchorEventInput describes the fields shared by anchor lifecycle events.
type AnchorEventInput struct {
	ActorID        string
	UserID         string
	TenantID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any

	// Kind labels the pipeline (for example "identities").
	Kind          string
	AnchorID      string
	AnchorName    string
	AnchorVersion int64

	// Namespaces lists the namespaces the event is about: pending ones for
	// gate events, the created one for snapshot events.
	Namespaces []string
	SnapshotID string
	Records    int
	OccurredAt time.Time
}

// BuildGatePendingEvent reports that a gate held an anchor back.
func BuildGatePendingEvent(input AnchorEventInput) Event {
	return buildAnchorEvent(VerbGatePending, "states.anchor", input)
}

// BuildAggregationCompletedEvent reports a finished aggregation.
func BuildAggregationCompletedEvent(input AnchorEventInput) Event {
	event := buildAnchorEvent(VerbAggregationCompleted, "states.anchor", input)
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}
	event.Metadata["records"] = input.Records
	return event
}

// BuildSnapshotCreatedEvent reports a snapshot written to a store.
func BuildSnapshotCreatedEvent(input AnchorEventInput) Event {
	event := buildAnchorEvent(VerbSnapshotCreated, "states.snapshot", input)
	if id := strings.TrimSpace(input.SnapshotID); id != "" {
		event.ObjectID = id
	}
	return event
}

func buildAnchorEvent(verb, objectType string, input AnchorEventInput) Event {
	metadata := maps.Clone(input.Metadata)
	set := func(key string, value any, ok bool) {
		if !ok {
			return
		}
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	kind := strings.TrimSpace(input.Kind)
	set("kind", kind, kind != "")
	set("anchor_name", input.AnchorName, input.AnchorName != "")
	set("anchor_version", input.AnchorVersion, input.AnchorVersion != 0)
	set("namespaces", slices.Clone(input.Namespaces), len(input.Namespaces) > 0)
	set("snapshot_id", input.SnapshotID, input.SnapshotID != "")

	objectID := strings.TrimSpace(input.AnchorID)
	if objectID == "" {
		objectID = objectType
	}

	event := Event{
		Verb:           verb,
		ActorID:        input.ActorID,
		UserID:         input.UserID,
		TenantID:       input.TenantID,
		ObjectType:     objectType,
		ObjectID:       objectID,
		Channel:        input.Channel,
		DefinitionCode: input.DefinitionCode,
		Recipients:     slices.Clone(input.Recipients),
		Metadata:       metadata,
		OccurredAt:     input.OccurredAt,
	}
	for _, field := range []*string{&event.ActorID, &event.UserID, &event.TenantID, &event.Channel, &event.DefinitionCode} {
		*field = strings.TrimSpace(*field)
	}
	return event
}

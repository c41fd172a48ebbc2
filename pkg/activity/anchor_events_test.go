package activity

import (
	"context"
	"testing"
)

func TestBuildGatePendingEventCarriesAnchorMetadata(t *testing.T) {
	meta := map[string]any{"source": "bridge"}
	input := AnchorEventInput{
		ActorID:       " actor ",
		TenantID:      " tenant ",
		Metadata:      meta,
		Kind:          "identities",
		AnchorID:      " anchor-1 ",
		AnchorName:    "hit",
		AnchorVersion: 7,
		Namespaces:    []string{"module.identity"},
		Recipients:    []string{"ops@example.com"},
	}

	event := BuildGatePendingEvent(input)

	if event.Verb != VerbGatePending {
		t.Fatalf("expected verb %s got %s", VerbGatePending, event.Verb)
	}
	if event.ObjectType != "states.anchor" || event.ObjectID != "anchor-1" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" || event.TenantID != "tenant" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	if event.Metadata["kind"] != "identities" || event.Metadata["anchor_name"] != "hit" || event.Metadata["anchor_version"] != int64(7) {
		t.Fatalf("unexpected anchor metadata: %+v", event.Metadata)
	}
	namespaces, ok := event.Metadata["namespaces"].([]string)
	if !ok || len(namespaces) != 1 || namespaces[0] != "module.identity" {
		t.Fatalf("expected namespaces metadata, got %v", event.Metadata["namespaces"])
	}

	event.Metadata["source"] = "changed"
	event.Recipients[0] = "changed"
	namespaces[0] = "changed"
	if meta["source"] != "bridge" || input.Recipients[0] != "ops@example.com" || input.Namespaces[0] != "module.identity" {
		t.Fatalf("expected input untouched, got %+v", input)
	}
}

func TestBuildAggregationCompletedEventRecordsCount(t *testing.T) {
	event := BuildAggregationCompletedEvent(AnchorEventInput{AnchorID: "a", Records: 3})
	if event.Verb != VerbAggregationCompleted {
		t.Fatalf("unexpected verb %s", event.Verb)
	}
	if event.Metadata["records"] != 3 {
		t.Fatalf("expected records metadata, got %v", event.Metadata["records"])
	}
}

func TestBuildSnapshotCreatedEventPrefersSnapshotID(t *testing.T) {
	event := BuildSnapshotCreatedEvent(AnchorEventInput{
		AnchorID:   "anchor-1",
		SnapshotID: "snapshot-42",
		Namespaces: []string{"module.configuration"},
	})
	if event.ObjectType != "states.snapshot" || event.ObjectID != "snapshot-42" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.Metadata["snapshot_id"] != "snapshot-42" {
		t.Fatalf("expected snapshot_id metadata, got %+v", event.Metadata)
	}
}

func TestBuildAnchorEventFallsBackToObjectType(t *testing.T) {
	event := BuildGatePendingEvent(AnchorEventInput{})
	if event.ObjectID != "states.anchor" {
		t.Fatalf("expected fallback object ID, got %q", event.ObjectID)
	}
	if event.Metadata != nil {
		t.Fatalf("expected no metadata, got %+v", event.Metadata)
	}
}

func TestAnchorEventsWorkWithHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	if err := hooks.Notify(context.Background(), BuildAggregationCompletedEvent(AnchorEventInput{AnchorID: "a"})); err != nil {
		t.Fatalf("notify: %v", err)
	}
	verbs := capture.Verbs()
	if len(verbs) != 1 || verbs[0] != VerbAggregationCompleted {
		t.Fatalf("unexpected captured verbs %v", verbs)
	}
}

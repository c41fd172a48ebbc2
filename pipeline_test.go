package states

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-states/pkg/activity"
)

type countedResult []string

func (c countedResult) RecordCount() int { return len(c) }

func TestPipelineRunHoldsBackPendingAnchors(t *testing.T) {
	capture := &activity.CaptureHook{}
	fetch := newStubFetcher(map[Namespace]Snapshot{
		"config":   SetSnapshot(mustMap(map[string]any{"org": "o"})),
		"identity": PendingSnapshot(),
	})
	calls := 0
	pipeline := NewPipeline[countedResult]("identities",
		NewGate([]Namespace{"config", "identity"}),
		func(Anchor, Fetcher) countedResult {
			calls++
			return countedResult{"x"}
		},
		WithActivityHooks(activity.Hooks{capture}),
	)

	anchor := Anchor{ID: "anchor-1", Name: "hit", Version: 2}
	result, ok := pipeline.Run(context.Background(), anchor, fetch)
	if ok || result != nil {
		t.Fatalf("expected pending run to return nothing, got %v %v", result, ok)
	}
	if calls != 0 {
		t.Fatalf("expected aggregation to be skipped")
	}
	if len(capture.Events) != 1 || capture.Events[0].Verb != activity.VerbGatePending {
		t.Fatalf("expected gate pending event, got %+v", capture.Events)
	}
	event := capture.Events[0]
	if event.ObjectID != "anchor-1" || event.Channel != activity.DefaultChannel {
		t.Fatalf("unexpected event %+v", event)
	}
	pending, ok := event.Metadata["namespaces"].([]string)
	if !ok || len(pending) != 1 || pending[0] != "identity" {
		t.Fatalf("expected pending namespaces metadata, got %v", event.Metadata["namespaces"])
	}

	fetch.set("identity", NoneSnapshot())
	result, ok = pipeline.Run(context.Background(), anchor, fetch)
	if !ok || len(result) != 1 {
		t.Fatalf("expected aggregation result, got %v %v", result, ok)
	}
	if len(capture.Events) != 2 || capture.Events[1].Verb != activity.VerbAggregationCompleted {
		t.Fatalf("expected completion event, got %v", capture.Verbs())
	}
	if capture.Events[1].Metadata["records"] != 1 {
		t.Fatalf("expected record count, got %v", capture.Events[1].Metadata["records"])
	}
}

func TestPipelineLogsHookFailures(t *testing.T) {
	logger := &recordingLogger{}
	metrics := &recordingMetrics{}
	hook := activity.HookFunc(func(context.Context, activity.Event) error {
		return errors.New("sink down")
	})
	pipeline := NewPipeline[countedResult]("identities", nil,
		func(Anchor, Fetcher) countedResult { return countedResult{"a", "b"} },
		WithActivityHooks(activity.Hooks{hook}),
		WithPipelineLogger(logger),
		WithPipelineMetrics(metrics),
		WithActivityActor("actor-1"),
	)

	result, ok := pipeline.Run(context.Background(), Anchor{ID: "a"}, newStubFetcher(nil))
	if !ok || len(result) != 2 {
		t.Fatalf("expected hook failure not to change the outcome, got %v %v", result, ok)
	}
	if logger.count("warn") != 1 {
		t.Fatalf("expected hook failure to be logged, got %+v", logger.entries)
	}
	if len(metrics.aggregations) != 1 || metrics.aggregations[0] != 2 {
		t.Fatalf("unexpected aggregation metrics %v", metrics.aggregations)
	}
}

func TestPipelineWithoutEmitterOrAggregate(t *testing.T) {
	pipeline := NewPipeline[int]("", nil, nil)
	if pipeline.Kind() != "default" {
		t.Fatalf("expected default kind, got %q", pipeline.Kind())
	}
	got, ok := pipeline.Run(nil, Anchor{}, nil)
	if !ok || got != 0 {
		t.Fatalf("expected open gate with zero result, got %v %v", got, ok)
	}

	var nilPipeline *Pipeline[int]
	if _, ok := nilPipeline.Run(context.Background(), Anchor{}, nil); ok {
		t.Fatalf("expected nil pipeline to report not run")
	}
}

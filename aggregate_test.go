package states

import (
	"testing"

	"github.com/goliatone/go-states/layering"
)

func stringProjection(prefix string) Projection[string] {
	return func(src Source) (string, bool) {
		s, ok := src.Value.AsString()
		if !ok {
			return "", false
		}
		return prefix + s, true
	}
}

func TestAggregatorCollectFollowsRuleOrder(t *testing.T) {
	fetch := newStubFetcher(map[Namespace]Snapshot{
		"identity": SetSnapshot(mustMap(map[string]any{
			"mid":  "ecid",
			"list": []any{"x", 1, "y"},
		})),
		"config": SetSnapshot(mustMap(map[string]any{
			"experienceCloud.org": "org",
		})),
	})

	agg := NewAggregator([]Rule[string]{
		{Namespace: "identity", Path: []string{"mid"}, Project: stringProjection("mid:")},
		{Namespace: "identity", Path: []string{"list"}, Each: true, Project: stringProjection("item:")},
		{Namespace: "config", Path: []string{"experienceCloud.org"}, Project: stringProjection("org:")},
	})

	got := agg.Collect(Anchor{ID: "a"}, fetch)
	want := []string{"mid:ecid", "item:x", "item:y", "org:org"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if fetch.callCount("identity") != 1 {
		t.Fatalf("expected identity fetched once per collect, got %d", fetch.callCount("identity"))
	}
}

func TestAggregatorSkipsUnresolvedNamespaces(t *testing.T) {
	logger := &recordingLogger{}
	fetch := newStubFetcher(map[Namespace]Snapshot{
		"pending": PendingSnapshot(),
		"config":  SetSnapshot(mustMap(map[string]any{"org": "o"})),
	})
	agg := NewAggregator([]Rule[string]{
		{Namespace: "pending", Path: []string{"org"}, Project: stringProjection("")},
		{Namespace: "none", Path: []string{"org"}, Project: stringProjection("")},
		{Namespace: "config", Path: []string{"org"}, Project: stringProjection("")},
	}, WithAggregatorLogger(logger))

	got := agg.Collect(Anchor{}, fetch)
	if len(got) != 1 || got[0] != "o" {
		t.Fatalf("unexpected records %v", got)
	}
	if logger.count("debug") != 2 {
		t.Fatalf("expected two debug entries for unresolved namespaces, got %d", logger.count("debug"))
	}
}

func TestAggregatorMissingAndMistypedFields(t *testing.T) {
	fetch := newStubFetcher(map[Namespace]Snapshot{
		"identity": SetSnapshot(mustMap(map[string]any{
			"list":   "not-a-list",
			"nested": map[string]any{"id": "n"},
		})),
	})
	agg := NewAggregator([]Rule[string]{
		{Namespace: "identity", Path: []string{"missing"}, Project: stringProjection("")},
		{Namespace: "identity", Path: []string{"list"}, Each: true, Project: stringProjection("")},
		{Namespace: "identity", Path: []string{"nested", "id"}, Project: stringProjection("")},
		{Namespace: "identity", Path: []string{"nested"}},
	})
	got := agg.Collect(Anchor{}, fetch)
	if len(got) != 1 || got[0] != "n" {
		t.Fatalf("unexpected records %v", got)
	}
}

func TestAggregatorEmptyPathSelectsSnapshot(t *testing.T) {
	fetch := newStubFetcher(map[Namespace]Snapshot{
		"config": SetSnapshot(mustMap(map[string]any{"a": 1})),
	})
	agg := NewAggregator([]Rule[layering.Map]{{
		Namespace: "config",
		Project: func(src Source) (layering.Map, bool) {
			m, ok := src.Value.AsMap()
			if !ok || src.Namespace != "config" {
				return nil, false
			}
			return m, true
		},
	}})
	got := agg.Collect(Anchor{}, fetch)
	if len(got) != 1 {
		t.Fatalf("expected one record, got %v", got)
	}
	if n, _ := got[0]["a"].AsNumber(); n != 1 {
		t.Fatalf("unexpected record %v", got[0])
	}
}

func TestAggregatorNamespacesDistinctInFirstUseOrder(t *testing.T) {
	agg := NewAggregator([]Rule[string]{
		{Namespace: "identity"},
		{Namespace: "config"},
		{Namespace: "identity"},
	})
	got := agg.Namespaces()
	if len(got) != 2 || got[0] != "identity" || got[1] != "config" {
		t.Fatalf("unexpected namespaces %v", got)
	}
}

func TestAggregatorNilInputs(t *testing.T) {
	var agg *Aggregator[string]
	if agg.Collect(Anchor{}, newStubFetcher(nil)) != nil {
		t.Fatalf("expected nil aggregator to collect nothing")
	}
	if NewAggregator[string](nil).Collect(Anchor{}, nil) != nil {
		t.Fatalf("expected nil fetcher to collect nothing")
	}
}

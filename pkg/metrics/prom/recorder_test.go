package prom

import (
	"strings"
	"testing"
	"time"

	states "github.com/goliatone/go-states"
	"github.com/goliatone/go-states/layering"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderObservesGate(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	r.ObserveGate("identities", false, 2)
	r.ObserveGate("identities", true, 0)
	r.ObserveGate("identities", true, 0)

	if got := testutil.ToFloat64(r.gateDecisions.WithLabelValues("identities", "true")); got != 2 {
		t.Fatalf("expected 2 ready decisions, got %v", got)
	}
	if got := testutil.ToFloat64(r.gateDecisions.WithLabelValues("identities", "false")); got != 1 {
		t.Fatalf("expected 1 waiting decision, got %v", got)
	}
	if got := testutil.ToFloat64(r.gatePending.WithLabelValues("identities")); got != 0 {
		t.Fatalf("expected pending gauge reset, got %v", got)
	}

	expected := `
# HELP states_gate_pending_namespaces Namespaces still pending at the last gate decision.
# TYPE states_gate_pending_namespaces gauge
states_gate_pending_namespaces{kind="identities"} 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "states_gate_pending_namespaces"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestRecorderObservesAggregation(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := MustNew(reg, WithNamespace("shared"))

	r.ObserveAggregation("identities", 3, 2*time.Millisecond)
	r.ObserveAggregation("identities", 1, time.Millisecond)

	if got := testutil.ToFloat64(r.records.WithLabelValues("identities")); got != 4 {
		t.Fatalf("expected 4 records, got %v", got)
	}
	if got := testutil.CollectAndCount(r.aggregations); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, family := range families {
		if family.GetName() == "shared_aggregation_duration_seconds" {
			found = true
			if count := family.GetMetric()[0].GetHistogram().GetSampleCount(); count != 2 {
				t.Fatalf("expected 2 samples, got %d", count)
			}
		}
	}
	if !found {
		t.Fatalf("expected namespaced histogram")
	}
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if _, err := New(nil); err != nil {
		t.Fatalf("nil registerer: %v", err)
	}
}

func TestRecorderWiredIntoGate(t *testing.T) {
	r, err := New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	gate := states.NewGate([]states.Namespace{"a", "b"},
		states.WithGateKind("devices"),
		states.WithGateMetrics(r),
	)
	fetch := states.FetchFunc(func(ns states.Namespace, _ states.Anchor) states.Snapshot {
		if ns == "a" {
			return states.SetSnapshot(layering.Map{})
		}
		return states.PendingSnapshot()
	})
	if gate.Ready(states.Anchor{}, fetch) {
		t.Fatalf("expected gate to wait on b")
	}
	if got := testutil.ToFloat64(r.gatePending.WithLabelValues("devices")); got != 1 {
		t.Fatalf("expected one pending namespace, got %v", got)
	}
}

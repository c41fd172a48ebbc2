package states

import (
	"sync"
	"time"

	"github.com/goliatone/go-states/layering"
)

type stubFetcher struct {
	mu        sync.Mutex
	snapshots map[Namespace]Snapshot
	calls     map[Namespace]int
}

func newStubFetcher(snapshots map[Namespace]Snapshot) *stubFetcher {
	return &stubFetcher{
		snapshots: snapshots,
		calls:     map[Namespace]int{},
	}
}

func (f *stubFetcher) Fetch(ns Namespace, _ Anchor) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ns]++
	snapshot, ok := f.snapshots[ns]
	if !ok {
		return NoneSnapshot()
	}
	return snapshot
}

func (f *stubFetcher) set(ns Namespace, snapshot Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[ns] = snapshot
}

func (f *stubFetcher) callCount(ns Namespace) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ns]
}

type logEntry struct {
	level string
	msg   string
	kv    []any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, kv: kv})
}

func (l *recordingLogger) Debug(msg string, kv ...any) { l.record("debug", msg, kv) }
func (l *recordingLogger) Info(msg string, kv ...any) { l.record("info", msg, kv) }
func (l *recordingLogger) Warn(msg string, kv ...any) { l.record("warn", msg, kv) }
func (l *recordingLogger) Error(msg string, kv ...any) { l.record("error", msg, kv) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, entry := range l.entries {
		if entry.level == level {
			n++
		}
	}
	return n
}

type gateObservation struct {
	kind    string
	ready   bool
	pending int
}

type recordingMetrics struct {
	mu           sync.Mutex
	gates        []gateObservation
	aggregations []int
}

func (m *recordingMetrics) ObserveGate(kind string, ready bool, pending int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gates = append(m.gates, gateObservation{kind: kind, ready: ready, pending: pending})
}

func (m *recordingMetrics) ObserveAggregation(_ string, records int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aggregations = append(m.aggregations, records)
}

func mustMap(raw map[string]any) layering.Map {
	return layering.FromMap(raw)
}

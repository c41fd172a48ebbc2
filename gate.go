package states

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// IsReady reports whether every namespace has resolved for anchor, i.e. none
// of them reports StatusPending. StatusSet and StatusNone both count as
// resolved. Evaluation stops at the first pending namespace.
func IsReady(anchor Anchor, namespaces []Namespace, fetch Fetcher) bool {
	if fetch == nil {
		return true
	}
	for _, ns := range namespaces {
		if fetch.Fetch(ns, anchor).Status == StatusPending {
			return false
		}
	}
	return true
}

// PendingNamespaces evaluates every namespace and returns those still pending,
// in the order supplied.
func PendingNamespaces(anchor Anchor, namespaces []Namespace, fetch Fetcher) []Namespace {
	if fetch == nil {
		return nil
	}
	var pending []Namespace
	for _, ns := range namespaces {
		if fetch.Fetch(ns, anchor).Status == StatusPending {
			pending = append(pending, ns)
		}
	}
	return pending
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithGateKind labels the gate for logs and metrics.
func WithGateKind(kind string) GateOption {
	return func(g *Gate) {
		g.kind = kind
	}
}

// WithGateMemo remembers up to size anchors that were found ready so repeated
// checks for the same anchor skip the fetches. Only positive decisions are
// kept, which assumes the store never moves a resolved namespace back to
// pending for the same anchor. Anchors without an ID are never memoized.
// size <= 0 disables it.
func WithGateMemo(size int) GateOption {
	return func(g *Gate) {
		if size <= 0 {
			g.memo = nil
			return
		}
		memo, err := lru.New[string, struct{}](size)
		if err != nil {
			g.memo = nil
			return
		}
		g.memo = memo
	}
}

// WithGateLogger attaches a logger.
func WithGateLogger(logger Logger) GateOption {
	return func(g *Gate) {
		g.logger = loggerOrNop(logger)
	}
}

// WithGateMetrics attaches a metrics recorder.
func WithGateMetrics(recorder MetricsRecorder) GateOption {
	return func(g *Gate) {
		g.metrics = metricsOrNop(recorder)
	}
}

// Gate is a readiness gate bound to a fixed, ordered namespace set.
type Gate struct {
	namespaces []Namespace
	kind       string
	memo       *lru.Cache[string, struct{}]
	logger     Logger
	metrics    MetricsRecorder
}

// NewGate builds a gate over namespaces. The slice is copied.
func NewGate(namespaces []Namespace, opts ...GateOption) *Gate {
	g := &Gate{
		namespaces: append([]Namespace(nil), namespaces...),
		kind:       "default",
		logger:     noopLogger{},
		metrics:    noopMetrics{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Namespaces returns a copy of the namespaces the gate waits on.
func (g *Gate) Namespaces() []Namespace {
	if g == nil {
		return nil
	}
	return append([]Namespace(nil), g.namespaces...)
}

// Kind returns the gate label.
func (g *Gate) Kind() string {
	if g == nil {
		return ""
	}
	return g.kind
}

// Ready evaluates the gate for anchor. Unlike IsReady it fetches every
// namespace so the pending set can be reported.
func (g *Gate) Ready(anchor Anchor, fetch Fetcher) bool {
	ready, _ := g.check(anchor, fetch)
	return ready
}

func (g *Gate) check(anchor Anchor, fetch Fetcher) (bool, []Namespace) {
	if g == nil {
		return true, nil
	}
	if g.memo != nil && anchor.ID != "" {
		if _, ok := g.memo.Get(anchor.ID); ok {
			g.metrics.ObserveGate(g.kind, true, 0)
			return true, nil
		}
	}

	pending := PendingNamespaces(anchor, g.namespaces, fetch)
	ready := len(pending) == 0
	g.metrics.ObserveGate(g.kind, ready, len(pending))
	if !ready {
		g.logger.Debug("states: gate waiting",
			"kind", g.kind,
			"anchor", anchor.Label(),
			"pending", namespaceStrings(pending),
		)
		return false, pending
	}
	if g.memo != nil && anchor.ID != "" {
		g.memo.Add(anchor.ID, struct{}{})
	}
	return true, nil
}

// Pending returns the namespaces still pending for anchor.
func (g *Gate) Pending(anchor Anchor, fetch Fetcher) []Namespace {
	if g == nil {
		return nil
	}
	return PendingNamespaces(anchor, g.namespaces, fetch)
}

package states

import "github.com/goliatone/go-states/layering"

// Source is the input handed to a Projection.
type Source struct {
	Namespace Namespace
	Anchor    Anchor
	// Value is the field addressed by the rule path (or one list element).
	Value layering.Value
	// Snapshot is the whole namespace value the field was read from.
	Snapshot layering.Map
}

// Projection turns one extracted value into at most one record.
type Projection[R any] func(src Source) (R, bool)

// Rule extracts records of type R from one namespace. Path addresses the
// source field inside the namespace snapshot; an empty Path selects the whole
// snapshot. When Each is set and the field is a list, Project runs once per
// element in list order. Missing fields contribute nothing.
type Rule[R any] struct {
	Namespace Namespace
	Path      []string
	Each      bool
	Project   Projection[R]
}

func (r Rule[R]) apply(anchor Anchor, data layering.Map, out []R) []R {
	if data == nil || r.Project == nil {
		return out
	}
	value, ok := data.Lookup(r.Path...)
	if !ok {
		return out
	}
	if r.Each {
		items, ok := value.AsList()
		if !ok {
			return out
		}
		for _, item := range items {
			if record, ok := r.Project(Source{Namespace: r.Namespace, Anchor: anchor, Value: item, Snapshot: data}); ok {
				out = append(out, record)
			}
		}
		return out
	}
	if record, ok := r.Project(Source{Namespace: r.Namespace, Anchor: anchor, Value: value, Snapshot: data}); ok {
		out = append(out, record)
	}
	return out
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*aggregatorConfig)

type aggregatorConfig struct {
	kind   string
	logger Logger
}

// WithAggregatorKind labels the aggregator in log entries.
func WithAggregatorKind(kind string) AggregatorOption {
	return func(cfg *aggregatorConfig) {
		cfg.kind = kind
	}
}

// WithAggregatorLogger attaches a logger.
func WithAggregatorLogger(logger Logger) AggregatorOption {
	return func(cfg *aggregatorConfig) {
		cfg.logger = loggerOrNop(logger)
	}
}

// Aggregator applies a fixed, ordered rule table across namespaces. Records
// are emitted in rule order, and within a list-valued rule in source order.
type Aggregator[R any] struct {
	rules []Rule[R]
	cfg   aggregatorConfig
}

// NewAggregator builds an aggregator over rules. The table is copied.
func NewAggregator[R any](rules []Rule[R], opts ...AggregatorOption) *Aggregator[R] {
	cfg := aggregatorConfig{
		kind:   "default",
		logger: noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Aggregator[R]{
		rules: append([]Rule[R](nil), rules...),
		cfg:   cfg,
	}
}

// Namespaces returns the distinct namespaces referenced by the rules, in
// first-use order. This is the set a Gate should wait on.
func (a *Aggregator[R]) Namespaces() []Namespace {
	if a == nil {
		return nil
	}
	seen := make(map[Namespace]struct{}, len(a.rules))
	var out []Namespace
	for _, rule := range a.rules {
		if _, ok := seen[rule.Namespace]; ok {
			continue
		}
		seen[rule.Namespace] = struct{}{}
		out = append(out, rule.Namespace)
	}
	return out
}

// Collect fetches each referenced namespace once and folds the rule table
// over the results. Pending and None snapshots contribute nothing; Collect
// never consults a Gate and never fails. Metrics are recorded by Pipeline.
func (a *Aggregator[R]) Collect(anchor Anchor, fetch Fetcher) []R {
	if a == nil || fetch == nil {
		return nil
	}
	snapshots := make(map[Namespace]layering.Map, len(a.rules))
	var out []R
	for _, rule := range a.rules {
		data, fetched := snapshots[rule.Namespace]
		if !fetched {
			snapshot := fetch.Fetch(rule.Namespace, anchor)
			data = snapshot.Data()
			snapshots[rule.Namespace] = data
			if !snapshot.IsSet() {
				a.cfg.logger.Debug("states: namespace contributes nothing",
					"kind", a.cfg.kind,
					"anchor", anchor.Label(),
					"namespace", string(rule.Namespace),
					"status", snapshot.Status.String(),
				)
			}
		}
		out = rule.apply(anchor, data, out)
	}
	return out
}

package rules

import (
	"fmt"

	states "github.com/goliatone/go-states"
	"github.com/goliatone/go-states/internal/hydrate"
	"github.com/goliatone/go-states/layering"
)

// Option configures Compile.
type Option func(*compileConfig)

type compileConfig struct {
	evaluator  states.Evaluator
	cache      states.ProgramCache
	registry   *states.FunctionRegistry
	logger     states.Logger
	metrics    states.MetricsRecorder
	args       map[string]any
	pruneEmpty bool
}

// WithEvaluator bypasses the engine named in the spec.
func WithEvaluator(evaluator states.Evaluator) Option {
	return func(cfg *compileConfig) {
		cfg.evaluator = evaluator
	}
}

// WithProgramCache shares compiled programs across rule sets.
func WithProgramCache(cache states.ProgramCache) Option {
	return func(cfg *compileConfig) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes helper functions to every rule.
func WithFunctionRegistry(registry *states.FunctionRegistry) Option {
	return func(cfg *compileConfig) {
		cfg.registry = registry
	}
}

// WithLogger receives aggregation and projection diagnostics.
func WithLogger(logger states.Logger) Option {
	return func(cfg *compileConfig) {
		cfg.logger = logger
	}
}

// WithMetrics records gate decisions and one aggregation per pipeline run.
func WithMetrics(recorder states.MetricsRecorder) Option {
	return func(cfg *compileConfig) {
		cfg.metrics = recorder
	}
}

// WithArgs is exposed to expressions as `args`.
func WithArgs(args map[string]any) Option {
	return func(cfg *compileConfig) {
		cfg.args = args
	}
}

// WithPruneEmpty drops null fields from every collected record, including
// nulls carried in by an attach map.
func WithPruneEmpty(prune bool) Option {
	return func(cfg *compileConfig) {
		cfg.pruneEmpty = prune
	}
}

type group struct {
	field      string
	attach     layering.Map
	aggregator *states.Aggregator[layering.Map]
}

// RuleSet is a compiled Spec.
type RuleSet struct {
	kind       string
	engine     string
	groups     []group
	pruneEmpty bool
	logger     states.Logger
	metrics    states.MetricsRecorder
}

// Compile builds a RuleSet from spec. Every expression is compiled up front,
// so a returned RuleSet never fails at collection time.
func Compile(spec Spec, opts ...Option) (*RuleSet, error) {
	if err := validateSpec(hydrate.Context{Kind: "ruleset"}, &spec); err != nil {
		return nil, err
	}
	cfg := compileConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	evaluator := cfg.evaluator
	if evaluator == nil {
		var err error
		evaluator, err = newEvaluator(spec.Engine, cfg)
		if err != nil {
			return nil, err
		}
	}

	ruleOpts := []states.ExpressionRuleOption{
		states.WithProjectionLogger(states.EvaluatorLoggerFor(cfg.logger)),
		states.WithProjectionArgs(cfg.args),
		states.WithProjectionMetadata(map[string]any{"kind": spec.Kind}),
	}

	set := &RuleSet{
		kind:       spec.Kind,
		engine:     states.EvaluatorEngineName(evaluator),
		pruneEmpty: cfg.pruneEmpty,
		logger:     cfg.logger,
		metrics:    cfg.metrics,
	}
	for _, g := range spec.Groups {
		compiled := make([]states.Rule[layering.Map], 0, len(g.Rules))
		for i, r := range g.Rules {
			rule, err := states.ExpressionRule(evaluator, states.Namespace(r.Namespace), r.Path, r.Each, r.Expr, ruleOpts...)
			if err != nil {
				return nil, fmt.Errorf("rules: %s group %q rule %d: %w", spec.Kind, g.Field, i, err)
			}
			compiled = append(compiled, rule)
		}
		set.groups = append(set.groups, group{
			field:  g.Field,
			attach: layering.FromMap(g.Attach),
			aggregator: states.NewAggregator(compiled,
				states.WithAggregatorKind(spec.Kind+"."+g.Field),
				states.WithAggregatorLogger(cfg.logger),
			),
		})
	}
	return set, nil
}

func newEvaluator(engine string, cfg compileConfig) (states.Evaluator, error) {
	switch engine {
	case EngineCEL:
		return states.NewCELEvaluator(
			states.CELWithProgramCache(cfg.cache),
			states.CELWithFunctionRegistry(cfg.registry),
		), nil
	case EngineJS:
		if !states.JSEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrEngineUnavailable, engine)
		}
		return states.NewJSEvaluator(
			states.JSWithProgramCache(cfg.cache),
			states.JSWithFunctionRegistry(cfg.registry),
		), nil
	default:
		return states.NewExprEvaluator(
			states.ExprWithProgramCache(cfg.cache),
			states.ExprWithFunctionRegistry(cfg.registry),
		), nil
	}
}

// Kind returns the aggregation kind.
func (s *RuleSet) Kind() string {
	return s.kind
}

// Engine returns the engine the rules were compiled with.
func (s *RuleSet) Engine() string {
	return s.engine
}

// Namespaces returns every namespace referenced by the rule set, in first-use
// order. Feed it to a gate.
func (s *RuleSet) Namespaces() []states.Namespace {
	seen := map[states.Namespace]struct{}{}
	var out []states.Namespace
	for _, g := range s.groups {
		for _, ns := range g.aggregator.Namespaces() {
			if _, ok := seen[ns]; ok {
				continue
			}
			seen[ns] = struct{}{}
			out = append(out, ns)
		}
	}
	return out
}

// Collect runs every group and returns one list per group that produced
// records. A group's attach map is merged into each of its records through
// the list's AttachSuffix key. With pruning on, null fields are dropped from
// every record.
func (s *RuleSet) Collect(anchor states.Anchor, fetch states.Fetcher) layering.Map {
	out := layering.Map{}
	for _, g := range s.groups {
		records := g.aggregator.Collect(anchor, fetch)
		if len(records) == 0 {
			continue
		}
		items := make([]layering.Value, len(records))
		for i, record := range records {
			if s.pruneEmpty {
				layering.MergeOverwrite(record, nil, true)
			}
			items[i] = layering.MapOf(record)
		}
		out[g.field] = layering.ListOf(items...)
		if len(g.attach) > 0 {
			layering.MergeOverwrite(out, layering.Map{
				g.field + layering.AttachSuffix: layering.MapOf(g.attach),
			}, s.pruneEmpty)
		}
	}
	return out
}

// Gate returns a gate over the rule set namespaces.
func (s *RuleSet) Gate(opts ...states.GateOption) *states.Gate {
	opts = append([]states.GateOption{
		states.WithGateKind(s.kind),
		states.WithGateLogger(s.logger),
		states.WithGateMetrics(s.metrics),
	}, opts...)
	return states.NewGate(s.Namespaces(), opts...)
}

// Pipeline couples the rule set with a gate. A nil gate uses Gate().
func (s *RuleSet) Pipeline(gate *states.Gate, opts ...states.PipelineOption) *states.Pipeline[Result] {
	if gate == nil {
		gate = s.Gate()
	}
	opts = append([]states.PipelineOption{
		states.WithPipelineLogger(s.logger),
		states.WithPipelineMetrics(s.metrics),
	}, opts...)
	return states.NewPipeline[Result](s.kind, gate, func(anchor states.Anchor, fetch states.Fetcher) Result {
		return Result(s.Collect(anchor, fetch))
	}, opts...)
}

// Result is a collected rule set output.
type Result layering.Map

// RecordCount sums the lengths of the group lists.
func (r Result) RecordCount() int {
	n := 0
	for _, value := range r {
		if items, ok := value.AsList(); ok {
			n += len(items)
		}
	}
	return n
}

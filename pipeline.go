package states

import (
	"context"
	"time"

	"github.com/goliatone/go-states/pkg/activity"
)

// RecordCounter is implemented by aggregation results that can report how
// many records they hold. Pipelines use it for the completion event.
type RecordCounter interface {
	RecordCount() int
}

// AggregateFunc builds a result for an anchor whose gate is open.
type AggregateFunc[T any] func(anchor Anchor, fetch Fetcher) T

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	logger  Logger
	metrics MetricsRecorder
	emitter *activity.Emitter
	actorID string
}

// WithPipelineLogger attaches a logger.
func WithPipelineLogger(logger Logger) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.logger = loggerOrNop(logger)
	}
}

// WithPipelineMetrics attaches a metrics recorder used for aggregation
// timings. Gate decisions are recorded by the gate's own recorder.
func WithPipelineMetrics(recorder MetricsRecorder) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.metrics = metricsOrNop(recorder)
	}
}

// WithActivityEmitter routes pipeline events through emitter.
func WithActivityEmitter(emitter *activity.Emitter) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.emitter = emitter
	}
}

// WithActivityHooks is a shorthand for an enabled emitter on the default
// channel.
func WithActivityHooks(hooks activity.Hooks) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.emitter = activity.NewEmitter(hooks, activity.Config{Enabled: true})
	}
}

// WithActivityActor stamps emitted events with actorID.
func WithActivityActor(actorID string) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.actorID = actorID
	}
}

// Pipeline couples a Gate with an aggregation. Run only aggregates once the
// gate is open, so callers get either a complete result or nothing.
type Pipeline[T any] struct {
	kind      string
	gate      *Gate
	aggregate AggregateFunc[T]
	cfg       pipelineConfig
}

// NewPipeline builds a pipeline. A nil gate is always open; a nil aggregate
// produces the zero value.
func NewPipeline[T any](kind string, gate *Gate, aggregate AggregateFunc[T], opts ...PipelineOption) *Pipeline[T] {
	cfg := pipelineConfig{
		logger:  noopLogger{},
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if kind == "" {
		kind = "default"
	}
	return &Pipeline[T]{
		kind:      kind,
		gate:      gate,
		aggregate: aggregate,
		cfg:       cfg,
	}
}

// Kind returns the pipeline label.
func (p *Pipeline[T]) Kind() string {
	if p == nil {
		return ""
	}
	return p.kind
}

// Run evaluates the gate for anchor and, when it is open, aggregates. The
// boolean is false when the gate held the anchor back. Activity hook failures
// are logged and never change the outcome.
func (p *Pipeline[T]) Run(ctx context.Context, anchor Anchor, fetch Fetcher) (T, bool) {
	var zero T
	if p == nil {
		return zero, false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ready, pending := p.gate.check(anchor, fetch)
	if !ready {
		p.emit(ctx, activity.BuildGatePendingEvent(p.eventInput(anchor, pending, 0)))
		return zero, false
	}
	if p.aggregate == nil {
		return zero, true
	}

	start := time.Now()
	result := p.aggregate(anchor, fetch)
	records := 0
	if counter, ok := any(result).(RecordCounter); ok {
		records = counter.RecordCount()
	}
	elapsed := time.Since(start)
	p.cfg.metrics.ObserveAggregation(p.kind, records, elapsed)
	p.cfg.logger.Debug("states: aggregation completed",
		"kind", p.kind,
		"anchor", anchor.Label(),
		"records", records,
		"duration", elapsed,
	)
	p.emit(ctx, activity.BuildAggregationCompletedEvent(p.eventInput(anchor, nil, records)))
	return result, true
}

func (p *Pipeline[T]) eventInput(anchor Anchor, namespaces []Namespace, records int) activity.AnchorEventInput {
	return activity.AnchorEventInput{
		ActorID:       p.cfg.actorID,
		Kind:          p.kind,
		AnchorID:      anchor.ID,
		AnchorName:    anchor.Name,
		AnchorVersion: anchor.Version,
		Namespaces:    namespaceStrings(namespaces),
		Records:       records,
	}
}

func (p *Pipeline[T]) emit(ctx context.Context, event activity.Event) {
	if !p.cfg.emitter.Enabled() {
		return
	}
	if err := p.cfg.emitter.Emit(ctx, event); err != nil {
		p.cfg.logger.Warn("states: activity hook failed",
			"kind", p.kind,
			"verb", event.Verb,
			"error", err,
		)
	}
}

package states

import (
	"fmt"
	"time"

	"github.com/goliatone/go-states/layering"
)

// ExpressionRuleOption configures ExpressionRule.
type ExpressionRuleOption func(*expressionRuleConfig)

type expressionRuleConfig struct {
	logger   EvaluatorLogger
	args     map[string]any
	metadata map[string]any
}

// WithProjectionLogger receives one event per evaluation.
func WithProjectionLogger(logger EvaluatorLogger) ExpressionRuleOption {
	return func(cfg *expressionRuleConfig) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithProjectionArgs exposes args to the expression as `args`.
func WithProjectionArgs(args map[string]any) ExpressionRuleOption {
	return func(cfg *expressionRuleConfig) {
		cfg.args = copyAnyMap(args)
	}
}

// WithProjectionMetadata exposes metadata to the expression as `metadata`.
func WithProjectionMetadata(metadata map[string]any) ExpressionRuleOption {
	return func(cfg *expressionRuleConfig) {
		cfg.metadata = copyAnyMap(metadata)
	}
}

// ExpressionRule compiles expr with evaluator and returns a Rule whose
// projection evaluates it against each extracted value. A map result becomes
// the record; nil skips the value. Any other result, or an evaluation error,
// contributes nothing and is reported to the projection logger.
func ExpressionRule(evaluator Evaluator, namespace Namespace, path []string, each bool, expr string, opts ...ExpressionRuleOption) (Rule[layering.Map], error) {
	if evaluator == nil {
		return Rule[layering.Map]{}, fmt.Errorf("states: expression rule for %q: evaluator is required", namespace)
	}
	if namespace == "" {
		return Rule[layering.Map]{}, ErrNamespaceRequired
	}
	compiled, err := evaluator.Compile(expr)
	if err != nil {
		return Rule[layering.Map]{}, wrapEvaluationError(EvaluatorEngineName(evaluator), expr, string(namespace), err)
	}

	cfg := expressionRuleConfig{logger: noopEvaluatorLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	engine := EvaluatorEngineName(evaluator)

	project := func(src Source) (layering.Map, bool) {
		ctx := ProjectionContext{
			Namespace: src.Namespace,
			Anchor:    src.Anchor,
			Value:     src.Value.Any(),
			Snapshot:  src.Snapshot.Any(),
			Args:      copyAnyMap(cfg.args),
			Metadata:  copyAnyMap(cfg.metadata),
		}
		start := time.Now()
		result, evalErr := compiled.Evaluate(ctx)
		record, ok, shapeErr := recordFromResult(result)
		if evalErr == nil && shapeErr != nil {
			evalErr = wrapEvaluationError(engine, expr, string(src.Namespace), shapeErr)
		}
		cfg.logger.LogEvaluation(EvaluatorLogEvent{
			Engine:    engine,
			Expr:      expr,
			Namespace: string(src.Namespace),
			Anchor:    src.Anchor.Label(),
			Duration:  time.Since(start),
			Err:       evalErr,
		})
		if evalErr != nil {
			return nil, false
		}
		return record, ok
	}

	return Rule[layering.Map]{
		Namespace: namespace,
		Path:      append([]string(nil), path...),
		Each:      each,
		Project:   project,
	}, nil
}

func recordFromResult(result any) (layering.Map, bool, error) {
	switch v := result.(type) {
	case nil:
		return nil, false, nil
	case map[string]any:
		return layering.FromMap(v), true, nil
	case layering.Map:
		return v.Clone(), true, nil
	default:
		value := layering.FromAny(result)
		if m, ok := value.AsMap(); ok {
			return m, true, nil
		}
		return nil, false, fmt.Errorf("projection returned %T, want a map", result)
	}
}

func copyAnyMap(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}

package states

import (
	"time"
)

// ProjectionContext carries the inputs visible to an expression projection.
type ProjectionContext struct {
	Namespace Namespace
	Anchor    Anchor
	// Value is the extracted field, already converted to plain Go values.
	Value any
	// Snapshot is the whole namespace snapshot the field was read from.
	Snapshot map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx ProjectionContext) withDefaults() ProjectionContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx ProjectionContext) withDefaultNow() ProjectionContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx ProjectionContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx ProjectionContext) withDefaultMaps() ProjectionContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	return ctx
}

func (ctx ProjectionContext) namespaceLabel() string {
	if ctx.Namespace == "" {
		return "unknown"
	}
	return string(ctx.Namespace)
}

func (ctx ProjectionContext) anchorBinding() map[string]any {
	return map[string]any{
		"id":      ctx.Anchor.ID,
		"name":    ctx.Anchor.Name,
		"version": ctx.Anchor.Version,
	}
}

// bindings is the variable set shared by every engine.
func (ctx ProjectionContext) bindings() map[string]any {
	return map[string]any{
		"value":     ctx.Value,
		"namespace": string(ctx.Namespace),
		"anchor":    ctx.anchorBinding(),
		"snapshot":  ctx.Snapshot,
		"now":       ctx.timestamp(),
		"args":      ctx.Args,
		"metadata":  ctx.Metadata,
	}
}

// Evaluator executes projection expressions.
type Evaluator interface {
	Evaluate(ctx ProjectionContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx ProjectionContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

// EvaluatorEngineName reports the engine behind e: "expr", "cel", "js" or
// "custom".
func EvaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if isJSEvaluator(e) {
			return "js"
		}
		return "custom"
	}
}

package states

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError carries evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine    string
	Expr      string
	Namespace string
	Err       error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("states: %s evaluator %s namespace=%s: %v", e.Engine, describeExpression(e.Expr), describeNamespace(e.Namespace), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func describeNamespace(ns string) string {
	if ns == "" {
		return "<none>"
	}
	return ns
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "states:") {
		return err
	}
	return fmt.Errorf("states: %s evaluator: %w", engine, err)
}

// wrapEvaluationError fills missing metadata on an existing EvaluationError
// instead of nesting a second one.
func wrapEvaluationError(engine, expr, namespace string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Namespace == "" {
			evalErr.Namespace = namespace
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:    engine,
		Expr:      expr,
		Namespace: namespace,
		Err:       err,
	}
}

package states

import "time"

// EvaluatorLogEvent describes one projection evaluation.
type EvaluatorLogEvent struct {
	Engine    string
	Expr      string
	Namespace string
	Anchor    string
	Duration  time.Duration
	Err       error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// EvaluatorLoggerFor forwards evaluation events to logger: failures at warn
// level, successes at debug.
func EvaluatorLoggerFor(logger Logger) EvaluatorLogger {
	if logger == nil {
		return noopEvaluatorLogger{}
	}
	return EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		if event.Err != nil {
			logger.Warn("states: projection failed",
				"engine", event.Engine,
				"expr", event.Expr,
				"namespace", event.Namespace,
				"anchor", event.Anchor,
				"error", event.Err,
			)
			return
		}
		logger.Debug("states: projection evaluated",
			"engine", event.Engine,
			"namespace", event.Namespace,
			"anchor", event.Anchor,
			"duration", event.Duration,
		)
	})
}

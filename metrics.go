package states

import "time"

// MetricsRecorder observes gate decisions and aggregation runs. Implementations
// must be safe for concurrent use.
type MetricsRecorder interface {
	ObserveGate(kind string, ready bool, pending int)
	ObserveAggregation(kind string, records int, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveGate(string, bool, int) {}
func (noopMetrics) ObserveAggregation(string, int, time.Duration) {}

func metricsOrNop(recorder MetricsRecorder) MetricsRecorder {
	if recorder == nil {
		return noopMetrics{}
	}
	return recorder
}

package states

// Logger receives structured diagnostics. Key/value pairs follow the
// zap SugaredLogger convention.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	return noopLogger{}
}

func loggerOrNop(logger Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return logger
}

func namespaceStrings(namespaces []Namespace) []string {
	if len(namespaces) == 0 {
		return nil
	}
	out := make([]string, len(namespaces))
	for i, ns := range namespaces {
		out[i] = string(ns)
	}
	return out
}

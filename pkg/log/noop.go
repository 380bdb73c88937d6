package log

// NoopLogger discards everything. It is the default logger throughout the
// module, so lifecycle machinery can log unconditionally without nil checks.
type NoopLogger struct{}

// NewNoopLogger creates a logger that discards all output.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (NoopLogger) Debug(msg string, fields ...Field) {}
func (NoopLogger) Info(msg string, fields ...Field)  {}
func (NoopLogger) Warn(msg string, fields ...Field)  {}
func (NoopLogger) Error(msg string, fields ...Field) {}

package ports

// Logger defines the interface for logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(err error)
}

// NopLogger discards everything. Engines fall back to it when no logger is
// injected.
type NopLogger struct{}

// Debug does nothing.
func (NopLogger) Debug(string, ...any) {}

// Info does nothing.
func (NopLogger) Info(string, ...any) {}

// Warn does nothing.
func (NopLogger) Warn(string, ...any) {}

// Error does nothing.
func (NopLogger) Error(error) {}

package port

// Logger defines a common logging interface for the application.
// Args are slog-style alternating keys and values.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a logger that adds args to every message.
	With(args ...any) Logger
}

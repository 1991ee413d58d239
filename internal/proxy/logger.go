package proxy

import "log/slog"

// Logger is the event sink used by sessions and the relay. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// orNop returns a discarding Logger for a nil interface or a nil
// *slog.Logger.
func orNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	if sl, ok := l.(*slog.Logger); ok && sl == nil {
		return nopLogger{}
	}
	return l
}

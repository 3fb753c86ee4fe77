// logging.go — Structured logger surface consumed by the supervisor core.
package logging

import "go.uber.org/zap"

// Logger is the three-severity structured logging surface the launcher
// core writes to. Key/value pairs follow the zap sugared convention:
// alternating string keys and arbitrary values.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZap wraps a zap logger in the Logger surface.
func NewZap(z *zap.Logger) Logger {
	// Skip the adapter frame so call sites are attributed correctly.
	return &zapLogger{s: z.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *zapLogger) Debug(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l *zapLogger) Info(msg string, keysAndValues ...any) {
	l.s.Infow(msg, keysAndValues...)
}

func (l *zapLogger) Error(msg string, keysAndValues ...any) {
	l.s.Errorw(msg, keysAndValues...)
}

type nopLogger struct{}

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

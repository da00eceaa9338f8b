package tursokv

import (
	"context"

	"go.uber.org/zap"
)

// Logger defines an interface for logging operations.
// Implementations should be safe for concurrent use.
type Logger interface {
	// Info logs informational messages
	Info(ctx context.Context, format string, args ...interface{})

	// Warn logs warning messages
	Warn(ctx context.Context, format string, args ...interface{})

	// Error logs error messages
	Error(ctx context.Context, format string, args ...interface{})

	// Debug logs debug messages
	Debug(ctx context.Context, format string, args ...interface{})
}

// noopLogger is a Logger that does nothing.
type noopLogger struct{}

func (noopLogger) Info(ctx context.Context, format string, args ...interface{})  {}
func (noopLogger) Warn(ctx context.Context, format string, args ...interface{})  {}
func (noopLogger) Error(ctx context.Context, format string, args ...interface{}) {}
func (noopLogger) Debug(ctx context.Context, format string, args ...interface{}) {}

var defaultLogger Logger = noopLogger{}

// ZapLogger forwards log calls to a zap sugared logger.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger returns a Logger backed by s. A nil s uses zap.S().
func NewZapLogger(s *zap.SugaredLogger) *ZapLogger {
	if s == nil {
		s = zap.S()
	}
	return &ZapLogger{s: s}
}

func (l *ZapLogger) Info(_ context.Context, format string, args ...interface{}) {
	l.s.Infof(format, args...)
}

func (l *ZapLogger) Warn(_ context.Context, format string, args ...interface{}) {
	l.s.Warnf(format, args...)
}

func (l *ZapLogger) Error(_ context.Context, format string, args ...interface{}) {
	l.s.Errorf(format, args...)
}

func (l *ZapLogger) Debug(_ context.Context, format string, args ...interface{}) {
	l.s.Debugf(format, args...)
}

package offsync

import (
	"context"

	"github.com/rs/zerolog"
)

// Logger captures engine logs; implementors can wrap slog/zap/etc.
type Logger interface {
	Info(ctx context.Context, format string, v ...any)
	Warn(ctx context.Context, format string, v ...any)
	Error(ctx context.Context, format string, v ...any)
}

// noopLogger discards all engine logs.
type noopLogger struct{}

// Info implements Logger.
func (noopLogger) Info(context.Context, string, ...any) {}

// Warn implements Logger.
func (noopLogger) Warn(context.Context, string, ...any) {}

// Error implements Logger.
func (noopLogger) Error(context.Context, string, ...any) {}

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps the given zerolog logger.
func NewZerologLogger(log zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{log: log}
}

// Info implements Logger.
func (l *ZerologLogger) Info(ctx context.Context, format string, v ...any) {
	l.log.Info().Ctx(ctx).Msgf(format, v...)
}

// Warn implements Logger.
func (l *ZerologLogger) Warn(ctx context.Context, format string, v ...any) {
	l.log.Warn().Ctx(ctx).Msgf(format, v...)
}

// Error implements Logger.
func (l *ZerologLogger) Error(ctx context.Context, format string, v ...any) {
	l.log.Error().Ctx(ctx).Msgf(format, v...)
}

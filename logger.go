package edgecontext

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/auth0/go-edge-context/core"
)

// Logger defines an optional logging interface compatible with log/slog.
// This is the same interface used by core for consistent logging across the stack.
type Logger = core.Logger

// NewZapLogger returns a Logger adapter for zap.SugaredLogger.
func NewZapLogger(l *zap.SugaredLogger) Logger {
	return &zapLoggerAdapter{l}
}

type zapLoggerAdapter struct{ l *zap.SugaredLogger }

func (z *zapLoggerAdapter) Debug(msg string, args ...any) { z.l.Debugw(msg, args...) }
func (z *zapLoggerAdapter) Info(msg string, args ...any)  { z.l.Infow(msg, args...) }
func (z *zapLoggerAdapter) Warn(msg string, args ...any)  { z.l.Warnw(msg, args...) }
func (z *zapLoggerAdapter) Error(msg string, args ...any) { z.l.Errorw(msg, args...) }

// NewZerologLogger returns a Logger adapter for zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLoggerAdapter{l}
}

type zerologLoggerAdapter struct{ l zerolog.Logger }

func (z *zerologLoggerAdapter) Debug(msg string, args ...any) {
	z.l.Debug().Fields(args).Msg(msg)
}
func (z *zerologLoggerAdapter) Info(msg string, args ...any) {
	z.l.Info().Fields(args).Msg(msg)
}
func (z *zerologLoggerAdapter) Warn(msg string, args ...any) {
	z.l.Warn().Fields(args).Msg(msg)
}
func (z *zerologLoggerAdapter) Error(msg string, args ...any) {
	z.l.Error().Fields(args).Msg(msg)
}

// NewLogrusLogger returns a Logger adapter for logrus.FieldLogger.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLoggerAdapter{l}
}

type logrusLoggerAdapter struct{ l logrus.FieldLogger }

func (l *logrusLoggerAdapter) Debug(msg string, args ...any) { l.l.WithFields(logrusFields(args)).Debug(msg) }
func (l *logrusLoggerAdapter) Info(msg string, args ...any)  { l.l.WithFields(logrusFields(args)).Info(msg) }
func (l *logrusLoggerAdapter) Warn(msg string, args ...any)  { l.l.WithFields(logrusFields(args)).Warn(msg) }
func (l *logrusLoggerAdapter) Error(msg string, args ...any) { l.l.WithFields(logrusFields(args)).Error(msg) }

// logrusFields pairs up slog style key/value arguments. A trailing key
// without a value is logged under "!BADKEY", as slog does.
func logrusFields(args []any) logrus.Fields {
	fields := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			fields["!BADKEY"] = args[i]
			break
		}
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	return fields
}

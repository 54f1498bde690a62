// Package logger wraps zap behind the small interface the rest of the
// codebase logs through.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the set of levels the engine and CLI use.
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// New creates the process logger: JSON at INFO for normal runs,
// console at DEBUG when verbose.
func New(verbose bool) (Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{z: z}, nil
}

// Nop discards everything. Tests use it.
func Nop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

// Wrap adapts an existing zap logger, mainly for capturing output in
// tests.
func Wrap(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

// Package logging holds the process-wide structured logger: a
// package-level logger with a setter a host process overrides at
// startup, backed by go.uber.org/zap's structured logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	logger = l
}

// SetLogger overrides the package-level logger. A host process calls
// this once at startup after building a logger from its config.
func SetLogger(l *zap.Logger) {
	logger = l
}

// L returns the current package-level logger.
func L() *zap.Logger {
	return logger
}

// NewFromLevel builds a production zap logger at the given level name
// (debug, info, warn, error). An unrecognized level falls back to info.
func NewFromLevel(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

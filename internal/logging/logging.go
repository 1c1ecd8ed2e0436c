// Package logging constructs the process-wide zap logger and the optional
// terminal status line. No package-level logger is exported; callers thread
// the constructed *zap.SugaredLogger through their own constructors.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger writing human-readable console output to stderr.
// debug selects DebugLevel; otherwise InfoLevel. quiet raises the floor to
// WarnLevel regardless of debug, for the --quiet CLI flag.
func New(debug, quiet bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	if quiet {
		level = zapcore.WarnLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

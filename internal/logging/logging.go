package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levels = map[string]zapcore.Level{
	"DEBUG":    zapcore.DebugLevel,
	"INFO":     zapcore.InfoLevel,
	"WARNING":  zapcore.WarnLevel,
	"ERROR":    zapcore.ErrorLevel,
	"CRITICAL": zapcore.DPanicLevel,
}

// Level maps a configured level name onto a zap level, defaulting to info.
func Level(name string) zapcore.Level {
	if level, ok := levels[strings.ToUpper(name)]; ok {
		return level
	}
	return zapcore.InfoLevel
}

// New creates a structured logger at the given level. Production builds emit
// JSON; development builds use the human-readable console encoder.
func New(level string, development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.StacktraceKey = "stacktrace"
		cfg.DisableStacktrace = false
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(Level(level))

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	logger.Debug("logging initialized", zap.Stringer("level", cfg.Level))
	return logger, nil
}

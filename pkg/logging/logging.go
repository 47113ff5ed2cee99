// Package logging configures the process-wide zap logger.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a config log level to a zap level. Unknown values are an error.
func ParseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", level)
	}
	return l, nil
}

// InitLogger builds a console logger with ISO8601 timestamps at the given level.
func InitLogger(level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.Level = zap.NewAtomicLevelAt(lvl)
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	prodConfig.DisableStacktrace = lvl > zapcore.DebugLevel
	return prodConfig.Build()
}

// Setup builds the logger and installs it as zap's global. The returned
// function restores the previous global and flushes.
func Setup(level string) (func(), error) {
	logger, err := InitLogger(level)
	if err != nil {
		return nil, err
	}
	undo := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		undo()
	}, nil
}

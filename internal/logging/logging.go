// Package logging builds the zap logger shared by the client and the stub API.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewFile returns a logger writing human-readable lines to path. The TUI owns
// the terminal, so the client never logs to stdout or stderr. An empty path
// yields a no-op logger.
func NewFile(path string, debug bool) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("logging.NewFile: %w", err)
	}
	cfg := baseConfig(debug)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging.NewFile: %w", err)
	}
	return logger, nil
}

// NewConsole returns a logger writing to stderr, for processes without a TUI.
func NewConsole(debug bool) *zap.Logger {
	logger, err := baseConfig(debug).Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func baseConfig(debug bool) zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg
}

// Package cmd contains the code shared by the acidbox command line tools.
package cmd

import (
	"fmt"

	"github.com/vsariola/acidbox"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the zap logger described by cfg. Development loggers are
// human readable and log to stderr; production loggers write JSON.
func NewLogger(cfg acidbox.LogConfig) (*zap.Logger, error) {
	zc, err := loggerConfig(cfg)
	if err != nil {
		return nil, err
	}
	return build(zc)
}

// NewFileLogger is like NewLogger, but writes to the given file instead of
// stderr. Terminal user interfaces own the terminal, so they log to a file.
func NewFileLogger(cfg acidbox.LogConfig, path string) (*zap.Logger, error) {
	zc, err := loggerConfig(cfg)
	if err != nil {
		return nil, err
	}
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	return build(zc)
}

func loggerConfig(cfg acidbox.LogConfig) (zap.Config, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(cfg.Level); err != nil {
			return zap.Config{}, fmt.Errorf("invalid log level: %w", err)
		}
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc, nil
}

func build(zc zap.Config) (*zap.Logger, error) {
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build logger: %w", err)
	}
	return logger, nil
}

package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Debug mode switches to the human readable
// development encoder; otherwise logs are JSON.
func New(level string, debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}

	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = atomicLevel

	return cfg.Build()
}

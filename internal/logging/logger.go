package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// New builds the service logger. LOG_LEVEL "debug" also switches to the
// human-readable development encoder.
func New(level string) (*zap.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}

	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: parse level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if level == "debug" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = atomicLevel
	cfg.OutputPaths = []string{"stdout"}

	return cfg.Build()
}

// Package logging builds the structured logger shared by the sweep commands.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap logger writing to outputPaths (stderr when empty).
// verbose lowers the level to debug. Parent directories of file paths are created.
func New(verbose bool, outputPaths ...string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if len(outputPaths) > 0 {
		config.OutputPaths = outputPaths
	}
	for _, path := range config.OutputPaths {
		if path == "stderr" || path == "stdout" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log dir: %w", err)
		}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

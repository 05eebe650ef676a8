package secondary

import (
	"context"
	"io"
)

// ProcessLauncher defines the secondary port for running the optimizer.
type ProcessLauncher interface {
	// Run starts the process and blocks until it exits.
	// err is non-nil only when the process could not be started or waited on;
	// a non-zero exit is reported through exitCode.
	Run(ctx context.Context, spec ProcessSpec) (exitCode int, err error)
}

// ProcessSpec describes one process launch.
type ProcessSpec struct {
	Program string
	Args    []string
	Stdout  io.Writer
	Stderr  io.Writer
}

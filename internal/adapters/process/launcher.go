// Package process runs the optimizer as a child process.
package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/example/automl/internal/ports/secondary"
)

// Launcher implements secondary.ProcessLauncher with os/exec.
type Launcher struct {
	// Dir is the working directory of launched processes; empty means the current one.
	Dir string
}

// NewLauncher creates a Launcher running processes in dir.
func NewLauncher(dir string) *Launcher {
	return &Launcher{Dir: dir}
}

// Run starts the process with its output sent to the spec's writers and
// blocks until it exits. Cancelling ctx kills the process.
func (l *Launcher) Run(ctx context.Context, spec secondary.ProcessSpec) (int, error) {
	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)
	cmd.Dir = l.Dir
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fmt.Errorf("%s interrupted: %w", spec.Program, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("failed to run %s: %w", spec.Program, err)
	}
	return 0, nil
}

// Ensure Launcher implements the interface
var _ secondary.ProcessLauncher = (*Launcher)(nil)

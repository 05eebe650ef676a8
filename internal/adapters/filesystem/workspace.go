// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/automl/internal/ports/secondary"
)

// WorkspaceAdapter implements secondary.ArtifactStore on the local filesystem.
type WorkspaceAdapter struct{}

// NewWorkspaceAdapter creates a new filesystem workspace adapter.
func NewWorkspaceAdapter() *WorkspaceAdapter {
	return &WorkspaceAdapter{}
}

// ReadFile returns the content of a text file.
func (a *WorkspaceAdapter) ReadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFile writes content to a temporary file next to path and renames it
// into place, so the optimizer never reads a half-written knowledge base.
// The parent directory must exist.
func (a *WorkspaceAdapter) WriteFile(ctx context.Context, path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// CreateDirectory creates a directory with all parent directories.
func (a *WorkspaceAdapter) CreateDirectory(ctx context.Context, path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// CreateLogFile truncates or creates a log file.
func (a *WorkspaceAdapter) CreateLogFile(ctx context.Context, path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	return f, nil
}

// Ensure WorkspaceAdapter implements the interface
var _ secondary.ArtifactStore = (*WorkspaceAdapter)(nil)

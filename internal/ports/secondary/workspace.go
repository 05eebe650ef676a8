package secondary

import (
	"context"
	"io"
)

// ArtifactStore defines the secondary port for workspace file operations.
type ArtifactStore interface {
	// ReadFile returns the content of a text file.
	ReadFile(ctx context.Context, path string) (string, error)

	// WriteFile replaces a file's content so readers never see a partial write.
	WriteFile(ctx context.Context, path, content string) error

	// CreateDirectory creates a directory with all parents; existing directories are fine.
	CreateDirectory(ctx context.Context, path string) error

	// CreateLogFile truncates or creates a log file for writing.
	CreateLogFile(ctx context.Context, path string) (io.WriteCloser, error)
}

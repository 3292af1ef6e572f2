package storage

import (
	"context"
	"io"
)

// FileStorage archives generated documents (payslips). Paths are relative
// keys; implementations decide where they land.
type FileStorage interface {
	// Save writes a file and returns its storage key
	Save(ctx context.Context, file io.Reader, path string) (string, error)

	// Open retrieves a previously saved file
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file
	Delete(ctx context.Context, path string) error

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}

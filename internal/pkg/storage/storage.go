package storage

import (
	"context"
	"io"
)

type FileStorage interface {
	// Save writes a file through fn. The destination only appears once fn and
	// the flush succeed; on failure nothing is left behind.
	Save(ctx context.Context, path string, fn func(w io.Writer) error) (string, error)

	// Open retrieves a file. A missing file is reported as fs.ErrNotExist.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}

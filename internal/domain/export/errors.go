package export

import (
	"errors"
	"fmt"
)

var (
	ErrWrite             = errors.New("export destination is not writable")
	ErrDestinationExists = errors.New("export destination already exists")
	ErrExportNotFound    = errors.New("export file not found")
)

// WriteError reports the destination that could not be written. The caller
// decides whether to retry elsewhere.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrWrite, e.Err}
}

package export

import (
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/workbook"
)

type State string

const (
	StateIdle      State = "idle"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Options controls one export run.
type Options struct {
	// ProductName prefixes the change description and notes columns.
	ProductName string
	// Path is the destination .xlsx file.
	Path string
	// ExcludedIDs are employees hidden in the presentation layer. They are still
	// exported, flagged in an Excluded column.
	ExcludedIDs []string
	// Now stamps rows whose movement carries no modification time.
	Now time.Time
	// NoOverwrite refuses to replace an existing file at Path.
	NoOverwrite bool
}

// Table is the merged output before it is serialized.
type Table struct {
	Sheet         workbook.Sheet
	ModifiedRows  int
	DonutRows     int
	ExcludedRows  int
	AppendedCount int

	// Modified flags the rows whose rating cells were overwritten.
	Modified       []bool
	PerformanceCol int
	PotentialCol   int
}

type Result struct {
	State    State
	Path     string
	Rows     int
	Modified int
	Err      error
}

type ExportRequest struct {
	Path        string   `json:"path"`
	ExcludedIDs []string `json:"excluded_ids,omitempty"`
	NoOverwrite bool     `json:"no_overwrite,omitempty"`
}

type ExportResponse struct {
	State    string `json:"state"`
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
	Modified int    `json:"modified"`
}

package session

import (
	"context"
	"io"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/anomaly"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/export"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/movement"
)

// SessionService coordinates the rating store, both trackers, analysis and
// export for the single loaded dataset. Mutations are serialized against reads.
type SessionService interface {
	Layout() grid.Layout
	ID() string

	Import(ctx context.Context, req ImportRequest) (ImportResponse, error)
	Employees(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error)
	Employee(ctx context.Context, id string) (employee.Employee, error)

	// Move handles a MoveRequested event: rating change plus net movement, atomically.
	Move(ctx context.Context, req MoveRequest) (MoveResult, error)
	SetNote(ctx context.Context, req NoteRequest) (movement.Movement, error)
	Movements(ctx context.Context) ([]movement.Movement, error)

	DonutMove(ctx context.Context, req MoveRequest) (MoveResult, error)
	SetDonutNote(ctx context.Context, req NoteRequest) (movement.Movement, error)
	DonutMovements(ctx context.Context) ([]movement.Movement, error)

	Analyze(ctx context.Context, dimension anomaly.Dimension) ([]anomaly.Record, error)
	Report(ctx context.Context) (anomaly.Report, error)
	Score(ctx context.Context) (int, error)

	Export(ctx context.Context, req export.ExportRequest) (export.Result, error)
	// OpenExport reads back a file written by Export. The caller closes it.
	OpenExport(ctx context.Context, path string) (io.ReadCloser, error)

	Snapshot(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context) (Snapshot, error)
	Restore(ctx context.Context, id string) error
	// DeleteSnapshot removes a stored snapshot. The loaded dataset is untouched.
	DeleteSnapshot(ctx context.Context, id string) error
	AutoSave(ctx context.Context) error
}

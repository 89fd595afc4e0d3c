package session

import (
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/movement"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/workbook"
)

// Snapshot is the complete in-memory state of a session, serializable for autosave.
type Snapshot struct {
	ID             string              `json:"id"`
	FileName       string              `json:"file_name"`
	Sheet          workbook.Sheet      `json:"sheet"`
	Employees      []employee.Employee `json:"employees"`
	Movements      []movement.Movement `json:"movements"`
	DonutMovements []movement.Movement `json:"donut_movements"`
	ImportedAt     time.Time           `json:"imported_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// EventType names a state change published on the session's event topic.
type EventType string

const (
	EventImported      EventType = "imported"
	EventMoveRecorded  EventType = "move_recorded"
	EventMoveCleared   EventType = "move_cleared"
	EventNoteUpdated   EventType = "note_updated"
	EventDonutRecorded EventType = "donut_recorded"
	EventDonutCleared  EventType = "donut_cleared"
	EventExported      EventType = "exported"
	EventExportFailed  EventType = "export_failed"
	EventRestored      EventType = "restored"
	EventSnapshotSaved EventType = "snapshot_saved"
)

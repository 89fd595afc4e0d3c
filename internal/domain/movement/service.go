package movement

import "github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"

// Tracker records net movements keyed by employee ID.
type Tracker interface {
	// RecordMove creates, overwrites or (on return to origin) deletes the
	// employee's movement. The bool result reports whether a movement is active
	// afterwards. A nil note keeps previously entered text.
	RecordMove(employeeID string, newPosition grid.Position, note *string) (Movement, bool, error)

	// SetNote attaches text to an existing movement.
	SetNote(employeeID string, text string) (Movement, error)

	ListMovements() []Movement
	Get(employeeID string) (Movement, bool)
	ClassifyBigMover(m Movement) bool
	Clear(employeeID string)
	Reset()
	Restore(movements []Movement)
	Len() int
	Kind() Kind
}

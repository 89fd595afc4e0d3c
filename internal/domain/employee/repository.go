package employee

import "github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"

// RatingStore owns the employees of the currently loaded dataset.
type RatingStore interface {
	// Load replaces the whole employee set. Current and original ratings are identical afterwards.
	Load(rows []ImportRow) error

	// SetRating updates the current rating pair and recomputes the grid position.
	SetRating(id string, performance, potential grid.Rating) (Employee, error)

	GetAll() []Employee
	GetByID(id string) (Employee, error)
	Len() int

	// Restore reinstates employees exactly as captured in a snapshot.
	Restore(employees []Employee)
}

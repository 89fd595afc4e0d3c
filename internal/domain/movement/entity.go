package movement

import (
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
)

// Movement is the net change of one employee's grid position since import.
// Intermediate positions are not retained.
type Movement struct {
	EmployeeID       string        `json:"employee_id"`
	EmployeeName     string        `json:"employee_name"`
	OriginalPosition grid.Position `json:"original_position"`
	CurrentPosition  grid.Position `json:"current_position"`
	Note             string        `json:"note,omitempty"`
	Description      string        `json:"description"`
	ModifiedAt       time.Time     `json:"modified_at"`
}

// Kind distinguishes the rating tracker from the exploratory donut tracker.
type Kind string

const (
	KindRating Kind = "rating"
	KindDonut  Kind = "donut"
)

package movement

import (
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
)

type MovementResponse struct {
	EmployeeID       string    `json:"employee_id"`
	EmployeeName     string    `json:"worker"`
	OriginalPosition int       `json:"original_position"`
	OriginalLabel    string    `json:"original_label"`
	CurrentPosition  int       `json:"current_position"`
	CurrentLabel     string    `json:"current_label"`
	Description      string    `json:"description"`
	Note             string    `json:"note,omitempty"`
	BigMover         bool      `json:"big_mover"`
	ModifiedAt       time.Time `json:"modified_at"`
}

func ToResponse(m Movement, layout grid.Layout) MovementResponse {
	return MovementResponse{
		EmployeeID:       m.EmployeeID,
		EmployeeName:     m.EmployeeName,
		OriginalPosition: int(m.OriginalPosition),
		OriginalLabel:    layout.Label(m.OriginalPosition),
		CurrentPosition:  int(m.CurrentPosition),
		CurrentLabel:     layout.Label(m.CurrentPosition),
		Description:      m.Description,
		Note:             m.Note,
		BigMover:         layout.IsBigMove(m.OriginalPosition, m.CurrentPosition),
		ModifiedAt:       m.ModifiedAt,
	}
}

package session

import (
	"io"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/movement"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/validator"
)

type ImportRequest struct {
	FileName  string
	SheetName string
	Reader    io.Reader
}

type ImportResponse struct {
	SessionID string   `json:"session_id"`
	FileName  string   `json:"file_name"`
	SheetName string   `json:"sheet_name"`
	Employees int      `json:"employees"`
	Columns   []string `json:"columns"`
}

// MoveRequest is the MoveRequested event sent by the presentation layer. Either
// Position or both ratings must be given.
type MoveRequest struct {
	EmployeeID  string  `json:"employee_id"`
	Position    int     `json:"position,omitempty"`
	Performance string  `json:"performance,omitempty"`
	Potential   string  `json:"potential,omitempty"`
	Note        *string `json:"note,omitempty"`
}

func (r *MoveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	hasRatings := r.Performance != "" || r.Potential != ""
	switch {
	case r.Position != 0 && hasRatings:
		errs = append(errs, validator.ValidationError{
			Field:   "position",
			Message: "give either position or performance/potential, not both",
		})
	case r.Position != 0:
		if !validator.IsValidPosition(r.Position) {
			errs = append(errs, validator.ValidationError{
				Field:   "position",
				Message: "position must be between 1 and 9",
			})
		}
	case hasRatings:
		if !validator.IsValidRating(r.Performance) {
			errs = append(errs, validator.ValidationError{
				Field:   "performance",
				Message: "performance must be Low, Medium or High",
			})
		}
		if !validator.IsValidRating(r.Potential) {
			errs = append(errs, validator.ValidationError{
				Field:   "potential",
				Message: "potential must be Low, Medium or High",
			})
		}
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "position",
			Message: "position is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Target resolves the destination cell. Call after Validate.
func (r *MoveRequest) Target(layout grid.Layout) (grid.Position, error) {
	if r.Position != 0 {
		return grid.Position(r.Position), nil
	}
	perf, err := grid.ParseRating(r.Performance)
	if err != nil {
		return 0, err
	}
	pot, err := grid.ParseRating(r.Potential)
	if err != nil {
		return 0, err
	}
	return layout.Position(perf, pot), nil
}

type NoteRequest struct {
	EmployeeID string `json:"employee_id"`
	Note       string `json:"note"`
}

func (r *NoteRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if len(r.Note) > 4000 {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 4000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MoveResult is the state after a move: the employee and, when still away from
// the origin, the active movement.
type MoveResult struct {
	Employee employee.Employee
	Movement movement.Movement
	Active   bool
	BigMover bool
}

type MoveResponse struct {
	Employee employee.EmployeeResponse  `json:"employee"`
	Movement *movement.MovementResponse `json:"movement,omitempty"`
	Active   bool                       `json:"active"`
	BigMover bool                       `json:"big_mover"`
}

func ToMoveResponse(r MoveResult, layout grid.Layout) MoveResponse {
	resp := MoveResponse{
		Employee: employee.ToResponse(r.Employee, layout),
		Active:   r.Active,
		BigMover: r.BigMover,
	}
	if r.Active {
		m := movement.ToResponse(r.Movement, layout)
		resp.Movement = &m
	}
	return resp
}

package employee

import (
	"fmt"
	"strings"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/validator"
)

// ImportRow is one spreadsheet row as read from the source workbook, before parsing.
type ImportRow struct {
	RowIndex    int
	EmployeeID  string
	Name        string
	Performance string
	Potential   string
	Location    string
	JobFunction string
	JobLevel    string
	Tenure      string
	Manager     string
}

// Validate checks required fields and rating values. Field names carry the
// spreadsheet row number so the user can locate the problem.
func (r ImportRow) Validate() error {
	var errs validator.ValidationErrors
	prefix := fmt.Sprintf("row %d", r.RowIndex)

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + ": Employee ID",
			Message: "Employee ID is required",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + ": Worker",
			Message: "Worker is required",
		})
	}
	if !validator.IsValidRating(r.Performance) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + ": Current Performance",
			Message: fmt.Sprintf("Current Performance must be Low, Medium or High, got %q", r.Performance),
		})
	}
	if !validator.IsValidRating(r.Potential) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + ": Current Potential",
			Message: fmt.Sprintf("Current Potential must be Low, Medium or High, got %q", r.Potential),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID                  string `json:"employee_id"`
	Name                string `json:"worker"`
	Performance         string `json:"performance"`
	Potential           string `json:"potential"`
	Position            int    `json:"position"`
	PositionLabel       string `json:"position_label"`
	OriginalPerformance string `json:"original_performance"`
	OriginalPotential   string `json:"original_potential"`
	OriginalPosition    int    `json:"original_position"`
	Modified            bool   `json:"modified"`
	Location            string `json:"location,omitempty"`
	JobFunction         string `json:"job_function,omitempty"`
	JobLevel            string `json:"job_level,omitempty"`
	Tenure              string `json:"tenure,omitempty"`
	Manager             string `json:"manager,omitempty"`
}

func ToResponse(e Employee, layout grid.Layout) EmployeeResponse {
	return EmployeeResponse{
		ID:                  e.ID,
		Name:                e.Name,
		Performance:         string(e.Performance),
		Potential:           string(e.Potential),
		Position:            int(e.Position),
		PositionLabel:       layout.Label(e.Position),
		OriginalPerformance: string(e.OriginalPerformance),
		OriginalPotential:   string(e.OriginalPotential),
		OriginalPosition:    int(e.OriginalPosition),
		Modified:            e.Modified(),
		Location:            e.Location,
		JobFunction:         e.JobFunction,
		JobLevel:            e.JobLevel,
		Tenure:              e.Tenure,
		Manager:             e.Manager,
	}
}

type EmployeeFilter struct {
	Query    string
	Position int
}

// Match reports whether e passes the filter. Query matches ID or name, case-insensitive.
func (f EmployeeFilter) Match(e Employee) bool {
	if f.Position != 0 && int(e.Position) != f.Position {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(e.ID), q) || strings.Contains(strings.ToLower(e.Name), q)
	}
	return true
}

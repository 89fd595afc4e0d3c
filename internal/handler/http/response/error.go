package response

import (
	"errors"
	"net/http"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/anomaly"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/auth"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/export"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/movement"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/session"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/workbook"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var writeErr *export.WriteError
	if errors.As(err, &writeErr) {
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "EXPORT_WRITE_FAILED",
				Message: "Export destination could not be written",
				Details: map[string]string{"path": writeErr.Path},
			},
		})
		return
	}

	switch {
	// Export errors
	case errors.Is(err, export.ErrDestinationExists):
		Conflict(w, "Export destination already exists")
	case errors.Is(err, export.ErrExportNotFound):
		NotFound(w, "Export file not found")

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAuthDisabled):
		NotFound(w, "Token authentication is disabled")

	// Session domain errors
	case errors.Is(err, session.ErrNoDataset):
		Conflict(w, "No dataset has been imported")
	case errors.Is(err, session.ErrSessionNotFound):
		NotFound(w, "Session snapshot not found")
	case errors.Is(err, session.ErrPersistenceOff):
		ServiceUnavailable(w, "Session persistence is disabled")

	// Workbook errors
	case errors.Is(err, workbook.ErrUnsupportedFile):
		BadRequest(w, "Only .xlsx workbooks are supported", nil)
	case errors.Is(err, workbook.ErrEmptyWorkbook):
		BadRequest(w, "Workbook has no data", nil)
	case errors.Is(err, workbook.ErrSheetNotFound):
		NotFound(w, "Sheet not found")

	// Employee and grid errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, grid.ErrInvalidPosition):
		BadRequest(w, "Grid position must be between 1 and 9", nil)
	case errors.Is(err, grid.ErrInvalidRating):
		BadRequest(w, "Rating must be Low, Medium or High", nil)

	// Movement errors
	case errors.Is(err, movement.ErrNoActiveMovement):
		Conflict(w, "Employee has no active movement")
	case errors.Is(err, movement.ErrNotInDonutCell):
		Conflict(w, "Employee is not in the donut cell")

	case errors.Is(err, anomaly.ErrUnknownDimension):
		BadRequest(w, "Unknown grouping dimension", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

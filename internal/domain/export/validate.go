package export

import (
	"path/filepath"
	"strings"

	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/validator"
)

func (r *ExportRequest) Validate() error {
	return validatePath(r.Path)
}

// ValidatePath checks a path given to download an earlier export.
func ValidatePath(path string) error {
	return validatePath(path)
}

func validatePath(path string) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(path) {
		errs = append(errs, validator.ValidationError{
			Field:   "path",
			Message: "path is required",
		})
	} else if strings.ToLower(filepath.Ext(path)) != ".xlsx" {
		errs = append(errs, validator.ValidationError{
			Field:   "path",
			Message: "path must end in .xlsx",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

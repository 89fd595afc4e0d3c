package employee

import (
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
)

type Employee struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Performance         grid.Rating   `json:"performance"`
	Potential           grid.Rating   `json:"potential"`
	Position            grid.Position `json:"position"`
	OriginalPerformance grid.Rating   `json:"original_performance"`
	OriginalPotential   grid.Rating   `json:"original_potential"`
	OriginalPosition    grid.Position `json:"original_position"`
	Location            string        `json:"location,omitempty"`
	JobFunction         string        `json:"job_function,omitempty"`
	JobLevel            string        `json:"job_level,omitempty"`
	Tenure              string        `json:"tenure,omitempty"`
	Manager             string        `json:"manager,omitempty"`
	RowIndex            int           `json:"row_index"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Modified reports whether the current rating pair differs from the imported one.
func (e Employee) Modified() bool {
	return e.Position != e.OriginalPosition
}

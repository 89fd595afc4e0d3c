package anomaly

import (
	"fmt"
	"strings"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
)

type Dimension string

const (
	DimensionLocation    Dimension = "location"
	DimensionJobFunction Dimension = "job_function"
	DimensionJobLevel    Dimension = "job_level"
	DimensionTenure      Dimension = "tenure"
)

// Dimensions lists every supported grouping dimension in report order.
var Dimensions = []Dimension{DimensionLocation, DimensionJobFunction, DimensionJobLevel, DimensionTenure}

func ParseDimension(s string) (Dimension, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, d := range Dimensions {
		if string(d) == norm {
			return d, nil
		}
	}
	switch norm {
	case "function", "jobfunction":
		return DimensionJobFunction, nil
	case "level", "joblevel":
		return DimensionJobLevel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// ValueOf returns the employee's category for the dimension, trimmed. Empty
// means the employee carries no data for it.
func (d Dimension) ValueOf(e employee.Employee) string {
	switch d {
	case DimensionLocation:
		return strings.TrimSpace(e.Location)
	case DimensionJobFunction:
		return strings.TrimSpace(e.JobFunction)
	case DimensionJobLevel:
		return strings.TrimSpace(e.JobLevel)
	case DimensionTenure:
		return strings.TrimSpace(e.Tenure)
	}
	return ""
}

// Axis selects which rating attribute forms the cells of the contingency table.
type Axis string

const (
	AxisPerformance Axis = "performance"
	AxisPotential   Axis = "potential"
	AxisPosition    Axis = "position"
)

// Cells returns the ordered cell names of the axis.
func (a Axis) Cells() []string {
	if a == AxisPosition {
		cells := make([]string, 9)
		for i := range cells {
			cells[i] = fmt.Sprintf("%d", i+1)
		}
		return cells
	}
	cells := make([]string, len(grid.Ratings))
	for i, r := range grid.Ratings {
		cells[i] = string(r)
	}
	return cells
}

// CellOf returns the index into Cells for the employee, or -1.
func (a Axis) CellOf(e employee.Employee) int {
	switch a {
	case AxisPotential:
		return e.Potential.Index()
	case AxisPosition:
		if !e.Position.Valid() {
			return -1
		}
		return int(e.Position) - 1
	default:
		return e.Performance.Index()
	}
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// Rank orders severities, most severe first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityModerate:
		return 1
	case SeverityMinor:
		return 2
	}
	return 3
}

// Record is one flagged category within a dimension.
type Record struct {
	Dimension        Dimension
	Category         string
	Cell             string
	Expected         float64
	Actual           int
	Deviation        float64
	Residual         float64
	ChiSquare        float64
	DegreesOfFreedom int
	PValue           float64
	Severity         Severity
	Population       int
	TotalPopulation  int
}

// Report bundles the records of every dimension with the resulting score.
type Report struct {
	Records      []Record
	ByDimension  map[Dimension][]Record
	QualityScore int
}

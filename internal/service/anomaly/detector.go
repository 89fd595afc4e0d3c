package anomaly

import (
	"log/slog"
	"math"
	"sort"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/anomaly"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Defaults for the per-category tests.
const (
	DefaultMinPopulation = 5
	DefaultCriticalAlpha = 0.01
	DefaultModerateAlpha = 0.05
	DefaultMinorAlpha    = 0.10
)

// EmployeeLister is the read side of the rating store.
type EmployeeLister interface {
	GetAll() []employee.Employee
}

type Option func(*detectorImpl)

func WithAxis(axis anomaly.Axis) Option {
	return func(d *detectorImpl) {
		d.axis = axis
	}
}

// WithMinPopulation excludes categories smaller than n from testing.
func WithMinPopulation(n int) Option {
	return func(d *detectorImpl) {
		d.minPopulation = n
	}
}

// WithThresholds sets the p-value cutoffs for critical, moderate and minor.
func WithThresholds(critical, moderate, minor float64) Option {
	return func(d *detectorImpl) {
		d.criticalAlpha = critical
		d.moderateAlpha = moderate
		d.minorAlpha = minor
	}
}

type detectorImpl struct {
	employees     EmployeeLister
	axis          anomaly.Axis
	minPopulation int
	criticalAlpha float64
	moderateAlpha float64
	minorAlpha    float64
}

func NewDetector(employees EmployeeLister, opts ...Option) anomaly.Detector {
	d := &detectorImpl{
		employees:     employees,
		axis:          anomaly.AxisPerformance,
		minPopulation: DefaultMinPopulation,
		criticalAlpha: DefaultCriticalAlpha,
		moderateAlpha: DefaultModerateAlpha,
		minorAlpha:    DefaultMinorAlpha,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// contingency is the category x cell count table for one dimension.
type contingency struct {
	categories []string
	counts     map[string][]int
	cellTotals []int
	total      int
}

func (d *detectorImpl) tabulate(dimension anomaly.Dimension, employees []employee.Employee) contingency {
	cells := len(d.axis.Cells())
	t := contingency{
		counts:     make(map[string][]int),
		cellTotals: make([]int, cells),
	}
	for _, e := range employees {
		category := dimension.ValueOf(e)
		if category == "" {
			continue
		}
		cell := d.axis.CellOf(e)
		if cell < 0 || cell >= cells {
			continue
		}
		row, ok := t.counts[category]
		if !ok {
			row = make([]int, cells)
			t.counts[category] = row
			t.categories = append(t.categories, category)
		}
		row[cell]++
		t.cellTotals[cell]++
		t.total++
	}
	sort.Strings(t.categories)
	return t
}

// Analyze implements anomaly.Detector. It reads the store once and does not
// mutate anything, so repeated calls on unchanged data return identical records.
func (d *detectorImpl) Analyze(dimension anomaly.Dimension) ([]anomaly.Record, error) {
	if _, err := anomaly.ParseDimension(string(dimension)); err != nil {
		return nil, err
	}

	table := d.tabulate(dimension, d.employees.GetAll())

	var eligible []string
	for _, c := range table.categories {
		if d.population(table.counts[c]) >= d.minPopulation {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) < 2 || table.total == 0 {
		return []anomaly.Record{}, nil
	}

	cellNames := d.axis.Cells()
	records := make([]anomaly.Record, 0)
	for _, category := range eligible {
		rec, flagged := d.testCategory(dimension, category, table, cellNames)
		if flagged {
			records = append(records, rec)
		}
	}

	sortRecords(records)
	slog.Debug("Anomaly analysis complete",
		"dimension", dimension,
		"categories", len(table.categories),
		"tested", len(eligible),
		"flagged", len(records),
	)
	return records, nil
}

// AnalyzeAll implements anomaly.Detector.
func (d *detectorImpl) AnalyzeAll() map[anomaly.Dimension][]anomaly.Record {
	out := make(map[anomaly.Dimension][]anomaly.Record, len(anomaly.Dimensions))
	for _, dim := range anomaly.Dimensions {
		records, _ := d.Analyze(dim)
		out[dim] = records
	}
	return out
}

func (d *detectorImpl) population(row []int) int {
	n := 0
	for _, v := range row {
		n += v
	}
	return n
}

// testCategory runs a goodness-of-fit test of the category's cell counts
// against the counts expected from the overall distribution. Cells nobody
// occupies overall carry no information and are left out.
func (d *detectorImpl) testCategory(dimension anomaly.Dimension, category string, table contingency, cellNames []string) (anomaly.Record, bool) {
	row := table.counts[category]
	pop := d.population(row)

	var obs, exp []float64
	var idx []int
	for cell, overall := range table.cellTotals {
		if overall == 0 {
			continue
		}
		obs = append(obs, float64(row[cell]))
		exp = append(exp, float64(pop)*float64(overall)/float64(table.total))
		idx = append(idx, cell)
	}
	df := len(obs) - 1
	if df < 1 {
		return anomaly.Record{}, false
	}

	chi := stat.ChiSquare(obs, exp)
	p := distuv.ChiSquared{K: float64(df)}.Survival(chi)

	severity, flagged := d.classify(p)
	if !flagged {
		return anomaly.Record{}, false
	}

	// Report the cell with the largest standardized residual.
	best := 0
	bestResidual := 0.0
	for i := range obs {
		r := (obs[i] - exp[i]) / math.Sqrt(exp[i])
		if math.Abs(r) > math.Abs(bestResidual) {
			best, bestResidual = i, r
		}
	}

	return anomaly.Record{
		Dimension:        dimension,
		Category:         category,
		Cell:             cellNames[idx[best]],
		Expected:         exp[best],
		Actual:           int(obs[best]),
		Deviation:        obs[best] - exp[best],
		Residual:         bestResidual,
		ChiSquare:        chi,
		DegreesOfFreedom: df,
		PValue:           p,
		Severity:         severity,
		Population:       pop,
		TotalPopulation:  table.total,
	}, true
}

func (d *detectorImpl) classify(p float64) (anomaly.Severity, bool) {
	switch {
	case math.IsNaN(p):
		return "", false
	case p < d.criticalAlpha:
		return anomaly.SeverityCritical, true
	case p < d.moderateAlpha:
		return anomaly.SeverityModerate, true
	case p < d.minorAlpha:
		return anomaly.SeverityMinor, true
	}
	return "", false
}

// sortRecords orders by severity, then absolute deviation descending, then
// dimension and category so equal scores still come out in a stable order.
func sortRecords(records []anomaly.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		da, db := math.Abs(a.Deviation), math.Abs(b.Deviation)
		if da != db {
			return da > db
		}
		if a.Dimension != b.Dimension {
			return a.Dimension < b.Dimension
		}
		return a.Category < b.Category
	})
}

// Flatten merges per-dimension results into one sorted list.
func Flatten(byDimension map[anomaly.Dimension][]anomaly.Record) []anomaly.Record {
	var all []anomaly.Record
	for _, dim := range anomaly.Dimensions {
		all = append(all, byDimension[dim]...)
	}
	sortRecords(all)
	return all
}

package workbook

import "strings"

// Sheet is a worksheet held as text: the header row plus data rows, each data
// row padded to the header width.
//
// Source, when set, is the workbook the sheet was read from. HeaderRow and
// RowNumbers are 1-based row numbers in that workbook, so export can edit the
// original in place and keep cell types, styles, other sheets and any rows
// above the header.
type Sheet struct {
	Name       string     `json:"name"`
	Header     []string   `json:"header"`
	Rows       [][]string `json:"rows"`
	HeaderRow  int        `json:"header_row,omitempty"`
	RowNumbers []int      `json:"row_numbers,omitempty"`
	Source     []byte     `json:"source,omitempty"`
}

// ColumnIndex finds a header by case-insensitive, whitespace-trimmed name. -1 if absent.
func (s Sheet) ColumnIndex(names ...string) int {
	for _, name := range names {
		want := normalize(name)
		for i, h := range s.Header {
			if normalize(h) == want {
				return i
			}
		}
	}
	return -1
}

// Clone deep-copies the sheet so callers can modify cells without touching the
// source. Source bytes are read-only and shared.
func (s Sheet) Clone() Sheet {
	out := Sheet{
		Name:      s.Name,
		Header:    append([]string(nil), s.Header...),
		HeaderRow: s.HeaderRow,
		Source:    s.Source,
	}
	if s.RowNumbers != nil {
		out.RowNumbers = append([]int(nil), s.RowNumbers...)
	}
	out.Rows = make([][]string, len(s.Rows))
	for i, row := range s.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// RowNumber returns the source row number of data row i, or 0 when unknown.
func (s Sheet) RowNumber(i int) int {
	if i < 0 || i >= len(s.RowNumbers) {
		return 0
	}
	return s.RowNumbers[i]
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Column names of the import contract.
const (
	ColumnEmployeeID  = "Employee ID"
	ColumnWorker      = "Worker"
	ColumnPerformance = "Current Performance"
	ColumnPotential   = "Current Potential"
	ColumnLocation    = "Location"
	ColumnJobFunction = "Job Function"
	ColumnJobLevel    = "Job Level"
	ColumnTenure      = "Tenure"
	ColumnManager     = "Manager"
)

// Optional column aliases accepted on import.
var (
	LocationAliases    = []string{ColumnLocation, "Work Location", "Office"}
	JobFunctionAliases = []string{ColumnJobFunction, "Function", "Department"}
	JobLevelAliases    = []string{ColumnJobLevel, "Level", "Grade"}
	TenureAliases      = []string{ColumnTenure, "Tenure Category", "Years of Service"}
	ManagerAliases     = []string{ColumnManager, "Manager Name", "Line Manager"}
)

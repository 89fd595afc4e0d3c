package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/workbook"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/validator"
	"github.com/xuri/excelize/v2"
)

// Result is a parsed workbook: the sheet kept verbatim for export, and the
// rows the rating store loads.
type Result struct {
	Sheet workbook.Sheet
	Rows  []employee.ImportRow
}

type ImportService interface {
	// Import reads sheetName (the first sheet when empty) from an .xlsx stream.
	Import(ctx context.Context, r io.Reader, fileName string, sheetName string) (Result, error)
}

type importServiceImpl struct{}

func NewImportService() ImportService {
	return &importServiceImpl{}
}

// Import implements ImportService.
func (s *importServiceImpl) Import(ctx context.Context, r io.Reader, fileName string, sheetName string) (Result, error) {
	if fileName != "" && strings.ToLower(filepath.Ext(fileName)) != ".xlsx" {
		return Result{}, fmt.Errorf("%w: %s", workbook.ErrUnsupportedFile, fileName)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read workbook: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close workbook", "file", fileName, "error", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, workbook.ErrEmptyWorkbook
	}
	if sheetName == "" {
		sheetName = sheets[0]
	} else if !validator.IsInSlice(sheetName, sheets) {
		return Result{}, fmt.Errorf("%w: %s", workbook.ErrSheetNotFound, sheetName)
	}

	raw, err := f.GetRows(sheetName)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}

	result, err := Parse(sheetName, raw)
	if err != nil {
		return Result{}, err
	}
	result.Sheet.Source = data

	slog.Info("Workbook imported", "file", fileName, "sheet", sheetName, "rows", len(result.Rows))
	return result, nil
}

// Parse turns raw cell text into a Sheet and import rows. raw[i] is row i+1 of
// the worksheet. The first non-blank row is the header; rows above it are not
// part of the dataset and blank data rows are skipped.
func Parse(sheetName string, raw [][]string) (Result, error) {
	headerAt := -1
	for i, row := range raw {
		if !blank(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return Result{}, workbook.ErrEmptyWorkbook
	}

	sheet := workbook.Sheet{Name: sheetName, Header: trimAll(raw[headerAt]), HeaderRow: headerAt + 1}
	cols, err := resolveColumns(sheet)
	if err != nil {
		return Result{}, err
	}

	// Cells beyond the header still belong to the sheet; widen the header
	// with unnamed columns so export keeps them aligned.
	width := len(sheet.Header)
	for _, row := range raw[headerAt+1:] {
		if len(row) > width {
			width = len(row)
		}
	}
	sheet.Header = pad(sheet.Header, width)

	var rows []employee.ImportRow
	for i := headerAt + 1; i < len(raw); i++ {
		if blank(raw[i]) {
			continue
		}
		cells := pad(raw[i], width)
		sheet.Rows = append(sheet.Rows, cells)
		sheet.RowNumbers = append(sheet.RowNumbers, i+1)
		rows = append(rows, cols.row(i+1, cells))
	}

	return Result{Sheet: sheet, Rows: rows}, nil
}

type columns struct {
	id, name, performance, potential             int
	location, jobFunction, jobLevel, tenure, mgr int
}

func resolveColumns(sheet workbook.Sheet) (columns, error) {
	c := columns{
		id:          sheet.ColumnIndex(workbook.ColumnEmployeeID),
		name:        sheet.ColumnIndex(workbook.ColumnWorker),
		performance: sheet.ColumnIndex(workbook.ColumnPerformance),
		potential:   sheet.ColumnIndex(workbook.ColumnPotential),
		location:    sheet.ColumnIndex(workbook.LocationAliases...),
		jobFunction: sheet.ColumnIndex(workbook.JobFunctionAliases...),
		jobLevel:    sheet.ColumnIndex(workbook.JobLevelAliases...),
		tenure:      sheet.ColumnIndex(workbook.TenureAliases...),
		mgr:         sheet.ColumnIndex(workbook.ManagerAliases...),
	}

	var errs validator.ValidationErrors
	required := []struct {
		name  string
		index int
	}{
		{workbook.ColumnEmployeeID, c.id},
		{workbook.ColumnWorker, c.name},
		{workbook.ColumnPerformance, c.performance},
		{workbook.ColumnPotential, c.potential},
	}
	for _, r := range required {
		if r.index < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   r.name,
				Message: fmt.Sprintf("required column %q is missing", r.name),
			})
		}
	}
	if len(errs) > 0 {
		return columns{}, errs
	}
	return c, nil
}

func (c columns) row(rowNumber int, cells []string) employee.ImportRow {
	return employee.ImportRow{
		RowIndex:    rowNumber,
		EmployeeID:  cell(cells, c.id),
		Name:        cell(cells, c.name),
		Performance: cell(cells, c.performance),
		Potential:   cell(cells, c.potential),
		Location:    cell(cells, c.location),
		JobFunction: cell(cells, c.jobFunction),
		JobLevel:    cell(cells, c.jobLevel),
		Tenure:      TenureBucket(cell(cells, c.tenure)),
		Manager:     cell(cells, c.mgr),
	}
}

// TenureBucket maps a numeric years-of-service value into a reporting bucket.
// Anything non-numeric is treated as an existing bucket label and kept.
func TenureBucket(v string) string {
	years, ok := validator.ParseYears(v)
	if !ok {
		return strings.TrimSpace(v)
	}
	switch {
	case years < 1:
		return "<1 year"
	case years < 3:
		return "1-3 years"
	case years < 5:
		return "3-5 years"
	default:
		return "5+ years"
	}
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func pad(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

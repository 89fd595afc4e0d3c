package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/export"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/movement"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/workbook"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/storage"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/validator"
	"github.com/xuri/excelize/v2"
)

// Appended column names.
const (
	ColumnModified         = "Modified in Session"
	ColumnModificationDate = "Modification Date"
	ColumnExcluded         = "Excluded"

	ColumnDonutPosition    = "Donut Exercise Position"
	ColumnDonutLabel       = "Donut Exercise Label"
	ColumnDonutDescription = "Donut Exercise Change Description"
	ColumnDonutNotes       = "Donut Exercise Notes"

	DefaultProductName = "9Boxer"
	dateLayout         = "2006-01-02 15:04:05"
)

// EmployeeReader is the part of the rating store export reads.
type EmployeeReader interface {
	GetByID(id string) (employee.Employee, error)
}

type ExportService interface {
	// Build merges the original sheet with current ratings and audit columns.
	// donut may be nil.
	Build(sheet workbook.Sheet, employees EmployeeReader, tracker movement.Tracker, donut movement.Tracker, opts export.Options) (export.Table, error)

	// Export builds the table and writes it to opts.Path. On failure the
	// returned error is a *export.WriteError and no file is left behind.
	Export(ctx context.Context, sheet workbook.Sheet, employees EmployeeReader, tracker movement.Tracker, donut movement.Tracker, opts export.Options) (export.Result, error)

	// Open reads back a written export.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

type exportServiceImpl struct {
	storage storage.FileStorage
	layout  grid.Layout
}

func NewExportService(storage storage.FileStorage, layout grid.Layout) ExportService {
	return &exportServiceImpl{
		storage: storage,
		layout:  layout,
	}
}

// Build implements ExportService. Every source row is emitted exactly once,
// in source order.
func (s *exportServiceImpl) Build(sheet workbook.Sheet, employees EmployeeReader, tracker movement.Tracker, donut movement.Tracker, opts export.Options) (export.Table, error) {
	idCol := sheet.ColumnIndex(workbook.ColumnEmployeeID)
	perfCol := sheet.ColumnIndex(workbook.ColumnPerformance)
	potCol := sheet.ColumnIndex(workbook.ColumnPotential)

	var errs validator.ValidationErrors
	for _, c := range []struct {
		name  string
		index int
	}{
		{workbook.ColumnEmployeeID, idCol},
		{workbook.ColumnPerformance, perfCol},
		{workbook.ColumnPotential, potCol},
	} {
		if c.index < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   c.name,
				Message: fmt.Sprintf("source sheet has no %q column", c.name),
			})
		}
	}
	if len(errs) > 0 {
		return export.Table{}, errs
	}

	product := opts.ProductName
	if product == "" {
		product = DefaultProductName
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	excluded := make(map[string]struct{}, len(opts.ExcludedIDs))
	for _, id := range opts.ExcludedIDs {
		excluded[strings.TrimSpace(id)] = struct{}{}
	}
	withDonut := donut != nil && donut.Len() > 0
	withExcluded := len(excluded) > 0

	out := sheet.Clone()
	appended := []string{
		ColumnModified,
		ColumnModificationDate,
		product + " Change Description",
		product + " Change Notes",
	}
	if withDonut {
		appended = append(appended, ColumnDonutPosition, ColumnDonutLabel, ColumnDonutDescription, ColumnDonutNotes)
	}
	if withExcluded {
		appended = append(appended, ColumnExcluded)
	}
	out.Header = append(out.Header, appended...)

	table := export.Table{
		AppendedCount:  len(appended),
		Modified:       make([]bool, len(out.Rows)),
		PerformanceCol: perfCol,
		PotentialCol:   potCol,
	}
	width := len(sheet.Header)
	for i, row := range out.Rows {
		for len(row) < width {
			row = append(row, "")
		}
		id := ""
		if idCol < len(row) {
			id = strings.TrimSpace(row[idCol])
		}

		extra := make([]string, 0, len(appended))

		if m, ok := tracker.Get(id); ok {
			perf, pot := s.currentRatings(employees, id, m)
			row[perfCol] = string(perf)
			row[potCol] = string(pot)

			modifiedAt := m.ModifiedAt
			if modifiedAt.IsZero() {
				modifiedAt = now
			}
			extra = append(extra, "Yes", modifiedAt.Format(dateLayout), m.Description, m.Note)
			table.Modified[i] = true
			table.ModifiedRows++
		} else {
			extra = append(extra, "", "", "", "")
		}

		if withDonut {
			if dm, ok := donut.Get(id); ok {
				extra = append(extra,
					strconv.Itoa(int(dm.CurrentPosition)),
					s.layout.Label(dm.CurrentPosition),
					dm.Description,
					dm.Note,
				)
				table.DonutRows++
			} else {
				extra = append(extra, "", "", "", "")
			}
		}

		if withExcluded {
			if _, ok := excluded[id]; ok {
				extra = append(extra, "Yes")
				table.ExcludedRows++
			} else {
				extra = append(extra, "")
			}
		}

		out.Rows[i] = append(row, extra...)
	}

	table.Sheet = out
	return table, nil
}

// currentRatings prefers the store; the movement's cell is the fallback.
func (s *exportServiceImpl) currentRatings(employees EmployeeReader, id string, m movement.Movement) (grid.Rating, grid.Rating) {
	if employees != nil {
		if emp, err := employees.GetByID(id); err == nil {
			return emp.Performance, emp.Potential
		}
	}
	perf, pot, _ := s.layout.Ratings(m.CurrentPosition)
	return perf, pot
}

// Export implements ExportService.
func (s *exportServiceImpl) Export(ctx context.Context, sheet workbook.Sheet, employees EmployeeReader, tracker movement.Tracker, donut movement.Tracker, opts export.Options) (export.Result, error) {
	table, err := s.Build(sheet, employees, tracker, donut, opts)
	if err != nil {
		return export.Result{State: export.StateFailed, Path: opts.Path, Err: err}, err
	}

	if opts.NoOverwrite {
		exists, err := s.storage.Exists(ctx, opts.Path)
		if err != nil {
			werr := &export.WriteError{Path: opts.Path, Err: err}
			return export.Result{State: export.StateFailed, Path: opts.Path, Err: werr}, werr
		}
		if exists {
			err := fmt.Errorf("%w: %s", export.ErrDestinationExists, opts.Path)
			return export.Result{State: export.StateFailed, Path: opts.Path, Err: err}, err
		}
	}

	path, err := s.storage.Save(ctx, opts.Path, func(w io.Writer) error {
		return writeWorkbook(w, table)
	})
	if err != nil {
		werr := &export.WriteError{Path: opts.Path, Err: err}
		slog.Error("Export failed", "path", opts.Path, "error", err)
		return export.Result{State: export.StateFailed, Path: opts.Path, Err: werr}, werr
	}

	slog.Info("Export written", "path", path, "rows", len(table.Sheet.Rows), "modified", table.ModifiedRows)
	return export.Result{
		State:    export.StateSucceeded,
		Path:     path,
		Rows:     len(table.Sheet.Rows),
		Modified: table.ModifiedRows,
	}, nil
}

// Open implements ExportService.
func (s *exportServiceImpl) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := s.storage.Open(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", export.ErrExportNotFound, path)
		}
		return nil, err
	}
	return rc, nil
}

// writeWorkbook edits the source workbook when the sheet carries one, so
// untouched cells keep their type and style. Otherwise a new workbook is
// written from the text table.
func writeWorkbook(w io.Writer, table export.Table) error {
	sheet := table.Sheet
	if len(sheet.Source) > 0 && sheet.HeaderRow > 0 && len(sheet.RowNumbers) == len(sheet.Rows) {
		return editWorkbook(w, table)
	}
	return newWorkbook(w, table)
}

func editWorkbook(w io.Writer, table export.Table) (err error) {
	sheet := table.Sheet
	f, err := excelize.OpenReader(bytes.NewReader(sheet.Source))
	if err != nil {
		return fmt.Errorf("failed to reopen source workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if idx, err := f.GetSheetIndex(sheet.Name); err != nil || idx < 0 {
		return fmt.Errorf("source workbook has no sheet %q", sheet.Name)
	}

	first := len(sheet.Header) - table.AppendedCount
	if err := setCells(f, sheet.Name, sheet.HeaderRow, first, sheet.Header[first:]); err != nil {
		return err
	}
	for i, row := range sheet.Rows {
		rowNumber := sheet.RowNumber(i)
		if table.Modified[i] {
			if err := setCell(f, sheet.Name, table.PerformanceCol, rowNumber, row[table.PerformanceCol]); err != nil {
				return err
			}
			if err := setCell(f, sheet.Name, table.PotentialCol, rowNumber, row[table.PotentialCol]); err != nil {
				return err
			}
		}
		if err := setCells(f, sheet.Name, rowNumber, first, row[first:]); err != nil {
			return err
		}
	}

	if err := styleAppendedHeader(f, sheet.Name, sheet.HeaderRow, first+1, len(sheet.Header)); err != nil {
		return err
	}
	return f.Write(w)
}

func newWorkbook(w io.Writer, table export.Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sheetName := table.Sheet.Name
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	if err := setRow(f, sheetName, 1, table.Sheet.Header); err != nil {
		return err
	}
	for i, row := range table.Sheet.Rows {
		if err := setRow(f, sheetName, i+2, row); err != nil {
			return err
		}
	}

	if err := styleAppendedHeader(f, sheetName, 1, len(table.Sheet.Header)-table.AppendedCount+1, len(table.Sheet.Header)); err != nil {
		return err
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, rowNumber int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNumber, err)
	}
	return nil
}

// setCells writes values from the zero-based column first onwards, skipping
// empty ones.
func setCells(f *excelize.File, sheet string, rowNumber, first int, values []string) error {
	for i, v := range values {
		if err := setCell(f, sheet, first+i, rowNumber, v); err != nil {
			return err
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, rowNumber int, value string) error {
	if value == "" {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col+1, rowNumber)
	if err != nil {
		return err
	}
	if err := f.SetCellStr(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", cell, err)
	}
	return nil
}

func styleAppendedHeader(f *excelize.File, sheet string, headerRow, firstCol, lastCol int) error {
	if firstCol > lastCol {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	from, err := excelize.CoordinatesToCellName(firstCol, headerRow)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(lastCol, headerRow)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

// IsWriteError reports whether err came from an unwritable destination.
func IsWriteError(err error) bool {
	var werr *export.WriteError
	return errors.As(err, &werr)
}

package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/export"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/movement"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/workbook"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/storage"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/validator"
	"github.com/ninebox-hr/ninebox-backend-go/internal/service/importer"
	"github.com/ninebox-hr/ninebox-backend-go/internal/service/rating"
	"github.com/ninebox-hr/ninebox-backend-go/internal/service/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type fixture struct {
	sheet   workbook.Sheet
	store   employee.RatingStore
	tracker movement.Tracker
	donut   movement.Tracker
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	sheet := workbook.Sheet{
		Name:   "Talent",
		Header: []string{"Employee ID", "Worker", "Current Performance", "Current Potential", "Location"},
		Rows: [][]string{
			{"E1", "Ana", "Low", "Medium", "USA"},
			{"E2", "Ben", "Medium", "Medium", "UK"},
			{"E3", "Cy", "High", "High", "USA"},
		},
	}

	layout := grid.Standard()
	store := rating.NewRatingStore(layout)
	var rows []employee.ImportRow
	for i, r := range sheet.Rows {
		rows = append(rows, employee.ImportRow{
			RowIndex:    i + 2,
			EmployeeID:  r[0],
			Name:        r[1],
			Performance: r[2],
			Potential:   r[3],
			Location:    r[4],
		})
	}
	require.NoError(t, store.Load(rows))

	clock := tracker.WithClock(func() time.Time { return fixedNow })
	return fixture{
		sheet:   sheet,
		store:   store,
		tracker: tracker.NewTracker(store, layout, clock),
		donut:   tracker.NewTracker(store, layout, tracker.WithDonutCell(5), clock),
	}
}

func (f fixture) move(t *testing.T, id string, perf, pot grid.Rating, note *string) {
	t.Helper()
	emp, err := f.store.SetRating(id, perf, pot)
	require.NoError(t, err)
	_, _, err = f.tracker.RecordMove(id, emp.Position, note)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func TestExportService_Build_UnmodifiedRowsKeepSourceValues(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(nil, grid.Standard())

	table, err := svc.Build(f.sheet, f.store, f.tracker, nil, export.Options{Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Employee ID", "Worker", "Current Performance", "Current Potential", "Location",
		ColumnModified, ColumnModificationDate, "9Boxer Change Description", "9Boxer Change Notes",
	}, table.Sheet.Header)
	require.Len(t, table.Sheet.Rows, 3)
	for i, row := range table.Sheet.Rows {
		assert.Equal(t, f.sheet.Rows[i], row[:5])
		assert.Equal(t, []string{"", "", "", ""}, row[5:])
	}
	assert.Zero(t, table.ModifiedRows)
	assert.Equal(t, 4, table.AppendedCount)
}

func TestExportService_Build_ModifiedRow(t *testing.T) {
	f := newFixture(t)
	f.move(t, "E1", grid.High, grid.High, strPtr("strong quarter"))
	svc := NewExportService(nil, grid.Standard())

	table, err := svc.Build(f.sheet, f.store, f.tracker, nil, export.Options{ProductName: "Grid", Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, "Grid Change Description", table.Sheet.Header[7])
	row := table.Sheet.Rows[0]
	assert.Equal(t, "High", row[2])
	assert.Equal(t, "High", row[3])
	assert.Equal(t, "Yes", row[5])
	assert.Equal(t, fixedNow.Format("2006-01-02 15:04:05"), row[6])
	assert.Equal(t, "Moved from Inconsistent [L,M] to Star [H,H]", row[7])
	assert.Equal(t, "strong quarter", row[8])
	assert.Equal(t, 1, table.ModifiedRows)

	// The source sheet is not touched.
	assert.Equal(t, "Low", f.sheet.Rows[0][2])
}

func TestExportService_Build_ReturnedToOriginIsUnmodified(t *testing.T) {
	f := newFixture(t)
	f.move(t, "E2", grid.High, grid.Medium, nil)
	f.move(t, "E2", grid.Medium, grid.Medium, nil)
	svc := NewExportService(nil, grid.Standard())

	table, err := svc.Build(f.sheet, f.store, f.tracker, nil, export.Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, "", table.Sheet.Rows[1][5])
	assert.Zero(t, table.ModifiedRows)
}

func TestExportService_Build_DonutAndExcludedColumns(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.donut.RecordMove("E2", 9, strPtr("what if"))
	require.NoError(t, err)
	svc := NewExportService(nil, grid.Standard())

	table, err := svc.Build(f.sheet, f.store, f.tracker, f.donut, export.Options{
		ExcludedIDs: []string{"E3"},
		Now:         fixedNow,
	})
	require.NoError(t, err)

	header := table.Sheet.Header
	require.Len(t, header, 5+4+4+1)
	assert.Equal(t, ColumnDonutPosition, header[9])
	assert.Equal(t, ColumnExcluded, header[13])

	ben := table.Sheet.Rows[1]
	assert.Equal(t, "9", ben[9])
	assert.Equal(t, "Star [H,H]", ben[10])
	assert.Equal(t, "what if", ben[12])
	assert.Equal(t, "", ben[13])
	// Donut placements never change the real ratings.
	assert.Equal(t, "Medium", ben[2])
	assert.Equal(t, "", ben[5])

	assert.Equal(t, "Yes", table.Sheet.Rows[2][13])
	assert.Equal(t, 1, table.DonutRows)
	assert.Equal(t, 1, table.ExcludedRows)
}

func TestExportService_Build_MissingColumns(t *testing.T) {
	f := newFixture(t)
	f.sheet.Header = []string{"ID", "Worker"}
	svc := NewExportService(nil, grid.Standard())

	_, err := svc.Build(f.sheet, f.store, f.tracker, nil, export.Options{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
}

func TestExportService_Export_WritesWorkbook(t *testing.T) {
	f := newFixture(t)
	f.move(t, "E3", grid.Low, grid.Low, strPtr("left team"))

	local, err := storage.NewLocalStorage("")
	require.NoError(t, err)
	svc := NewExportService(local, grid.Standard())

	path := filepath.Join(t.TempDir(), "out", "talent.xlsx")
	result, err := svc.Export(context.Background(), f.sheet, f.store, f.tracker, nil, export.Options{Path: path, Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, export.StateSucceeded, result.State)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 1, result.Modified)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Talent"}, wb.GetSheetList())
	rows, err := wb.GetRows("Talent")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, ColumnModified, rows[0][5])
	assert.Equal(t, []string{"E3", "Cy", "Low", "Low", "USA", "Yes", "2026-03-02 09:30:00", "Moved from Star [H,H] to Underperformer [L,L]", "left team"}, rows[3])
}

func TestExportService_Export_NoOverwrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	local, err := storage.NewLocalStorage("")
	require.NoError(t, err)
	svc := NewExportService(local, grid.Standard())

	path := filepath.Join(t.TempDir(), "talent.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("earlier"), 0644))

	result, err := svc.Export(ctx, f.sheet, f.store, f.tracker, nil, export.Options{Path: path, NoOverwrite: true})
	assert.ErrorIs(t, err, export.ErrDestinationExists)
	assert.False(t, IsWriteError(err))
	assert.Equal(t, export.StateFailed, result.State)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "earlier", string(data))

	_, err = svc.Export(ctx, f.sheet, f.store, f.tracker, nil, export.Options{Path: path})
	require.NoError(t, err)

	rc, err := svc.Open(ctx, path)
	require.NoError(t, err)
	defer rc.Close()
	wb, err := excelize.OpenReader(rc)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"Talent"}, wb.GetSheetList())

	_, err = svc.Open(ctx, filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, export.ErrExportNotFound)
}

func TestExportService_Export_EditsSourceWorkbook(t *testing.T) {
	ctx := context.Background()

	src := excelize.NewFile()
	require.NoError(t, src.SetSheetName("Sheet1", "Talent"))
	require.NoError(t, src.SetCellStr("Talent", "A1", "Talent review 2026"))
	header := []interface{}{"Employee ID", "Worker", "Current Performance", "Current Potential", "Salary"}
	require.NoError(t, src.SetSheetRow("Talent", "A3", &header))
	ana := []interface{}{1001, "Ana", "Low", "Medium", 85000.5}
	require.NoError(t, src.SetSheetRow("Talent", "A4", &ana))
	ben := []interface{}{1002, "Ben", "High", "High", 120000}
	require.NoError(t, src.SetSheetRow("Talent", "A5", &ben))
	_, err := src.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, src.SetCellStr("Notes", "A1", "keep me"))
	buf, err := src.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, src.Close())

	parsed, err := importer.NewImportService().Import(ctx, buf, "talent.xlsx", "Talent")
	require.NoError(t, err)

	layout := grid.Standard()
	store := rating.NewRatingStore(layout)
	require.NoError(t, store.Load(parsed.Rows))
	tr := tracker.NewTracker(store, layout, tracker.WithClock(func() time.Time { return fixedNow }))
	emp, err := store.SetRating("1001", grid.High, grid.High)
	require.NoError(t, err)
	_, _, err = tr.RecordMove("1001", emp.Position, nil)
	require.NoError(t, err)

	local, err := storage.NewLocalStorage("")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "talent.xlsx")
	_, err = NewExportService(local, layout).Export(ctx, parsed.Sheet, store, tr, nil, export.Options{Path: path, Now: fixedNow})
	require.NoError(t, err)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Contains(t, wb.GetSheetList(), "Notes")
	value := func(cell string) string {
		v, err := wb.GetCellValue("Talent", cell, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Talent review 2026", value("A1"))

	// numbers stay numbers
	for _, cell := range []string{"A4", "E4", "A5", "E5"} {
		typ, err := wb.GetCellType("Talent", cell)
		require.NoError(t, err)
		assert.NotEqual(t, excelize.CellTypeSharedString, typ, cell)
		assert.NotEqual(t, excelize.CellTypeInlineString, typ, cell)
	}
	assert.Equal(t, "1001", value("A4"))
	assert.Equal(t, "85000.5", value("E4"))
	assert.Equal(t, "120000", value("E5"))

	assert.Equal(t, "High", value("C4"))
	assert.Equal(t, "High", value("D4"))
	assert.Equal(t, ColumnModified, value("F3"))
	assert.Equal(t, "Yes", value("F4"))
	assert.Equal(t, "Moved from Inconsistent [L,M] to Star [H,H]", value("H4"))
	assert.Equal(t, "", value("F5"))
}

func TestExportService_Export_UnwritableDestination(t *testing.T) {
	f := newFixture(t)
	local, err := storage.NewLocalStorage("")
	require.NoError(t, err)
	svc := NewExportService(local, grid.Standard())

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	path := filepath.Join(blocker, "talent.xlsx")

	result, err := svc.Export(context.Background(), f.sheet, f.store, f.tracker, nil, export.Options{Path: path})
	require.Error(t, err)
	assert.True(t, IsWriteError(err))
	assert.ErrorIs(t, err, export.ErrWrite)
	assert.Equal(t, export.StateFailed, result.State)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "nothing but the blocker file may remain")
}

package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/workbook"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportService_Import_Success(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"employee id", "WORKER", "Current Performance", "Current Potential", "Location", "Job Function", "Years of Service", "Cost Center"},
		{"E1", "Ada", "High", "Medium", "USA", "Sales", 0.5, "CC-1"},
		{"E2", "Grace", "low", "low", "UK", "Engineering", 7, "CC-2"},
		{},
		{"E3", "Linus", "Medium", "High", "", "", "1-3 years", ""},
	})

	res, err := NewImportService().Import(context.Background(), buf, "ratings.xlsx", "")
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", res.Sheet.Name)
	assert.Len(t, res.Sheet.Header, 8)
	require.Len(t, res.Sheet.Rows, 3)
	require.Len(t, res.Rows, 3)

	assert.Equal(t, "E1", res.Rows[0].EmployeeID)
	assert.Equal(t, "Ada", res.Rows[0].Name)
	assert.Equal(t, "High", res.Rows[0].Performance)
	assert.Equal(t, "USA", res.Rows[0].Location)
	assert.Equal(t, "Sales", res.Rows[0].JobFunction)
	assert.Equal(t, "<1 year", res.Rows[0].Tenure)
	assert.Equal(t, 2, res.Rows[0].RowIndex)

	assert.Equal(t, "5+ years", res.Rows[1].Tenure)
	assert.Equal(t, "1-3 years", res.Rows[2].Tenure)
	assert.Equal(t, 5, res.Rows[2].RowIndex)

	// unknown columns survive for export
	assert.Equal(t, "CC-2", res.Sheet.Rows[1][7])
	// short rows are padded to header width
	assert.Len(t, res.Sheet.Rows[2], 8)
}

func TestImportService_Import_TitleRowsAboveHeader(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Talent review 2026"},
		{},
		{"Employee ID", "Worker", "Current Performance", "Current Potential"},
		{1001, "Ada", "High", "Medium"},
		{},
		{1002, "Grace", "Low", "Low"},
	})
	raw := buf.Bytes()

	res, err := NewImportService().Import(context.Background(), bytes.NewReader(raw), "ratings.xlsx", "")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Sheet.HeaderRow)
	assert.Equal(t, []int{4, 6}, res.Sheet.RowNumbers)
	assert.Equal(t, raw, res.Sheet.Source)
	assert.Equal(t, "1001", res.Rows[0].EmployeeID)
	assert.Equal(t, 6, res.Rows[1].RowIndex)
}

func TestImportService_Import_MissingColumns(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Employee ID", "Name", "Current Performance"},
		{"E1", "Ada", "High"},
	})

	_, err := NewImportService().Import(context.Background(), buf, "ratings.xlsx", "")

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.ToMap()
	assert.Contains(t, fields, workbook.ColumnWorker)
	assert.Contains(t, fields, workbook.ColumnPotential)
	assert.NotContains(t, fields, workbook.ColumnEmployeeID)
}

func TestImportService_Import_UnknownSheet(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Employee ID", "Worker", "Current Performance", "Current Potential"},
	})

	_, err := NewImportService().Import(context.Background(), buf, "ratings.xlsx", "Ratings")
	assert.ErrorIs(t, err, workbook.ErrSheetNotFound)
}

func TestImportService_Import_UnsupportedFile(t *testing.T) {
	_, err := NewImportService().Import(context.Background(), bytes.NewBufferString("a,b"), "ratings.csv", "")
	assert.ErrorIs(t, err, workbook.ErrUnsupportedFile)
}

func TestParse_EmptySheet(t *testing.T) {
	_, err := Parse("Sheet1", [][]string{{}, {"", " "}})
	assert.ErrorIs(t, err, workbook.ErrEmptyWorkbook)
}

func TestParse_WidensHeaderForExtraCells(t *testing.T) {
	res, err := Parse("Sheet1", [][]string{
		{"Employee ID", "Worker", "Current Performance", "Current Potential"},
		{"E1", "Ada", "High", "High", "stray"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Employee ID", "Worker", "Current Performance", "Current Potential", ""}, res.Sheet.Header)
	assert.Equal(t, "stray", res.Sheet.Rows[0][4])
}

func TestTenureBucket(t *testing.T) {
	cases := map[string]string{
		"0":        "<1 year",
		"2":        "1-3 years",
		"3":        "3-5 years",
		"4.9":      "3-5 years",
		"12 years": "5+ years",
		"Veteran":  "Veteran",
		"":         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, TenureBucket(in), "TenureBucket(%q)", in)
	}
}

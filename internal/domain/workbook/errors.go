package workbook

import "errors"

var (
	ErrEmptyWorkbook   = errors.New("workbook contains no header row")
	ErrSheetNotFound   = errors.New("worksheet not found")
	ErrUnsupportedFile = errors.New("only .xlsx workbooks are supported")
)

package xlsx

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Warning is a recoverable cell-level defect: parsing continued, the cell's
// value was not used. Row/Col are 0-indexed, -1 when not applicable.
type Warning struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Row < 0 {
		return fmt.Sprintf("%s: %s", w.Sheet, w.Message)
	}
	return fmt.Sprintf("%s[%d:%d]: %s", w.Sheet, w.Row, w.Col, w.Message)
}

// openWorkbook decodes workbook bytes. Failure here is fatal for the whole
// upload: no partial records are committed for the file.
func openWorkbook(data []byte) (*excelize.File, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return f, nil
}

// sheetRows reads a sheet as a raw-value grid. Raw values keep Excel serial
// dates and day fractions as numbers instead of locale-formatted strings.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// cell returns the trimmed-clean text of rows[r][c], or "" when the grid is
// ragged and the coordinate does not exist.
func cell(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) {
		return ""
	}
	row := rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return CleanText(row[c])
}

// rawCell is cell without whitespace normalization, for values where the
// leading "#" of a formula error matters.
func rawCell(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) {
		return ""
	}
	row := rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}

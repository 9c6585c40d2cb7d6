package sinapi

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"sinapi-service/internal/core/workbook"
)

// sheetOf builds an in-memory sheet: strings become text cells, numbers become numeric cells.
func sheetOf(name string, rows ...[]any) *workbook.Sheet {
	grid := make([][]workbook.Cell, len(rows))
	for r, row := range rows {
		cells := make([]workbook.Cell, len(row))
		for c, v := range row {
			switch val := v.(type) {
			case string:
				cells[c] = workbook.TextCell(val)
			case float64:
				cells[c] = workbook.NumberCell(val)
			case int:
				cells[c] = workbook.NumberCell(float64(val))
			}
		}
		grid[r] = cells
	}
	return workbook.NewSheet(name, grid)
}

type fixtureSheet struct {
	name string
	// rows maps a zero-based row index to its values; missing indexes stay blank.
	rows map[int][]any
}

// buildXLSX writes the sheets, in order, to an xlsx payload.
func buildXLSX(t *testing.T, sheets ...fixtureSheet) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			t.Fatalf("new sheet %s: %v", s.name, err)
		}
		for r, values := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("coordinates: %v", err)
			}
			row := values
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				t.Fatalf("set row %d of %s: %v", r, s.name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

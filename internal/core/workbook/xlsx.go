package workbook

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// numeralRegex matches the plain numeric literal excelize returns for raw number cells.
var numeralRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// groupedRegex matches literals a text cell may use as a thousands grouping ("1.234").
// Only these need the stored cell type to tell a number from text.
var groupedRegex = regexp.MustCompile(`^[+-]?\d+\.\d{3}$`)

type xlsxWorkbook struct {
	f *excelize.File
}

func openXLSX(data []byte) (*xlsxWorkbook, error) {
	if !isReadableLen(data) {
		return nil, errors.New("empty payload")
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &xlsxWorkbook{f: f}, nil
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.f.GetSheetList()
}

func (w *xlsxWorkbook) Sheet(name string, maxRows int) (*Sheet, error) {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}

	rows, err := w.f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler planilha %q: %w", name, err)
	}
	defer rows.Close()

	var grid [][]Cell
	r := 0
	for rows.Next() {
		if maxRows > 0 && r >= maxRows {
			break
		}
		values, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("erro ao ler linha %d da planilha %q: %w", r+1, name, err)
		}
		cells := make([]Cell, len(values))
		for c, raw := range values {
			cells[c] = w.cell(name, r, c, raw)
		}
		grid = append(grid, cells)
		r++
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("erro ao percorrer planilha %q: %w", name, err)
	}
	return NewSheet(name, grid), nil
}

func (w *xlsxWorkbook) cell(sheet string, row, col int, raw string) Cell {
	if raw == "" || !numeralRegex.MatchString(raw) {
		return Cell{Text: raw}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Cell{Text: raw}
	}
	if groupedRegex.MatchString(raw) && w.storedAsText(sheet, row, col) {
		return Cell{Text: raw}
	}
	return Cell{Text: raw, Number: f, IsNumber: true}
}

func (w *xlsxWorkbook) storedAsText(sheet string, row, col int) bool {
	addr, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return false
	}
	ct, err := w.f.GetCellType(sheet, addr)
	if err != nil {
		return false
	}
	switch ct {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return true
	}
	return false
}

func (w *xlsxWorkbook) Close() error {
	return w.f.Close()
}

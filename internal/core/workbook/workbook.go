// Package workbook exposes typed cell values of xlsx and legacy xls workbooks
// read fully into memory from an immutable byte buffer.
package workbook

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnreadable is returned when the payload is neither a valid xlsx nor xls workbook.
var ErrUnreadable = errors.New("workbook could not be read")

// ErrSheetNotFound is returned by Workbook.Sheet for an unknown sheet name.
var ErrSheetNotFound = errors.New("sheet not found")

// Cell is one worksheet value. Numeric cells keep their stored text alongside the parsed number.
type Cell struct {
	Text     string
	Number   float64
	IsNumber bool
}

// TextCell builds a text cell.
func TextCell(s string) Cell {
	return Cell{Text: s}
}

// NumberCell builds a numeric cell with its canonical text.
func NumberCell(f float64) Cell {
	return Cell{Text: strconv.FormatFloat(f, 'f', -1, 64), Number: f, IsNumber: true}
}

// String returns the trimmed cell text.
func (c Cell) String() string {
	return strings.TrimSpace(c.Text)
}

// Empty reports whether the cell holds no value.
func (c Cell) Empty() bool {
	return !c.IsNumber && strings.TrimSpace(c.Text) == ""
}

// Sheet is an in-memory grid of cells addressed by zero-based row and column.
type Sheet struct {
	name    string
	rows    [][]Cell
	lastCol int
}

// NewSheet builds a sheet from a cell grid. Rows may have different lengths.
func NewSheet(name string, rows [][]Cell) *Sheet {
	s := &Sheet{name: name, rows: rows, lastCol: -1}
	for _, row := range rows {
		if len(row)-1 > s.lastCol {
			s.lastCol = len(row) - 1
		}
	}
	return s
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

// LastRow returns the index of the last row, or -1 for an empty sheet.
func (s *Sheet) LastRow() int { return len(s.rows) - 1 }

// LastCol returns the index of the widest row's last column, or -1 for an empty sheet.
func (s *Sheet) LastCol() int { return s.lastCol }

// Cell returns the value at (row, col); out-of-range positions yield an empty cell.
func (s *Sheet) Cell(row, col int) Cell {
	if row < 0 || col < 0 || row >= len(s.rows) || col >= len(s.rows[row]) {
		return Cell{}
	}
	return s.rows[row][col]
}

// Text returns the sheet as raw strings, every row padded to the sheet width.
func (s *Sheet) Text() [][]string {
	out := make([][]string, len(s.rows))
	for r, row := range s.rows {
		line := make([]string, s.lastCol+1)
		for c, cell := range row {
			line[c] = cell.Text
		}
		out[r] = line
	}
	return out
}

// Workbook gives access to the sheets of one workbook.
type Workbook interface {
	SheetNames() []string
	// Sheet loads a sheet by exact name. maxRows <= 0 loads every row.
	Sheet(name string, maxRows int) (*Sheet, error)
	Close() error
}

// Open detects the container format of data and opens it. xlsx is tried first, then xls.
func Open(data []byte) (Workbook, error) {
	wbx, errX := openXLSX(data)
	if errX == nil {
		return wbx, nil
	}
	wbl, errL := openXLS(data)
	if errL == nil {
		return wbl, nil
	}
	return nil, fmt.Errorf("%w: xlsx: %v; xls: %v", ErrUnreadable, errX, errL)
}

// New wraps in-memory sheets as a Workbook, keeping their order.
func New(sheets ...*Sheet) Workbook {
	return memoryWorkbook(sheets)
}

type memoryWorkbook []*Sheet

func (m memoryWorkbook) SheetNames() []string {
	names := make([]string, len(m))
	for i, s := range m {
		names[i] = s.name
	}
	return names
}

func (m memoryWorkbook) Sheet(name string, maxRows int) (*Sheet, error) {
	for _, s := range m {
		if s.name != name {
			continue
		}
		if maxRows > 0 && len(s.rows) > maxRows {
			return NewSheet(s.name, s.rows[:maxRows]), nil
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
}

func (m memoryWorkbook) Close() error { return nil }

func isReadableLen(data []byte) bool {
	return len(bytes.TrimSpace(data)) > 0
}

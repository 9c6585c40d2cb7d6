package workbook

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
)

type xlsWorkbook struct {
	wb xls.Workbook
}

func openXLS(data []byte) (w *xlsWorkbook, err error) {
	if !isReadableLen(data) {
		return nil, fmt.Errorf("empty payload")
	}
	// o leitor de .xls entra em pânico com alguns arquivos corrompidos
	defer func() {
		if r := recover(); r != nil {
			w, err = nil, fmt.Errorf("arquivo .xls inválido: %v", r)
		}
	}()
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(wb.GetSheets()) == 0 {
		return nil, fmt.Errorf("o arquivo .xls não contém planilhas")
	}
	return &xlsWorkbook{wb: wb}, nil
}

func (w *xlsWorkbook) SheetNames() []string {
	sheets := w.wb.GetSheets()
	names := make([]string, 0, len(sheets))
	for i := range sheets {
		sheet := sheets[i]
		names = append(names, sheet.GetName())
	}
	return names
}

func (w *xlsWorkbook) Sheet(name string, maxRows int) (*Sheet, error) {
	sheets := w.wb.GetSheets()
	for i := range sheets {
		sheet := sheets[i]
		if sheet.GetName() != name {
			continue
		}
		var grid [][]Cell
		for r, row := range sheet.GetRows() {
			if maxRows > 0 && r >= maxRows {
				break
			}
			cols := row.GetCols()
			cells := make([]Cell, len(cols))
			for c, col := range cols {
				if isNumericRecord(col.GetType()) {
					f := col.GetFloat64()
					cells[c] = Cell{Text: strconv.FormatFloat(f, 'f', -1, 64), Number: f, IsNumber: true}
					continue
				}
				cells[c] = Cell{Text: col.GetString()}
			}
			grid = append(grid, cells)
		}
		return NewSheet(name, grid), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
}

// isNumericRecord reports whether a BIFF record type carries a number (NUMBER, RK, MULRK).
func isNumericRecord(recordType string) bool {
	return strings.Contains(recordType, "Number") || strings.Contains(recordType, "Rk")
}

func (w *xlsWorkbook) Close() error { return nil }

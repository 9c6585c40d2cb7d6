package sinapi

import (
	"strings"

	"sinapi-service/internal/core/workbook"
	"sinapi-service/internal/domain"
)

const (
	defaultChildCategory = "INSUMO"
	missingChildCode     = "N/A"
)

// bomColumns holds the zero-based columns of the analytic (composition breakdown) sheet.
type bomColumns struct {
	compCode  int
	compDesc  int
	typ       int
	itemCode  int
	itemDesc  int
	unit      int
	coef      int
	price     int
	total     int
	situation int
}

func bomColumnsFor(cfg domain.ParserConfig) bomColumns {
	return bomColumns{
		compCode:  ColumnIndex(cfg.AnaColCompCode),
		compDesc:  ColumnIndex(cfg.AnaColCompDesc),
		typ:       ColumnIndex(cfg.AnaColType),
		itemCode:  ColumnIndex(cfg.AnaColItemCode),
		itemDesc:  ColumnIndex(cfg.AnaColItemDesc),
		unit:      ColumnIndex(cfg.AnaColUnit),
		coef:      ColumnIndex(cfg.AnaColCoef),
		price:     ColumnIndex(cfg.AnaColPrice),
		total:     ColumnIndex(cfg.AnaColTotal),
		situation: ColumnIndex(cfg.AnaColSituation),
	}
}

// bomRow is the part of an analytic row the parent/child state machine looks at.
type bomRow struct {
	index    int
	compCode string
	compDesc string
	itemCode string
	itemDesc string
}

func (c bomColumns) read(sheet *workbook.Sheet, r int) bomRow {
	return bomRow{
		index:    r,
		compCode: sheet.Cell(r, c.compCode).String(),
		compDesc: sheet.Cell(r, c.compDesc).String(),
		itemCode: sheet.Cell(r, c.itemCode).String(),
		itemDesc: sheet.Cell(r, c.itemDesc).String(),
	}
}

func (b bomRow) hasChild() bool {
	return b.itemCode != "" || b.itemDesc != ""
}

// bomState is the parent composition active while walking the analytic sheet.
type bomState struct {
	parentCode string
	parentDesc string
}

// step applies one row to the state. A row with a new composition code opens a parent
// group and emits nothing; a row with a blank or repeated code is a child of the active parent.
func (s bomState) step(row bomRow) (next bomState, emit bool) {
	code := row.compCode
	if code == "" && s.parentCode != "" && row.hasChild() {
		code = s.parentCode
	}
	if code == "" || isHeaderRepeat(code) {
		return s, false
	}
	if code != s.parentCode {
		return bomState{parentCode: code, parentDesc: row.compDesc}, false
	}
	return s, row.hasChild()
}

// extractAnalitico rebuilds the parent/child composition breakdown from row adjacency.
func extractAnalitico(sheet *workbook.Sheet, cfg domain.ParserConfig, fileName string) []domain.CatalogItem {
	cols := bomColumnsFor(cfg)
	items := []domain.CatalogItem{}

	var state bomState
	for r := max(cfg.HeaderRow, 0); r <= sheet.LastRow(); r++ {
		row := cols.read(sheet, r)
		next, emit := state.step(row)
		state = next
		if !emit {
			continue
		}
		items = append(items, cols.child(sheet, row, state, fileName))
	}
	return items
}

func (c bomColumns) child(sheet *workbook.Sheet, row bomRow, parent bomState, fileName string) domain.CatalogItem {
	r := row.index
	category := strings.ToUpper(sheet.Cell(r, c.typ).String())
	if category == "" {
		category = defaultChildCategory
	}
	code := row.itemCode
	if code == "" {
		code = missingChildCode
	}
	coefficient := CellPrice(sheet.Cell(r, c.coef))
	total := CellPrice(sheet.Cell(r, c.total))

	return domain.CatalogItem{
		Code:        code,
		Description: row.itemDesc,
		Unit:        sheet.Cell(r, c.unit).String(),
		Price:       CellPrice(sheet.Cell(r, c.price)),
		Origin:      fileName,
		Category:    category,
		ParentCode:  parent.parentCode,
		ParentDesc:  parent.parentDesc,
		Coefficient: &coefficient,
		TotalCost:   &total,
		Situation:   sheet.Cell(r, c.situation).String(),
	}
}

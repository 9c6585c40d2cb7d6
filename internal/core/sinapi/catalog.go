package sinapi

import (
	"sinapi-service/internal/core/workbook"
	"sinapi-service/internal/domain"
)

const (
	placeholderDescription = "Sem descrição"
	headerMarker           = "CODIGO"
	referenceState         = "SP"
)

// catalogLayout holds the zero-based columns of a material or composition sheet.
type catalogLayout struct {
	dataType   domain.DataType
	class      int
	code       int
	desc       int
	unit       int
	origin     int
	priceStart int
}

func layoutFor(dataType domain.DataType, cfg domain.ParserConfig) catalogLayout {
	if dataType == domain.TypeInsumo {
		return catalogLayout{
			dataType:   dataType,
			class:      ColumnIndex(cfg.ColClass),
			code:       ColumnIndex(cfg.ColCode),
			desc:       ColumnIndex(cfg.ColDesc),
			unit:       ColumnIndex(cfg.ColUnit),
			origin:     ColumnIndex(cfg.ColOrigin),
			priceStart: ColumnIndex(cfg.ColPriceStart),
		}
	}
	return catalogLayout{
		dataType:   dataType,
		class:      ColumnIndex(cfg.CompColGroup),
		code:       ColumnIndex(cfg.CompColCode),
		desc:       ColumnIndex(cfg.CompColDesc),
		unit:       ColumnIndex(cfg.CompColUnit),
		origin:     -1,
		priceStart: ColumnIndex(cfg.CompColPriceStart),
	}
}

// priceColumn is one header cell classified as a (state, regime) price column.
type priceColumn struct {
	col    int
	state  string
	regime domain.TaxRegime
}

// catalogExtraction is the output of one catalog sheet walk.
type catalogExtraction struct {
	lists         map[domain.TaxRegime][]domain.CatalogItem
	priced        map[domain.TaxRegime]bool
	columns       []priceColumn
	headerRow     int
	detected      bool
	referenceDate string
}

// mapPriceColumns classifies every header cell from priceStart to the last column.
// Bare state headers count only when bareRegime is set (dedicated regime sheets).
func mapPriceColumns(sheet *workbook.Sheet, headerRow, priceStart int, bareRegime domain.TaxRegime) []priceColumn {
	var cols []priceColumn
	for c := max(priceStart, 0); c <= sheet.LastCol(); c++ {
		cell := sheet.Cell(headerRow, c)
		if cell.Empty() {
			continue
		}
		parsed, ok := ClassifyHeader(cell.String())
		if !ok {
			continue
		}
		regime := parsed.Regime
		if !parsed.HasRegime {
			if bareRegime == "" {
				continue
			}
			regime = bareRegime
		}
		cols = append(cols, priceColumn{col: c, state: parsed.State, regime: regime})
	}
	return cols
}

// extractCatalog walks a material or composition sheet and builds one item per regime for every data row.
func extractCatalog(sheet *workbook.Sheet, layout catalogLayout, cfg domain.ParserConfig, fileName string, detect DetectOptions, bareRegime domain.TaxRegime) catalogExtraction {
	headerRow := cfg.HeaderRow - 1
	detectedRow, detected := DetectStateRow(sheet, detect)
	if detected {
		headerRow = detectedRow
	}

	out := catalogExtraction{
		lists:     make(map[domain.TaxRegime][]domain.CatalogItem, len(domain.AllRegimes)),
		priced:    make(map[domain.TaxRegime]bool, len(domain.AllRegimes)),
		columns:   mapPriceColumns(sheet, headerRow, layout.priceStart, bareRegime),
		headerRow: headerRow,
		detected:  detected,
	}
	for _, regime := range domain.AllRegimes {
		out.lists[regime] = []domain.CatalogItem{}
	}
	for _, pc := range out.columns {
		out.priced[pc.regime] = true
	}

	for r := max(headerRow+1, 0); r <= sheet.LastRow(); r++ {
		code := sheet.Cell(r, layout.code).String()
		if code == "" || isHeaderRepeat(code) {
			continue
		}

		base := domain.CatalogItem{
			Code:        code,
			Description: sheet.Cell(r, layout.desc).String(),
			Unit:        sheet.Cell(r, layout.unit).String(),
			Origin:      fileName,
			Category:    string(layout.dataType),
		}
		if base.Description == "" {
			base.Description = placeholderDescription
		}
		classification := sheet.Cell(r, layout.class).String()
		if layout.dataType == domain.TypeInsumo {
			base.Classification = classification
			base.PriceOrigin = sheet.Cell(r, layout.origin).String()
		} else {
			base.Group = classification
		}

		items := make(map[domain.TaxRegime]*domain.CatalogItem, len(domain.AllRegimes))
		first := make(map[domain.TaxRegime]float64, len(domain.AllRegimes))
		for _, regime := range domain.AllRegimes {
			item := base
			item.TaxType = regime
			item.PriceMap = map[string]float64{}
			items[regime] = &item
		}

		for _, pc := range out.columns {
			cell := sheet.Cell(r, pc.col)
			if cell.Empty() {
				continue
			}
			price := CellPrice(cell)
			items[pc.regime].PriceMap[pc.state] = price
			if _, seen := first[pc.regime]; !seen {
				first[pc.regime] = price
			}
		}

		for _, regime := range domain.AllRegimes {
			item := items[regime]
			if sp, ok := item.PriceMap[referenceState]; ok {
				item.Price = sp
			} else {
				item.Price = first[regime]
			}
			out.lists[regime] = append(out.lists[regime], *item)
		}
	}

	if row, col, ok := ParseAddress(cfg.CellDate); ok {
		out.referenceDate = sheet.Cell(row, col).String()
	}
	return out
}

// isHeaderRepeat reports whether a code cell is a repeated header line.
func isHeaderRepeat(code string) bool {
	return containsNormalized(code, headerMarker)
}

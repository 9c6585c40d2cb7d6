package sinapi

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"sinapi-service/internal/domain"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrInvalidExport is returned when a table does not start with the export header.
var ErrInvalidExport = errors.New("tabela exportada inválida")

// ReadCSV parses a table written by WriteCSV back into the items of one regime.
// UTF-8 (with or without BOM) and Latin-1 payloads are accepted.
func ReadCSV(r io.Reader, regime domain.TaxRegime) ([]domain.CatalogItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))
	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("erro ao ler tabela exportada: %w", err)
	}
	if len(records) == 0 || len(records[0]) < len(exportBaseHeader) || strings.TrimSpace(records[0][0]) != exportBaseHeader[0] {
		return nil, ErrInvalidExport
	}

	prefix := "PRECO_" + string(regime) + "_"
	var columns []priceColumn
	for c, h := range records[0] {
		state, ok := strings.CutPrefix(strings.TrimSpace(h), prefix)
		if ok && domain.IsBrazilState(state) {
			columns = append(columns, priceColumn{col: c, state: state, regime: regime})
		}
	}

	items := make([]domain.CatalogItem, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < len(exportBaseHeader) || strings.TrimSpace(record[0]) == "" {
			continue
		}
		item := domain.CatalogItem{
			Code:           strings.TrimSpace(record[0]),
			Description:    record[1],
			Unit:           record[2],
			Classification: record[3],
			Origin:         record[4],
			TaxType:        regime,
			PriceMap:       map[string]float64{},
		}
		for i, pc := range columns {
			if pc.col >= len(record) {
				continue
			}
			price := ParsePrice(record[pc.col])
			item.PriceMap[pc.state] = price
			if i == 0 {
				item.Price = price
			}
		}
		if sp, ok := item.PriceMap[referenceState]; ok {
			item.Price = sp
		}
		items = append(items, item)
	}
	return items, nil
}

package sinapi

import (
	"bytes"
	"encoding/csv"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"sinapi-service/internal/domain"

	"github.com/shopspring/decimal"
)

const utf8BOM = "\uFEFF"

var exportBaseHeader = []string{"CODIGO", "DESCRICAO", "UNIDADE", "CLASSE", "ORIGEM"}

// priceHeader names the export column of one regime and state.
func priceHeader(regime domain.TaxRegime, state string) string {
	return "PRECO_" + string(regime) + "_" + state
}

// ExportCSV denormalizes the regime lists into a ';' delimited table with one row per code.
// Missing prices are written as zero, so "absent" and "zero" are indistinguishable in the output.
func ExportCSV(data map[domain.TaxRegime][]domain.CatalogItem, regimes []domain.TaxRegime) ([]byte, error) {
	var buffer bytes.Buffer
	if err := WriteCSV(&buffer, data, regimes); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// WriteCSV writes the table produced by ExportCSV to w, preceded by a UTF-8 byte order mark.
func WriteCSV(w io.Writer, data map[domain.TaxRegime][]domain.CatalogItem, regimes []domain.TaxRegime) error {
	states := exportStates(data)

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	header := append([]string{}, exportBaseHeader...)
	for _, r := range regimes {
		for _, s := range states {
			header = append(header, priceHeader(r, s))
		}
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	codes, byCode := groupByCode(data)
	for _, code := range codes {
		variants := byCode[code]
		ref := variants.reference()
		class := ref.Classification
		if class == "" {
			class = ref.Group
		}
		record := []string{
			sanitizeForCSV(code),
			sanitizeForCSV(ref.Description),
			sanitizeForCSV(ref.Unit),
			sanitizeForCSV(class),
			sanitizeForCSV(ref.Origin),
		}
		for _, r := range regimes {
			item := variants[r]
			for _, s := range states {
				var p float64
				if item != nil {
					p = item.PriceMap[s]
				}
				record = append(record, FormatBRL(p))
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// regimeVariants holds the item of each regime sharing one code.
type regimeVariants map[domain.TaxRegime]*domain.CatalogItem

func (v regimeVariants) reference() *domain.CatalogItem {
	for _, r := range domain.AllRegimes {
		if item := v[r]; item != nil {
			return item
		}
	}
	return &domain.CatalogItem{}
}

// groupByCode returns the codes in first-seen order (regimes in canonical order) and their variants.
func groupByCode(data map[domain.TaxRegime][]domain.CatalogItem) ([]string, map[string]regimeVariants) {
	var codes []string
	byCode := make(map[string]regimeVariants)
	for _, r := range domain.AllRegimes {
		items := data[r]
		for i := range items {
			code := items[i].Code
			v, ok := byCode[code]
			if !ok {
				v = regimeVariants{}
				byCode[code] = v
				codes = append(codes, code)
			}
			v[r] = &items[i]
		}
	}
	return codes, byCode
}

func exportStates(data map[domain.TaxRegime][]domain.CatalogItem) []string {
	seen := make(map[string]struct{})
	for _, r := range domain.AllRegimes {
		for _, item := range data[r] {
			for s := range item.PriceMap {
				seen[s] = struct{}{}
			}
		}
	}
	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// FormatBRL formats v with two decimals in pt-BR notation ("1.234,56").
func FormatBRL(v float64) string {
	fixed := decimal.NewFromFloat(v).Round(2).StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if neg && strings.Trim(intPart+fracPart, "0") != "" {
		b.WriteByte('-')
	}
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

// sanitizeForCSV remove caracteres de controle e espaços nas pontas.
func sanitizeForCSV(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == '\r' || r == '\n' || r == '\t':
			continue
		case r < 32 || unicode.IsControl(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

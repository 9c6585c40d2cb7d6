package sinapi

import (
	"regexp"
	"strings"
	"unicode"

	"sinapi-service/internal/core/workbook"
	"sinapi-service/internal/domain"
)

// DetectOptions bounds the window scanned for the state header row.
type DetectOptions struct {
	MaxRows int
	MaxCols int
	// MinStates is the count a row must exceed to be accepted as the header.
	MinStates int
}

// DefaultDetectOptions scans the first 15 rows and 50 columns.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{MaxRows: 15, MaxCols: 50, MinStates: 3}
}

// DetectStateRow finds the row with the most cells starting with a state code.
// The first row reaching the maximum wins; ok is false when no row exceeds MinStates.
func DetectStateRow(sheet *workbook.Sheet, opts DetectOptions) (row int, ok bool) {
	lastRow := min(sheet.LastRow()+1, opts.MaxRows)
	lastCol := min(sheet.LastCol()+1, opts.MaxCols)

	bestRow, maxFound := -1, 0
	for r := 0; r < lastRow; r++ {
		found := 0
		for c := 0; c < lastCol; c++ {
			cell := sheet.Cell(r, c)
			if cell.Empty() {
				continue
			}
			val := []rune(strings.ToUpper(cell.String()))
			if len(val) >= 2 && domain.IsBrazilState(string(val[:2])) {
				found++
			}
		}
		if found > maxFound {
			maxFound = found
			bestRow = r
		}
	}
	if maxFound > opts.MinStates {
		return bestRow, true
	}
	return -1, false
}

var regimeHeaderRegex = regexp.MustCompile(`^([A-Z]{2})\((SD|CD|SE|ND)\)$`)

// HeaderClass is the state and, when present, the tax regime encoded in a price header.
type HeaderClass struct {
	State     string
	Regime    domain.TaxRegime
	HasRegime bool
}

// ClassifyHeader parses headers such as "SP(CD)" or a bare "SP".
// Anything else, including codes outside the 27 states, is not a price column.
func ClassifyHeader(header string) (HeaderClass, bool) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, Normalize(header))

	if m := regimeHeaderRegex.FindStringSubmatch(clean); m != nil {
		regime, ok := domain.ParseTaxRegime(m[2])
		if ok && domain.IsBrazilState(m[1]) {
			return HeaderClass{State: m[1], Regime: regime, HasRegime: true}, true
		}
	}
	if domain.IsBrazilState(clean) {
		return HeaderClass{State: clean}, true
	}
	return HeaderClass{}, false
}

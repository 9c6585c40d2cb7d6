package sinapi

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"sinapi-service/internal/core/workbook"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParsePrice converts a price written in Brazilian or Anglo notation to a float.
// Unparseable input yields 0, which callers read as "no price".
func ParsePrice(raw string) float64 {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.Replace(s, "R$", "", 1)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0
	}

	// tratar sinais/parenteses
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimPrefix(s, "-")
	}

	var num float64
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		num = leadingFloat(strings.Replace(s, ",", ".", 1))
	case strings.Contains(s, "."):
		parts := strings.Split(s, ".")
		switch {
		case len(parts) > 2:
			num = leadingFloat(strings.ReplaceAll(s, ".", ""))
		case len(parts[1]) != 3, parts[0] == "0":
			num = leadingFloat(s)
		default:
			num = leadingFloat(parts[0] + parts[1])
		}
	default:
		num = leadingFloat(s)
	}

	if neg {
		return -num
	}
	return num
}

// leadingFloat parses the longest numeric prefix of s, returning 0 when there is none.
func leadingFloat(s string) float64 {
	end := 0
	seenDot, seenDigit := false, false
	for end < len(s) {
		ch := s[end]
		if ch >= '0' && ch <= '9' {
			seenDigit = true
		} else if ch == '.' && !seenDot {
			seenDot = true
		} else {
			break
		}
		end++
	}
	if !seenDigit {
		return 0
	}
	// expoente só é aceito quando completo (1E3, 2.5e-2)
	if end < len(s) && (s[end] == 'E' || s[end] == 'e') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		digits := exp
		for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
			digits++
		}
		if digits > exp {
			end = digits
		}
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParsePercentage strips a trailing percent sign and parses the rest as a number.
func ParsePercentage(raw string) float64 {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	return ParsePrice(s)
}

// PercentFromNumber scales fractions below 5 (0.18) to percentages (18).
// Values of 5 or more are assumed to be percentages already.
func PercentFromNumber(v float64) float64 {
	if v >= 5 {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Mul(hundred).Float64()
	return f
}

// CellPrice returns the price held in a cell. Numeric cells pass through unchanged.
func CellPrice(c workbook.Cell) float64 {
	if c.IsNumber {
		return c.Number
	}
	return ParsePrice(c.Text)
}

// CellPercentage returns the percentage held in a cell on the 0-100 scale.
func CellPercentage(c workbook.Cell) float64 {
	if c.IsNumber {
		return PercentFromNumber(c.Number)
	}
	return ParsePercentage(c.Text)
}

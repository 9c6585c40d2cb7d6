package sinapi

import (
	"strconv"
	"strings"
)

// ColumnIndex converts spreadsheet column letters to a zero-based index ("A" = 0, "AA" = 26).
// Empty or non-alphabetic input yields -1.
func ColumnIndex(letters string) int {
	clean := strings.ToUpper(strings.TrimSpace(letters))
	if clean == "" {
		return -1
	}
	sum := 0
	for _, r := range clean {
		if r < 'A' || r > 'Z' {
			return -1
		}
		sum = sum*26 + int(r-'A'+1)
	}
	return sum - 1
}

// ColumnLetters is the inverse of ColumnIndex. Negative indexes yield "".
func ColumnLetters(index int) string {
	if index < 0 {
		return ""
	}
	// 14 letters cover every non-negative int
	var buf [14]byte
	i := len(buf)
	for n := index; n >= 0; n = n/26 - 1 {
		i--
		buf[i] = byte('A' + n%26)
	}
	return string(buf[i:])
}

// Address composes a cell reference such as "B3" from a zero-based row and column.
func Address(row, col int) string {
	if row < 0 || col < 0 {
		return ""
	}
	return ColumnLetters(col) + strconv.Itoa(row+1)
}

// ParseAddress splits a cell reference into a zero-based row and column.
func ParseAddress(ref string) (row, col int, ok bool) {
	clean := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(ref, "$", "")))
	split := strings.IndexFunc(clean, func(r rune) bool { return r >= '0' && r <= '9' })
	if split <= 0 {
		return 0, 0, false
	}
	col = ColumnIndex(clean[:split])
	n, err := strconv.Atoi(clean[split:])
	if col < 0 || err != nil || n < 1 {
		return 0, 0, false
	}
	return n - 1, col, true
}

package sinapi

import (
	"strings"
	"unicode"

	"github.com/schollz/closestmatch"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison key of a sheet name or state code:
// upper case, without diacritics, trimmed.
func Normalize(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		result = str
	}
	return strings.TrimSpace(strings.ToUpper(result))
}

// FindSheet resolves a sheet name query against the workbook's sheet names:
// first an exact normalized match, then the first normalized name containing the query.
func FindSheet(names []string, query string) (string, bool) {
	target := Normalize(query)
	if target == "" {
		return "", false
	}
	for _, n := range names {
		if Normalize(n) == target {
			return n, true
		}
	}
	for _, n := range names {
		if strings.Contains(Normalize(n), target) {
			return n, true
		}
	}
	return "", false
}

// SuggestSheet returns the sheet name closest to query, or "" when nothing is close.
func SuggestSheet(names []string, query string) string {
	target := Normalize(query)
	if target == "" || len(names) == 0 {
		return ""
	}
	byKey := make(map[string]string, len(names))
	keys := make([]string, 0, len(names))
	for _, n := range names {
		k := Normalize(n)
		if _, dup := byKey[k]; dup || k == "" {
			continue
		}
		byKey[k] = n
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	// closestmatch indexes lowercased keys but matches the query as given
	cm := closestmatch.New(keys, []int{2, 3})
	return byKey[cm.Closest(strings.ToLower(target))]
}

// containsNormalized reports whether the normalized s contains the normalized sub.
func containsNormalized(s, sub string) bool {
	return strings.Contains(Normalize(s), Normalize(sub))
}

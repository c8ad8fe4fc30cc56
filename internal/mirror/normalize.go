package mirror

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sadopc/mirror/internal/calendar"
)

// Normalize returns exactly one record per date of r, in date order. Dates
// missing from sparse get an EmptyDay; records outside r are ignored and a
// repeated date keeps its first record.
func Normalize(r calendar.Range, sparse []DayRecord) []DayRecord {
	byDate := make(map[calendar.Date]DayRecord, len(sparse))
	for _, rec := range sparse {
		if _, dup := byDate[rec.Date]; dup {
			continue
		}
		byDate[rec.Date] = rec
	}

	dates := calendar.Enumerate(r)
	out := make([]DayRecord, 0, len(dates))
	for _, d := range dates {
		if rec, ok := byDate[d]; ok {
			out = append(out, rec)
			continue
		}
		out = append(out, EmptyDay(d))
	}
	return out
}

// FoldKey reduces a name to the form used for case- and
// diacritic-insensitive matching: "  Alegría " and "alegria" fold equal.
func FoldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(folded), "-")
}

// SameName reports whether two names fold to the same key.
func SameName(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}

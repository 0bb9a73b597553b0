package callnumber

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	minYear = 1000
	maxYear = 2999
)

var fourDigitRun = regexp.MustCompile(`\d{4}`)

// HasValidYearSuffix reports whether s ends in a plausible publication year,
// optionally followed by one letter ("1983", "1983b").
func HasValidYearSuffix(s string) bool {
	s = strings.TrimSpace(s)
	if n := len(s); n > 0 && isASCIILetter(s[n-1]) {
		s = s[:n-1]
	}
	if len(s) < 4 {
		return false
	}
	tail := s[len(s)-4:]
	for i := 0; i < len(tail); i++ {
		if tail[i] < '0' || tail[i] > '9' {
			return false
		}
	}
	year, err := strconv.Atoi(tail)
	if err != nil {
		return false
	}
	return year >= minYear && year <= maxYear
}

// EnsureYear appends the publication year to a raw call number that does not
// already end in one. fallbackYear is the free-form date reported by the
// lookup; an empty fallback or one without a four-digit year leaves raw
// unchanged.
func EnsureYear(raw, fallbackYear string) string {
	if strings.TrimSpace(raw) == "" || HasValidYearSuffix(raw) {
		return raw
	}
	year, ok := ExtractYear(fallbackYear)
	if !ok {
		return raw
	}
	return raw + " " + year
}

// ExtractYear returns the last plausible four-digit year in a free-form date
// such as "c1983" or "March 5, 1983".
func ExtractYear(date string) (string, bool) {
	runs := fourDigitRun.FindAllString(date, -1)
	for i := len(runs) - 1; i >= 0; i-- {
		if HasValidYearSuffix(runs[i]) {
			return runs[i], true
		}
	}
	return "", false
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

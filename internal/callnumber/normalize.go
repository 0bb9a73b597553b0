// Package callnumber turns raw Library of Congress call numbers, as copied
// between library catalogs, into the short canonical lines printed on a
// spine label.
package callnumber

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Prefixes are the collection tags recognized in front of the class letters.
var Prefixes = []string{"REF", "JUV", "OVERSIZE", "MAPS", "DOCS", "SERIAL", "MICRO", "SHELF"}

var mainClassPattern = regexp.MustCompile(`^([A-Za-z]{1,3}) ?(\d+(?:\.\d+)?)`)

// Normalize splits a raw call number into label lines: an optional prefix,
// the main class, cutters and finally years and volume/copy markers.
//
// Empty or whitespace-only input yields an empty slice. Any other input
// yields at least one line; malformed parts are passed through uppercased
// instead of being rejected.
func Normalize(raw string) []string {
	s := strings.Join(strings.Fields(norm.NFKC.String(raw)), " ")
	if s == "" {
		return []string{}
	}

	lines := make([]string, 0, 6)
	if prefix, rest, ok := cutPrefix(s); ok {
		lines = append(lines, prefix)
		s = rest
	}

	class, rest := cutMainClass(s)
	lines = append(lines, class)

	for _, token := range tokenize(rest) {
		lines = classify(lines, token)
	}
	return lines
}

// cutPrefix strips a leading collection tag. A tag with nothing after it is
// left in place so it can serve as the main class.
func cutPrefix(s string) (prefix, rest string, ok bool) {
	word, rest, found := strings.Cut(s, " ")
	if !found {
		return "", s, false
	}
	for _, p := range Prefixes {
		if strings.EqualFold(word, p) {
			return p, rest, true
		}
	}
	return "", s, false
}

func cutMainClass(s string) (class, rest string) {
	if m := mainClassPattern.FindStringSubmatchIndex(s); m != nil {
		return strings.ToUpper(s[m[2]:m[3]]) + s[m[4]:m[5]], s[m[1]:]
	}
	first, rest, _ := strings.Cut(s, " ")
	return strings.ToUpper(first), rest
}

// tokenize splits the part after the main class on spaces and dot runs.
// A dot run starts a new token and is folded, as a single dot, into the
// token that follows it. Dots survive inside a token only as a decimal point
// between digits or as the dot of a v./c. marker.
func tokenize(s string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		pending bool
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case ' ':
			flush()
		case '.':
			end := i
			for end < len(runes) && runes[end] == '.' {
				end++
			}
			if keepsDot(cur.String(), runes, i, end) {
				cur.WriteByte('.')
				for end < len(runes) && runes[end] == ' ' {
					end++
				}
			} else {
				flush()
				pending = true
			}
			i = end - 1
		default:
			if pending {
				cur.WriteByte('.')
				pending = false
			}
			cur.WriteRune(r)
		}
	}
	flush()
	if pending {
		tokens = append(tokens, ".")
	}
	return tokens
}

// keepsDot reports whether the dot run runes[start:end] belongs inside the
// current token.
func keepsDot(cur string, runes []rune, start, end int) bool {
	if cur == "" {
		return false
	}
	next := end
	if isMarkerLetter(cur) {
		for next < len(runes) && runes[next] == ' ' {
			next++
		}
		return next < len(runes) && isDigit(runes[next])
	}
	last := rune(cur[len(cur)-1])
	return end-start == 1 && isDigit(last) && next < len(runes) && isDigit(runes[next])
}

func isMarkerLetter(s string) bool {
	return s == "v" || s == "V" || s == "c" || s == "C"
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

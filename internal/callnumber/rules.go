package callnumber

import (
	"regexp"
	"strings"
)

var (
	volumePattern       = regexp.MustCompile(`^[vVcC]\.\d+$`)
	yearPattern         = regexp.MustCompile(`^\d{4}[A-Za-z]?$`)
	bareYearPattern     = regexp.MustCompile(`^\d{4}$`)
	singleLetterPattern = regexp.MustCompile(`^\.?[A-Za-z]$`)
	cutterGroupsPattern = regexp.MustCompile(`^(?:[A-Za-z]+\d+(?:\.\d+)?)+$`)
	cutterGroupPattern  = regexp.MustCompile(`[A-Za-z]+\d+(?:\.\d+)?`)
	cutterLinePattern   = regexp.MustCompile(`^\.[A-Z]+\d+(?:\.\d+)?$`)
)

// undottedMinDigits is the digit count from which a bare letter+number token
// following a cutter is read as an undotted second cutter and kept as is.
const undottedMinDigits = 3

// rule classifies one token. match sees the lines emitted so far; emit
// returns the lines with the token applied.
type rule struct {
	name  string
	match func(lines []string, token string) bool
	emit  func(lines []string, token string) []string
}

// rules are evaluated in order and the first match wins. Tokens no rule
// matches are emitted uppercased.
var rules = []rule{
	{
		name:  "volume",
		match: func(_ []string, t string) bool { return volumePattern.MatchString(t) },
		emit:  func(l []string, t string) []string { return append(l, strings.ToLower(t)) },
	},
	{
		// Upstream tokenizers sometimes split "B1990" into "B" and "1990".
		// The merged line takes the form the cutter rules would give the
		// unsplit token, so normalizing the output again changes nothing.
		name: "split-letter-repair",
		match: func(l []string, t string) bool {
			return len(l) > 0 && bareYearPattern.MatchString(t) && singleLetterPattern.MatchString(l[len(l)-1])
		},
		emit: func(l []string, t string) []string {
			last := len(l) - 1
			merged := l[last] + t
			if !strings.HasPrefix(merged, ".") && !keepsUndotted(l[:last], merged) {
				merged = "." + strings.ToUpper(merged)
			}
			l[last] = merged
			return l
		},
	},
	{
		name:  "year",
		match: func(_ []string, t string) bool { return yearPattern.MatchString(t) },
		emit:  func(l []string, t string) []string { return append(l, t) },
	},
	{
		name: "cutter",
		match: func(_ []string, t string) bool {
			return strings.HasPrefix(t, ".") && cutterGroupsPattern.MatchString(t[1:])
		},
		emit: func(l []string, t string) []string { return appendCutters(l, t[1:]) },
	},
	{
		name: "undotted-cutter",
		match: func(l []string, t string) bool {
			return cutterGroupsPattern.MatchString(t) && keepsUndotted(l, t)
		},
		emit: func(l []string, t string) []string { return append(l, strings.ToUpper(t)) },
	},
	{
		name:  "missing-dot-cutter",
		match: func(_ []string, t string) bool { return cutterGroupsPattern.MatchString(t) },
		emit:  appendCutters,
	},
}

func classify(lines []string, token string) []string {
	for _, r := range rules {
		if r.match(lines, token) {
			return r.emit(lines, token)
		}
	}
	return append(lines, strings.ToUpper(token))
}

// appendCutters emits one dotted line per letters+number group, so a merged
// token like "T8E2" becomes ".T8" and ".E2".
func appendCutters(lines []string, groups string) []string {
	for _, g := range cutterGroupPattern.FindAllString(groups, -1) {
		lines = append(lines, "."+strings.ToUpper(g))
	}
	return lines
}

// keepsUndotted reports whether a bare single-group token with a long number
// directly follows a cutter line.
func keepsUndotted(lines []string, token string) bool {
	if len(lines) == 0 || !cutterLinePattern.MatchString(lines[len(lines)-1]) {
		return false
	}
	groups := cutterGroupPattern.FindAllString(token, -1)
	if len(groups) != 1 {
		return false
	}
	digits := 0
	for _, r := range groups[0] {
		if r == '.' {
			break
		}
		if isDigit(r) {
			digits++
		}
	}
	return digits >= undottedMinDigits
}

package callnumber

import (
	"fmt"
	"strings"
)

// DefaultMinClassificationLength is the shortest normalized call number,
// spaces ignored, that is not reported as suspicious.
const DefaultMinClassificationLength = 6

// AdvisoryKind identifies a data-quality signal.
type AdvisoryKind int

const (
	// AdvisoryMissing means the lookup reported no classification.
	AdvisoryMissing AdvisoryKind = iota
	// AdvisoryShort means the classification is suspiciously short.
	AdvisoryShort
	// AdvisoryImplausibleYear means a publication date was reported but
	// holds no usable year.
	AdvisoryImplausibleYear
)

func (k AdvisoryKind) String() string {
	switch k {
	case AdvisoryMissing:
		return "missing"
	case AdvisoryShort:
		return "short"
	case AdvisoryImplausibleYear:
		return "implausible-year"
	default:
		return fmt.Sprintf("AdvisoryKind(%d)", int(k))
	}
}

// Advisory is a data-quality warning for the operator. It never blocks
// normalization; the workflow decides what to do with it.
type Advisory struct {
	Kind    AdvisoryKind
	Message string
}

// Inspector checks raw lookup data before a label is produced.
type Inspector struct {
	// MinLength overrides DefaultMinClassificationLength when positive.
	MinLength int
}

// Inspect returns the advisories for a raw classification and publication
// date. A nil result means nothing looks wrong.
func (in Inspector) Inspect(rawClassification, rawYear string) []Advisory {
	var advisories []Advisory

	lines := Normalize(rawClassification)
	if len(lines) == 0 {
		advisories = append(advisories, Advisory{
			Kind:    AdvisoryMissing,
			Message: "no LOC classification found",
		})
	} else if n := len(strings.Join(lines, "")); n < in.minLength() {
		advisories = append(advisories, Advisory{
			Kind:    AdvisoryShort,
			Message: fmt.Sprintf("classification %q is only %d characters long", strings.Join(lines, " "), n),
		})
	}

	if strings.TrimSpace(rawYear) != "" {
		if _, ok := ExtractYear(rawYear); !ok {
			advisories = append(advisories, Advisory{
				Kind:    AdvisoryImplausibleYear,
				Message: fmt.Sprintf("publication date %q has no plausible year", rawYear),
			})
		}
	}

	return advisories
}

func (in Inspector) minLength() int {
	if in.MinLength > 0 {
		return in.MinLength
	}
	return DefaultMinClassificationLength
}

// Has reports whether any advisory of the given kind is present.
func Has(advisories []Advisory, kind AdvisoryKind) bool {
	for _, a := range advisories {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

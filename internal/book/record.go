// Package book holds the record that flows from lookup through normalization
// to storage and labeling.
package book

import (
	"fmt"
	"strings"
)

// Record is one looked-up or manually entered book. It lives for a single
// prompt cycle.
type Record struct {
	// ISBN is digits only; an ISBN-10 may end in X.
	ISBN    string `json:"isbn" yaml:"isbn"`
	Title   string `json:"title" yaml:"title"`
	Authors string `json:"authors" yaml:"authors"`

	// RawClassification is the longest LOC classification reported by the
	// lookup. Empty means none was found.
	RawClassification string `json:"raw_classification,omitempty" yaml:"raw_classification,omitempty"`

	// RawYear is the free-form publication date, e.g. "c1983".
	RawYear string `json:"raw_year,omitempty" yaml:"raw_year,omitempty"`
}

// CleanISBN strips the separators operators and scanners put into ISBNs.
func CleanISBN(isbn string) string {
	isbn = strings.TrimSpace(isbn)
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	return strings.ToUpper(isbn)
}

// ValidISBN reports whether isbn is a separator-free ISBN-10 or ISBN-13.
// Check digits are not verified.
func ValidISBN(isbn string) bool {
	switch len(isbn) {
	case 10:
		for i := 0; i < 9; i++ {
			if !isDigit(isbn[i]) {
				return false
			}
		}
		return isDigit(isbn[9]) || isbn[9] == 'X'
	case 13:
		for i := 0; i < 13; i++ {
			if !isDigit(isbn[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// JoinAuthors joins author names with " and ", keeping their order and
// skipping blanks.
func JoinAuthors(names []string) string {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, " and ")
}

// Validate checks the fields every stored record needs.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidArgument)
	}
	if !ValidISBN(r.ISBN) {
		return fmt.Errorf("%w: ISBN %q is not 10 or 13 digits", ErrInvalidArgument, r.ISBN)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	return nil
}

// HasClassification reports whether the lookup produced a call number.
func (r *Record) HasClassification() bool {
	return strings.TrimSpace(r.RawClassification) != ""
}

// Merge fills the empty fields of r from other. Fields already set win.
func (r *Record) Merge(other Record) {
	if r.ISBN == "" {
		r.ISBN = other.ISBN
	}
	if r.Title == "" {
		r.Title = other.Title
	}
	if r.Authors == "" {
		r.Authors = other.Authors
	}
	if r.RawClassification == "" {
		r.RawClassification = other.RawClassification
	}
	if r.RawYear == "" {
		r.RawYear = other.RawYear
	}
}

func (r Record) String() string {
	return fmt.Sprintf("\nTitle: %s\nISBN: %s\nAuthors: %s\nLOC: %s\nYear: %s\n",
		r.Title, r.ISBN, r.Authors, r.RawClassification, r.RawYear)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

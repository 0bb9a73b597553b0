// Package lookup fetches book metadata and LOC classifications by ISBN from
// external catalogs.
package lookup

import (
	"context"
	"strings"

	"github.com/lepinkainen/shelfmark/internal/book"
)

// Source is one external catalog.
type Source interface {
	// Name returns the human-readable name of the source (e.g., "OpenLibrary").
	Name() string

	// Priority orders sources when merging; lower values win.
	Priority() int

	// Lookup returns what the source knows about isbn. It returns nil, nil
	// when the source does not know the ISBN so other sources can be tried,
	// and an error only for transport or service failures.
	Lookup(ctx context.Context, isbn string) (*Result, error)
}

// Result is the metadata one source, or a merge of several, reported.
type Result struct {
	Title           string   `json:"title"`
	Authors         []string `json:"authors,omitempty"`
	PublishDate     string   `json:"publish_date,omitempty"`
	Classifications []string `json:"classifications,omitempty"`
}

// SourceResult pairs a result with the source that produced it.
type SourceResult struct {
	Source   string
	Priority int
	Data     *Result
}

// Classification returns the longest reported LOC classification. Longer
// strings carry more cutter and date detail.
func (r *Result) Classification() string {
	best := ""
	for _, c := range r.Classifications {
		c = strings.TrimSpace(c)
		if len(c) > len(best) {
			best = c
		}
	}
	return best
}

// Record converts the result into a book record.
func (r *Result) Record(isbn string) *book.Record {
	return &book.Record{
		ISBN:              isbn,
		Title:             strings.TrimSpace(r.Title),
		Authors:           book.JoinAuthors(r.Authors),
		RawClassification: r.Classification(),
		RawYear:           strings.TrimSpace(r.PublishDate),
	}
}

// empty reports whether the result carries nothing worth keeping.
func (r *Result) empty() bool {
	return r == nil || (strings.TrimSpace(r.Title) == "" && len(r.Classifications) == 0)
}

// cachedResult is the cache row for one ISBN, including "not found".
type cachedResult struct {
	Result   *Result `json:"result"`
	NotFound bool    `json:"not_found"`
}

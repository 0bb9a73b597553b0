package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lepinkainen/shelfmark/internal/book"
)

// Chain queries sources in priority order and merges what they report.
type Chain struct {
	sources []Source
}

// NewChain orders sources by priority (lower first).
func NewChain(sources ...Source) *Chain {
	sorted := make([]Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &Chain{sources: sorted}
}

// Sources returns the sources in query order.
func (c *Chain) Sources() []Source {
	return c.sources
}

// Lookup returns the merged record for isbn. It returns book.ErrNotFound when
// no source knows the ISBN. A source failure is logged and the next source is
// tried; the failures are returned only when nothing was found.
func (c *Chain) Lookup(ctx context.Context, isbn string) (*book.Record, error) {
	var (
		results []SourceResult
		failed  []error
	)

	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("lookup of %s cancelled: %w", isbn, err)
		}

		res, err := src.Lookup(ctx, isbn)
		if err != nil {
			slog.Warn("Lookup source failed", "source", src.Name(), "isbn", isbn, "error", err)
			failed = append(failed, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if res.empty() {
			slog.Debug("Source does not know ISBN", "source", src.Name(), "isbn", isbn)
			continue
		}

		results = append(results, SourceResult{Source: src.Name(), Priority: src.Priority(), Data: res})
		if complete(results) {
			break
		}
	}

	merged := Merge(results)
	if merged == nil {
		if len(failed) > 0 {
			return nil, errors.Join(failed...)
		}
		return nil, fmt.Errorf("ISBN %s: %w", isbn, book.ErrNotFound)
	}
	return merged.Record(isbn), nil
}

// complete reports whether the results already hold everything a label
// needs, so lower-priority sources can be skipped.
func complete(results []SourceResult) bool {
	m := Merge(results)
	return m != nil && m.Title != "" && len(m.Authors) > 0 && m.PublishDate != "" && len(m.Classifications) > 0
}

// Merge combines results by priority: each scalar field takes the first
// non-empty value and classifications from all sources are kept, without
// duplicates. It returns nil when there is nothing to merge.
func Merge(results []SourceResult) *Result {
	sorted := make([]SourceResult, 0, len(results))
	for _, r := range results {
		if !r.Data.empty() {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	merged := &Result{}
	for _, r := range sorted {
		if merged.Title == "" {
			merged.Title = strings.TrimSpace(r.Data.Title)
		}
		if len(merged.Authors) == 0 && len(r.Data.Authors) > 0 {
			merged.Authors = r.Data.Authors
		}
		if merged.PublishDate == "" {
			merged.PublishDate = strings.TrimSpace(r.Data.PublishDate)
		}
		merged.Classifications = mergeStringSlices(merged.Classifications, r.Data.Classifications)
	}
	return merged
}

// mergeStringSlices appends the values of b missing from a.
func mergeStringSlices(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	result := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		result = append(result, s)
	}
	return result
}

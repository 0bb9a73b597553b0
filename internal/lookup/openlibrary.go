package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// OpenLibraryBaseURL is the public OpenLibrary endpoint.
const OpenLibraryBaseURL = "https://openlibrary.org"

// openLibraryBook is the part of the jscmd=data response we read.
type openLibraryBook struct {
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	PublishDate     string `json:"publish_date"`
	Classifications struct {
		LCClassifications []string `json:"lc_classifications"`
	} `json:"classifications"`
}

// OpenLibrary looks books up through the OpenLibrary Books API. It is the
// only source that reports LOC classifications.
type OpenLibrary struct {
	BaseURL string
	// Cache enables the openlibrary_cache table.
	Cache bool

	limiter *limiter
}

// Compile-time check that OpenLibrary implements Source.
var _ Source = (*OpenLibrary)(nil)

// NewOpenLibrary returns a cached OpenLibrary source limited to one request
// per second.
func NewOpenLibrary() *OpenLibrary {
	return &OpenLibrary{
		BaseURL: OpenLibraryBaseURL,
		Cache:   true,
		limiter: newLimiter("OpenLibrary", time.Second, 1),
	}
}

func (o *OpenLibrary) Name() string  { return "OpenLibrary" }
func (o *OpenLibrary) Priority() int { return 1 }

// Lookup fetches the edition data for isbn.
func (o *OpenLibrary) Lookup(ctx context.Context, isbn string) (*Result, error) {
	return cachedLookup(o.Cache, "openlibrary_cache", isbn, func() (*Result, error) {
		return o.fetch(ctx, isbn)
	})
}

func (o *OpenLibrary) fetch(ctx context.Context, isbn string) (*Result, error) {
	key := "ISBN:" + isbn
	endpoint := fmt.Sprintf("%s/api/books?bibkeys=%s&format=json&jscmd=data", o.BaseURL, url.QueryEscape(key))

	slog.Debug("Fetching book data from OpenLibrary", "isbn", isbn)

	var response map[string]openLibraryBook
	if err := getJSON(ctx, o.Name(), o.limiterOrDefault(), endpoint, &response); err != nil {
		return nil, err
	}

	olBook, ok := response[key]
	if !ok {
		return nil, nil
	}

	res := &Result{
		Title:           olBook.Title,
		PublishDate:     olBook.PublishDate,
		Classifications: olBook.Classifications.LCClassifications,
	}
	for _, a := range olBook.Authors {
		res.Authors = append(res.Authors, a.Name)
	}
	return res, nil
}

func (o *OpenLibrary) limiterOrDefault() *limiter {
	if o.limiter == nil {
		o.limiter = newLimiter(o.Name(), time.Second, 1)
	}
	return o.limiter
}

package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// GoogleBooksBaseURL is the public Google Books API endpoint.
const GoogleBooksBaseURL = "https://www.googleapis.com/books/v1"

type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			PublishedDate string   `json:"publishedDate"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// GoogleBooks fills in title, authors and publication date when OpenLibrary
// does not know a book. It never reports classifications.
type GoogleBooks struct {
	BaseURL string
	APIKey  string
	// Cache enables the googlebooks_cache table.
	Cache bool

	limiter *limiter
}

// Compile-time check that GoogleBooks implements Source.
var _ Source = (*GoogleBooks)(nil)

// NewGoogleBooks returns a cached Google Books source. apiKey may be empty.
func NewGoogleBooks(apiKey string) *GoogleBooks {
	return &GoogleBooks{
		BaseURL: GoogleBooksBaseURL,
		APIKey:  apiKey,
		Cache:   true,
		limiter: newLimiter("Google Books", 500*time.Millisecond, 2),
	}
}

func (g *GoogleBooks) Name() string  { return "Google Books" }
func (g *GoogleBooks) Priority() int { return 2 }

// Lookup searches volumes by ISBN and uses the first match.
func (g *GoogleBooks) Lookup(ctx context.Context, isbn string) (*Result, error) {
	return cachedLookup(g.Cache, "googlebooks_cache", isbn, func() (*Result, error) {
		return g.fetch(ctx, isbn)
	})
}

func (g *GoogleBooks) fetch(ctx context.Context, isbn string) (*Result, error) {
	params := url.Values{}
	params.Set("q", "isbn:"+isbn)
	if g.APIKey != "" {
		params.Set("key", g.APIKey)
	}
	endpoint := fmt.Sprintf("%s/volumes?%s", g.BaseURL, params.Encode())

	slog.Debug("Fetching book data from Google Books", "isbn", isbn)

	var response googleBooksResponse
	if err := getJSON(ctx, g.Name(), g.limiterOrDefault(), endpoint, &response); err != nil {
		return nil, err
	}
	if response.TotalItems == 0 || len(response.Items) == 0 {
		return nil, nil
	}

	info := response.Items[0].VolumeInfo
	return &Result{
		Title:       info.Title,
		Authors:     info.Authors,
		PublishDate: info.PublishedDate,
	}, nil
}

func (g *GoogleBooks) limiterOrDefault() *limiter {
	if g.limiter == nil {
		g.limiter = newLimiter(g.Name(), 500*time.Millisecond, 2)
	}
	return g.limiter
}

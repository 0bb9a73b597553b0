package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lepinkainen/shelfmark/internal/cache"
	errs "github.com/lepinkainen/shelfmark/internal/errors"
)

// Shared HTTP client; tests replace httpClientNew before first use.
var (
	httpClient    *http.Client
	clientOnce    sync.Once
	httpClientNew = func() *http.Client {
		return &http.Client{
			Timeout: 10 * time.Second,
		}
	}
)

// getHTTPClient returns a singleton HTTP client
func getHTTPClient() *http.Client {
	clientOnce.Do(func() {
		httpClient = httpClientNew()
	})
	return httpClient
}

// getJSON performs a rate-limited GET and decodes a 200 response into v.
func getJSON(ctx context.Context, source string, lim *limiter, url string, v any) error {
	if err := lim.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := getHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", source, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return errs.NewRateLimitError(source, resp)
	case resp.StatusCode != http.StatusOK:
		return errs.NewStatusError(source, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", source, err)
	}
	return nil
}

// cachedLookup answers from the cache table when enabled, caching "not
// found" answers for the shorter negative TTL. Errors are never cached.
func cachedLookup(enabled bool, table, isbn string, fetch func() (*Result, error)) (*Result, error) {
	if !enabled {
		return fetch()
	}

	cached, fromCache, err := cache.GetOrFetchWithTTL(table, isbn,
		func() (*cachedResult, error) {
			res, err := fetch()
			if err != nil {
				return nil, err
			}
			return &cachedResult{Result: res, NotFound: res == nil}, nil
		},
		cache.SelectNegativeCacheTTL(func(r *cachedResult) bool {
			return r.NotFound
		}))
	if err != nil {
		return nil, err
	}
	if fromCache {
		slog.Debug("Lookup served from cache", "table", table, "isbn", isbn, "not_found", cached.NotFound)
	}
	if cached == nil || cached.NotFound {
		return nil, nil
	}
	return cached.Result, nil
}

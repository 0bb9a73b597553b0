package lookup

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelfmark/internal/cache"
	errs "github.com/lepinkainen/shelfmark/internal/errors"
	"github.com/lepinkainen/shelfmark/internal/testutil"
)

const ulyssesResponse = `{
  "ISBN:9780394743127": {
    "title": "Ulysses",
    "authors": [{"name": "James Joyce", "url": "https://openlibrary.org/authors/OL18319A"}],
    "publish_date": "1986",
    "classifications": {
      "lc_classifications": ["PR6019.O9 U4", "PR6019.O9 U4 1986"],
      "dewey_decimal_class": ["823/.912"]
    }
  }
}`

func newTestOpenLibrary(baseURL string) *OpenLibrary {
	return &OpenLibrary{BaseURL: baseURL, limiter: fastLimiter()}
}

func TestGetHTTPClientSingleton(t *testing.T) {
	t.Cleanup(func() {
		httpClient = nil
		clientOnce = sync.Once{}
	})

	clientOnce = sync.Once{}
	httpClient = nil
	origFactory := httpClientNew
	defer func() { httpClientNew = origFactory }()

	var builds int
	httpClientNew = func() *http.Client {
		builds++
		return &http.Client{}
	}

	first := getHTTPClient()
	second := getHTTPClient()
	require.Equal(t, first, second)
	require.Equal(t, 1, builds)
}

func TestOpenLibraryLookup(t *testing.T) {
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		assert.Equal(t, "ISBN:9780394743127", r.URL.Query().Get("bibkeys"))
		assert.Equal(t, "data", r.URL.Query().Get("jscmd"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(ulyssesResponse))
	}))
	useTestClient(t, server)

	res, err := newTestOpenLibrary(server.URL).Lookup(context.Background(), "9780394743127")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "Ulysses", res.Title)
	assert.Equal(t, []string{"James Joyce"}, res.Authors)
	assert.Equal(t, "1986", res.PublishDate)
	assert.Equal(t, "PR6019.O9 U4 1986", res.Classification())

	rec := res.Record("9780394743127")
	assert.Equal(t, "James Joyce", rec.Authors)
	assert.Equal(t, "PR6019.O9 U4 1986", rec.RawClassification)
}

func TestOpenLibraryNotFound(t *testing.T) {
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	useTestClient(t, server)

	res, err := newTestOpenLibrary(server.URL).Lookup(context.Background(), "0000000000")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestOpenLibraryHTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				assert.True(t, errs.IsRateLimitError(err))
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				assert.True(t, errs.IsStatusError(err))
				assert.True(t, errs.IsTemporary(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "30")
				w.WriteHeader(tt.status)
			}))
			useTestClient(t, server)

			res, err := newTestOpenLibrary(server.URL).Lookup(context.Background(), "9780394743127")
			require.Error(t, err)
			assert.Nil(t, res)
			tt.check(t, err)
		})
	}
}

func TestOpenLibraryMalformedResponse(t *testing.T) {
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	useTestClient(t, server)

	_, err := newTestOpenLibrary(server.URL).Lookup(context.Background(), "9780394743127")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestOpenLibraryUsesCache(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	testutil.SetupTestCache(t, env)
	require.NoError(t, cache.ResetGlobalCache())
	t.Cleanup(func() { _ = cache.ResetGlobalCache() })

	var calls atomic.Int32
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("bibkeys") == "ISBN:0000000000" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(ulyssesResponse))
	}))
	useTestClient(t, server)

	ol := newTestOpenLibrary(server.URL)
	ol.Cache = true

	for i := 0; i < 2; i++ {
		res, err := ol.Lookup(context.Background(), "9780394743127")
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, "Ulysses", res.Title)

		res, err = ol.Lookup(context.Background(), "0000000000")
		require.NoError(t, err)
		assert.Nil(t, res)
	}
	assert.Equal(t, int32(2), calls.Load(), "second round should be served from cache")
}

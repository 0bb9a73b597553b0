package datastore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	errs "github.com/lepinkainen/shelfmark/internal/errors"
)

// DatasetteClient implements the Store interface for remote Datasette instances
type DatasetteClient struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

// Compile-time check that DatasetteClient implements Store.
var _ Store = (*DatasetteClient)(nil)

// NewDatasetteClient creates a new DatasetteClient instance
func NewDatasetteClient(baseURL, apiToken string) *DatasetteClient {
	return &DatasetteClient{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Connect validates the base URL
func (c *DatasetteClient) Connect() error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL %q: scheme must be http or https", c.baseURL)
	}
	return nil
}

// CreateTable is a no-op; the insert API creates tables on first write.
func (c *DatasetteClient) CreateTable(string) error {
	return nil
}

// MaxInsertRows matches Datasette's default max_insert_rows setting.
const MaxInsertRows = 100

// BatchInsert sends records to the Datasette upsert API in chunks of
// MaxInsertRows. Rows with an existing primary key get only the supplied
// columns updated, so re-mirroring the same entries is safe. The table
// must already exist.
func (c *DatasetteClient) BatchInsert(database string, table string, records []map[string]any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = path.Join(u.Path, database, table, "-/upsert")

	for start := 0; start < len(records); start += MaxInsertRows {
		end := min(start+MaxInsertRows, len(records))
		if err := c.insert(u.String(), records[start:end]); err != nil {
			return fmt.Errorf("rows %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

type insertResponse struct {
	Errors []string `json:"errors"`
}

func (c *DatasetteClient) insert(endpoint string, rows []map[string]any) error {
	jsonData, err := json.Marshal(map[string]any{"rows": rows})
	if err != nil {
		return fmt.Errorf("failed to marshal JSON payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	var errResp insertResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || len(errResp.Errors) == 0 {
		return errs.NewStatusError("Datasette", resp.StatusCode)
	}
	return fmt.Errorf("%w: %s", errs.NewStatusError("Datasette", resp.StatusCode), strings.Join(errResp.Errors, "; "))
}

// Close is a no-op for the HTTP client
func (c *DatasetteClient) Close() error {
	return nil
}

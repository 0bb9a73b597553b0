package cmdutil

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lepinkainen/shelfmark/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type datasetteRecord struct {
	ID    int    `db:"id"`
	Title string `db:"title"`
}

const datasetteSchema = `
CREATE TABLE IF NOT EXISTS test_items (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL
);
`

func toTestRow(item datasetteRecord) map[string]any {
	return StructToRow(item)
}

func TestWriteToDatastore_Disabled(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.ResetConfig(t)
	testutil.SetViperValue(t, "datastore.enabled", false)
	testutil.SetViperValue(t, "datastore.dbfile", env.Path("test.db"))

	records := []datasetteRecord{{ID: 1, Title: "Ulysses"}}
	err := WriteToDatastore(records, datasetteSchema, "test_items", "test records", toTestRow)
	require.NoError(t, err)

	assert.False(t, env.FileExists("test.db"))
}

func TestWriteToDatastore_WritesRows(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.ResetConfig(t)
	testutil.SetViperValue(t, "datastore.enabled", true)
	testutil.SetViperValue(t, "datastore.dbfile", env.Path("db/test.db"))

	records := []datasetteRecord{{ID: 1, Title: "Ulysses"}, {ID: 2, Title: "Dubliners"}}
	err := WriteToDatastore(records, datasetteSchema, "test_items", "test records", toTestRow)
	require.NoError(t, err)

	// Writing the same IDs again updates rows instead of failing.
	err = WriteToDatastore(records, datasetteSchema, "test_items", "test records", toTestRow)
	require.NoError(t, err)

	db, err := sql.Open("sqlite", env.Path("db/test.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM test_items").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestWriteToDatastore_Remote(t *testing.T) {
	testutil.ResetConfig(t)

	var rows []map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shelfmark/test_items/-/upsert", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var payload struct {
			Rows []map[string]any `json:"rows"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		rows = payload.Rows
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	testutil.SetViperValue(t, "datastore.enabled", true)
	testutil.SetViperValue(t, "datastore.remote_url", ts.URL)
	testutil.SetViperValue(t, "datastore.token", "secret")

	err := WriteToDatastore([]datasetteRecord{{ID: 7, Title: "Finnegans Wake"}}, datasetteSchema, "test_items", "test records", toTestRow)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Finnegans Wake", rows[0]["title"])
}

func TestWriteToDatastore_MissingDBFile(t *testing.T) {
	testutil.ResetConfig(t)
	testutil.SetViperValue(t, "datastore.enabled", true)
	testutil.SetViperValue(t, "datastore.dbfile", "")

	err := WriteToDatastore([]datasetteRecord{{ID: 1}}, datasetteSchema, "test_items", "test records", toTestRow)
	assert.Error(t, err)
}

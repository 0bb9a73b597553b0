package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfmark/internal/config"
)

// ResetConfig resets viper, registers the default settings and schedules
// another reset when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()
	t.Cleanup(viper.Reset)
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset, so an unset key cannot be restored.
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}

// SetupStorage points the counter and ledger at files inside env.
func SetupStorage(t *testing.T, env *TestEnv) {
	t.Helper()

	SetViperValue(t, "storage.counter_file", env.Path("current-id.txt"))
	SetViperValue(t, "storage.ledger_file", env.Path("books.csv"))
	SetViperValue(t, "printer.spool_dir", env.Path("labels"))
}

// SetupTestCache points the lookup cache at a database inside env.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("cache", "test-cache.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		t.Fatalf("failed to create cache directory: %v", err)
	}
	SetViperValue(t, "cache.dbfile", dbPath)
	SetViperValue(t, "cache.ttl", "24h")
	return dbPath
}

// SetupDatastoreDB enables the SQLite catalog mirror inside env and returns
// the database path.
func SetupDatastoreDB(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("shelfmark.db")
	SetViperValue(t, "datastore.enabled", true)
	SetViperValue(t, "datastore.dbfile", dbPath)
	return dbPath
}

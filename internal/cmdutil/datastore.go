package cmdutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lepinkainen/shelfmark/internal/datastore"
	"github.com/spf13/viper"
)

// newStore picks the mirror backend from configuration: the remote
// Datasette insert API when datastore.remote_url is set, the local SQLite
// file otherwise.
func newStore() (datastore.Store, error) {
	if remote := viper.GetString("datastore.remote_url"); remote != "" {
		return datastore.NewDatasetteClient(remote, viper.GetString("datastore.token")), nil
	}

	dbPath := viper.GetString("datastore.dbfile")
	if dbPath == "" {
		return nil, fmt.Errorf("datastore.dbfile is not set")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create datastore directory: %w", err)
		}
	}
	return datastore.NewSQLiteStore(dbPath), nil
}

// WriteToDatastore mirrors items into the configured datastore table. It is
// a no-op when datastore.enabled is false.
func WriteToDatastore[T any](items []T, schema, table, description string, toRow func(T) map[string]any) error {
	if !viper.GetBool("datastore.enabled") {
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.Connect(); err != nil {
		return fmt.Errorf("failed to connect to datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close datastore", "error", err)
		}
	}()

	if err := store.CreateTable(schema); err != nil {
		return fmt.Errorf("failed to create %s table: %w", table, err)
	}

	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, toRow(item))
	}
	if err := store.BatchInsert(datastore.DatabaseName, table, rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", description, err)
	}

	slog.Debug("Wrote to datastore", "table", table, "count", len(rows), "what", description)
	return nil
}

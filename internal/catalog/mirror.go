package catalog

import (
	"github.com/lepinkainen/shelfmark/internal/cmdutil"
	"github.com/lepinkainen/shelfmark/internal/datastore"
)

// DatastoreMirror writes entries to the books table of the configured
// datastore. It does nothing unless datastore.enabled is set.
func DatastoreMirror(entries []Entry) error {
	return cmdutil.WriteToDatastore(entries, datastore.BooksSchema, datastore.BooksTable, "catalog entries", entryRow)
}

// entryRow leaves out an unknown ISBN or call number so the upsert keeps
// whatever the mirror already holds for them.
func entryRow(e Entry) map[string]any {
	row := cmdutil.StructToRow(e)
	for _, col := range []string{"isbn", "call_number"} {
		if row[col] == "" {
			delete(row, col)
		}
	}
	return row
}

// Package datastore mirrors catalog entries into SQLite or a remote
// Datasette instance so the collection can be browsed and queried.
package datastore

// Store defines the interface for a mirror database
type Store interface {
	// Connect establishes a connection to the data store
	Connect() error

	// CreateTable creates a new table with the given schema if it doesn't exist
	CreateTable(schema string) error

	// BatchInsert inserts records into the specified table. A record whose
	// primary key already exists updates only the columns it carries.
	BatchInsert(database string, table string, records []map[string]any) error

	// Close closes the connection to the data store
	Close() error
}

// DatabaseName is the database name used for remote inserts.
const DatabaseName = "shelfmark"

// BooksTable holds one row per labeled book.
const BooksTable = "books"

// BooksSchema is keyed by UID so re-mirroring the ledger is idempotent.
// classification is the raw source value, call_number the printed form.
const BooksSchema = `
CREATE TABLE IF NOT EXISTS books (
	uid INTEGER PRIMARY KEY,
	uid_token TEXT NOT NULL,
	isbn TEXT,
	title TEXT NOT NULL,
	authors TEXT,
	classification TEXT,
	call_number TEXT
);

CREATE INDEX IF NOT EXISTS idx_books_isbn ON books(isbn);
`

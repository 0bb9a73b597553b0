package catalog

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/shelfmark/internal/book"
)

// MirrorFunc receives stored entries for a secondary store.
type MirrorFunc func(entries []Entry) error

// Catalog allocates UIDs and records stored books.
type Catalog struct {
	Counter *Counter
	Ledger  *Ledger

	// Mirror is called after each successful store. Its failures are
	// logged and never undo the store. Nil disables mirroring.
	Mirror MirrorFunc
}

// New returns a catalog using the given counter and ledger files, mirrored
// through DatastoreMirror.
func New(counterFile, ledgerFile string) *Catalog {
	return &Catalog{
		Counter: NewCounter(counterFile),
		Ledger:  NewLedger(ledgerFile),
		Mirror:  DatastoreMirror,
	}
}

// Store assigns the next UID to rec and appends it to the ledger with the
// raw classification. The canonical call number travels on the returned
// entry and into the mirror.
func (c *Catalog) Store(rec *book.Record, callNumber []string) (Entry, error) {
	if err := rec.Validate(); err != nil {
		return Entry{}, err
	}
	if len(callNumber) == 0 {
		return Entry{}, fmt.Errorf("%w: empty call number for ISBN %s", book.ErrInvalidArgument, rec.ISBN)
	}

	uid, err := c.Counter.Next()
	if err != nil {
		return Entry{}, err
	}

	entry := newEntry(uid, rec.ISBN, rec.Title, rec.Authors, rec.RawClassification, strings.Join(callNumber, " "))
	if err := c.Ledger.Append(entry); err != nil {
		// The UID stays consumed; reusing it could duplicate a printed label.
		return Entry{}, fmt.Errorf("UID %s allocated but not recorded: %w", entry.UIDToken, err)
	}
	slog.Info("Stored book", "uid", entry.UIDToken, "isbn", rec.ISBN, "title", rec.Title)

	if c.Mirror != nil {
		if err := c.Mirror([]Entry{entry}); err != nil {
			slog.Warn("Failed to mirror entry", "uid", entry.UIDToken, "error", err)
		}
	}
	return entry, nil
}

// Entries returns every ledger entry.
func (c *Catalog) Entries() ([]Entry, error) {
	return c.Ledger.ReadAll()
}

// Sync mirrors the whole ledger and returns the number of entries sent.
// Ledger entries carry no ISBN or call number, so the mirror keeps the
// values Store wrote for those columns.
func (c *Catalog) Sync() (int, error) {
	if c.Mirror == nil {
		return 0, fmt.Errorf("no mirror configured")
	}
	entries, err := c.Ledger.ReadAll()
	if err != nil {
		return 0, err
	}
	if err := c.Mirror(entries); err != nil {
		return 0, fmt.Errorf("failed to mirror ledger: %w", err)
	}
	return len(entries), nil
}

package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lepinkainen/shelfmark/internal/csvutil"
	"github.com/lepinkainen/shelfmark/internal/fileutil"
)

// Ledger is the append-only CSV record of stored books, one line per entry:
//
//	uid,"title","authors","classification"
type Ledger struct {
	path string
}

// NewLedger returns a ledger backed by path.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// FormatLine renders e as one ledger line. Embedded quotes are doubled and
// line breaks become spaces so every entry stays on one line.
func FormatLine(e Entry) string {
	return fmt.Sprintf("%d,%s,%s,%s\n", e.UID, quote(e.Title), quote(e.Authors), quote(e.Classification))
}

func quote(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Append writes e to the end of the ledger in a single write.
func (l *Ledger) Append(e Entry) error {
	if err := fileutil.AppendFile(l.path, []byte(FormatLine(e)), 0o644); err != nil {
		return fmt.Errorf("failed to append to ledger: %w", err)
	}
	return nil
}

// ReadAll parses every ledger entry in file order. A missing ledger has no
// entries.
func (l *Ledger) ReadAll() ([]Entry, error) {
	if _, err := os.Stat(l.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	entries, err := csvutil.ProcessCSV(l.path, parseLedgerRecord, csvutil.ProcessorOptions{
		FieldsPerRecord: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", l.path, err)
	}
	return entries, nil
}

func parseLedgerRecord(record []string) (Entry, error) {
	uid, err := strconv.ParseUint(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid UID %q: %w", record[0], err)
	}
	return newEntry(uid, "", record[1], record[2], record[3], ""), nil
}

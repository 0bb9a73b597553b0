// Package catalog assigns UIDs to labeled books and records them in an
// append-only ledger, optionally mirrored into a queryable datastore.
package catalog

import "github.com/lepinkainen/shelfmark/internal/label"

// Entry is one stored book.
type Entry struct {
	UID      uint64 `json:"uid" yaml:"uid" db:"uid"`
	UIDToken string `json:"uid_token" yaml:"uid_token" db:"uid_token"`

	// ISBN is only known for entries stored in this process; the ledger
	// does not keep it.
	ISBN string `json:"isbn,omitempty" yaml:"isbn,omitempty" db:"isbn"`

	Title   string `json:"title" yaml:"title" db:"title"`
	Authors string `json:"authors" yaml:"authors" db:"authors"`

	// Classification is the call number as the lookup or the operator
	// supplied it. The ledger keeps it verbatim.
	Classification string `json:"classification" yaml:"classification" db:"classification"`

	// CallNumber is the printed form, canonical lines joined by spaces. Like
	// ISBN it is only known for entries stored in this process.
	CallNumber string `json:"call_number,omitempty" yaml:"call_number,omitempty" db:"call_number"`
}

func newEntry(uid uint64, isbn, title, authors, classification, callNumber string) Entry {
	return Entry{
		UID:            uid,
		UIDToken:       label.FormatUID(uid),
		ISBN:           isbn,
		Title:          title,
		Authors:        authors,
		Classification: classification,
		CallNumber:     callNumber,
	}
}

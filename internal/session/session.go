// Package session runs the interactive labeling loop: ISBN in, lookup,
// operator confirmation, UID allocation, label preview and print.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/shelfmark/internal/book"
	"github.com/lepinkainen/shelfmark/internal/callnumber"
	"github.com/lepinkainen/shelfmark/internal/catalog"
	errs "github.com/lepinkainen/shelfmark/internal/errors"
	"github.com/lepinkainen/shelfmark/internal/label"
	"github.com/lepinkainen/shelfmark/internal/printer"
	"github.com/lepinkainen/shelfmark/internal/tui"
)

// DefaultLookupTimeout bounds a single ISBN lookup.
const DefaultLookupTimeout = 10 * time.Second

// Looker resolves an ISBN. It returns an error wrapping book.ErrNotFound
// when no source knows the book.
type Looker interface {
	Lookup(ctx context.Context, isbn string) (*book.Record, error)
}

// Storer allocates a UID and records a confirmed book.
type Storer interface {
	Store(rec *book.Record, callNumber []string) (catalog.Entry, error)
}

// Renderer rasterizes label lines.
type Renderer interface {
	Render(lines []string) *image.NRGBA
}

// Session holds the collaborators of one operator session. All fields
// except Assembler, Inspector, LookupTimeout and OnTransition are required.
type Session struct {
	Prompter  tui.Prompter
	Lookup    Looker
	Catalog   Storer
	Renderer  Renderer
	Printer   printer.Printer
	Assembler label.Assembler
	Inspector callnumber.Inspector

	// Rapid skips every optional question: no manual entry, no
	// confirmation, advisories are shown but never block.
	Rapid bool

	LookupTimeout time.Duration

	// OnTransition, when set, is called on every state change.
	OnTransition func(from, to State)

	state   State
	printed int
}

// Outcome describes how one iteration ended.
type Outcome struct {
	State  State
	Record *book.Record
	Entry  *catalog.Entry
}

// State returns the current workflow state.
func (s *Session) State() State {
	return s.state
}

// Printed returns the number of labels printed so far.
func (s *Session) Printed() int {
	return s.printed
}

func (s *Session) transition(to State) {
	from := s.state
	if !CanTransition(from, to) {
		// Programming error in the workflow; keep going but make it visible.
		slog.Error("Invalid session transition", "from", from, "to", to)
	}
	s.state = to
	slog.Debug("Session transition", "from", from, "to", to)
	if s.OnTransition != nil {
		s.OnTransition(from, to)
	}
}

func (s *Session) reset() Outcome {
	if s.state != AwaitingISBN {
		s.transition(AwaitingISBN)
	}
	return Outcome{State: AwaitingISBN}
}

// Run prompts for books until the operator quits or ctx is cancelled.
// Quitting is not an error.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := s.Step(ctx)
		if errs.IsStopError(err) {
			slog.Info("Session ended", "printed", s.printed)
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("Labeling failed", "error", err)
			s.Prompter.Say("Error: %v", err)
		}
	}
}

// Step runs one iteration of the workflow and leaves the session back in
// AwaitingISBN. It returns a StopError when the operator quits.
func (s *Session) Step(ctx context.Context) (Outcome, error) {
	s.reset()

	input, err := s.Prompter.Ask("Enter ISBN", "")
	if err != nil {
		return s.reset(), err
	}
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "quit", "exit":
		return s.reset(), errs.NewStopError("operator quit")
	}
	return s.Process(ctx, input)
}

// Process runs the workflow for one scanned or typed ISBN, separators
// allowed. Empty input does nothing.
func (s *Session) Process(ctx context.Context, input string) (Outcome, error) {
	s.reset()
	if strings.TrimSpace(input) == "" {
		return s.reset(), nil
	}

	isbn := book.CleanISBN(input)
	if !book.ValidISBN(isbn) {
		s.Prompter.Beep(1)
		s.Prompter.Say("Invalid ISBN %q", input)
		return s.reset(), nil
	}

	rec, err := s.lookup(ctx, isbn)
	s.transition(LookedUp)
	if ctx.Err() != nil {
		return s.reset(), ctx.Err()
	}

	if err != nil {
		s.transition(NotFound)
		s.Prompter.Beep(1)
		if errors.Is(err, book.ErrNotFound) {
			s.Prompter.Say("Book not found")
		} else {
			slog.Warn("Lookup failed", "isbn", isbn, "error", err)
			s.Prompter.Say("Lookup failed: %v", err)
		}
		if s.Rapid {
			return s.reset(), nil
		}
		manual, err := s.Prompter.Confirm("Enter manual mode?", false)
		if err != nil || !manual {
			return s.reset(), err
		}
		rec = &book.Record{ISBN: isbn}
		if err := s.manualEntry(rec); err != nil {
			return s.reset(), err
		}
	} else {
		s.Prompter.Say("%s", rec)
		if !rec.HasClassification() {
			s.Prompter.Beep(2)
			s.Prompter.Say("Could not find LOC identifier")
			if s.Rapid {
				return s.reset(), nil
			}
			manual, err := s.Prompter.Confirm("Enter manual mode?", false)
			if err != nil || !manual {
				return s.reset(), err
			}
			if err := s.manualEntry(rec); err != nil {
				return s.reset(), err
			}
		}
	}
	s.transition(Found)

	if err := rec.Validate(); err != nil {
		s.Prompter.Say("Incomplete record: %v", err)
		return s.reset(), nil
	}

	proceed, err := s.review(rec)
	if err != nil || !proceed {
		return s.reset(), err
	}
	s.transition(Confirmed)

	callNumber := callnumber.Normalize(callnumber.EnsureYear(rec.RawClassification, rec.RawYear))
	if len(callNumber) == 0 {
		s.Prompter.Beep(2)
		s.Prompter.Say("No usable call number for %s; skipping", rec.ISBN)
		return s.reset(), nil
	}

	entry, err := s.Catalog.Store(rec, callNumber)
	if err != nil {
		return s.reset(), fmt.Errorf("failed to store %s: %w", rec.ISBN, err)
	}
	s.transition(Stored)

	outcome := Outcome{State: Stored, Record: rec, Entry: &entry}
	if s.print(ctx, entry, callNumber) {
		s.transition(Printed)
		s.printed++
		outcome.State = Printed
	}
	s.reset()
	return outcome, nil
}

func (s *Session) lookup(ctx context.Context, isbn string) (*book.Record, error) {
	timeout := s.LookupTimeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rec, err := s.Lookup.Lookup(lookupCtx, isbn)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("ISBN %s: %w", isbn, book.ErrNotFound)
	}
	rec.ISBN = isbn
	return rec, nil
}

// manualEntry asks for the fields rec is missing.
func (s *Session) manualEntry(rec *book.Record) error {
	fields := []struct {
		prompt string
		value  *string
	}{
		{"Enter book title", &rec.Title},
		{"Enter book LOC ident", &rec.RawClassification},
		{"Enter book authors", &rec.Authors},
		{"Enter publication year", &rec.RawYear},
	}

	for _, f := range fields {
		if strings.TrimSpace(*f.value) != "" {
			continue
		}
		answer, err := s.Prompter.Ask(f.prompt, "")
		if err != nil {
			return err
		}
		*f.value = strings.TrimSpace(answer)
	}
	s.Prompter.Say("%s", rec)
	return nil
}

// review shows advisories and asks the operator to confirm the record.
func (s *Session) review(rec *book.Record) (bool, error) {
	advisories := s.Inspector.Inspect(rec.RawClassification, rec.RawYear)
	for _, a := range advisories {
		s.Prompter.Say("Warning: %s", a.Message)
		slog.Debug("Advisory", "isbn", rec.ISBN, "kind", a.Kind, "message", a.Message)
	}
	if s.Rapid {
		return true, nil
	}

	if callnumber.Has(advisories, callnumber.AdvisoryShort) {
		proceed, err := s.Prompter.Confirm("Proceed anyway?", false)
		if err != nil || !proceed {
			return false, err
		}
	}
	return s.Prompter.Confirm("Is this correct?", true)
}

// print previews and prints the label. Failures leave the stored entry in
// place and are reported to the operator.
func (s *Session) print(ctx context.Context, entry catalog.Entry, callNumber []string) bool {
	doc := s.Assembler.Document(entry.UID, callNumber)
	lines := doc.Lines()

	s.Prompter.Say("Printing label:")
	s.Prompter.Preview(lines)

	job := printer.Job{UID: entry.UID, Image: s.Renderer.Render(lines)}
	if err := s.Printer.Print(ctx, job); err != nil {
		s.Prompter.Beep(1)
		s.Prompter.Say("Printing failed: %v (book stored as %s)", err, entry.UIDToken)
		slog.Error("Failed to print label", "uid", entry.UIDToken, "error", err)
		return false
	}
	slog.Info("Printed label", "uid", entry.UIDToken)
	return true
}

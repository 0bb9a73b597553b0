package cmd

import (
	"io"
	"os"

	"github.com/lepinkainen/shelfmark/internal/callnumber"
	"github.com/lepinkainen/shelfmark/internal/catalog"
	"github.com/lepinkainen/shelfmark/internal/config"
	"github.com/lepinkainen/shelfmark/internal/label"
	"github.com/lepinkainen/shelfmark/internal/lookup"
	"github.com/lepinkainen/shelfmark/internal/printer"
	"github.com/lepinkainen/shelfmark/internal/session"
	"github.com/lepinkainen/shelfmark/internal/tui"
)

// Collaborator constructors, replaced in tests.
var (
	loadConfig            = config.Load
	newPrompter           = func() tui.Prompter { return tui.New(os.Stdin, os.Stdout) }
	newLooker             = buildLookup
	stdout      io.Writer = os.Stdout
)

func buildLookup(cfg *config.Config) session.Looker {
	sources := []lookup.Source{lookup.NewOpenLibrary()}
	if cfg.Lookup.GoogleBooks {
		sources = append(sources, lookup.NewGoogleBooks(cfg.Lookup.GoogleBooksAPIKey))
	}
	return lookup.NewChain(sources...)
}

func newCatalog(cfg *config.Config) *catalog.Catalog {
	return catalog.New(cfg.Storage.CounterFile, cfg.Storage.LedgerFile)
}

func buildSession(cfg *config.Config, prompter tui.Prompter, p printer.Printer, rapid bool) *session.Session {
	return &session.Session{
		Prompter:      prompter,
		Lookup:        newLooker(cfg),
		Catalog:       newCatalog(cfg),
		Renderer:      cfg.Renderer(),
		Printer:       p,
		Assembler:     label.Assembler{Header: cfg.Label.Header},
		Inspector:     callnumber.Inspector{MinLength: cfg.CallNumber.MinLength},
		Rapid:         rapid,
		LookupTimeout: cfg.Lookup.Timeout,
	}
}

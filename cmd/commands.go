package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfmark/internal/callnumber"
	"github.com/lepinkainen/shelfmark/internal/catalog"
	errs "github.com/lepinkainen/shelfmark/internal/errors"
	"github.com/lepinkainen/shelfmark/internal/fileutil"
	"github.com/lepinkainen/shelfmark/internal/label"
	"github.com/lepinkainen/shelfmark/internal/printer"
	"github.com/lepinkainen/shelfmark/internal/session"
)

// SessionCmd represents the interactive labeling session
type SessionCmd struct {
	Rapid   bool   `short:"r" help:"Never ask questions; skip books that need attention"`
	Printer string `short:"p" help:"Bluetooth MAC address of the label printer (overrides printer.id)"`
	DryRun  bool   `help:"Write labels as PNG files to printer.spool_dir instead of printing"`
}

// LabelCmd represents the one-shot label command
type LabelCmd struct {
	ISBN    string `arg:"" help:"ISBN-10 or ISBN-13, separators allowed"`
	Printer string `short:"p" help:"Bluetooth MAC address of the label printer (overrides printer.id)"`
	DryRun  bool   `help:"Write the label as a PNG file to printer.spool_dir instead of printing"`
}

// NormalizeCmd represents the call number normalization command
type NormalizeCmd struct {
	CallNumber string `arg:"" help:"Raw call number, e.g. 'HD 30.22 .T8 E2'"`
	Year       string `help:"Publication date appended when the call number has no year"`
	Render     string `type:"path" help:"Also render the full label to this PNG file"`
	UID        uint64 `help:"UID shown on the rendered label" default:"0"`
}

// ExportCmd represents the ledger export command
type ExportCmd struct {
	Format string `short:"f" help:"Output format: yaml or json" default:"yaml" enum:"yaml,yml,json"`
	Output string `short:"o" type:"path" help:"Write to this file instead of stdout"`
	Force  bool   `help:"Overwrite the output file if it exists"`
}

// SyncCmd represents the datastore sync command
type SyncCmd struct{}

func (s *SessionCmd) Run() error {
	if s.Printer != "" {
		viper.Set("printer.id", s.Printer)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	prompter := newPrompter()
	prompter.Say("Welcome to the ISBN label printer")

	if cfg.Printer.ID == "" && !s.DryRun {
		mac, err := prompter.Ask("Enter label printer MAC (empty spools PNG files)", "")
		if err != nil {
			return ignoreStop(err)
		}
		if strings.TrimSpace(mac) != "" {
			if cfg.Printer.ID, err = printer.FormatMAC(mac); err != nil {
				return err
			}
		}
	}

	p, err := cfg.NewPrinter(s.DryRun)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := buildSession(cfg, prompter, p, s.Rapid || cfg.Session.Rapid)
	slog.Debug("Session started", "rapid", sess.Rapid, "printer", cfg.Printer.ID, "dry_run", s.DryRun)
	if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	prompter.Say("Printed %d labels", sess.Printed())
	return nil
}

func (l *LabelCmd) Run() error {
	if l.Printer != "" {
		viper.Set("printer.id", l.Printer)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := cfg.NewPrinter(l.DryRun)
	if err != nil {
		return err
	}

	sess := buildSession(cfg, newPrompter(), p, true)
	outcome, err := sess.Process(context.Background(), l.ISBN)
	if err != nil {
		return err
	}

	switch outcome.State {
	case session.Printed:
		return nil
	case session.Stored:
		return fmt.Errorf("book stored as %s but the label was not printed", outcome.Entry.UIDToken)
	default:
		return fmt.Errorf("no label produced for %q", l.ISBN)
	}
}

func (n *NormalizeCmd) Run() error {
	raw := callnumber.EnsureYear(n.CallNumber, n.Year)
	lines := callnumber.Normalize(raw)
	if len(lines) == 0 {
		return fmt.Errorf("call number is empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	inspector := callnumber.Inspector{MinLength: cfg.CallNumber.MinLength}
	for _, a := range inspector.Inspect(n.CallNumber, n.Year) {
		slog.Warn("Advisory", "kind", a.Kind, "message", a.Message)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(stdout, line); err != nil {
			return err
		}
	}

	if n.Render == "" {
		return nil
	}
	doc := label.Assembler{Header: cfg.Label.Header}.Document(n.UID, lines)
	img := cfg.Renderer().Render(doc.Lines())
	if err := imaging.Save(img, n.Render); err != nil {
		return fmt.Errorf("failed to save label image: %w", err)
	}
	slog.Info("Rendered label", "file", n.Render)
	return nil
}

func (e *ExportCmd) Run() error {
	format, err := catalog.ParseFormat(e.Format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entries, err := newCatalog(cfg).Entries()
	if err != nil {
		return err
	}

	if e.Output == "" {
		return catalog.Export(stdout, entries, format)
	}

	var buf bytes.Buffer
	if err := catalog.Export(&buf, entries, format); err != nil {
		return err
	}
	written, err := fileutil.WriteFileWithOverwrite(e.Output, buf.Bytes(), 0o644, e.Force)
	if err != nil {
		return err
	}
	if !written {
		return fmt.Errorf("%s already exists; use --force to overwrite", e.Output)
	}
	slog.Info("Exported ledger", "entries", len(entries), "file", e.Output)
	return nil
}

func (s *SyncCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Datastore.Enabled {
		return fmt.Errorf("datastore is disabled; set datastore.enabled in config.yaml or pass --datastore")
	}

	n, err := newCatalog(cfg).Sync()
	if err != nil {
		return err
	}
	slog.Info("Synced ledger", "entries", n)
	return nil
}

// ignoreStop treats quitting at a prompt as a normal exit.
func ignoreStop(err error) error {
	if errs.IsStopError(err) {
		return nil
	}
	return err
}

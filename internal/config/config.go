// Package config turns the viper configuration into typed settings for the
// labeling tools.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfmark/internal/callnumber"
	"github.com/lepinkainen/shelfmark/internal/label"
	"github.com/lepinkainen/shelfmark/internal/printer"
)

// DefaultPrintCommand sends a PNG to a Brother QL printer over Bluetooth.
const DefaultPrintCommand = "brother_ql -m QL-820NWB -p bt://{printer} print -l 62 {file}"

// Config is the resolved configuration for one run.
type Config struct {
	Printer    PrinterConfig
	Label      LabelConfig
	Storage    StorageConfig
	Datastore  DatastoreConfig
	Cache      CacheConfig
	Lookup     LookupConfig
	CallNumber CallNumberConfig
	Session    SessionConfig
}

// PrinterConfig selects where labels go. An empty ID spools labels to
// SpoolDir instead of printing.
type PrinterConfig struct {
	ID       string
	Command  string
	SpoolDir string
}

// LabelConfig controls the label layout.
type LabelConfig struct {
	Header      string
	Width       int
	Height      int
	LineSpacing int
	Margin      int
}

// StorageConfig names the counter and ledger files.
type StorageConfig struct {
	CounterFile string
	LedgerFile  string
}

// DatastoreConfig configures the optional catalog mirror.
type DatastoreConfig struct {
	Enabled   bool
	DBFile    string
	RemoteURL string
	Token     string
}

// CacheConfig configures the lookup response cache.
type CacheConfig struct {
	DBFile string
	TTL    time.Duration
}

// LookupConfig configures the metadata sources.
type LookupConfig struct {
	Timeout           time.Duration
	GoogleBooks       bool
	GoogleBooksAPIKey string
}

// CallNumberConfig tunes the classification advisories.
type CallNumberConfig struct {
	MinLength int
}

// SessionConfig holds interactive session defaults.
type SessionConfig struct {
	Rapid bool
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("printer.id", "")
	viper.SetDefault("printer.command", DefaultPrintCommand)
	viper.SetDefault("printer.spool_dir", "./labels")

	viper.SetDefault("label.header", label.DefaultHeader)
	viper.SetDefault("label.width", label.DefaultWidth)
	viper.SetDefault("label.height", label.DefaultHeight)
	viper.SetDefault("label.line_spacing", label.DefaultLineSpacing)
	viper.SetDefault("label.margin", label.DefaultMargin)

	viper.SetDefault("storage.counter_file", "./current-id.txt")
	viper.SetDefault("storage.ledger_file", "./books.csv")

	viper.SetDefault("datastore.enabled", false)
	viper.SetDefault("datastore.dbfile", "./shelfmark.db")
	viper.SetDefault("datastore.remote_url", "")

	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h")

	viper.SetDefault("lookup.timeout", "10s")
	viper.SetDefault("lookup.googlebooks", true)

	viper.SetDefault("callnumber.min_length", callnumber.DefaultMinClassificationLength)
	viper.SetDefault("session.rapid", false)
}

// BindEnv maps the secret keys to their environment variables.
func BindEnv() error {
	if err := viper.BindEnv("lookup.googlebooks_api_key", "GOOGLE_BOOKS_API_KEY"); err != nil {
		return fmt.Errorf("failed to bind GOOGLE_BOOKS_API_KEY: %w", err)
	}
	if err := viper.BindEnv("datastore.token", "DATASETTE_TOKEN"); err != nil {
		return fmt.Errorf("failed to bind DATASETTE_TOKEN: %w", err)
	}
	return nil
}

// Load reads the current viper settings and validates them.
func Load() (*Config, error) {
	cfg := &Config{
		Printer: PrinterConfig{
			ID:       strings.TrimSpace(viper.GetString("printer.id")),
			Command:  viper.GetString("printer.command"),
			SpoolDir: viper.GetString("printer.spool_dir"),
		},
		Label: LabelConfig{
			Header:      viper.GetString("label.header"),
			Width:       viper.GetInt("label.width"),
			Height:      viper.GetInt("label.height"),
			LineSpacing: viper.GetInt("label.line_spacing"),
			Margin:      viper.GetInt("label.margin"),
		},
		Storage: StorageConfig{
			CounterFile: viper.GetString("storage.counter_file"),
			LedgerFile:  viper.GetString("storage.ledger_file"),
		},
		Datastore: DatastoreConfig{
			Enabled:   viper.GetBool("datastore.enabled"),
			DBFile:    viper.GetString("datastore.dbfile"),
			RemoteURL: viper.GetString("datastore.remote_url"),
			Token:     viper.GetString("datastore.token"),
		},
		Cache: CacheConfig{
			DBFile: viper.GetString("cache.dbfile"),
		},
		Lookup: LookupConfig{
			GoogleBooks:       viper.GetBool("lookup.googlebooks"),
			GoogleBooksAPIKey: viper.GetString("lookup.googlebooks_api_key"),
		},
		CallNumber: CallNumberConfig{
			MinLength: viper.GetInt("callnumber.min_length"),
		},
		Session: SessionConfig{
			Rapid: viper.GetBool("session.rapid"),
		},
	}

	var err error
	if cfg.Cache.TTL, err = parseDuration("cache.ttl"); err != nil {
		return nil, err
	}
	if cfg.Lookup.Timeout, err = parseDuration("lookup.timeout"); err != nil {
		return nil, err
	}

	if cfg.Printer.ID != "" {
		mac, err := printer.FormatMAC(cfg.Printer.ID)
		if err != nil {
			return nil, fmt.Errorf("printer.id: %w", err)
		}
		cfg.Printer.ID = mac
	}

	if cfg.Label.Width <= 0 || cfg.Label.Height <= 0 {
		return nil, fmt.Errorf("label size must be positive, got %dx%d", cfg.Label.Width, cfg.Label.Height)
	}
	if cfg.Label.LineSpacing < 0 || cfg.Label.Margin < 0 {
		return nil, fmt.Errorf("label.line_spacing and label.margin must not be negative")
	}
	if cfg.Storage.CounterFile == "" || cfg.Storage.LedgerFile == "" {
		return nil, fmt.Errorf("storage.counter_file and storage.ledger_file are required")
	}

	return cfg, nil
}

// Renderer returns a label renderer for the configured tape size.
func (c *Config) Renderer() label.Renderer {
	return label.Renderer{
		Width:       c.Label.Width,
		Height:      c.Label.Height,
		LineSpacing: c.Label.LineSpacing,
		Margin:      c.Label.Margin,
	}
}

// NewPrinter returns the configured printer. A dry run or a missing printer
// id spools labels to disk.
func (c *Config) NewPrinter(dryRun bool) (printer.Printer, error) {
	if dryRun || c.Printer.ID == "" {
		return &printer.SpoolPrinter{Dir: c.Printer.SpoolDir}, nil
	}
	return printer.NewCommandPrinter(c.Printer.ID, os.ExpandEnv(c.Printer.Command))
}

func parseDuration(key string) (time.Duration, error) {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

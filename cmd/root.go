package cmd

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfmark/internal/cache"
	"github.com/lepinkainen/shelfmark/internal/config"
)

// CLI represents the complete command structure for the shelfmark application
type CLI struct {
	// Global flags
	Verbose bool `short:"v" help:"Enable debug logging"`

	// Datastore flags; empty values keep the config file setting
	Datastore   bool   `help:"Mirror stored books into the datastore"`
	DatastoreDB string `help:"Path to the SQLite mirror database file"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)"`

	Session   SessionCmd   `cmd:"" default:"1" help:"Scan ISBNs and print spine labels (default)"`
	Label     LabelCmd     `cmd:"" help:"Look up, store and print a single ISBN without questions"`
	Normalize NormalizeCmd `cmd:"" help:"Normalize a Library of Congress call number"`
	Export    ExportCmd    `cmd:"" help:"Export the book ledger as YAML or JSON"`
	Sync      SyncCmd      `cmd:"" help:"Mirror the whole ledger into the datastore"`
	Cache     CacheCmd     `cmd:"" help:"Manage the lookup cache"`
}

// CacheCmd groups the cache maintenance subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Drop cached responses for one lookup source"`
	Prune      cache.PruneCacheCmd      `cmd:"" help:"Delete cache entries past their TTL"`
	Stats      cache.StatsCacheCmd      `cmd:"" help:"Show cached entry counts per source"`
}

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("shelfmark"),
		kong.Description("Look up books by ISBN and print Library of Congress spine labels."),
		kong.UsageOnError(),
	}
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(slog.LevelInfo)
	initConfig()

	// Create CLI instance
	var cli CLI

	// Parse command line with Kong
	ctx := kong.Parse(&cli, kongOptions()...)

	if cli.Verbose {
		initLogging(slog.LevelDebug)
	}

	// Update global config based on parsed flags
	updateGlobalConfig(&cli)

	// Execute the selected command
	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()
	if err := config.BindEnv(); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}
}

func updateGlobalConfig(cli *CLI) {
	if cli.Datastore {
		viper.Set("datastore.enabled", true)
	}
	if cli.DatastoreDB != "" {
		viper.Set("datastore.dbfile", cli.DatastoreDB)
	}

	if cli.CacheDBFile != "" {
		viper.Set("cache.dbfile", cli.CacheDBFile)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
}

func initLogging(level slog.Level) {
	// Logs go to stderr so they never mix with exported data on stdout
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}

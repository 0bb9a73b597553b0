package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelfmark/internal/printer"
)

func setup(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
}

func TestLoadDefaults(t *testing.T) {
	setup(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "AMH", cfg.Label.Header)
	assert.Equal(t, 696, cfg.Label.Width)
	assert.Equal(t, 271, cfg.Label.Height)
	assert.Equal(t, "./current-id.txt", cfg.Storage.CounterFile)
	assert.Equal(t, "./books.csv", cfg.Storage.LedgerFile)
	assert.Equal(t, 720*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 10*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, 6, cfg.CallNumber.MinLength)
	assert.True(t, cfg.Lookup.GoogleBooks)
	assert.False(t, cfg.Session.Rapid)
	assert.Empty(t, cfg.Printer.ID)
}

func TestLoadNormalizesPrinterID(t *testing.T) {
	setup(t)
	viper.Set("printer.id", "ec-79-49-aa-bb-cc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "EC:79:49:AA:BB:CC", cfg.Printer.ID)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "bad printer id", key: "printer.id", value: "EC:79:49"},
		{name: "bad cache ttl", key: "cache.ttl", value: "forever"},
		{name: "zero timeout", key: "lookup.timeout", value: "0s"},
		{name: "zero width", key: "label.width", value: 0},
		{name: "negative margin", key: "label.margin", value: -1},
		{name: "no ledger", key: "storage.ledger_file", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)
			viper.Set(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestBindEnv(t *testing.T) {
	setup(t)
	t.Setenv("GOOGLE_BOOKS_API_KEY", "gb-key")
	t.Setenv("DATASETTE_TOKEN", "ds-token")
	require.NoError(t, BindEnv())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gb-key", cfg.Lookup.GoogleBooksAPIKey)
	assert.Equal(t, "ds-token", cfg.Datastore.Token)
}

func TestNewPrinter(t *testing.T) {
	setup(t)

	cfg, err := Load()
	require.NoError(t, err)

	p, err := cfg.NewPrinter(false)
	require.NoError(t, err)
	assert.IsType(t, &printer.SpoolPrinter{}, p)

	cfg.Printer.ID = "EC:79:49:AA:BB:CC"
	p, err = cfg.NewPrinter(false)
	require.NoError(t, err)
	cp, ok := p.(*printer.CommandPrinter)
	require.True(t, ok)
	assert.Equal(t, "bt://EC:79:49:AA:BB:CC", cp.Args("x.png")[4])

	p, err = cfg.NewPrinter(true)
	require.NoError(t, err)
	assert.IsType(t, &printer.SpoolPrinter{}, p)
}

func TestRenderer(t *testing.T) {
	setup(t)
	viper.Set("label.width", 400)

	cfg, err := Load()
	require.NoError(t, err)
	r := cfg.Renderer()
	assert.Equal(t, 400, r.Width)
	assert.Equal(t, 400, r.Render([]string{"AMH"}).Bounds().Dx())
}

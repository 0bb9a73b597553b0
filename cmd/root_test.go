package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/disintegration/imaging"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/lepinkainen/shelfmark/internal/book"
	"github.com/lepinkainen/shelfmark/internal/config"
	"github.com/lepinkainen/shelfmark/internal/printer"
	"github.com/lepinkainen/shelfmark/internal/session"
	"github.com/lepinkainen/shelfmark/internal/testutil"
	"github.com/lepinkainen/shelfmark/internal/tui"
)

type fakeLooker map[string]book.Record

func (f fakeLooker) Lookup(_ context.Context, isbn string) (*book.Record, error) {
	rec, ok := f[isbn]
	if !ok {
		return nil, fmt.Errorf("ISBN %s: %w", isbn, book.ErrNotFound)
	}
	return &rec, nil
}

var ulysses = book.Record{
	ISBN:              "9780394743127",
	Title:             "Ulysses",
	Authors:           "James Joyce",
	RawClassification: "PR6019.O9 U4",
	RawYear:           "1986",
}

// resetCmdState sandboxes config and collaborators and returns the output
// buffer and the test environment.
func resetCmdState(t *testing.T, input string) (*bytes.Buffer, *testutil.TestEnv) {
	t.Helper()

	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	testutil.SetupStorage(t, env)
	testutil.SetupTestCache(t, env)

	origPrompter, origLooker, origStdout := newPrompter, newLooker, stdout
	t.Cleanup(func() {
		newPrompter, newLooker, stdout = origPrompter, origLooker, origStdout
	})

	var out bytes.Buffer
	stdout = &out
	newPrompter = func() tui.Prompter { return tui.NewLinePrompter(strings.NewReader(input), &out) }
	newLooker = func(*config.Config) session.Looker { return fakeLooker{ulysses.ISBN: ulysses} }
	return &out, env
}

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	originalArgs := os.Args
	os.Args = append([]string{"shelfmark"}, args...)
	t.Cleanup(func() { os.Args = originalArgs })

	cli := &CLI{}
	opts := append(kongOptions(), kong.Exit(func(code int) {
		t.Fatalf("unexpected Kong exit %d", code)
	}))
	ctx := kong.Parse(cli, opts...)

	return cli, ctx
}

func TestUpdateGlobalConfig(t *testing.T) {
	resetCmdState(t, "")

	cli := &CLI{
		Datastore:   true,
		DatastoreDB: "/tmp/shelfmark.db",
		CacheDBFile: "/tmp/cache.db",
		CacheTTL:    "12h",
	}

	updateGlobalConfig(cli)

	assert.True(t, viper.GetBool("datastore.enabled"))
	assert.Equal(t, "/tmp/shelfmark.db", viper.GetString("datastore.dbfile"))
	assert.Equal(t, "/tmp/cache.db", viper.GetString("cache.dbfile"))
	assert.Equal(t, "12h", viper.GetString("cache.ttl"))
}

func TestUpdateGlobalConfigKeepsConfigWhenFlagsUnset(t *testing.T) {
	resetCmdState(t, "")
	viper.Set("datastore.enabled", true)
	viper.Set("cache.ttl", "48h")

	updateGlobalConfig(&CLI{})

	assert.True(t, viper.GetBool("datastore.enabled"))
	assert.Equal(t, "48h", viper.GetString("cache.ttl"))
}

func TestSessionIsDefaultCommand(t *testing.T) {
	resetCmdState(t, "")

	_, ctx := parseCLI(t)
	assert.Equal(t, "session", ctx.Command())

	cli, ctx := parseCLI(t, "session", "--rapid", "--dry-run", "-p", "ec:79:49:aa:bb:cc")
	assert.Equal(t, "session", ctx.Command())
	assert.True(t, cli.Session.Rapid)
	assert.True(t, cli.Session.DryRun)
	assert.Equal(t, "ec:79:49:aa:bb:cc", cli.Session.Printer)
}

func TestCommandParsing(t *testing.T) {
	resetCmdState(t, "")

	cli, ctx := parseCLI(t, "--verbose", "label", "978-0-394-74312-7", "--dry-run")
	assert.Equal(t, "label <isbn>", ctx.Command())
	assert.True(t, cli.Verbose)
	assert.Equal(t, "978-0-394-74312-7", cli.Label.ISBN)

	cli, _ = parseCLI(t, "export", "-f", "json", "-o", "books.json")
	assert.Equal(t, "json", cli.Export.Format)
	assert.Contains(t, cli.Export.Output, "books.json")

	cli, ctx = parseCLI(t, "cache", "invalidate", "openlibrary")
	assert.Equal(t, "cache invalidate <source>", ctx.Command())
	assert.Equal(t, "openlibrary", cli.Cache.Invalidate.Source)

	_, ctx = parseCLI(t, "cache", "prune")
	assert.Equal(t, "cache prune", ctx.Command())

	cli, _ = parseCLI(t, "export", "--force")
	assert.Equal(t, "yaml", cli.Export.Format)
	assert.True(t, cli.Export.Force)
}

func TestNormalizeCommand(t *testing.T) {
	out, env := resetCmdState(t, "")

	cli, ctx := parseCLI(t, "normalize", "HD 30.22 .T8 E2", "--year", "c1983")
	updateGlobalConfig(cli)
	require.NoError(t, ctx.Run())
	assert.Equal(t, "HD30.22\n.T8\n.E2\n1983\n", out.String())

	pngPath := env.Path("label.png")
	cli, ctx = parseCLI(t, "normalize", "QA76.73.P98 v.2", "--render", pngPath, "--uid", "42")
	updateGlobalConfig(cli)
	require.NoError(t, ctx.Run())

	img, err := imaging.Open(pngPath)
	require.NoError(t, err)
	assert.Equal(t, 696, img.Bounds().Dx())
	assert.Equal(t, 271, img.Bounds().Dy())
}

func TestNormalizeCommandEmpty(t *testing.T) {
	resetCmdState(t, "")
	err := (&NormalizeCmd{CallNumber: "   "}).Run()
	assert.Error(t, err)
}

func TestLabelCommand(t *testing.T) {
	out, env := resetCmdState(t, "")

	require.NoError(t, (&LabelCmd{ISBN: "978-0-394-74312-7", DryRun: true}).Run())

	assert.True(t, env.FileExists("labels/0001.png"))
	assert.Equal(t, "1,\"Ulysses\",\"James Joyce\",\"PR6019.O9 U4\"\n", env.ReadFileString("books.csv"))
	assert.Contains(t, out.String(), "Printing label:")
}

func TestLabelCommandNotFound(t *testing.T) {
	_, env := resetCmdState(t, "")

	err := (&LabelCmd{ISBN: "0140186476", DryRun: true}).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no label produced")
	assert.False(t, env.FileExists("books.csv"))
}

func TestLabelCommandRejectsBadPrinter(t *testing.T) {
	resetCmdState(t, "")

	err := (&LabelCmd{ISBN: ulysses.ISBN, Printer: "not-a-mac"}).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, printer.ErrInvalidMAC)
}

func TestSessionCommand(t *testing.T) {
	out, env := resetCmdState(t, "978-0-394-74312-7\n12345\nquit\n")

	require.NoError(t, (&SessionCmd{Rapid: true, DryRun: true}).Run())

	assert.Equal(t, []string{"0001.png"}, env.ListFiles("labels"))
	assert.Contains(t, out.String(), "Welcome to the ISBN label printer")
	assert.Contains(t, out.String(), "Invalid ISBN")
	assert.Contains(t, out.String(), "Printed 1 labels")
}

func TestSessionCommandAsksForPrinter(t *testing.T) {
	t.Run("empty answer spools", func(t *testing.T) {
		out, env := resetCmdState(t, "\n978-0-394-74312-7\n")
		require.NoError(t, (&SessionCmd{Rapid: true}).Run())
		assert.Contains(t, out.String(), "Enter label printer MAC")
		assert.True(t, env.FileExists("labels/0001.png"))
	})

	t.Run("invalid MAC", func(t *testing.T) {
		resetCmdState(t, "zz:zz\n")
		err := (&SessionCmd{Rapid: true}).Run()
		assert.ErrorIs(t, err, printer.ErrInvalidMAC)
	})

	t.Run("end of input quits", func(t *testing.T) {
		resetCmdState(t, "")
		assert.NoError(t, (&SessionCmd{}).Run())
	})
}

func TestExportCommand(t *testing.T) {
	out, env := resetCmdState(t, "")
	env.WriteFileString("books.csv", "1,\"Ulysses\",\"James Joyce\",\"PR6019 .O9 .U4 1986\"\n")

	require.NoError(t, (&ExportCmd{Format: "json"}).Run())
	assert.JSONEq(t, `[{"uid":1,"uid_token":"0001","title":"Ulysses","authors":"James Joyce","classification":"PR6019 .O9 .U4 1986"}]`, out.String())

	require.NoError(t, (&ExportCmd{Format: "yaml", Output: env.Path("export/books.yaml")}).Run())
	assert.Contains(t, env.ReadFileString("export/books.yaml"), "title: Ulysses")

	err := (&ExportCmd{Format: "json", Output: env.Path("export/books.yaml")}).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
	assert.Contains(t, env.ReadFileString("export/books.yaml"), "title: Ulysses")

	require.NoError(t, (&ExportCmd{Format: "json", Output: env.Path("export/books.yaml"), Force: true}).Run())
	assert.Contains(t, env.ReadFileString("export/books.yaml"), `"title": "Ulysses"`)
}

func TestExportCommandBadFormat(t *testing.T) {
	resetCmdState(t, "")
	assert.Error(t, (&ExportCmd{Format: "xml"}).Run())
}

func TestSyncCommand(t *testing.T) {
	_, env := resetCmdState(t, "")
	env.WriteFileString("books.csv", "1,\"Ulysses\",\"James Joyce\",\"PR6019 .O9 .U4 1986\"\n2,\"Dubliners\",\"James Joyce\",\"PR6019 .O9 D8\"\n")

	err := (&SyncCmd{}).Run()
	require.Error(t, err, "sync needs an enabled datastore")

	dbPath := testutil.SetupDatastoreDB(t, env)
	require.NoError(t, (&SyncCmd{}).Run())

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM books").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestInitConfigWritesDefaultConfig(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	env.Chdir("")

	initConfig()

	assert.True(t, env.FileExists("config.yaml"))
	assert.Equal(t, config.DefaultPrintCommand, viper.GetString("printer.command"))
}

func TestInitLogging(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo} {
		require.NotPanics(t, func() {
			initLogging(level)
		})
		assert.True(t, slog.Default().Enabled(context.Background(), level))
	}
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

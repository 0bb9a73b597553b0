package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestTestEnv_Path(t *testing.T) {
	env := NewTestEnv(t)

	path := env.Path("subdir", "file.txt")
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, filepath.Join(env.RootDir(), "subdir", "file.txt"), path)
}

func TestTestEnv_WriteReadFileString(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("nested/test.txt", "test string content")

	assert.True(t, env.FileExists("nested/test.txt"))
	assert.Equal(t, "test string content", env.ReadFileString("nested/test.txt"))
	assert.Equal(t, []string{"test.txt"}, env.ListFiles("nested"))
	assert.False(t, env.FileExists("missing.txt"))
}

func TestTestEnv_Chdir(t *testing.T) {
	env := NewTestEnv(t)
	env.WriteFileString("work/config.yaml", "label:\n  header: AMH\n")

	env.Chdir("work")
	assert.FileExists(t, "config.yaml")
}

func TestTestEnv_String(t *testing.T) {
	env := NewTestEnv(t)

	str := env.String()
	assert.Contains(t, str, "TestEnv")
	assert.Contains(t, str, env.RootDir())
}

func TestGoldenHelper_AssertGolden(t *testing.T) {
	env := NewTestEnv(t)
	env.WriteFileString("golden/ledger.golden", "1,\"Ulysses\",\"James Joyce\",\"PR6019 .O9 U4 1986\"\n")

	golden := NewGoldenHelper(t, env.Path("golden"))
	golden.AssertGolden("ledger.golden", []byte("1,\"Ulysses\",\"James Joyce\",\"PR6019 .O9 U4 1986\"\n"))
	assert.Equal(t, env.Path("golden", "ledger.golden"), golden.GoldenPath("ledger.golden"))
}

func TestGoldenHelper_AssertGoldenJSON(t *testing.T) {
	env := NewTestEnv(t)
	env.WriteFileString("golden/record.json", `{"uid": 1, "title": "Ulysses"}`)

	golden := NewGoldenHelper(t, env.Path("golden"))
	golden.AssertGoldenJSON("record.json", []byte(`{"title":"Ulysses","uid":1}`))
}

func TestResetConfig(t *testing.T) {
	t.Run("inner", func(t *testing.T) {
		ResetConfig(t)
		assert.Equal(t, "AMH", viper.GetString("label.header"))
		viper.Set("label.header", "REF")
	})

	assert.Empty(t, viper.GetString("label.header"))
}

func TestSetViperValue(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("printer.id", "before")
	t.Run("inner", func(t *testing.T) {
		SetViperValue(t, "printer.id", "after")
		assert.Equal(t, "after", viper.GetString("printer.id"))
	})
	assert.Equal(t, "before", viper.GetString("printer.id"))
}

func TestSetupHelpers(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	env := NewTestEnv(t)

	dbPath := SetupTestCache(t, env)
	assert.DirExists(t, filepath.Dir(dbPath))
	assert.Equal(t, dbPath, viper.GetString("cache.dbfile"))
	assert.Equal(t, "24h", viper.GetString("cache.ttl"))

	SetupStorage(t, env)
	assert.Equal(t, env.Path("current-id.txt"), viper.GetString("storage.counter_file"))
	assert.Equal(t, env.Path("books.csv"), viper.GetString("storage.ledger_file"))

	mirror := SetupDatastoreDB(t, env)
	assert.True(t, viper.GetBool("datastore.enabled"))
	assert.Equal(t, mirror, viper.GetString("datastore.dbfile"))
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prepdeck")
	path := filepath.Join(dir, DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, Default(dir), cfg)
	assert.FileExists(t, path)

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadOrCreateFillsMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	content := `
db_path = "data/q.db"
default_sort = "answersFirst"

[keys]
quit = "Q"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "q.db"), cfg.DBPath)
	assert.Equal(t, "answersFirst", cfg.DefaultSort)
	assert.Equal(t, "Q", cfg.Keys.Quit)
	assert.Equal(t, "n", cfg.Keys.New)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, 5, cfg.NotifySeconds)
}

func TestLoadOrCreateRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"backend": `backend = "mongo"`,
		"sort":    `default_sort = "alpha"`,
		"level":   `log_level = "chatty"`,
		"redis":   "backend = \"redis\"\n[redis]\naddr = \"\"",
		"notify":  `notify_seconds = -1`,
		"syntax":  `db_path = `,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := LoadOrCreate(path)
			assert.Error(t, err)
		})
	}
}

func TestResolveConfigPathHonoursEnv(t *testing.T) {
	t.Setenv("PREPDECK_CONFIG", "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", ResolveConfigPath())
}

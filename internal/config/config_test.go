package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AllFields(t *testing.T) {
	cfg, err := Parse([]byte(`
schema: /etc/userstats/user.cue
db: /var/lib/userstats.db
timezone: UTC
`))
	require.NoError(t, err)
	assert.Equal(t, "/etc/userstats/user.cue", cfg.Schema)
	assert.Equal(t, "/var/lib/userstats.db", cfg.DB)
	assert.Equal(t, "UTC", cfg.Timezone)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("database: foo.db\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse yaml")
}

func TestParse_InvalidTimezone(t *testing.T) {
	_, err := Parse([]byte("timezone: Mars/Olympus_Mons\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone")
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("schema: [unterminated\n"))
	require.Error(t, err)
}

func TestLoad_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "userstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema: schemas/user.cue\ndb: /abs/history.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "schemas", "user.cue"), cfg.Schema)
	assert.Equal(t, "/abs/history.db", cfg.DB)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestMerge(t *testing.T) {
	cfg := Config{Schema: "a.cue", DB: "a.db", Timezone: "UTC"}
	cfg.Merge(Config{DB: "b.db"})

	assert.Equal(t, Config{Schema: "a.cue", DB: "b.db", Timezone: "UTC"}, cfg)
}

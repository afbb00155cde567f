package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "WARN"
add_source = true

[web]
host = "127.0.0.1"
port = 9090
session_secret = "secret"
environment = "production"

[db]
host = "db.internal"
user = "cardbinder"
password = "pw"
database = "cardbinder"
pool_size = 20

[local]
path = "/var/lib/cardbinder/local.db"

[spaces]
key = "spaces-key"
secret = "spaces-secret"
region = "nyc3"
bucket = "cardbinder"
card_root = "cards"

[migration]
batch_size = 250
report_dir = "/tmp/reports"
use_copy = true
dump_dir = "/srv/dumps"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelWarn, cfg.Log.Level)
	assert.True(t, cfg.Log.AddSource)
	assert.Equal(t, "127.0.0.1", cfg.Web.Host)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, "production", cfg.Web.Environment)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port, "db port should default when omitted")
	assert.Equal(t, 20, cfg.DB.PoolSize)
	assert.Equal(t, "/var/lib/cardbinder/local.db", cfg.Local.Path)
	assert.True(t, cfg.Spaces.Enabled())
	assert.Equal(t, "cardbinder", cfg.Spaces.Bucket)
	assert.Equal(t, 250, cfg.Migration.BatchSize)
	assert.Equal(t, "/tmp/reports", cfg.Migration.ReportDir)
	assert.True(t, cfg.Migration.UseCopy)
	assert.Equal(t, "/srv/dumps", cfg.Migration.DumpDir)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.False(t, cfg.Log.AddSource)
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
	assert.Equal(t, 8080, cfg.Web.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Web.AllowOrigins)
	assert.Equal(t, "cardbinder.db", cfg.Local.Path)
	assert.False(t, cfg.Spaces.Enabled(), "image storage should stay off without credentials")
	assert.Equal(t, 100, cfg.Migration.BatchSize)
	assert.Equal(t, ".", cfg.Migration.ReportDir)
	assert.False(t, cfg.Migration.UseCopy)
	assert.Empty(t, cfg.Migration.DumpDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "[web\nport = "))
	require.Error(t, err)
}

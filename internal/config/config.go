package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log       LogConfig       `toml:"log"`
	Web       WebConfig       `toml:"web"`
	DB        DBConfig        `toml:"db"`
	Local     LocalConfig     `toml:"local"`
	Spaces    SpacesConfig    `toml:"spaces"`
	Migration MigrationConfig `toml:"migration"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	AddSource bool       `toml:"add_source"`
}

type WebConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	SessionSecret string `toml:"session_secret"`
	Environment   string `toml:"environment"`
	AllowOrigins  string `toml:"allow_origins"`
}

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

// LocalConfig points at the embedded SQLite store that holds the
// pre-migration data.
type LocalConfig struct {
	Path string `toml:"path"`
}

// SpacesConfig holds credentials for the S3-compatible bucket that stores
// card images. Image uploads are disabled when it is left empty.
type SpacesConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	CardRoot string `toml:"card_root"`
}

// Enabled reports whether image storage is configured.
func (s SpacesConfig) Enabled() bool {
	return s.Key != "" && s.Secret != "" && s.Bucket != ""
}

type MigrationConfig struct {
	BatchSize int    `toml:"batch_size"`
	ReportDir string `toml:"report_dir"`
	UseCopy   bool   `toml:"use_copy"`
	DumpDir   string `toml:"dump_dir"`
}

func (c *Config) applyDefaults() {
	if c.Web.Host == "" {
		c.Web.Host = "0.0.0.0"
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8080
	}
	if c.Web.AllowOrigins == "" {
		c.Web.AllowOrigins = "http://localhost:3000"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.Local.Path == "" {
		c.Local.Path = "cardbinder.db"
	}
	if c.Migration.BatchSize == 0 {
		c.Migration.BatchSize = 100
	}
	if c.Migration.ReportDir == "" {
		c.Migration.ReportDir = "."
	}
}

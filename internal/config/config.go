package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/andy/tallysheet/internal/domain"
)

// Config is read from a YAML file; TALLYSHEET_* environment variables
// override individual fields.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Owner      OwnerConfig      `yaml:"owner"`
	Timesheets TimesheetsConfig `yaml:"timesheets"`
	Log        LogConfig        `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"TALLYSHEET_DB_PATH"` // Path to the encrypted SQLite database
}

// OwnerConfig names the user the CLI acts as when --as is not given.
type OwnerConfig struct {
	Email string `yaml:"email" env:"TALLYSHEET_OWNER"`
}

type TimesheetsConfig struct {
	DefaultTimezone string `yaml:"default_timezone" env:"TALLYSHEET_TIMEZONE"` // IANA name for range timesheets
	ExportDir       string `yaml:"export_dir" env:"TALLYSHEET_EXPORT_DIR"`       // Where downloads are written
}

type LogConfig struct {
	Enabled bool `yaml:"enabled" env:"TALLYSHEET_LOG"` // Log use cases to stderr
}

func baseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", "tallysheet")
}

// DefaultConfigPath returns ~/.config/tallysheet/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := baseDir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "tallysheet.db"),
		},
		Timesheets: TimesheetsConfig{
			DefaultTimezone: "UTC",
			ExportDir:       filepath.Join(dir, "timesheets"),
		},
	}
}

// Load reads path over the defaults, then applies the process environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	return load(path, env.Options{})
}

// LoadWithEnv is Load with an explicit environment instead of the process one.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	return load(path, env.Options{Environment: environ})
}

func load(path string, opts env.Options) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Validate checks fields that would otherwise fail much later.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("config: database.path is required")
	}
	if c.Timesheets.DefaultTimezone == "" {
		c.Timesheets.DefaultTimezone = "UTC"
	}
	if _, err := domain.LoadZone(c.Timesheets.DefaultTimezone); err != nil {
		return fmt.Errorf("config: unknown timesheets.default_timezone %q", c.Timesheets.DefaultTimezone)
	}
	return nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// EnsureDirectories creates the database and export directories
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0o700); err != nil {
		return err
	}
	return os.MkdirAll(c.Timesheets.ExportDir, 0o755)
}

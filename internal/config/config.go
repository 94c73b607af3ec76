// Package config loads CardDex settings from a TOML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of every environment override, e.g. CARDDEX_SERVER_PORT.
const EnvPrefix = "CARDDEX"

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Inventory InventoryConfig `toml:"inventory"`
	Deck      DeckConfig      `toml:"deck"`
	Backup    BackupConfig    `toml:"backup"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Port           int      `toml:"port" validate:"min=1,max=65535"`
	CORSOrigins    []string `toml:"cors_origins" split_words:"true"`
	RequestTimeout string   `toml:"request_timeout" split_words:"true" validate:"required"` // e.g. "60s"
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path        string `toml:"path"` // empty means ~/.carddex/carddex.db
	AutoMigrate bool   `toml:"auto_migrate" split_words:"true"`
	BusyTimeout string `toml:"busy_timeout" split_words:"true" validate:"required"`
}

// CatalogConfig contains TCGdex client settings.
type CatalogConfig struct {
	BaseURL      string  `toml:"base_url" split_words:"true" validate:"required,url"`
	Language     string  `toml:"language" validate:"required,alpha,min=2,max=5"`
	RateLimit    float64 `toml:"rate_limit" split_words:"true" validate:"gt=0"` // requests per second
	Timeout      string  `toml:"timeout" validate:"required"`
	MaxRetries   int     `toml:"max_retries" split_words:"true" validate:"min=0,max=10"`
	CacheTTL     string  `toml:"cache_ttl" split_words:"true" validate:"required"`
	CacheBackend string  `toml:"cache_backend" split_words:"true" validate:"oneof=memory redis"`
	RedisURL     string  `toml:"redis_url" split_words:"true" validate:"required_if=CacheBackend redis"`
}

// InventoryConfig contains collection settings.
type InventoryConfig struct {
	BulkConcurrency int `toml:"bulk_concurrency" split_words:"true" validate:"min=1,max=32"`
}

// DeckConfig contains deck builder settings.
type DeckConfig struct {
	EnforceEnergyPool bool `toml:"enforce_energy_pool" split_words:"true"`
}

// BackupConfig contains scheduled backup settings.
type BackupConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval" validate:"required"`
	Dir      string `toml:"dir"` // empty means a backups directory next to the database
	Keep     int    `toml:"keep" validate:"min=0"`

	// Password turns on encrypted backups. It is also the password used
	// by -restore when the backup is encrypted.
	Password string `toml:"password"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=trace debug info warn error"`
	Format string `toml:"format" validate:"oneof=json console"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			CORSOrigins:    []string{"http://localhost:*", "http://127.0.0.1:*"},
			RequestTimeout: "60s",
		},
		Database: DatabaseConfig{
			Path:        "",
			AutoMigrate: true,
			BusyTimeout: "5s",
		},
		Catalog: CatalogConfig{
			BaseURL:      "https://api.tcgdex.net/v2",
			Language:     "en",
			RateLimit:    10,
			Timeout:      "30s",
			MaxRetries:   3,
			CacheTTL:     "1h",
			CacheBackend: "memory",
		},
		Inventory: InventoryConfig{
			BulkConcurrency: 4,
		},
		Deck: DeckConfig{
			EnforceEnergyPool: false,
		},
		Backup: BackupConfig{
			Enabled:  false,
			Interval: "24h",
			Keep:     7,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Dir returns the CardDex data directory (~/.carddex).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".carddex"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration at path, applies environment overrides and
// validates the result. An empty path uses DefaultPath. A missing file is
// not an error; defaults are used instead.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// readFile decodes path over the defaults.
func readFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	durations := []struct {
		name  string
		value string
	}{
		{"server.request_timeout", c.Server.RequestTimeout},
		{"database.busy_timeout", c.Database.BusyTimeout},
		{"catalog.timeout", c.Catalog.Timeout},
		{"catalog.cache_ttl", c.Catalog.CacheTTL},
		{"backup.interval", c.Backup.Interval},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("invalid %s: must be positive", d.name)
		}
	}
	return nil
}

// DatabasePath returns the configured database path or the default one.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "carddex.db"), nil
}

// CatalogBaseURL joins the base URL and the language segment.
func (c *Config) CatalogBaseURL() string {
	return strings.TrimRight(c.Catalog.BaseURL, "/") + "/" + c.Catalog.Language
}

// GetRequestTimeout returns the parsed HTTP request timeout.
func (c *Config) GetRequestTimeout() time.Duration {
	return parseDuration(c.Server.RequestTimeout, 60*time.Second)
}

// GetBusyTimeout returns the parsed SQLite busy timeout.
func (c *Config) GetBusyTimeout() time.Duration {
	return parseDuration(c.Database.BusyTimeout, 5*time.Second)
}

// GetCatalogTimeout returns the parsed catalog HTTP timeout.
func (c *Config) GetCatalogTimeout() time.Duration {
	return parseDuration(c.Catalog.Timeout, 30*time.Second)
}

// GetCacheTTL returns the parsed catalog cache TTL.
func (c *Config) GetCacheTTL() time.Duration {
	return parseDuration(c.Catalog.CacheTTL, time.Hour)
}

// GetBackupInterval returns the parsed backup interval.
func (c *Config) GetBackupInterval() time.Duration {
	return parseDuration(c.Backup.Interval, 24*time.Hour)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

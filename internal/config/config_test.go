package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.GetCacheTTL() != time.Hour {
		t.Errorf("GetCacheTTL() = %v, want 1h", cfg.GetCacheTTL())
	}
	if got := cfg.CatalogBaseURL(); got != "https://api.tcgdex.net/v2/en" {
		t.Errorf("CatalogBaseURL() = %q", got)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Inventory.BulkConcurrency != 4 {
		t.Errorf("BulkConcurrency = %d, want 4", cfg.Inventory.BulkConcurrency)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9090

[catalog]
language = "fr"
cache_ttl = "30m"

[deck]
enforce_energy_pool = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.CatalogBaseURL() != "https://api.tcgdex.net/v2/fr" {
		t.Errorf("CatalogBaseURL() = %q", cfg.CatalogBaseURL())
	}
	if cfg.GetCacheTTL() != 30*time.Minute {
		t.Errorf("GetCacheTTL() = %v, want 30m", cfg.GetCacheTTL())
	}
	if !cfg.Deck.EnforceEnergyPool {
		t.Error("EnforceEnergyPool should be true")
	}
	// untouched sections keep their defaults
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CARDDEX_SERVER_PORT", "7000")
	t.Setenv("CARDDEX_INVENTORY_BULK_CONCURRENCY", "8")
	t.Setenv("CARDDEX_CATALOG_CACHE_TTL", "2h")
	t.Setenv("CARDDEX_LOG_LEVEL", "debug")
	t.Setenv("CARDDEX_BACKUP_PASSWORD", "s3cret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Inventory.BulkConcurrency != 8 {
		t.Errorf("BulkConcurrency = %d, want 8", cfg.Inventory.BulkConcurrency)
	}
	if cfg.GetCacheTTL() != 2*time.Hour {
		t.Errorf("GetCacheTTL() = %v, want 2h", cfg.GetCacheTTL())
	}
	if cfg.Backup.Password != "s3cret" {
		t.Errorf("Backup.Password = %q, want s3cret", cfg.Backup.Password)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nport ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"bad cache backend", func(c *Config) { c.Catalog.CacheBackend = "memcached" }},
		{"redis without url", func(c *Config) { c.Catalog.CacheBackend = "redis" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"zero concurrency", func(c *Config) { c.Inventory.BulkConcurrency = 0 }},
		{"unparseable ttl", func(c *Config) { c.Catalog.CacheTTL = "soon" }},
		{"negative interval", func(c *Config) { c.Backup.Interval = "-1h" }},
		{"zero rate limit", func(c *Config) { c.Catalog.RateLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Catalog.CacheBackend = "redis"
	cfg.Catalog.RedisURL = "redis://localhost:6379/0"
	if err := cfg.Validate(); err != nil {
		t.Errorf("redis with url should be valid: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Backup.Enabled = true
	cfg.Backup.Keep = 3
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.Backup.Enabled || loaded.Backup.Keep != 3 {
		t.Errorf("backup section not persisted: %+v", loaded.Backup)
	}
}

func TestGettersFallBackOnBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.RequestTimeout = "bogus"
	cfg.Database.BusyTimeout = ""
	if cfg.GetRequestTimeout() != 60*time.Second {
		t.Errorf("GetRequestTimeout() = %v", cfg.GetRequestTimeout())
	}
	if cfg.GetBusyTimeout() != 5*time.Second {
		t.Errorf("GetBusyTimeout() = %v", cfg.GetBusyTimeout())
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { changes <- c }, nil)
	}()

	// give the watcher time to register
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changes:
		if cfg.Log.Level != "debug" {
			t.Errorf("reloaded level = %q, want debug", cfg.Log.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop")
	}
}

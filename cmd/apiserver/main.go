// Package main runs the CardDex REST API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/ramonehamilton/carddex/internal/api"
	"github.com/ramonehamilton/carddex/internal/catalog"
	"github.com/ramonehamilton/carddex/internal/config"
	"github.com/ramonehamilton/carddex/internal/deckbuilder"
	"github.com/ramonehamilton/carddex/internal/events"
	"github.com/ramonehamilton/carddex/internal/inventory"
	"github.com/ramonehamilton/carddex/internal/logger"
	"github.com/ramonehamilton/carddex/internal/metrics"
	"github.com/ramonehamilton/carddex/internal/storage"
	"github.com/ramonehamilton/carddex/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file path (default: ~/.carddex/config.toml)")
	watch      = flag.Bool("watch", true, "Reload log level and deck rules when the config file changes")
	showVer    = flag.Bool("version", false, "Print the version and exit")
	restore    = flag.String("restore", "", "Replace the database with this backup before starting (encrypted backups use [backup] password)")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("carddex", version.Get())
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "carddex: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		ServiceName: "carddex",
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	if *restore != "" {
		if err := storage.Restore(dbPath, *restore, cfg.Backup.Password); err != nil {
			return fmt.Errorf("failed to restore %s: %w", *restore, err)
		}
		log.Infof(ctx, "Restored database from %s", *restore)
	}

	dbConfig := storage.DefaultConfig(dbPath)
	dbConfig.BusyTimeout = cfg.GetBusyTimeout()
	dbConfig.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	store := storage.NewService(db)
	defer func() { err = multierr.Append(err, store.Close()) }()
	log.Infof(ctx, "CardDex %s, database %s", version.Get(), dbPath)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	cache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeCache()) }()

	client := catalog.NewClient(&catalog.ClientConfig{
		BaseURL:        cfg.CatalogBaseURL(),
		RequestsPerSec: cfg.Catalog.RateLimit,
		Timeout:        cfg.GetCatalogTimeout(),
		MaxRetries:     cfg.Catalog.MaxRetries,
		InitialBackoff: time.Second,
		MaxBackoff:     16 * time.Second,
		CacheTTL:       cfg.GetCacheTTL(),
	}, cache, catalog.WithLogger(log), catalog.WithMetrics(m.Catalog))

	dispatcher := events.NewDispatcher(log)
	dispatcher.Register(events.NewLoggingObserver(log))

	inv := inventory.NewService(store, client,
		inventory.Config{BulkConcurrency: cfg.Inventory.BulkConcurrency},
		inventory.WithLogger(log),
		inventory.WithEvents(dispatcher),
		inventory.WithMetrics(m.Inventory),
	)
	decks := deckbuilder.NewService(store, inv,
		deckbuilder.Config{EnforceEnergyPool: cfg.Deck.EnforceEnergyPool},
		deckbuilder.WithLogger(log),
		deckbuilder.WithEvents(dispatcher),
		deckbuilder.WithMetrics(m.Decks),
	)

	var encryption *storage.EncryptionConfig
	if cfg.Backup.Password != "" {
		encryption = storage.DefaultEncryptionConfig(cfg.Backup.Password)
	}
	scheduler := storage.NewBackupScheduler(storage.NewBackupManager(db), &storage.SchedulerConfig{
		Interval: cfg.GetBackupInterval(),
		BackupConfig: &storage.BackupConfig{
			Dir:        cfg.Backup.Dir,
			Verify:     true,
			Keep:       cfg.Backup.Keep,
			Encryption: encryption,
		},
		OnBackupComplete: func(path string, err error) {
			if err != nil {
				log.Error(ctx, "Scheduled backup failed", err)
				return
			}
			log.Infof(ctx, "Backup written to %s", path)
		},
	})
	if cfg.Backup.Enabled {
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start backup scheduler: %w", err)
		}
		defer func() { err = multierr.Append(err, scheduler.Stop()) }()
	}

	server := api.NewServer(api.Config{
		Port:           cfg.Server.Port,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.GetRequestTimeout(),
	}, api.Services{
		Catalog:    client,
		Collection: inv,
		Energy:     inv,
		Decks:      decks,
		Backups:    scheduler,
		Events:     dispatcher,
		Gatherer:   reg,
	}, log)

	errc := make(chan error, 1)
	server.Start(errc)

	if *watch {
		go watchConfig(ctx, log, decks)
	}

	select {
	case <-ctx.Done():
		log.Info(context.Background(), "Shutting down")
	case serveErr := <-errc:
		err = fmt.Errorf("API server failed: %w", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return multierr.Append(err, server.Shutdown(shutdownCtx))
}

// newCache builds the configured catalog cache and its close function.
// The memory cache is purged of expired entries once per TTL.
func newCache(ctx context.Context, cfg *config.Config) (catalog.Cache, func() error, error) {
	if cfg.Catalog.CacheBackend != "redis" {
		mc := catalog.NewMemoryCache()
		go purgeExpired(ctx, mc, cfg.GetCacheTTL())
		return mc, func() error { return nil }, nil
	}
	rc, err := catalog.NewRedisCache(ctx, cfg.Catalog.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis cache: %w", err)
	}
	return rc, rc.Close, nil
}

// watchConfig applies the settings that can change without a restart.
func watchConfig(ctx context.Context, log *logger.Logger, decks *deckbuilder.Service) {
	ctx = log.WithComponent(ctx, "config")
	err := config.Watch(ctx, *configPath, func(cfg *config.Config) {
		log.SetLevel(logger.ParseLevel(cfg.Log.Level))
		decks.SetEnforceEnergyPool(cfg.Deck.EnforceEnergyPool)
		log.Info(ctx, "Configuration reloaded")
	}, func(err error) {
		log.Error(ctx, "Configuration reload failed", err)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Config watcher stopped", err)
	}
}

func purgeExpired(ctx context.Context, mc *catalog.MemoryCache, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mc.PurgeExpired()
		}
	}
}

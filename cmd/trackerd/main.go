// Command trackerd runs the tracker as a daemon: a background-refreshed
// catalog store, a continuous update cycle, and a JSON HTTP surface with
// Prometheus metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/signalsfoundry/orbit-tracker/catalog"
	"github.com/signalsfoundry/orbit-tracker/core"
	"github.com/signalsfoundry/orbit-tracker/internal/api"
	"github.com/signalsfoundry/orbit-tracker/internal/config"
	"github.com/signalsfoundry/orbit-tracker/internal/logging"
	"github.com/signalsfoundry/orbit-tracker/internal/observability"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logging.New(logging.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		File:      cfg.LogFile,
		AddSource: true,
	})
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewCollector(nil)
	if err != nil {
		log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	var disk *catalog.DiskCache
	if cfg.CacheDir != "" {
		disk, err = catalog.NewDiskCache(cfg.CacheDir)
		if err != nil {
			log.Warn(ctx, "catalog persistence disabled",
				logging.String("dir", cfg.CacheDir),
				logging.String("error", err.Error()))
		}
	}

	store := catalog.NewStore(catalog.StoreOptions{
		Ingestor:        catalog.NewIngestor(nil, nil, log, collector),
		Disk:            disk,
		Log:             log,
		TTL:             cfg.CatalogTTL,
		RefreshInterval: cfg.RefreshInterval,
	}, cfg.Sources...)

	tracker := core.NewTracker(log, core.NewClassifier(0))

	applyCatalog := func(ctx context.Context) {
		catalogs := make([]catalog.Cached, 0, len(cfg.Sources))
		for _, src := range cfg.Sources {
			catalogs = append(catalogs, store.Get(ctx, src))
		}
		tracker.SetCatalog(catalog.Merge(catalogs...))
	}

	// Rebuild the tracked population whenever any source is replaced,
	// including background refreshes.
	store.Subscribe(func(catalog.Cached) { applyCatalog(context.Background()) })

	applyCatalog(ctx)
	store.StartAutoRefresh(cfg.Sources...)
	defer store.StopAutoRefresh()

	// Update cycle, one tick per interval.
	stopTicks := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stopTicks:
				return
			case now := <-ticker.C:
				start := time.Now()
				report := tracker.Tick(now.UTC())
				collector.ObserveTick(time.Since(start), report.Tracked, report.Visible, report.Failed)
			}
		}
	}()

	refresh := func(ctx context.Context) error {
		var firstErr error
		for _, src := range cfg.Sources {
			if _, err := store.Refresh(ctx, src); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		applyCatalog(ctx)
		return firstErr
	}

	server := api.New(tracker, refresh, nil, collector.Handler(), log)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info(ctx, "trackerd listening",
			logging.String("addr", cfg.ListenAddr),
			logging.Int("sources", len(cfg.Sources)))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http server failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info(ctx, "shutting down")
	close(stopTicks)
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "http shutdown failed", logging.String("error", err.Error()))
	}
}

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samirrijal/unirenta/internal/adapters/backend"
	natsadapter "github.com/samirrijal/unirenta/internal/adapters/nats"
	"github.com/samirrijal/unirenta/internal/adapters/valkey"
	"github.com/samirrijal/unirenta/internal/core/ports"
	"github.com/samirrijal/unirenta/internal/core/usecases"
	"github.com/samirrijal/unirenta/internal/pkg/config"
	"github.com/samirrijal/unirenta/internal/pkg/logging"
)

// The warmer keeps the shared Valkey cache filled with the property listing
// and the university directory, and tells open map sessions (through the
// broadcast subject) when the listing changes.
func main() {
	cfg, err := config.Load("unirenta-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Without a cache there is nothing to warm.
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	var broadcaster ports.NoticeBroadcaster
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, catalog changes will not be announced", "error", err)
	} else {
		defer nc.Close()
		broadcaster = nc
	}

	client := backend.New(cfg.Backend.BaseURL, time.Duration(cfg.Backend.Timeout)*time.Second)
	universities := usecases.NewUniversityService(backend.NewUniversityRepo(client), cache, cfg.Backend.CacheTTL, cfg.Map.UniversityMinZoom)
	properties := usecases.NewPropertyService(backend.NewPropertyRepo(client), universities, cache, usecases.PropertyConfig{
		CacheTTL:       cfg.Backend.CacheTTL,
		NearbyRadiusKm: cfg.Map.NearbyRadiusKm,
		MaxUploadBytes: cfg.Backend.MaxUploadBytes,
	})
	warmer := usecases.NewCatalogWarmer(properties, universities, broadcaster)

	interval := time.Duration(cfg.Warmer.Interval) * time.Second
	slog.Info("catalog warmer starting", "interval", interval, "backend", cfg.Backend.BaseURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		slog.Info("received signal, shutting down warmer", "signal", sig.String())
		cancel()
	}()

	warmer.Run(ctx, interval, func(s usecases.WarmStats, err error) {
		if err != nil {
			if ctx.Err() == nil {
				slog.Error("warm pass failed", "error", err, "duration", s.Duration)
			}
			return
		}
		slog.Info("catalog warmed",
			"properties", s.Properties,
			"universities", s.Universities,
			"changed", s.Changed,
			"duration", s.Duration,
		)
	})
}

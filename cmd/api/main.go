package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/unirenta/internal/adapters/backend"
	"github.com/samirrijal/unirenta/internal/adapters/http"
	natsadapter "github.com/samirrijal/unirenta/internal/adapters/nats"
	"github.com/samirrijal/unirenta/internal/adapters/valkey"
	"github.com/samirrijal/unirenta/internal/core/ports"
	"github.com/samirrijal/unirenta/internal/core/usecases"
	"github.com/samirrijal/unirenta/internal/pkg/config"
	"github.com/samirrijal/unirenta/internal/pkg/logging"
	"github.com/samirrijal/unirenta/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("unirenta-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer func() {
				sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer scancel()
				_ = shutdown(sctx)
			}()
		}
	}

	// Rental backend
	client := backend.New(cfg.Backend.BaseURL, time.Duration(cfg.Backend.Timeout)*time.Second)
	propertyRepo := backend.NewPropertyRepo(client)
	universityRepo := backend.NewUniversityRepo(client)

	deps := &http.Dependencies{}

	// Cache (optional)
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, serving uncached", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
		deps.Cache = cache
	}

	// NATS (optional)
	var publisher ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		defer nc.Close()
		publisher = nc
		deps.Publisher = nc
		deps.Broadcaster = nc
		deps.NATS = nc

		// Separate connection for the broadcast relay to WebSocket sessions
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats relay unavailable", "error", err)
		} else {
			defer sub.Close()
			deps.Broadcasts = sub
		}
	}

	// Use cases
	universitySvc := usecases.NewUniversityService(universityRepo, cacheSvc, cfg.Backend.CacheTTL, cfg.Map.UniversityMinZoom)
	propertySvc := usecases.NewPropertyService(propertyRepo, universitySvc, cacheSvc, usecases.PropertyConfig{
		CacheTTL:       cfg.Backend.CacheTTL,
		NearbyRadiusKm: cfg.Map.NearbyRadiusKm,
		MaxUploadBytes: cfg.Backend.MaxUploadBytes,
	})

	deps.Properties = propertySvc
	deps.Universities = universitySvc
	deps.Map = usecases.NewMapService(propertySvc, universitySvc)
	deps.Notices = usecases.NewNoticeService(publisher)
	deps.SessionOptions = []usecases.SessionOption{
		usecases.WithDebounce(time.Duration(cfg.Map.DebounceMs) * time.Millisecond),
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024, // registration uploads carry a document
		AppName:      "UniRenta API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "backend", cfg.Backend.BaseURL)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

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

	"github.com/wiedertv/BizAway-code-challenge/internal/adapters/http"
	"github.com/wiedertv/BizAway-code-challenge/internal/adapters/memory"
	natsadapter "github.com/wiedertv/BizAway-code-challenge/internal/adapters/nats"
	"github.com/wiedertv/BizAway-code-challenge/internal/adapters/postgres"
	"github.com/wiedertv/BizAway-code-challenge/internal/adapters/tripsapi"
	"github.com/wiedertv/BizAway-code-challenge/internal/adapters/valkey"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/ports"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/usecases"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/config"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/logging"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("trip-planner-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Upstream trips provider; a missing endpoint or key is fatal
	gateway, err := tripsapi.New(cfg.TripsAPI.BaseURL, cfg.TripsAPI.APIKey,
		tripsapi.WithTimeout(cfg.TripsAPI.TimeoutDuration()))
	if err != nil {
		log.Fatalf("trips api: %v", err)
	}

	deps := &http.Dependencies{
		Search:     usecases.NewSearchService(gateway, memory.NewResultCache()),
		TripsProbe: gateway,
		Version:    version,
	}

	// Saved trips storage
	var repo ports.SavedTripRepository = memory.NewSavedTripRepository()
	if cfg.Storage.Driver == "postgres" {
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolStats(ctx, 15*time.Second)

		repo = postgres.NewSavedTripRepo(db)
		deps.DB = db
	}

	// NATS: saved-trip events and the WebSocket relay
	var publisher ports.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, events disabled", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			deps.Events = natsadapter.NewSubscriber(pub.Conn())
		}
	}
	deps.SavedTrips = usecases.NewSavedTripService(repo, publisher)

	// Valkey: rate-limit counters shared across instances
	if cfg.Valkey.Addr != "" {
		store, err := valkey.New(cfg.Valkey.Addr, "trip-planner:limiter:")
		if err != nil {
			slog.Warn("valkey unavailable, rate limits kept in memory", "error", err)
		} else {
			defer store.Close()
			deps.Limiter = store
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Trip Planner API",
		ErrorHandler: http.ErrorHandler,
	})

	http.SetupRoutes(app, deps, http.RouterConfig{
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: cfg.RateLimit.Window,
	})

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "storage", cfg.Storage.Driver, "version", version)
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

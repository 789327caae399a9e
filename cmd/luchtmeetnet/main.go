package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality/luchtmeetnet"
	httpapi "github.com/i474232898/luchtmeetnet-monitor/internal/api/http"
	"github.com/i474232898/luchtmeetnet-monitor/internal/app"
	"github.com/i474232898/luchtmeetnet-monitor/internal/config"
	"github.com/i474232898/luchtmeetnet-monitor/internal/logging"
	"github.com/i474232898/luchtmeetnet-monitor/internal/publish"
)

const appName = "luchtmeetnet-monitor"

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg, version, appName)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
	log.Info("shutting down")
}

func run(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) error {
	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	source := luchtmeetnet.NewClient(httpClient,
		luchtmeetnet.WithBaseURL(cfg.BaseURL),
		luchtmeetnet.WithLogger(log.With("component", "luchtmeetnet")),
	)

	platform, err := app.SetupWithRetry(ctx, cfg, source, log)
	if err != nil {
		return err
	}
	coordinator := platform.Coordinator

	if cfg.MQTT.Enabled() {
		pub := publish.NewPublisher(cfg.MQTT, cfg.NamePrefix, log)
		if err := pub.Connect(ctx); err != nil {
			return err
		}
		defer pub.Disconnect()

		if snap, ok := coordinator.Latest(); ok {
			pub.OnSnapshot(snap)
		}
		coordinator.AddListener(pub.OnSnapshot)
	}

	if err := coordinator.Start(); err != nil {
		return fmt.Errorf("failed to start coordinator: %w", err)
	}
	defer coordinator.Stop()

	fiberApp := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	fiberApp.Use(logger.New())
	fiberApp.Use(recover.New())

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(fiberApp, platform.Exposer, coordinator, platform.Fetcher)

	go func() {
		log.Info("http server listening", "port", cfg.Port)
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "err", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
	return nil
}

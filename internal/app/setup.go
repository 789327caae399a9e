// Package app assembles the monitor: it resolves coordinates, performs the
// first refresh and hands back the coordinator and reading exposer.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality"
	"github.com/i474232898/luchtmeetnet-monitor/internal/config"
	"github.com/i474232898/luchtmeetnet-monitor/internal/scheduler"
	"github.com/i474232898/luchtmeetnet-monitor/internal/store"
)

// Platform is a successfully set up monitor.
type Platform struct {
	Coordinates airquality.Coordinates
	Fetcher     *airquality.Fetcher
	Coordinator *scheduler.Coordinator
	Exposer     *airquality.Exposer
}

// Setup resolves the coordinates and performs the first refresh synchronously.
// It returns an error wrapping airquality.ErrConfiguration or airquality.ErrNotReady;
// in both cases no readings exist.
func Setup(ctx context.Context, cfg *config.AppConfig, source airquality.Source, logger *slog.Logger) (*Platform, error) {
	coords, err := config.ResolveCoordinates(cfg.Location, cfg.Location.Geocoder())
	if err != nil {
		return nil, err
	}
	logger.Debug("initializing air quality monitor",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
	)

	fetcher := airquality.NewFetcher(coords, source,
		airquality.WithLanguage(cfg.Language),
		airquality.WithLogger(logger),
	)
	coordinator := scheduler.New(fetcher, store.NewLatestStore(), cfg.RefreshTimeout, logger)

	if err := coordinator.FirstRefresh(ctx); err != nil {
		return nil, err
	}

	return &Platform{
		Coordinates: coords,
		Fetcher:     fetcher,
		Coordinator: coordinator,
		Exposer:     airquality.NewExposer(cfg.NamePrefix, coordinator),
	}, nil
}

// SetupWithRetry retries Setup every cfg.SetupRetryInterval while it reports
// ErrNotReady. Configuration errors and context cancellation end the loop.
func SetupWithRetry(ctx context.Context, cfg *config.AppConfig, source airquality.Source, logger *slog.Logger) (*Platform, error) {
	for attempt := 1; ; attempt++ {
		p, err := Setup(ctx, cfg, source, logger)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, airquality.ErrNotReady) {
			return nil, err
		}

		logger.Warn("air quality monitor not ready, retrying",
			"attempt", attempt,
			"retry_in", cfg.SetupRetryInterval,
			"err", err,
		)

		timer := time.NewTimer(cfg.SetupRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("setup aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

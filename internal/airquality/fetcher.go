package airquality

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// Fetcher resolves the nearest station once and produces a Snapshot per call.
// Refresh must not be called concurrently; the scheduler runs it as a singleton job.
type Fetcher struct {
	coords   Coordinates
	source   Source
	language Language
	logger   *slog.Logger

	station atomic.Pointer[Station]
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLanguage selects the category label language.
func WithLanguage(lang Language) FetcherOption {
	return func(f *Fetcher) {
		f.language = lang
	}
}

// WithLogger sets the logger used for station resolution events.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher binds a Fetcher to coords. It performs no I/O.
func NewFetcher(coords Coordinates, source Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		coords:   coords,
		source:   source,
		language: LanguageEnglish,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Coordinates returns the coordinates the Fetcher is bound to.
func (f *Fetcher) Coordinates() Coordinates {
	return f.coords
}

// Station returns the resolved station, if any.
func (f *Fetcher) Station() (Station, bool) {
	s := f.station.Load()
	if s == nil {
		return Station{}, false
	}
	return *s, true
}

// Refresh fetches the latest measurement of the nearest station and classifies it.
// All failures are wrapped in ErrRefreshFailed.
func (f *Fetcher) Refresh(ctx context.Context) (Snapshot, error) {
	station := f.station.Load()
	if station == nil {
		found, err := f.source.NearestStation(ctx, f.coords)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: nearest station lookup: %w", ErrRefreshFailed, err)
		}
		if found != nil && found.Number != "" {
			f.station.Store(found)
			station = found
			f.logger.Info("resolved nearest station",
				"station", found.Number,
				"location", found.Location,
				"distance_km", found.Distance,
			)
		}
	}

	// Querying the service without a station number is never useful.
	if station == nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNoStation)
	}

	m, err := f.source.LatestMeasurement(ctx, station.Number)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: measurement for %s: %w", ErrRefreshFailed, station.Number, err)
	}
	if m.Index == nil {
		return Snapshot{}, fmt.Errorf("%w: %w: LKI", ErrRefreshFailed, ErrMissingField)
	}
	if m.Timestamp == nil {
		return Snapshot{}, fmt.Errorf("%w: %w: timestamp", ErrRefreshFailed, ErrMissingField)
	}

	return Snapshot{
		Station:   station.Number,
		Index:     *m.Index,
		Category:  Classify(*m.Index).Label(f.language),
		Timestamp: m.Timestamp.UTC(),
	}, nil
}

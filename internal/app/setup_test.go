package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality"
	"github.com/i474232898/luchtmeetnet-monitor/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type flakySource struct {
	failLookups int
	lookups     int
	lki         float64
}

func (s *flakySource) NearestStation(_ context.Context, _ airquality.Coordinates) (*airquality.Station, error) {
	s.lookups++
	if s.lookups <= s.failLookups {
		return nil, errors.New("service unavailable")
	}
	return &airquality.Station{Number: "NL10938", Location: "Utrecht"}, nil
}

func (s *flakySource) LatestMeasurement(_ context.Context, _ string) (airquality.Measurement, error) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return airquality.Measurement{Index: &s.lki, Timestamp: &ts}, nil
}

func testConfig() *config.AppConfig {
	lat, lon := 52.09, 5.12
	return &config.AppConfig{
		Location:           config.LocationConfig{Latitude: &lat, Longitude: &lon},
		NamePrefix:         "LuchtmeetNet",
		Language:           airquality.LanguageEnglish,
		RefreshTimeout:     time.Second,
		SetupRetryInterval: time.Millisecond,
	}
}

func TestSetupExposesReadings(t *testing.T) {
	p, err := Setup(context.Background(), testConfig(), &flakySource{lki: 2}, discard)
	require.NoError(t, err)

	station, err := p.Exposer.Value(airquality.ReadingStation)
	require.NoError(t, err)
	index, err := p.Exposer.Value(airquality.ReadingIndex)
	require.NoError(t, err)
	status, err := p.Exposer.Value(airquality.ReadingStatus)
	require.NoError(t, err)

	assert.Equal(t, "NL10938", station)
	assert.Equal(t, 2.0, index)
	assert.Equal(t, "good", status)
}

func TestSetupNotReady(t *testing.T) {
	p, err := Setup(context.Background(), testConfig(), &flakySource{failLookups: 1, lki: 2}, discard)
	require.ErrorIs(t, err, airquality.ErrNotReady)
	assert.Nil(t, p)
}

func TestSetupConfigurationError(t *testing.T) {
	cfg := testConfig()
	cfg.Location = config.LocationConfig{}

	src := &flakySource{}
	_, err := Setup(context.Background(), cfg, src, discard)
	require.ErrorIs(t, err, airquality.ErrConfiguration)
	assert.Zero(t, src.lookups, "no network I/O without coordinates")
}

func TestSetupWithRetry(t *testing.T) {
	src := &flakySource{failLookups: 2, lki: 9}
	p, err := SetupWithRetry(context.Background(), testConfig(), src, discard)
	require.NoError(t, err)
	assert.Equal(t, 3, src.lookups)

	status, err := p.Exposer.Value(airquality.ReadingStatus)
	require.NoError(t, err)
	assert.Equal(t, "bad", status)
}

func TestSetupWithRetryStopsOnConfigurationError(t *testing.T) {
	cfg := testConfig()
	cfg.Location = config.LocationConfig{}

	_, err := SetupWithRetry(context.Background(), cfg, &flakySource{}, discard)
	assert.ErrorIs(t, err, airquality.ErrConfiguration)
}

func TestSetupWithRetryCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.SetupRetryInterval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := SetupWithRetry(ctx, cfg, &flakySource{failLookups: 100}, discard)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

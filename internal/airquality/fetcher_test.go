package airquality

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	station    *Station
	stationErr error
	lookups    int

	measurement    Measurement
	measurementErr error
	queried        []string
}

func (s *stubSource) NearestStation(_ context.Context, _ Coordinates) (*Station, error) {
	s.lookups++
	return s.station, s.stationErr
}

func (s *stubSource) LatestMeasurement(_ context.Context, station string) (Measurement, error) {
	s.queried = append(s.queried, station)
	return s.measurement, s.measurementErr
}

func ptr[T any](v T) *T { return &v }

var testCoords = Coordinates{Latitude: 52.1, Longitude: 5.1}

func TestFetcherRefresh(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &stubSource{
		station:     &Station{Number: "NL10938", Location: "Utrecht-Kardinaal de Jongweg"},
		measurement: Measurement{Index: ptr(2.0), Timestamp: &ts},
	}
	f := NewFetcher(testCoords, src)

	snap, err := f.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Snapshot{Station: "NL10938", Index: 2, Category: "good", Timestamp: ts}, snap)
	assert.Equal(t, []string{"NL10938"}, src.queried)

	st, ok := f.Station()
	require.True(t, ok)
	assert.Equal(t, "Utrecht-Kardinaal de Jongweg", st.Location)
}

func TestFetcherResolvesStationOnce(t *testing.T) {
	ts := time.Now()
	src := &stubSource{
		station:     &Station{Number: "NL01485"},
		measurement: Measurement{Index: ptr(7.0), Timestamp: &ts},
	}
	f := NewFetcher(testCoords, src)

	for i := 0; i < 5; i++ {
		_, err := f.Refresh(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, src.lookups)
	assert.Len(t, src.queried, 5)
}

func TestFetcherStationLookupError(t *testing.T) {
	src := &stubSource{stationErr: errors.New("connection refused")}
	f := NewFetcher(testCoords, src)

	_, err := f.Refresh(context.Background())
	require.ErrorIs(t, err, ErrRefreshFailed)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, src.queried)
}

func TestFetcherNoStationRetriesLookup(t *testing.T) {
	ts := time.Now()
	src := &stubSource{measurement: Measurement{Index: ptr(1.0), Timestamp: &ts}}
	f := NewFetcher(testCoords, src)

	_, err := f.Refresh(context.Background())
	require.ErrorIs(t, err, ErrRefreshFailed)
	require.ErrorIs(t, err, ErrNoStation)
	assert.Empty(t, src.queried, "measurement must not be queried without a station")

	src.station = &Station{Number: "NL49007"}
	snap, err := f.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NL49007", snap.Station)
	assert.Equal(t, 2, src.lookups)
}

func TestFetcherMissingFields(t *testing.T) {
	ts := time.Now()
	tests := []struct {
		name string
		m    Measurement
	}{
		{"missing index", Measurement{Timestamp: &ts}},
		{"missing timestamp", Measurement{Index: ptr(4.0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &stubSource{station: &Station{Number: "NL10938"}, measurement: tt.m}
			_, err := NewFetcher(testCoords, src).Refresh(context.Background())
			require.ErrorIs(t, err, ErrRefreshFailed)
			assert.ErrorIs(t, err, ErrMissingField)
		})
	}
}

func TestFetcherMeasurementError(t *testing.T) {
	src := &stubSource{
		station:        &Station{Number: "NL10938"},
		measurementErr: errors.New("server error"),
	}
	f := NewFetcher(testCoords, src)

	_, err := f.Refresh(context.Background())
	require.ErrorIs(t, err, ErrRefreshFailed)

	// The station stays resolved after a failed measurement fetch.
	_, ok := f.Station()
	assert.True(t, ok)
}

func TestFetcherDutchLabels(t *testing.T) {
	ts := time.Now()
	src := &stubSource{
		station:     &Station{Number: "NL10938"},
		measurement: Measurement{Index: ptr(9.5), Timestamp: &ts},
	}
	snap, err := NewFetcher(testCoords, src, WithLanguage(LanguageDutch)).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "slecht", snap.Category)
}

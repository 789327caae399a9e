package airquality

import "errors"

var (
	// ErrConfiguration is returned when no usable coordinates are configured.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotReady is returned when the first refresh at setup fails.
	ErrNotReady = errors.New("air quality data not ready")

	// ErrRefreshFailed wraps every failure of a refresh cycle.
	ErrRefreshFailed = errors.New("refresh failed")

	// ErrNoStation is returned when no nearest station has been resolved yet.
	ErrNoStation = errors.New("no station resolved")

	// ErrMissingField is returned when the measurement lacks the index or timestamp.
	ErrMissingField = errors.New("measurement field missing")

	// ErrUnknownReading is returned for reading ids outside the descriptor table.
	ErrUnknownReading = errors.New("unknown reading")

	// ErrUnavailable is returned when a reading is requested before the first snapshot.
	ErrUnavailable = errors.New("reading unavailable")
)

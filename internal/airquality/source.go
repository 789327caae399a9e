package airquality

import "context"

// Source abstracts the measurement service (e.g. the Luchtmeetnet Open API).
type Source interface {
	// NearestStation returns the station closest to coords, or nil when the
	// service has no station to offer.
	NearestStation(ctx context.Context, coords Coordinates) (*Station, error)

	// LatestMeasurement returns the most recent record for a station number.
	LatestMeasurement(ctx context.Context, station string) (Measurement, error)
}

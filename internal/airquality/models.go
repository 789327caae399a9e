package airquality

import (
	"time"
)

// Coordinates is the geographic point a Fetcher is bound to.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Station is a monitoring station as returned by the nearest-station lookup.
type Station struct {
	Number   string  `json:"number"`
	Location string  `json:"location,omitempty"`
	Distance float64 `json:"distanceKm,omitempty"`
}

// Measurement is the latest raw record for a station.
// Index and Timestamp are nil when the source omitted them.
type Measurement struct {
	Index     *float64
	Timestamp *time.Time
}

// Snapshot is one complete refresh result.
type Snapshot struct {
	Station   string    `json:"station"`
	Index     float64   `json:"lki"`
	Category  string    `json:"lkiText"`
	Timestamp time.Time `json:"timestamp"`
}

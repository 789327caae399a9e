package luchtmeetnet

import (
	"math"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality"
)

const earthRadiusKm = 6371.0

// haversine returns the great-circle distance between two points in kilometres.
func haversine(a, b airquality.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

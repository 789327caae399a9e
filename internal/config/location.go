package config

import (
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality"
)

// Geocoder turns a host address into coordinates.
type Geocoder func(city, country string) (airquality.Coordinates, error)

// GoogleGeocoder resolves addresses with the Google Geocoding API.
func GoogleGeocoder(apiKey string) Geocoder {
	return func(city, country string) (airquality.Coordinates, error) {
		geocoder.ApiKey = apiKey
		loc, err := geocoder.Geocoding(geocoder.Address{
			City:    city,
			Country: country,
		})
		if err != nil {
			return airquality.Coordinates{}, err
		}
		return airquality.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
	}
}

// Geocoder returns the configured host geocoder, or nil without an API key.
func (l LocationConfig) Geocoder() Geocoder {
	if l.GeocoderAPIKey == "" {
		return nil
	}
	return GoogleGeocoder(l.GeocoderAPIKey)
}

// ResolveCoordinates picks the monitor coordinates: the configured pair, then the
// host's coordinates, then the host address through geocode.
func ResolveCoordinates(l LocationConfig, geocode Geocoder) (airquality.Coordinates, error) {
	var coords airquality.Coordinates

	switch {
	case l.Latitude != nil && l.Longitude != nil:
		coords = airquality.Coordinates{Latitude: *l.Latitude, Longitude: *l.Longitude}
	case l.HomeLatitude != nil && l.HomeLongitude != nil:
		coords = airquality.Coordinates{Latitude: *l.HomeLatitude, Longitude: *l.HomeLongitude}
	case l.HomeCity != "" && geocode != nil:
		c, err := geocode(l.HomeCity, l.HomeCountry)
		if err != nil {
			return coords, fmt.Errorf("%w: geocoding %q: %w", airquality.ErrConfiguration, l.HomeCity, err)
		}
		coords = c
	default:
		return coords, fmt.Errorf("%w: latitude or longitude not set and no host location available", airquality.ErrConfiguration)
	}

	if err := validate.Struct(coords); err != nil {
		return coords, fmt.Errorf("%w: invalid coordinates: %w", airquality.ErrConfiguration, err)
	}
	return coords, nil
}

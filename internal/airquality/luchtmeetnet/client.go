// Package luchtmeetnet implements airquality.Source on top of the Luchtmeetnet Open API.
package luchtmeetnet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality"
)

// DefaultBaseURL is the public Open API endpoint.
const DefaultBaseURL = "https://api.luchtmeetnet.nl/open_api"

// maxStationPages bounds pagination in case the service misreports last_page.
const maxStationPages = 100

var _ airquality.Source = (*Client)(nil)

// Client talks to the Luchtmeetnet Open API.
type Client struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithBackoff overrides the retry policy.
func WithBackoff(b BackoffConfig) Option {
	return func(c *Client) {
		c.httpCfg.Backoff = b
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(client *http.Client, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newCircuitBreaker("luchtmeetnet"),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StationSummary is one entry of the station list.
type StationSummary struct {
	Number   string `json:"number"`
	Location string `json:"location"`
}

// StationDetail holds the station fields needed for distance ranking.
type StationDetail struct {
	Number      string
	Location    string
	Coordinates airquality.Coordinates
	HasGeometry bool
}

type pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

type stationsPayload struct {
	Pagination pagination       `json:"pagination"`
	Data       []StationSummary `json:"data"`
}

type stationDetailPayload struct {
	Data struct {
		Location string `json:"location"`
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"data"`
}

type lkiPayload struct {
	Data []struct {
		StationNumber     string   `json:"station_number"`
		Value             *float64 `json:"value"`
		TimestampMeasured string   `json:"timestamp_measured"`
		Formula           string   `json:"formula"`
	} `json:"data"`
}

// Stations lists every station across all result pages.
func (c *Client) Stations(ctx context.Context) ([]StationSummary, error) {
	var all []StationSummary
	for page := 1; page <= maxStationPages; page++ {
		values := url.Values{}
		values.Set("page", fmt.Sprintf("%d", page))
		values.Set("order_by", "number")
		values.Set("organisation_id", "")

		var payload stationsPayload
		if err := c.getJSON(ctx, "/stations", values, &payload); err != nil {
			return nil, fmt.Errorf("stations page %d: %w", page, err)
		}
		all = append(all, payload.Data...)

		if len(payload.Data) == 0 || payload.Pagination.CurrentPage >= payload.Pagination.LastPage {
			break
		}
	}
	return all, nil
}

// StationDetail fetches the location and geometry of one station.
func (c *Client) StationDetail(ctx context.Context, number string) (StationDetail, error) {
	var payload stationDetailPayload
	if err := c.getJSON(ctx, "/stations/"+url.PathEscape(number)+"/", nil, &payload); err != nil {
		return StationDetail{}, fmt.Errorf("station %s: %w", number, err)
	}

	detail := StationDetail{
		Number:   number,
		Location: payload.Data.Location,
	}
	// GeoJSON order: longitude first.
	if coords := payload.Data.Geometry.Coordinates; len(coords) >= 2 {
		detail.Coordinates = airquality.Coordinates{Latitude: coords[1], Longitude: coords[0]}
		detail.HasGeometry = true
	}
	return detail, nil
}

// NearestStation ranks all stations by great-circle distance to coords.
// It returns nil when no station carries a geometry.
func (c *Client) NearestStation(ctx context.Context, coords airquality.Coordinates) (*airquality.Station, error) {
	summaries, err := c.Stations(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("ranking stations", "count", len(summaries))

	var nearest *airquality.Station
	for _, s := range summaries {
		detail, err := c.StationDetail(ctx, s.Number)
		if err != nil {
			if errors.Is(err, errNotFound) {
				c.logger.Warn("station listed but not found", "station", s.Number)
				continue
			}
			return nil, err
		}
		if !detail.HasGeometry {
			continue
		}

		d := haversine(coords, detail.Coordinates)
		if nearest == nil || d < nearest.Distance {
			location := detail.Location
			if location == "" {
				location = s.Location
			}
			nearest = &airquality.Station{Number: s.Number, Location: location, Distance: d}
		}
	}
	return nearest, nil
}

// LatestMeasurement returns the most recent LKI record of a station. An empty
// result yields a Measurement with nil fields.
func (c *Client) LatestMeasurement(ctx context.Context, station string) (airquality.Measurement, error) {
	if station == "" {
		return airquality.Measurement{}, airquality.ErrNoStation
	}

	values := url.Values{}
	values.Set("station_number", station)
	values.Set("order_by", "timestamp_measured")
	values.Set("order_direction", "desc")

	var payload lkiPayload
	if err := c.getJSON(ctx, "/lki", values, &payload); err != nil {
		return airquality.Measurement{}, fmt.Errorf("lki for %s: %w", station, err)
	}
	if len(payload.Data) == 0 {
		return airquality.Measurement{}, nil
	}

	latest := payload.Data[0]
	m := airquality.Measurement{Index: latest.Value}
	if latest.TimestampMeasured != "" {
		ts, err := time.Parse(time.RFC3339, latest.TimestampMeasured)
		if err != nil {
			return airquality.Measurement{}, fmt.Errorf("lki timestamp %q: %w", latest.TimestampMeasured, err)
		}
		ts = ts.UTC()
		m.Timestamp = &ts
	}
	return m, nil
}

func (c *Client) getJSON(ctx context.Context, path string, values url.Values, out any) error {
	buildRequest := func() (*http.Request, error) {
		u := c.baseURL + path
		if len(values) > 0 {
			u = fmt.Sprintf("%s?%s", u, values.Encode())
		}
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

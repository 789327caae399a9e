package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality"
	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality/luchtmeetnet"
)

var validate = validator.New()

type AppConfig struct {
	Location LocationConfig

	// NamePrefix is prepended to every reading's display name.
	NamePrefix string `validate:"required"`
	Language   airquality.Language

	BaseURL string `validate:"required,url"`

	// HTTPTimeout bounds a single outbound request; RefreshTimeout a whole cycle.
	HTTPTimeout    time.Duration `validate:"gt=0"`
	RefreshTimeout time.Duration `validate:"gt=0"`

	// SetupRetryInterval is how long to wait before retrying a setup that was not ready.
	SetupRetryInterval time.Duration `validate:"gt=0"`

	Port     string `validate:"required,numeric"`
	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level

	MQTT MQTTConfig
}

// LocationConfig holds the configured coordinates and the host location fallbacks.
type LocationConfig struct {
	Latitude  *float64
	Longitude *float64

	HomeLatitude  *float64
	HomeLongitude *float64

	HomeCity       string
	HomeCountry    string
	GeocoderAPIKey string
}

// MQTTConfig enables reading publication when Broker is set.
type MQTTConfig struct {
	Broker      string
	Port        int    `validate:"min=1,max=65535"`
	ClientID    string `validate:"required"`
	TopicPrefix string `validate:"required"`
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	loc, err := loadLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	cfg.NamePrefix = getenvDefault("NAME", airquality.DefaultNamePrefix)

	lang, err := airquality.ParseLanguage(getenvDefault("LANGUAGE", string(airquality.LanguageEnglish)))
	if err != nil {
		return nil, fmt.Errorf("invalid LANGUAGE: %w", err)
	}
	cfg.Language = lang

	cfg.BaseURL = getenvDefault("LUCHTMEETNET_BASE_URL", luchtmeetnet.DefaultBaseURL)

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.RefreshTimeout, err = getenvDuration("REFRESH_TIMEOUT", "2m"); err != nil {
		return nil, err
	}
	if cfg.SetupRetryInterval, err = getenvDuration("SETUP_RETRY_INTERVAL", "1m"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.AppEnv = getenvDefault("APP_ENV", "dev")

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.MQTT = MQTTConfig{
		Broker:      strings.TrimSpace(os.Getenv("MQTT_BROKER")),
		Port:        getenvInt("MQTT_PORT", 1883),
		ClientID:    getenvDefault("MQTT_CLIENT_ID", "luchtmeetnet-monitor"),
		TopicPrefix: strings.Trim(getenvDefault("MQTT_TOPIC_PREFIX", "luchtmeetnet"), "/"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadLocation reads coordinate pairs; each pair must be given completely or not at all.
func loadLocation() (LocationConfig, error) {
	var loc LocationConfig
	var err error

	loc.Latitude, loc.Longitude, err = getenvPair("LATITUDE", "LONGITUDE")
	if err != nil {
		return loc, err
	}
	loc.HomeLatitude, loc.HomeLongitude, err = getenvPair("HOME_LATITUDE", "HOME_LONGITUDE")
	if err != nil {
		return loc, err
	}

	loc.HomeCity = strings.TrimSpace(os.Getenv("HOME_CITY"))
	loc.HomeCountry = strings.TrimSpace(os.Getenv("HOME_COUNTRY"))
	loc.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	return loc, nil
}

func getenvPair(latKey, lonKey string) (*float64, *float64, error) {
	lat, err := getenvFloat(latKey)
	if err != nil {
		return nil, nil, err
	}
	lon, err := getenvFloat(lonKey)
	if err != nil {
		return nil, nil, err
	}
	if (lat == nil) != (lon == nil) {
		return nil, nil, fmt.Errorf("%w: %s and %s must exist together", airquality.ErrConfiguration, latKey, lonKey)
	}
	return lat, lon, nil
}

func getenvFloat(key string) (*float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %w", airquality.ErrConfiguration, key, err)
	}
	return &f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

// IsConfigurationError reports whether err should abort setup without retrying.
func IsConfigurationError(err error) bool {
	return errors.Is(err, airquality.ErrConfiguration)
}

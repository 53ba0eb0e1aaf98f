package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/astropoint/skyquality/internal/geo"
)

// AppConfig carries all runtime configuration, loaded from environment
// variables with sensible defaults.
type AppConfig struct {
	// HTTPTimeout applies to outbound provider calls.
	HTTPTimeout time.Duration

	// Result cache sizing.
	ResultCacheCapacity int
	ResultCacheTTL      time.Duration

	// Fetch cache TTLs.
	WeatherTTL time.Duration
	LightTTL   time.Duration
	GeocodeTTL time.Duration

	// Warm-refresh job.
	RefreshInterval  time.Duration
	RefreshLocations []geo.Coordinate

	// Provider endpoints. Empty means the provider default; the light
	// pollution service has no public default and must be configured.
	OpenMeteoBaseURL      string
	NominatimBaseURL      string
	LightPollutionBaseURL string
	LightPollutionAPIKey  string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.ResultCacheCapacity = getenvInt("SIQS_CACHE_CAPACITY", 256)
	if cfg.ResultCacheTTL, err = getenvDuration("SIQS_CACHE_TTL", "5m"); err != nil {
		return nil, err
	}

	if cfg.WeatherTTL, err = getenvDuration("WEATHER_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.LightTTL, err = getenvDuration("LIGHT_POLLUTION_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.GeocodeTTL, err = getenvDuration("GEOCODE_TTL", "24h"); err != nil {
		return nil, err
	}

	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	locs, err := parseRefreshLocations(os.Getenv("REFRESH_LOCATIONS"))
	if err != nil {
		return nil, err
	}
	cfg.RefreshLocations = locs

	cfg.OpenMeteoBaseURL = os.Getenv("OPENMETEO_BASE_URL")
	cfg.NominatimBaseURL = os.Getenv("NOMINATIM_BASE_URL")
	cfg.LightPollutionBaseURL = os.Getenv("LIGHT_POLLUTION_BASE_URL")
	cfg.LightPollutionAPIKey = os.Getenv("LIGHT_POLLUTION_API_KEY")

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// parseRefreshLocations parses "lat,lon;lat,lon;..." into coordinates.
// Coordinates are sanitized (clamped), matching the rest of the system.
func parseRefreshLocations(raw string) ([]geo.Coordinate, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var coords []geo.Coordinate
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid REFRESH_LOCATIONS entry %q; want lat,lon", pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", pair, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", pair, err)
		}
		coords = append(coords, geo.Sanitize(lat, lon))
	}
	return coords, nil
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

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

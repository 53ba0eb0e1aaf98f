package siqs

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/astropoint/skyquality/internal/astro"
	"github.com/astropoint/skyquality/internal/cache"
	"github.com/astropoint/skyquality/internal/geo"
	"github.com/astropoint/skyquality/internal/lightpollution"
)

// Defaults for the service caches.
const (
	DefaultResultCapacity = 256
	DefaultResultTTL      = 5 * time.Minute
	DefaultWeatherTTL     = 10 * time.Minute
	DefaultLightTTL       = 24 * time.Hour
)

// Config carries cache sizing for a Service. Zero values fall back to
// the package defaults.
type Config struct {
	ResultCapacity int
	ResultTTL      time.Duration
	WeatherTTL     time.Duration
	LightTTL       time.Duration
}

func (c Config) withDefaults() Config {
	if c.ResultCapacity == 0 {
		c.ResultCapacity = DefaultResultCapacity
	}
	if c.ResultTTL == 0 {
		c.ResultTTL = DefaultResultTTL
	}
	if c.WeatherTTL == 0 {
		c.WeatherTTL = DefaultWeatherTTL
	}
	if c.LightTTL == 0 {
		c.LightTTL = DefaultLightTTL
	}
	return c
}

// Service is the externally visible entry point of the scoring
// subsystem. It orchestrates the night-window computation, the cached
// weather and light-pollution retrieval, and the scorer, memoizing
// results per coordinate bucket and day.
type Service struct {
	weather WeatherFetcher
	light   LightPollutionFetcher

	weatherCache *cache.Coalescing[WeatherSample]
	lightCache   *cache.Coalescing[lightpollution.Estimate]
	results      *cache.FIFO[Result]

	cfg Config
}

// NewService creates a Service with its own caches.
func NewService(weather WeatherFetcher, light LightPollutionFetcher, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		weather:      weather,
		light:        light,
		weatherCache: cache.NewCoalescing[WeatherSample](),
		lightCache:   cache.NewCoalescing[lightpollution.Estimate](),
		results:      cache.NewFIFO[Result](cfg.ResultCapacity, cfg.ResultTTL),
		cfg:          cfg,
	}
}

// CacheKey buckets a scoring request: coordinate rounded to 4 decimal
// places plus the UTC day.
func CacheKey(coord geo.Coordinate, date time.Time) string {
	return coord.Key(4) + "@" + date.UTC().Format(time.DateOnly)
}

// ComputeSiqs returns the score for a coordinate and date. Repeated
// calls inside the result TTL return the identical cached Result without
// touching the fetchers. Fetch failures are propagated, never converted
// into a zero score.
func (s *Service) ComputeSiqs(ctx context.Context, coord geo.Coordinate, date time.Time) (Result, error) {
	coord = geo.Sanitize(coord.Lat, coord.Lon)
	key := CacheKey(coord, date)

	if r, ok := s.results.Get(key); ok {
		return r, nil
	}

	window := astro.ComputeNightWindow(coord, date)

	var (
		weather WeatherSample
		light   lightpollution.Estimate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		weather, err = s.weatherCache.Get(gctx, coord.Key(4), s.cfg.WeatherTTL, func(fctx context.Context) (WeatherSample, error) {
			return s.weather.FetchWeather(fctx, coord)
		})
		if err != nil {
			return fmt.Errorf("weather fetch (%s): %w", s.weather.Name(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		light, err = s.lightCache.Get(gctx, coord.Key(4), s.cfg.LightTTL, func(fctx context.Context) (lightpollution.Estimate, error) {
			return s.light.FetchLightPollution(fctx, coord)
		})
		if err != nil {
			return fmt.Errorf("light pollution fetch (%s): %w", s.light.Name(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := ComputeScore(coord, weather, window, light)
	s.results.Set(key, result)
	return result, nil
}

// ClearCaches drops every cached value and result.
func (s *Service) ClearCaches() {
	s.weatherCache.Clear()
	s.lightCache.Clear()
	s.results.Clear()
}

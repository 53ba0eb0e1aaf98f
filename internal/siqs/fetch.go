package siqs

import (
	"context"

	"github.com/astropoint/skyquality/internal/geo"
	"github.com/astropoint/skyquality/internal/lightpollution"
)

// WeatherFetcher retrieves the current weather for a coordinate,
// including hourly cloud-cover samples when the provider has them.
type WeatherFetcher interface {
	Name() string
	FetchWeather(ctx context.Context, coord geo.Coordinate) (WeatherSample, error)
}

// LightPollutionFetcher retrieves a light-pollution estimate for a
// coordinate. An estimate with a nil Bortle field is a valid answer
// ("no data"), distinct from a fetch error.
type LightPollutionFetcher interface {
	Name() string
	FetchLightPollution(ctx context.Context, coord geo.Coordinate) (lightpollution.Estimate, error)
}

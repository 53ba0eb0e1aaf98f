package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/astropoint/skyquality/internal/geo"
	"github.com/astropoint/skyquality/internal/siqs"
)

// openMeteoTimeLayout is the minute-resolution ISO layout Open-Meteo
// uses when timezone=UTC is requested.
const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider implements siqs.WeatherFetcher against the
// Open-Meteo forecast API. No API key required.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates the provider. baseURL overrides the
// public endpoint (used by tests); empty means the default.
func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1/forecast"
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: defaultBackoff(client),
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// FetchWeather retrieves current conditions plus two days of hourly
// cloud cover, so the scorer can window cloud samples over the coming
// astronomical night.
func (p *OpenMeteoProvider) FetchWeather(ctx context.Context, coord geo.Coordinate) (siqs.WeatherSample, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coord.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coord.Lon))
		values.Set("current", "temperature_2m,relative_humidity_2m,precipitation,cloud_cover,wind_speed_10m")
		values.Set("hourly", "cloud_cover")
		values.Set("forecast_days", "2")
		values.Set("wind_speed_unit", "ms")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return siqs.WeatherSample{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Time             string   `json:"time"`
			Temperature      *float64 `json:"temperature_2m"`
			RelativeHumidity *float64 `json:"relative_humidity_2m"`
			Precipitation    *float64 `json:"precipitation"`
			CloudCover       *float64 `json:"cloud_cover"`
			WindSpeed        *float64 `json:"wind_speed_10m"`
		} `json:"current"`
		Hourly struct {
			Time       []string  `json:"time"`
			CloudCover []float64 `json:"cloud_cover"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return siqs.WeatherSample{}, err
	}

	ts, err := time.ParseInLocation(openMeteoTimeLayout, payload.Current.Time, time.UTC)
	if err != nil {
		ts = time.Now().UTC()
	}

	sample := siqs.WeatherSample{
		Temperature:   payload.Current.Temperature,
		Humidity:      payload.Current.RelativeHumidity,
		Precipitation: payload.Current.Precipitation,
		CloudCover:    payload.Current.CloudCover,
		WindSpeed:     payload.Current.WindSpeed,
		Timestamp:     ts,
	}

	for i, raw := range payload.Hourly.Time {
		if i >= len(payload.Hourly.CloudCover) {
			break
		}
		t, err := time.ParseInLocation(openMeteoTimeLayout, raw, time.UTC)
		if err != nil {
			continue
		}
		sample.CloudSamples = append(sample.CloudSamples, siqs.CloudSample{
			Time:     t,
			CoverPct: payload.Hourly.CloudCover[i],
		})
	}

	return sample, nil
}

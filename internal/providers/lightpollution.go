package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/astropoint/skyquality/internal/geo"
	"github.com/astropoint/skyquality/internal/lightpollution"
)

// LightPollutionProvider implements siqs.LightPollutionFetcher against a
// world-atlas tile service that answers either a Bortle class or a raw
// 0-255 brightness sample for a coordinate. The raw sample is converted
// through the lightpollution package's documented approximation.
type LightPollutionProvider struct {
	name    string
	baseURL string
	apiKey  string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewLightPollutionProvider creates the provider. The base URL is
// deployment-specific and required; the key may be empty for services
// that do not need one.
func NewLightPollutionProvider(client *http.Client, baseURL, apiKey string) *LightPollutionProvider {
	return &LightPollutionProvider{
		name:    "lightpollution",
		baseURL: baseURL,
		apiKey:  apiKey,
		httpCfg: defaultBackoff(client),
		circuit: newBreaker("lightpollution"),
	}
}

func (p *LightPollutionProvider) Name() string {
	return p.name
}

// FetchLightPollution retrieves the estimate for a coordinate. A
// response carrying neither a Bortle class nor a brightness sample
// yields an estimate with all fields absent, which the scorer treats by
// omitting the light-pollution factor.
func (p *LightPollutionProvider) FetchLightPollution(ctx context.Context, coord geo.Coordinate) (lightpollution.Estimate, error) {
	if p.baseURL == "" {
		return lightpollution.Estimate{}, fmt.Errorf("light pollution base URL is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", coord.Lat))
		values.Set("lon", fmt.Sprintf("%f", coord.Lon))
		if p.apiKey != "" {
			values.Set("key", p.apiKey)
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return lightpollution.Estimate{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Bortle     *float64 `json:"bortle"`
		Brightness *int     `json:"brightness"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return lightpollution.Estimate{}, err
	}

	switch {
	case payload.Bortle != nil:
		return lightpollution.FromBortle(*payload.Bortle), nil
	case payload.Brightness != nil:
		return lightpollution.FromBrightness(*payload.Brightness), nil
	default:
		return lightpollution.Unknown(), nil
	}
}

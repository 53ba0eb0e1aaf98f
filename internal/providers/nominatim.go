package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/astropoint/skyquality/internal/geo"
	"github.com/astropoint/skyquality/internal/locations"
)

// waterTypes are the OSM feature types treated as open water. Only a
// confident classification excludes a point; anything else keeps it.
var waterTypes = map[string]struct{}{
	"water":     {},
	"bay":       {},
	"strait":    {},
	"ocean":     {},
	"sea":       {},
	"reservoir": {},
}

// NominatimProvider implements locations.ReverseGeocoder against the
// OSM Nominatim reverse endpoint.
type NominatimProvider struct {
	name      string
	baseURL   string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
}

// NewNominatimProvider creates the provider. Nominatim's usage policy
// requires an identifying User-Agent; baseURL overrides the public
// endpoint (used by tests).
func NewNominatimProvider(client *http.Client, baseURL string) *NominatimProvider {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org/reverse"
	}
	return &NominatimProvider{
		name:      "nominatim",
		baseURL:   baseURL,
		userAgent: "skyquality/1.0",
		httpCfg:   defaultBackoff(client),
		circuit:   newBreaker("nominatim"),
	}
}

func (p *NominatimProvider) Name() string {
	return p.name
}

// ReverseGeocode resolves a coordinate to a place name and a water
// classification. A coordinate Nominatim cannot resolve at all (open
// ocean returns an error object, not a 404) is classified as water.
func (p *NominatimProvider) ReverseGeocode(ctx context.Context, coord geo.Coordinate) (locations.Place, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", coord.Lat))
		values.Set("lon", fmt.Sprintf("%f", coord.Lon))
		values.Set("format", "jsonv2")
		values.Set("zoom", "10")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", p.userAgent)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return locations.Place{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Error       string `json:"error"`
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Category    string `json:"category"`
		Type        string `json:"type"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return locations.Place{}, err
	}

	// "Unable to geocode" means no land feature near the point.
	if payload.Error != "" {
		return locations.Place{IsWater: true}, nil
	}

	name := payload.Name
	if name == "" {
		name = payload.DisplayName
	}

	return locations.Place{
		Name:    name,
		IsWater: p.classifyWater(payload.Category, payload.Type),
	}, nil
}

func (p *NominatimProvider) classifyWater(category, osmType string) bool {
	if category != "natural" && category != "water" && category != "waterway" {
		return false
	}
	_, ok := waterTypes[osmType]
	return ok || category == "water"
}

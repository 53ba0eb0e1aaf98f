package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/astropoint/skyquality/internal/geo"
	"github.com/astropoint/skyquality/internal/lightpollution"
	"github.com/astropoint/skyquality/internal/locations"
	"github.com/astropoint/skyquality/internal/siqs"
)

type stubWeather struct{}

func (stubWeather) Name() string { return "stub-weather" }

func (stubWeather) FetchWeather(ctx context.Context, coord geo.Coordinate) (siqs.WeatherSample, error) {
	cover := 15.0
	humidity := 40.0
	return siqs.WeatherSample{CloudCover: &cover, Humidity: &humidity}, nil
}

type stubLight struct{}

func (stubLight) Name() string { return "stub-light" }

func (stubLight) FetchLightPollution(ctx context.Context, coord geo.Coordinate) (lightpollution.Estimate, error) {
	return lightpollution.FromBortle(4), nil
}

func newTestApp() *fiber.App {
	app := fiber.New()
	svc := siqs.NewService(stubWeather{}, stubLight{}, siqs.Config{})
	RegisterRoutes(app, svc, locations.NewEngine(nil, 0))
	return app
}

func TestSiqsEndpointValidation(t *testing.T) {
	app := newTestApp()

	// Missing coordinates should return 400.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/siqs", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Non-numeric coordinates should also return 400.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/siqs?lat=abc&lon=2", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Malformed date should return 400.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/siqs?lat=40&lon=-3&date=yesterday", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestSiqsEndpointReturnsScore(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/siqs?lat=40.4168&lon=-3.7038&date=2024-03-20", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var result siqs.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.Score < 0 || result.Score > 10 {
		t.Fatalf("score out of range: %v", result.Score)
	}
	if len(result.Factors) == 0 {
		t.Fatal("expected a factor breakdown")
	}
}

func TestFilterEndpoint(t *testing.T) {
	app := newTestApp()

	body := `{
		"candidates": [
			{"id": "a", "name": "Hill", "lat": 0.5, "lon": 0},
			{"id": "b", "name": "Hill duplicate", "lat": 0.5, "lon": 0},
			{"id": "c", "name": "Too far", "lat": 3, "lon": 0}
		],
		"reference": {"lat": 0, "lon": 0},
		"radiusKm": 100,
		"mode": "calculated"
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations/filter", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var payload struct {
		Locations []locations.Candidate `json:"locations"`
		Count     int                   `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.Count != 1 {
		t.Fatalf("expected the duplicate collapsed and far candidate excluded, got %+v", payload.Locations)
	}
	if payload.Locations[0].ID != "a" {
		t.Fatalf("first-seen duplicate must win, got %s", payload.Locations[0].ID)
	}
}

func TestFilterEndpointValidation(t *testing.T) {
	app := newTestApp()

	// Unknown mode should return 400.
	body := `{"candidates": [{"id": "a", "name": "Hill", "lat": 1, "lon": 1}], "mode": "everything"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations/filter", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Empty candidate list should return 400.
	body = `{"candidates": [], "mode": "calculated"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/locations/filter", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

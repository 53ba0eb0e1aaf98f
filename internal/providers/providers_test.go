package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/astropoint/skyquality/internal/geo"
)

func TestOpenMeteoFetchWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("wind_speed_unit"); got != "ms" {
			t.Errorf("expected wind_speed_unit=ms, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"current": {
				"time": "2024-03-20T17:45",
				"temperature_2m": 9.5,
				"relative_humidity_2m": 61,
				"precipitation": 0.0,
				"cloud_cover": 25,
				"wind_speed_10m": 3.2
			},
			"hourly": {
				"time": ["2024-03-20T22:00", "2024-03-20T23:00"],
				"cloud_cover": [20, 40]
			}
		}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL)

	sample, err := p.FetchWeather(context.Background(), geo.Coordinate{Lat: 40.4, Lon: -3.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sample.Temperature == nil || *sample.Temperature != 9.5 {
		t.Fatalf("unexpected temperature: %+v", sample.Temperature)
	}
	if sample.CloudCover == nil || *sample.CloudCover != 25 {
		t.Fatalf("unexpected cloud cover: %+v", sample.CloudCover)
	}
	if sample.WindSpeed == nil || *sample.WindSpeed != 3.2 {
		t.Fatalf("unexpected wind speed: %+v", sample.WindSpeed)
	}
	if len(sample.CloudSamples) != 2 {
		t.Fatalf("expected 2 hourly cloud samples, got %d", len(sample.CloudSamples))
	}
	want := time.Date(2024, time.March, 20, 22, 0, 0, 0, time.UTC)
	if !sample.CloudSamples[0].Time.Equal(want) {
		t.Fatalf("unexpected sample time: %v", sample.CloudSamples[0].Time)
	}
	if sample.CloudSamples[1].CoverPct != 40 {
		t.Fatalf("unexpected sample cover: %v", sample.CloudSamples[1].CoverPct)
	}
}

func TestOpenMeteoMissingFieldsStayAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current": {"time": "2024-03-20T17:45"}, "hourly": {"time": [], "cloud_cover": []}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL)

	sample, err := p.FetchWeather(context.Background(), geo.Coordinate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sample.Temperature != nil || sample.Humidity != nil || sample.CloudCover != nil {
		t.Fatalf("missing provider fields must stay nil, got %+v", sample)
	}
}

func TestNominatimClassifiesWater(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected identifying User-Agent header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name": "Lake Vänern", "category": "natural", "type": "water"}`))
	}))
	defer srv.Close()

	p := NewNominatimProvider(srv.Client(), srv.URL)

	place, err := p.ReverseGeocode(context.Background(), geo.Coordinate{Lat: 58.9, Lon: 13.2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !place.IsWater {
		t.Fatal("expected natural/water feature to classify as water")
	}
	if place.Name != "Lake Vänern" {
		t.Fatalf("unexpected name: %q", place.Name)
	}
}

func TestNominatimLandAndUnresolvable(t *testing.T) {
	land := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"display_name": "Teide National Park", "category": "boundary", "type": "protected_area"}`))
	}))
	defer land.Close()

	p := NewNominatimProvider(land.Client(), land.URL)
	place, err := p.ReverseGeocode(context.Background(), geo.Coordinate{Lat: 28.27, Lon: -16.64})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.IsWater {
		t.Fatal("land feature must not classify as water")
	}

	ocean := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Unable to geocode"}`))
	}))
	defer ocean.Close()

	p = NewNominatimProvider(ocean.Client(), ocean.URL)
	place, err = p.ReverseGeocode(context.Background(), geo.Coordinate{Lat: 0, Lon: -30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !place.IsWater {
		t.Fatal("unresolvable open-ocean point must classify as water")
	}
}

func TestLightPollutionProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"brightness": 255}`))
	}))
	defer srv.Close()

	p := NewLightPollutionProvider(srv.Client(), srv.URL, "")

	est, err := p.FetchLightPollution(context.Background(), geo.Coordinate{Lat: 52.5, Lon: 13.4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Bortle == nil || *est.Bortle != 9 {
		t.Fatalf("brightness 255 must classify as Bortle 9, got %+v", est)
	}
	if est.MPSAS == nil || *est.MPSAS != 16.0 {
		t.Fatalf("brightness 255 must map to 16.0 MPSAS, got %+v", est.MPSAS)
	}
}

func TestLightPollutionProviderNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := NewLightPollutionProvider(srv.Client(), srv.URL, "")

	est, err := p.FetchLightPollution(context.Background(), geo.Coordinate{})
	if err != nil {
		t.Fatalf("a no-data answer is not an error: %v", err)
	}
	if est.Bortle != nil {
		t.Fatalf("expected absent Bortle, got %v", *est.Bortle)
	}
}

func TestResilienceRetriesServerErrors(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"bortle": 4}`))
	}))
	defer srv.Close()

	p := NewLightPollutionProvider(srv.Client(), srv.URL, "")

	est, err := p.FetchLightPollution(context.Background(), geo.Coordinate{})
	if err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if est.Bortle == nil || *est.Bortle != 4 {
		t.Fatalf("unexpected estimate after retries: %+v", est)
	}
	if hits != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits)
	}
}

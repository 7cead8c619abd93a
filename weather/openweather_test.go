package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newFakeOWM(t *testing.T, handler http.HandlerFunc) *OpenWeatherMap {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenWeatherMap(OpenWeatherConfig{
		APIKey:      "test-key",
		DefaultCity: "Beijing,cn",
		BaseURL:     srv.URL,
	})
}

func TestOpenWeatherMap_Current(t *testing.T) {
	dt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	provider := newFakeOWM(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("path = %s, want /data/2.5/weather", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "London,uk" {
			t.Errorf("q = %s, want London,uk", q.Get("q"))
		}
		if q.Get("appid") != "test-key" {
			t.Errorf("appid = %s, want test-key", q.Get("appid"))
		}
		if q.Get("units") != "metric" {
			t.Errorf("units = %s, want metric", q.Get("units"))
		}
		fmt.Fprintf(w, `{
			"dt": %d,
			"main": {"temp": 18.5, "temp_min": 14.0, "temp_max": 21.0},
			"weather": [{"description": "light rain"}]
		}`, dt.Unix())
	})

	report, err := provider.GetWeather(context.Background(), "London,uk", 0)
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}

	if report.City != "London,uk" {
		t.Errorf("City = %q", report.City)
	}
	if report.Date != "2026-08-29" {
		t.Errorf("Date = %q, want 2026-08-29", report.Date)
	}
	if report.TemperatureC != 18.5 {
		t.Errorf("TemperatureC = %v, want 18.5", report.TemperatureC)
	}
	if report.MinTemperatureC == nil || *report.MinTemperatureC != 14.0 {
		t.Errorf("MinTemperatureC = %v, want 14.0", report.MinTemperatureC)
	}
	if report.MaxTemperatureC == nil || *report.MaxTemperatureC != 21.0 {
		t.Errorf("MaxTemperatureC = %v, want 21.0", report.MaxTemperatureC)
	}
	if report.Weather != "light rain" {
		t.Errorf("Weather = %q, want light rain", report.Weather)
	}
}

func TestOpenWeatherMap_DailyForecast(t *testing.T) {
	day0 := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	day2 := day0.AddDate(0, 0, 2)

	provider := newFakeOWM(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/forecast/daily" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if cnt := r.URL.Query().Get("cnt"); cnt != "3" {
			t.Errorf("cnt = %s, want 3", cnt)
		}
		fmt.Fprintf(w, `{"list": [
			{"dt": %d, "temp": {"day": 20, "min": 15, "max": 24}, "weather": [{"description": "clear sky"}]},
			{"dt": %d, "temp": {"day": 22, "min": 16, "max": 25}, "weather": [{"description": "few clouds"}]},
			{"dt": %d, "temp": {"day": 19, "min": 13, "max": 22}, "weather": [{"description": "scattered clouds"}]}
		]}`, day0.Unix(), day0.AddDate(0, 0, 1).Unix(), day2.Unix())
	})

	report, err := provider.GetWeather(context.Background(), "Paris,fr", 2)
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}

	if report.Date != day2.Format("2006-01-02") {
		t.Errorf("Date = %q, want %q", report.Date, day2.Format("2006-01-02"))
	}
	if report.TemperatureC != 19 {
		t.Errorf("TemperatureC = %v, want 19", report.TemperatureC)
	}
	if report.Weather != "scattered clouds" {
		t.Errorf("Weather = %q", report.Weather)
	}
}

// When the daily endpoint is unavailable the provider aggregates the
// free-tier 3-hourly forecast: average temperature, most frequent
// description.
func TestOpenWeatherMap_ForecastFallback(t *testing.T) {
	target := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	provider := newFakeOWM(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/2.5/forecast/daily":
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"cod": 401, "message": "requires a paid subscription"}`)
		case "/data/2.5/forecast":
			fmt.Fprintf(w, `{"list": [
				{"dt_txt": "%[1]s 09:00:00", "main": {"temp": 10}, "weather": [{"description": "mist"}]},
				{"dt_txt": "%[1]s 12:00:00", "main": {"temp": 14}, "weather": [{"description": "overcast clouds"}]},
				{"dt_txt": "%[1]s 15:00:00", "main": {"temp": 12}, "weather": [{"description": "overcast clouds"}]},
				{"dt_txt": "2000-01-01 12:00:00", "main": {"temp": 99}, "weather": [{"description": "ignored"}]}
			]}`, target)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	report, err := provider.GetWeather(context.Background(), "Oslo,no", 1)
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}

	if report.Date != target {
		t.Errorf("Date = %q, want %q", report.Date, target)
	}
	if report.TemperatureC != 12.0 {
		t.Errorf("TemperatureC = %v, want 12.0 (average of 10, 14, 12)", report.TemperatureC)
	}
	if report.Weather != "overcast clouds" {
		t.Errorf("Weather = %q, want overcast clouds (most frequent)", report.Weather)
	}
}

func TestOpenWeatherMap_FallbackSubZeroRounding(t *testing.T) {
	target := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	provider := newFakeOWM(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/2.5/forecast/daily":
			w.WriteHeader(http.StatusUnauthorized)
		case "/data/2.5/forecast":
			fmt.Fprintf(w, `{"list": [
				{"dt_txt": "%[1]s 09:00:00", "main": {"temp": -5.2}, "weather": [{"description": "snow"}]},
				{"dt_txt": "%[1]s 12:00:00", "main": {"temp": -5.3}, "weather": [{"description": "snow"}]},
				{"dt_txt": "%[1]s 15:00:00", "main": {"temp": -5.2}, "weather": [{"description": "snow"}]}
			]}`, target)
		}
	})

	report, err := provider.GetWeather(context.Background(), "Oslo,no", 1)
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}
	if report.TemperatureC != -5.2 {
		t.Errorf("TemperatureC = %v, want -5.2 (rounded, not truncated toward zero)", report.TemperatureC)
	}
}

func TestOpenWeatherMap_FallbackNoData(t *testing.T) {
	provider := newFakeOWM(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/2.5/forecast/daily":
			w.WriteHeader(http.StatusUnauthorized)
		case "/data/2.5/forecast":
			fmt.Fprint(w, `{"list": []}`)
		}
	})

	_, err := provider.GetWeather(context.Background(), "Nowhere", 3)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("GetWeather() error = %v, want ErrUpstream", err)
	}
}

func TestOpenWeatherMap_DefaultCity(t *testing.T) {
	var gotCity string
	provider := newFakeOWM(t, func(w http.ResponseWriter, r *http.Request) {
		gotCity = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"dt": 1700000000, "main": {"temp": 1}, "weather": [{"description": "snow"}]}`)
	})

	report, err := provider.GetWeather(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}
	if gotCity != "Beijing,cn" {
		t.Errorf("queried city = %q, want default Beijing,cn", gotCity)
	}
	if report.City != "Beijing,cn" {
		t.Errorf("report city = %q, want Beijing,cn", report.City)
	}
}

func TestOpenWeatherMap_ArgumentErrors(t *testing.T) {
	t.Run("invalid days", func(t *testing.T) {
		provider := NewOpenWeatherMap(OpenWeatherConfig{APIKey: "k", DefaultCity: "x"})
		for _, days := range []int{-1, 4, 100} {
			var invalid *InvalidDaysError
			if _, err := provider.GetWeather(context.Background(), "London", days); !errors.As(err, &invalid) {
				t.Errorf("GetWeather(days=%d) error = %v, want InvalidDaysError", days, err)
			}
		}
	})

	t.Run("no city anywhere", func(t *testing.T) {
		provider := NewOpenWeatherMap(OpenWeatherConfig{APIKey: "k"})
		if _, err := provider.GetWeather(context.Background(), "", 0); !errors.Is(err, ErrNoCity) {
			t.Errorf("GetWeather() error = %v, want ErrNoCity", err)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		for _, key := range []string{"", "YOUR_OPENWEATHERMAP_API_KEY", "your_api_key_here"} {
			provider := NewOpenWeatherMap(OpenWeatherConfig{APIKey: key, DefaultCity: "x"})
			if _, err := provider.GetWeather(context.Background(), "London", 0); !errors.Is(err, ErrMissingAPIKey) {
				t.Errorf("GetWeather() with key %q error = %v, want ErrMissingAPIKey", key, err)
			}
		}
	})
}

func TestOpenWeatherMap_UpstreamError(t *testing.T) {
	provider := newFakeOWM(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"cod": "404", "message": "city not found"}`)
	})

	_, err := provider.GetWeather(context.Background(), "Atlantis", 0)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("GetWeather() error = %v, want ErrUpstream", err)
	}
}

// Package weather defines the weather tool's provider boundary and the
// OpenWeatherMap implementation behind it. The auth core only depends
// on the Provider interface; everything else here is the external
// collaborator the gate protects.
package weather

import (
	"context"
	"errors"
	"fmt"
)

// MaxForecastDays is the furthest day offset a forecast request may ask for.
const MaxForecastDays = 3

// Sentinel errors for weather requests.
var (
	// ErrNoCity indicates neither a city argument nor a default city
	// was available.
	ErrNoCity = errors.New("weather: no city provided and no default configured")

	// ErrMissingAPIKey indicates the provider has no usable API key.
	ErrMissingAPIKey = errors.New("weather: API key not configured")

	// ErrUpstream wraps failures of the weather API itself.
	ErrUpstream = errors.New("weather: upstream error")
)

// InvalidDaysError reports a day offset outside 0..MaxForecastDays.
type InvalidDaysError struct {
	Days int
}

func (e *InvalidDaysError) Error() string {
	return fmt.Sprintf("weather: days must be between 0 and %d, got %d", MaxForecastDays, e.Days)
}

// Report is the reshaped weather result returned by the get_weather tool.
type Report struct {
	City            string   `json:"city"`
	Date            string   `json:"date"`
	TemperatureC    float64  `json:"temperature_C"`
	MinTemperatureC *float64 `json:"min_temperature_C,omitempty"`
	MaxTemperatureC *float64 `json:"max_temperature_C,omitempty"`
	Weather         string   `json:"weather"`
}

// Provider fetches weather data.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: calls must honor cancellation/deadlines.
// - Errors: argument errors are ErrNoCity/InvalidDaysError; upstream
//   failures wrap ErrUpstream.
type Provider interface {
	// GetWeather returns the report for city at the given day offset:
	// 0 is current conditions, 1..MaxForecastDays are forecasts. An
	// empty city uses the provider's default.
	GetWeather(ctx context.Context, city string, days int) (*Report, error)
}

// ValidateDays checks that days is within 0..MaxForecastDays.
func ValidateDays(days int) error {
	if days < 0 || days > MaxForecastDays {
		return &InvalidDaysError{Days: days}
	}
	return nil
}

package mcpserver

import (
	"context"
	"fmt"

	"github.com/jonwraymond/weathermcp/weather"
)

// NewWeatherTool exposes a weather provider as the get_weather tool.
func NewWeatherTool(provider weather.Provider) Tool {
	return Tool{
		Name: "get_weather",
		Description: fmt.Sprintf(
			"Get weather for a city: current conditions (days=0) or a forecast up to %d days ahead.",
			weather.MaxForecastDays),
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city": map[string]any{
					"type":        "string",
					"description": "City name, optionally with country code (e.g. \"Beijing,cn\").",
				},
				"days": map[string]any{
					"type":        "integer",
					"description": "Day offset: 0 for current weather, 1-3 for forecast.",
					"minimum":     0,
					"maximum":     weather.MaxForecastDays,
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			city, _ := args["city"].(string)
			days := 0
			if raw, ok := args["days"]; ok {
				f, ok := raw.(float64)
				if !ok || f != float64(int(f)) {
					return nil, fmt.Errorf("days must be an integer, got %v", raw)
				}
				days = int(f)
			}
			report, err := provider.GetWeather(ctx, city, days)
			if err != nil {
				return nil, err
			}
			return report, nil
		},
	}
}

// NewHealthTool reports service liveness as a callable tool, so MCP
// clients can probe the server without a separate HTTP endpoint.
func NewHealthTool(service string) Tool {
	return Tool{
		Name:        "health_check",
		Description: "Check that the weather service is up.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return map[string]string{
				"status":  "healthy",
				"service": service,
			}, nil
		},
	}
}

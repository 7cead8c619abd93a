package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/jonwraymond/weathermcp/observe"
	"github.com/jonwraymond/weathermcp/resilience"
)

// Placeholder values shipped in sample configs that must not be
// treated as real API keys.
var placeholderKeys = map[string]bool{
	"YOUR_OPENWEATHERMAP_API_KEY": true,
	"your_api_key_here":           true,
}

// OpenWeatherConfig configures the OpenWeatherMap provider.
type OpenWeatherConfig struct {
	// APIKey is the OpenWeatherMap API key.
	APIKey string

	// DefaultCity is used when a request supplies no city,
	// e.g. "Beijing,cn".
	DefaultCity string

	// BaseURL overrides the API base URL. Default:
	// "https://api.openweathermap.org"
	BaseURL string

	// Timeout bounds each upstream call. Default: 10 seconds.
	Timeout time.Duration
}

// OpenWeatherMap fetches weather from the OpenWeatherMap REST API.
// Day offset 0 uses the current-weather endpoint; offsets 1..3 use the
// daily forecast endpoint, falling back to aggregating the 5-day/
// 3-hour forecast when the daily API is unavailable (it requires a
// paid plan on some accounts).
type OpenWeatherMap struct {
	cfg     OpenWeatherConfig
	client  *http.Client
	timeout *resilience.Timeout
	logger  observe.Logger
}

// OpenWeatherOption configures the provider.
type OpenWeatherOption func(*OpenWeatherMap)

// WithHTTPClient overrides the HTTP client. Intended for tests.
func WithHTTPClient(c *http.Client) OpenWeatherOption {
	return func(o *OpenWeatherMap) {
		if c != nil {
			o.client = c
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(l observe.Logger) OpenWeatherOption {
	return func(o *OpenWeatherMap) {
		if l != nil {
			o.logger = l.With(observe.String("component", "weather.openweathermap"))
		}
	}
}

// NewOpenWeatherMap creates a provider from cfg.
func NewOpenWeatherMap(cfg OpenWeatherConfig, opts ...OpenWeatherOption) *OpenWeatherMap {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openweathermap.org"
	}
	o := &OpenWeatherMap{
		cfg:     cfg,
		client:  &http.Client{},
		timeout: resilience.NewTimeout(cfg.Timeout),
		logger:  observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetWeather implements Provider.
func (o *OpenWeatherMap) GetWeather(ctx context.Context, city string, days int) (*Report, error) {
	if o.cfg.APIKey == "" || placeholderKeys[o.cfg.APIKey] {
		return nil, ErrMissingAPIKey
	}
	if city == "" {
		city = o.cfg.DefaultCity
		if city == "" {
			return nil, ErrNoCity
		}
	}
	if err := ValidateDays(days); err != nil {
		return nil, err
	}

	o.logger.Info(ctx, "fetching weather",
		observe.String("city", city), observe.Int("days", days))

	var report *Report
	err := o.timeout.Execute(ctx, func(ctx context.Context) error {
		var err error
		if days == 0 {
			report, err = o.current(ctx, city)
		} else {
			report, err = o.forecast(ctx, city, days)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

type conditions struct {
	Description string `json:"description"`
}

// current fetches today's conditions from /data/2.5/weather.
func (o *OpenWeatherMap) current(ctx context.Context, city string) (*Report, error) {
	var payload struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp    float64 `json:"temp"`
			TempMin float64 `json:"temp_min"`
			TempMax float64 `json:"temp_max"`
		} `json:"main"`
		Weather []conditions `json:"weather"`
	}
	if err := o.get(ctx, "/data/2.5/weather", url.Values{"q": {city}}, &payload); err != nil {
		return nil, err
	}
	if len(payload.Weather) == 0 {
		return nil, fmt.Errorf("%w: response has no weather conditions", ErrUpstream)
	}

	return &Report{
		City:            city,
		Date:            time.Unix(payload.Dt, 0).UTC().Format("2006-01-02"),
		TemperatureC:    payload.Main.Temp,
		MinTemperatureC: &payload.Main.TempMin,
		MaxTemperatureC: &payload.Main.TempMax,
		Weather:         payload.Weather[0].Description,
	}, nil
}

// forecast fetches the daily forecast, falling back to the 3-hourly
// API when the daily endpoint is unavailable.
func (o *OpenWeatherMap) forecast(ctx context.Context, city string, days int) (*Report, error) {
	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Temp struct {
				Day float64 `json:"day"`
				Min float64 `json:"min"`
				Max float64 `json:"max"`
			} `json:"temp"`
			Weather []conditions `json:"weather"`
		} `json:"list"`
	}
	err := o.get(ctx, "/data/2.5/forecast/daily",
		url.Values{"q": {city}, "cnt": {fmt.Sprint(days + 1)}}, &payload)
	if err != nil {
		o.logger.Warn(ctx, "daily forecast unavailable, falling back to 3-hourly forecast",
			observe.String("city", city), observe.Err(err))
		return o.forecastFallback(ctx, city, days)
	}
	if len(payload.List) <= days {
		return nil, fmt.Errorf("%w: forecast has %d entries, need %d",
			ErrUpstream, len(payload.List), days+1)
	}

	entry := payload.List[days]
	if len(entry.Weather) == 0 {
		return nil, fmt.Errorf("%w: forecast entry has no weather conditions", ErrUpstream)
	}
	return &Report{
		City:            city,
		Date:            time.Unix(entry.Dt, 0).UTC().Format("2006-01-02"),
		TemperatureC:    entry.Temp.Day,
		MinTemperatureC: &entry.Temp.Min,
		MaxTemperatureC: &entry.Temp.Max,
		Weather:         entry.Weather[0].Description,
	}, nil
}

// forecastFallback aggregates the free-tier 5-day/3-hour forecast into
// a single day: average temperature, most frequent description.
func (o *OpenWeatherMap) forecastFallback(ctx context.Context, city string, days int) (*Report, error) {
	var payload struct {
		List []struct {
			DtTxt string `json:"dt_txt"`
			Main  struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []conditions `json:"weather"`
		} `json:"list"`
	}
	if err := o.get(ctx, "/data/2.5/forecast", url.Values{"q": {city}}, &payload); err != nil {
		return nil, err
	}

	targetDate := time.Now().AddDate(0, 0, days).Format("2006-01-02")

	var (
		sum   float64
		count int
		freq  = make(map[string]int)
	)
	for _, item := range payload.List {
		if len(item.DtTxt) < len(targetDate) || item.DtTxt[:len(targetDate)] != targetDate {
			continue
		}
		sum += item.Main.Temp
		count++
		if len(item.Weather) > 0 {
			freq[item.Weather[0].Description]++
		}
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no forecast data for %s", ErrUpstream, targetDate)
	}

	desc, best := "", -1
	for d, n := range freq {
		if n > best {
			desc, best = d, n
		}
	}

	avg := math.Round(sum/float64(count)*10) / 10 // one decimal
	return &Report{
		City:         city,
		Date:         targetDate,
		TemperatureC: avg,
		Weather:      desc,
	}, nil
}

// get performs one API call and decodes the JSON response into out.
func (o *OpenWeatherMap) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("appid", o.cfg.APIKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		o.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	return nil
}

var _ Provider = (*OpenWeatherMap)(nil)

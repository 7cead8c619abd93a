package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/weathermcp/cache"
)

// countingProvider records how many calls reach it.
type countingProvider struct {
	calls  int
	report *Report
	err    error
}

func (p *countingProvider) GetWeather(_ context.Context, city string, days int) (*Report, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	r := *p.report
	return &r, nil
}

func TestCached_ServesFromCache(t *testing.T) {
	inner := &countingProvider{report: &Report{City: "London,uk", TemperatureC: 18, Weather: "rain"}}
	provider := NewCached(inner, cache.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	first, err := provider.GetWeather(ctx, "London,uk", 0)
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}
	second, err := provider.GetWeather(ctx, "London,uk", 0)
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if *first != *second {
		t.Errorf("cached report differs: %+v vs %+v", first, second)
	}
}

func TestCached_KeyIncludesCityAndDays(t *testing.T) {
	inner := &countingProvider{report: &Report{City: "x", Weather: "clear"}}
	provider := NewCached(inner, cache.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	_, _ = provider.GetWeather(ctx, "London,uk", 0)
	_, _ = provider.GetWeather(ctx, "London,uk", 1)
	_, _ = provider.GetWeather(ctx, "Paris,fr", 0)

	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3 (distinct keys)", inner.calls)
	}

	// Same city in a different case hits the same entry.
	_, _ = provider.GetWeather(ctx, "LONDON,UK", 0)
	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3 (case-insensitive key)", inner.calls)
	}
}

func TestCached_ZeroTTLDisablesCaching(t *testing.T) {
	inner := &countingProvider{report: &Report{City: "x"}}
	provider := NewCached(inner, cache.NewMemoryCache(), 0)
	ctx := context.Background()

	_, _ = provider.GetWeather(ctx, "London,uk", 0)
	_, _ = provider.GetWeather(ctx, "London,uk", 0)

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (caching disabled)", inner.calls)
	}
}

func TestCached_ErrorsNotCached(t *testing.T) {
	inner := &countingProvider{err: errors.New("boom")}
	provider := NewCached(inner, cache.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	if _, err := provider.GetWeather(ctx, "London,uk", 0); err == nil {
		t.Fatal("GetWeather() error = nil, want error")
	}
	_, _ = provider.GetWeather(ctx, "London,uk", 0)

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (errors must not be cached)", inner.calls)
	}
}

package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonwraymond/weathermcp/cache"
)

// Cached memoizes another Provider's reports in a TTL cache, keyed by
// lowercased city and day offset. A non-positive TTL disables caching
// entirely.
type Cached struct {
	provider Provider
	cache    cache.Cache
	ttl      time.Duration
}

// NewCached wraps provider with c.
func NewCached(provider Provider, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{provider: provider, cache: c, ttl: ttl}
}

// GetWeather implements Provider.
func (c *Cached) GetWeather(ctx context.Context, city string, days int) (*Report, error) {
	key := cacheKey(city, days)
	if cache.ValidateKey(key) == nil {
		if raw, ok := c.cache.Get(ctx, key); ok {
			var report Report
			if err := json.Unmarshal(raw, &report); err == nil {
				return &report, nil
			}
			// Unreadable entry; drop it and refetch.
			_ = c.cache.Delete(ctx, key)
		}
	}

	report, err := c.provider.GetWeather(ctx, city, days)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(report); err == nil {
		_ = c.cache.Set(ctx, key, raw, c.ttl)
	}
	return report, nil
}

func cacheKey(city string, days int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(city), days)
}

var _ Provider = (*Cached)(nil)

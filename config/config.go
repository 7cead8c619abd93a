// Package config loads server configuration from defaults, an optional
// YAML file, and environment variables, in ascending precedence.
package config

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonwraymond/weathermcp/secret"
)

// EnvPrefix is the prefix for configuration environment variables,
// e.g. WEATHERMCP_SERVER_PORT overrides server.port.
const EnvPrefix = "WEATHERMCP"

// Config is the fully resolved server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Weather WeatherConfig `mapstructure:"weather"`
	Observe ObserveConfig `mapstructure:"observe"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Path is the MCP endpoint path.
	Path string `mapstructure:"path"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// SecretKey signs and verifies tokens. Supports ${VAR} expansion
	// and secretref:provider:ref indirection.
	SecretKey string `mapstructure:"secret_key"`
	// TokenExpiry is the default lifetime in seconds for tokens
	// minted by the token command.
	TokenExpiry int `mapstructure:"token_expiry"`
	// BypassPaths skip authentication. A request path is bypassed when
	// it equals or is prefixed by any entry.
	BypassPaths []string `mapstructure:"bypass_paths"`
}

// WeatherConfig holds upstream weather provider settings.
type WeatherConfig struct {
	// APIKey authenticates against OpenWeatherMap. Supports the same
	// indirection as AuthConfig.SecretKey.
	APIKey      string        `mapstructure:"api_key"`
	DefaultCity string        `mapstructure:"default_city"`
	BaseURL     string        `mapstructure:"base_url"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// ObserveConfig holds telemetry settings.
type ObserveConfig struct {
	LogLevel       string  `mapstructure:"log_level"`
	TraceExporter  string  `mapstructure:"trace_exporter"`
	MetricExporter string  `mapstructure:"metric_exporter"`
	SamplePct      float64 `mapstructure:"sample_pct"`
}

// legacyEnvBinds maps configuration keys to the bare environment
// variable names the original deployment used, kept for compatibility.
var legacyEnvBinds = map[string]string{
	"auth.secret_key":      "AUTH_SECRET_KEY",
	"auth.enabled":         "AUTH_ENABLED",
	"weather.api_key":      "OPENWEATHERMAP_API_KEY",
	"weather.default_city": "DEFAULT_CITY",
}

// Load reads configuration from the given file (optional), the
// environment, and built-in defaults, then resolves secret
// indirections.
func Load(ctx context.Context, configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnvBinds {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/weathermcp")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	resolver := secret.NewResolver(secret.EnvProvider{})
	var err error
	if cfg.Auth.SecretKey, err = resolver.ResolveValue(ctx, cfg.Auth.SecretKey); err != nil {
		return nil, fmt.Errorf("resolving auth.secret_key: %w", err)
	}
	if cfg.Weather.APIKey, err = resolver.ResolveValue(ctx, cfg.Weather.APIKey); err != nil {
		return nil, fmt.Errorf("resolving weather.api_key: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// The info endpoint is mounted at <server.path>/info, so its bypass
	// entry must follow the configured path rather than assume /mcp.
	infoPath := cfg.Server.Path + "/info"
	if !slices.Contains(cfg.Auth.BypassPaths, infoPath) {
		cfg.Auth.BypassPaths = append(cfg.Auth.BypassPaths, infoPath)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.path", "/mcp")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token_expiry", 86400)
	v.SetDefault("auth.bypass_paths", []string{"/healthz", "/readyz"})

	v.SetDefault("weather.default_city", "Beijing,cn")
	v.SetDefault("weather.cache_ttl", 5*time.Minute)

	v.SetDefault("observe.log_level", "info")
	v.SetDefault("observe.trace_exporter", "stdout")
	v.SetDefault("observe.metric_exporter", "stdout")
	v.SetDefault("observe.sample_pct", 1.0)
}

// Validate checks structural constraints. A missing auth secret is not
// an error here; the gate handles that state at request time.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path %q must start with /", c.Server.Path)
	}
	if c.Auth.TokenExpiry < 0 {
		return fmt.Errorf("auth.token_expiry must not be negative")
	}
	if c.Weather.CacheTTL < 0 {
		return fmt.Errorf("weather.cache_ttl must not be negative")
	}
	return nil
}

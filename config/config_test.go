package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chtemp moves the working directory somewhere without a config.yaml
// so defaults tests are not polluted by a file in the repo root.
func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.Server.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("Addr = %q", got)
	}
	if cfg.Server.Path != "/mcp" {
		t.Errorf("Path = %q", cfg.Server.Path)
	}
	if cfg.Auth.Enabled {
		t.Error("auth enabled by default")
	}
	if cfg.Auth.TokenExpiry != 86400 {
		t.Errorf("TokenExpiry = %d", cfg.Auth.TokenExpiry)
	}
	want := []string{"/healthz", "/readyz", "/mcp/info"}
	if len(cfg.Auth.BypassPaths) != len(want) {
		t.Fatalf("BypassPaths = %v", cfg.Auth.BypassPaths)
	}
	for i, p := range want {
		if cfg.Auth.BypassPaths[i] != p {
			t.Errorf("BypassPaths[%d] = %q, want %q", i, cfg.Auth.BypassPaths[i], p)
		}
	}
	if cfg.Weather.DefaultCity != "Beijing,cn" {
		t.Errorf("DefaultCity = %q", cfg.Weather.DefaultCity)
	}
	if cfg.Weather.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.Weather.CacheTTL)
	}
}

func TestLoadFromFile(t *testing.T) {
	chtemp(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
server:
  port: 9100
auth:
  enabled: true
  secret_key: file-secret
weather:
  default_city: "Oslo,no"
  cache_ttl: 30s
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if !cfg.Auth.Enabled || cfg.Auth.SecretKey != "file-secret" {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.Weather.DefaultCity != "Oslo,no" {
		t.Errorf("DefaultCity = %q", cfg.Weather.DefaultCity)
	}
	if cfg.Weather.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v", cfg.Weather.CacheTTL)
	}
}

func TestLoadBypassFollowsServerPath(t *testing.T) {
	chtemp(t)
	t.Setenv("WEATHERMCP_SERVER_PATH", "/tools")

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	found := false
	for _, p := range cfg.Auth.BypassPaths {
		if p == "/tools/info" {
			found = true
		}
		if p == "/mcp/info" {
			t.Errorf("stale /mcp/info bypass entry with server.path /tools")
		}
	}
	if !found {
		t.Errorf("BypassPaths = %v, want /tools/info included", cfg.Auth.BypassPaths)
	}
}

func TestLoadPrefixedEnvOverrides(t *testing.T) {
	chtemp(t)
	t.Setenv("WEATHERMCP_SERVER_PORT", "9200")
	t.Setenv("WEATHERMCP_AUTH_ENABLED", "true")

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if !cfg.Auth.Enabled {
		t.Error("auth not enabled from env")
	}
}

func TestLoadLegacyEnvBinds(t *testing.T) {
	chtemp(t)
	t.Setenv("AUTH_SECRET_KEY", "legacy-secret")
	t.Setenv("OPENWEATHERMAP_API_KEY", "legacy-api-key")
	t.Setenv("DEFAULT_CITY", "Paris,fr")

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.SecretKey != "legacy-secret" {
		t.Errorf("SecretKey = %q", cfg.Auth.SecretKey)
	}
	if cfg.Weather.APIKey != "legacy-api-key" {
		t.Errorf("APIKey = %q", cfg.Weather.APIKey)
	}
	if cfg.Weather.DefaultCity != "Paris,fr" {
		t.Errorf("DefaultCity = %q", cfg.Weather.DefaultCity)
	}
}

func TestLoadResolvesSecretIndirection(t *testing.T) {
	chtemp(t)
	t.Setenv("WEATHERMCP_TEST_SECRET", "resolved-value")
	t.Setenv("AUTH_SECRET_KEY", "secretref:env:WEATHERMCP_TEST_SECRET")

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.SecretKey != "resolved-value" {
		t.Errorf("SecretKey = %q", cfg.Auth.SecretKey)
	}
}

func TestLoadUnresolvableSecretFails(t *testing.T) {
	chtemp(t)
	t.Setenv("AUTH_SECRET_KEY", "secretref:vault:whatever")

	if _, err := Load(context.Background(), ""); err == nil {
		t.Fatal("expected error for unknown secret provider")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "127.0.0.1", Port: 8000, Path: "/mcp"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"relative path", func(c *Config) { c.Server.Path = "mcp" }, true},
		{"negative expiry", func(c *Config) { c.Auth.TokenExpiry = -1 }, true},
		{"negative ttl", func(c *Config) { c.Weather.CacheTTL = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/weathermcp/auth"
	"github.com/jonwraymond/weathermcp/cache"
	"github.com/jonwraymond/weathermcp/config"
	"github.com/jonwraymond/weathermcp/health"
	"github.com/jonwraymond/weathermcp/mcpserver"
	"github.com/jonwraymond/weathermcp/observe"
	"github.com/jonwraymond/weathermcp/weather"
)

const serviceName = "weather-mcp-server"

// shutdownGrace bounds how long in-flight requests get on shutdown.
const shutdownGrace = 10 * time.Second

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the weather MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *configFile)
		},
	}
}

func runServe(ctx context.Context, configFile string) error {
	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return err
	}

	tel, err := observe.New(ctx, observe.Config{
		ServiceName:    serviceName,
		Version:        version,
		TraceExporter:  cfg.Observe.TraceExporter,
		MetricExporter: cfg.Observe.MetricExporter,
		SamplePct:      cfg.Observe.SamplePct,
		LogLevel:       cfg.Observe.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	logger := tel.Logger()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx, "telemetry shutdown", observe.Err(err))
		}
	}()

	if cfg.Auth.Enabled && cfg.Auth.SecretKey == "" {
		logger.Error(ctx, "authentication enabled without a secret key: all requests will be rejected",
			observe.String("hint", "set AUTH_SECRET_KEY or auth.secret_key"))
	}

	authMetrics, err := observe.NewAuthMetrics(tel.Meter())
	if err != nil {
		return fmt.Errorf("initializing auth metrics: %w", err)
	}
	toolMetrics, err := observe.NewToolMetrics(tel.Meter())
	if err != nil {
		return fmt.Errorf("initializing tool metrics: %w", err)
	}

	gate := auth.NewGate(auth.Config{
		Enabled:     cfg.Auth.Enabled,
		Secret:      cfg.Auth.SecretKey,
		BypassPaths: cfg.Auth.BypassPaths,
	}, auth.WithLogger(logger), auth.WithMetrics(authMetrics))

	provider := buildProvider(cfg, logger)

	srv := mcpserver.New(mcpserver.Config{
		ServiceName: serviceName,
		Version:     version,
		Path:        cfg.Server.Path,
	}, mcpserver.WithLogger(logger), mcpserver.WithMetrics(toolMetrics))

	if err := srv.Register(mcpserver.NewWeatherTool(provider)); err != nil {
		return err
	}
	if err := srv.Register(mcpserver.NewHealthTool(serviceName)); err != nil {
		return err
	}

	agg := health.NewAggregator(
		health.NewCheckFunc("weather_api_key", func(ctx context.Context) health.Result {
			if cfg.Weather.APIKey == "" {
				return health.Degraded("OPENWEATHERMAP_API_KEY is not set")
			}
			return health.Healthy("api key configured")
		}),
	)

	mux := http.NewServeMux()
	mux.Handle(srv.Path(), srv.Handler())
	mux.Handle(srv.Path()+"/info", health.InfoHandler(serviceName))
	mux.Handle("/healthz", health.LivenessHandler())
	mux.Handle("/readyz", health.ReadinessHandler(agg))

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           auth.Middleware(gate, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(ctx, "server listening",
			observe.String("addr", cfg.Server.Addr()),
			observe.String("path", srv.Path()),
			observe.Bool("auth_enabled", cfg.Auth.Enabled))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildProvider(cfg *config.Config, logger observe.Logger) weather.Provider {
	var provider weather.Provider = weather.NewOpenWeatherMap(weather.OpenWeatherConfig{
		APIKey:      cfg.Weather.APIKey,
		DefaultCity: cfg.Weather.DefaultCity,
		BaseURL:     cfg.Weather.BaseURL,
	}, weather.WithLogger(logger))

	if cfg.Weather.CacheTTL > 0 {
		provider = weather.NewCached(provider, cache.NewMemoryCache(), cfg.Weather.CacheTTL)
	}
	return provider
}

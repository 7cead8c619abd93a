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
	"github.com/jonwraymond/weathermcp/config"
	"github.com/jonwraymond/weathermcp/observe"
	"github.com/jonwraymond/weathermcp/proxy"
)

func newProxyCmd(configFile *string) *cobra.Command {
	var (
		listen   string
		upstream string
	)

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run an authenticating reverse proxy in front of an MCP server",
		Long: `Run a reverse proxy that enforces bearer token authentication and
forwards allowed requests to an upstream MCP server unchanged. Useful
for adding auth to an MCP server that has none.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runProxy(ctx, *configFile, listen, upstream)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "127.0.0.1:8080", "address to listen on")
	cmd.Flags().StringVarP(&upstream, "upstream", "t", "", "upstream MCP base URL (required)")
	_ = cmd.MarkFlagRequired("upstream")
	return cmd
}

func runProxy(ctx context.Context, configFile, listen, upstream string) error {
	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return err
	}

	tel, err := observe.New(ctx, observe.Config{
		ServiceName:    serviceName + "-proxy",
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

	gate := auth.NewGate(auth.Config{
		Enabled:     cfg.Auth.Enabled,
		Secret:      cfg.Auth.SecretKey,
		BypassPaths: cfg.Auth.BypassPaths,
	}, auth.WithLogger(logger), auth.WithMetrics(authMetrics))

	fwd, err := proxy.NewForwarder(upstream, proxy.WithLogger(logger))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              listen,
		Handler:           auth.Middleware(gate, fwd),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(ctx, "proxy listening",
			observe.String("addr", listen),
			observe.String("upstream", upstream),
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

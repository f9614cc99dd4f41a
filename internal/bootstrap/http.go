package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/bnastase-alt/rider-onboarding/config"
	httpx "github.com/bnastase-alt/rider-onboarding/internal/http"
)

const shutdownTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for the HTTP handler.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *Services
	Redis    redis.UniversalClient
	DB       *sql.DB // optional
	Logger   *slog.Logger
}

// BuildHandler creates the router with health checks for the connected stores.
func BuildHandler(cfg HTTPServerConfig) (http.Handler, error) {
	if cfg.Config == nil || cfg.Services == nil {
		return nil, errors.New("http: config and services are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	checks := map[string]httpx.HealthCheck{}
	if cfg.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return cfg.Redis.Ping(ctx).Err() }
	}
	if cfg.DB != nil {
		checks["postgres"] = cfg.DB.PingContext
	}

	var compression *httpx.CompressionConfig
	if cfg.Config.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", cfg.Config.HTTP.CompressionLevel)
		compression = &httpx.CompressionConfig{Level: cfg.Config.HTTP.CompressionLevel, Logger: logger}
	}

	proxies, err := cfg.Config.HTTP.TrustedProxyPrefixes()
	if err != nil {
		return nil, err
	}

	return httpx.NewRouter(httpx.RouterServices{
		Auth:           cfg.Services.Auth,
		Forms:          cfg.Services.Forms,
		Captcha:        cfg.Services.Captcha,
		Wizard:         cfg.Services.Wizard,
		HealthChecks:   checks,
		Compression:    compression,
		CookieDomain:   cfg.Config.HTTP.CookieDomain,
		CaptchaSiteKey: cfg.Config.Captcha.SiteKey,
		TrustedProxies: proxies,
		IsDev:          cfg.Config.IsDev,
		Logger:         logger,
	})
}

// NewServer wraps handler with the server timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Serve runs server on ln until ctx is canceled, then shuts it down gracefully.
// A nil ln listens on server.Addr.
func Serve(ctx context.Context, server *http.Server, ln net.Listener, logger *slog.Logger) error {
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", server.Addr); err != nil {
			return fmt.Errorf("listen %s: %w", server.Addr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}

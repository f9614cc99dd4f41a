package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnastase-alt/rider-onboarding/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger(os.Stdout, slog.LevelInfo)
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger = bootstrap.InitLogger(os.Stdout, cfg.LogLevel)
	bootstrap.LogStartup(logger, &cfg)

	redisClient, err := bootstrap.ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.Error("close redis failed", "error", cerr)
		}
	}()

	db, profiles, err := bootstrap.OpenProfiles(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.Error("close database failed", "error", cerr)
			}
		}()
		if err = bootstrap.SeedDevProfile(ctx, cfg.Auth, profiles, logger); err != nil {
			return err
		}
	}

	metrics, err := bootstrap.NewMetrics(cfg.Observability.Metrics, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := metrics.Close(); cerr != nil {
			logger.Error("close metrics failed", "error", cerr)
		}
	}()

	services, err := bootstrap.NewServices(ctx, bootstrap.ServiceDeps{
		Config:   &cfg,
		Redis:    redisClient,
		Profiles: profiles,
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	handler, err := bootstrap.BuildHandler(bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Services: services,
		Redis:    redisClient,
		DB:       db,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.Serve(ctx, bootstrap.NewServer(cfg.HTTP.Addr, handler), nil, logger)
}

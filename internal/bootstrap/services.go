package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/bnastase-alt/rider-onboarding/config"
	"github.com/bnastase-alt/rider-onboarding/internal/adapters/recaptcha"
	redisadapter "github.com/bnastase-alt/rider-onboarding/internal/adapters/redis"
	"github.com/bnastase-alt/rider-onboarding/internal/data"
	"github.com/bnastase-alt/rider-onboarding/internal/observability/statsd"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
	"github.com/bnastase-alt/rider-onboarding/internal/service"
)

const (
	sessionKeyPrefix = "session:"
	wizardKeyPrefix  = "wizard:"
)

// ServiceDeps groups the infrastructure the services are built on.
type ServiceDeps struct {
	Config   *config.AppConfig
	Redis    redis.UniversalClient
	Profiles *data.ProfileRepo // nil unless ROLE_SOURCE=profiles
	Metrics  statsd.Sink
	Logger   *slog.Logger

	// Provider overrides the AUTH_MODE provider (tests).
	Provider ports.IdentityProvider
	// Verifier overrides the reCAPTCHA relay client (tests).
	Verifier ports.CaptchaVerifier
}

// Services is the set of application services handed to the router.
type Services struct {
	Captcha *service.CaptchaService
	Auth    *service.AuthService
	Forms   *service.AuthFormService
	Wizard  *service.WizardService
}

// NewServices wires stores, adapters and services from configuration.
func NewServices(ctx context.Context, deps ServiceDeps) (*Services, error) {
	if deps.Config == nil {
		return nil, errors.New("services: config is required")
	}
	if deps.Redis == nil {
		return nil, errors.New("services: redis client is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	captcha, err := newCaptchaService(cfg.Captcha, deps, logger)
	if err != nil {
		return nil, err
	}

	provider := deps.Provider
	if provider == nil {
		if provider, err = BuildIdentityProvider(ctx, cfg.Auth); err != nil {
			return nil, err
		}
	}
	roles, err := BuildRoleResolver(cfg.Auth, deps.Profiles)
	if err != nil {
		return nil, err
	}

	rules, err := cfg.Onboarding.Rules()
	if err != nil {
		return nil, err
	}

	wizardStore := redisadapter.NewWizardStore(redisadapter.WizardStoreOptions{
		Client: deps.Redis,
		Prefix: wizardKeyPrefix,
	})

	auth, err := service.NewAuthService(service.AuthServiceOptions{
		Provider:   provider,
		Roles:      roles,
		Sessions:   redisadapter.NewSessionStore(deps.Redis, sessionKeyPrefix),
		Wizard:     wizardStore,
		SessionTTL: cfg.Auth.SessionTTL,
		Metrics:    deps.Metrics,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	forms, err := service.NewAuthFormService(service.AuthFormServiceOptions{
		Captcha: captcha,
		Auth:    auth,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("auth form service: %w", err)
	}

	wizard, err := service.NewWizardService(service.WizardServiceOptions{
		Store:   wizardStore,
		Rules:   rules,
		Metrics: deps.Metrics,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wizard service: %w", err)
	}

	return &Services{Captcha: captcha, Auth: auth, Forms: forms, Wizard: wizard}, nil
}

func newCaptchaService(cfg config.CaptchaConfig, deps ServiceDeps, logger *slog.Logger) (*service.CaptchaService, error) {
	opts := service.CaptchaServiceOptions{
		Bypass:  cfg.Bypassed(),
		Metrics: deps.Metrics,
		Logger:  logger,
	}
	if !opts.Bypass {
		opts.Verifier = deps.Verifier
		if opts.Verifier == nil {
			v, err := recaptcha.NewVerifier(recaptcha.VerifierConfig{
				Secret:    cfg.SecretKey,
				VerifyURL: cfg.VerifyURL,
				Timeout:   cfg.Timeout,
			})
			if err != nil {
				return nil, fmt.Errorf("captcha verifier: %w", err)
			}
			opts.Verifier = v
		}
	} else {
		logger.Warn("captcha verification is bypassed")
	}
	svc, err := service.NewCaptchaService(opts)
	if err != nil {
		return nil, fmt.Errorf("captcha service: %w", err)
	}
	return svc, nil
}

// NewMetrics builds the StatsD client. A disabled config yields a client that drops everything.
func NewMetrics(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	return statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
}

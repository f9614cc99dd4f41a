package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnastase-alt/rider-onboarding/config"
	"github.com/bnastase-alt/rider-onboarding/internal/adapters/authroles"
	"github.com/bnastase-alt/rider-onboarding/internal/adapters/devauth"
	"github.com/bnastase-alt/rider-onboarding/internal/adapters/gotrue"
	"github.com/bnastase-alt/rider-onboarding/internal/adapters/oidc"
	"github.com/bnastase-alt/rider-onboarding/internal/data"
	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

// BuildIdentityProvider creates the identity provider selected by AUTH_MODE.
//
//nolint:ireturn // the provider type is chosen at runtime.
func BuildIdentityProvider(ctx context.Context, cfg config.AuthConfig) (ports.IdentityProvider, error) {
	var (
		prov ports.IdentityProvider
		err  error
	)
	switch cfg.Mode {
	case config.AuthModeGoTrue:
		var c *gotrue.Client
		c, err = gotrue.NewClient(gotrue.ClientConfig{
			BaseURL: cfg.GoTrue.URL,
			AnonKey: cfg.GoTrue.AnonKey,
			Timeout: cfg.IdentityTimeout,
		})
		prov = c
	case config.AuthModeOIDC:
		var p *oidc.Provider
		p, err = oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			Scope:        cfg.OIDC.Scope,
			DiscoveryURL: cfg.OIDC.DiscoveryURL,
			Timeout:      cfg.IdentityTimeout,
		})
		prov = p
	case config.AuthModeMock:
		var p *devauth.Provider
		p, err = newDevProvider(cfg)
		prov = p
	default:
		err = fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s identity provider: %w", cfg.Mode, err)
	}
	return prov, nil
}

func newDevProvider(cfg config.AuthConfig) (*devauth.Provider, error) {
	return devauth.NewProvider(devauth.Config{
		UserID:          cfg.DevAuth.UserID,
		Email:           cfg.DevAuth.Email,
		Password:        cfg.DevAuth.Password,
		FirstName:       cfg.DevAuth.FirstName,
		LastName:        cfg.DevAuth.LastName,
		Role:            cfg.DevAuth.Role,
		SessionDuration: cfg.SessionTTL,
	})
}

// BuildRoleResolver creates the role resolver selected by ROLE_SOURCE.
// profiles is required for the profiles source.
//
//nolint:ireturn // the resolver type is chosen at runtime.
func BuildRoleResolver(cfg config.AuthConfig, profiles *data.ProfileRepo) (ports.RoleResolver, error) {
	switch cfg.RoleSource {
	case config.RoleSourceClaims:
		r, err := authroles.NewClaimResolver(cfg.RoleClaimExpr)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.RoleSourceProfiles:
		if profiles == nil {
			return nil, errors.New("ROLE_SOURCE=profiles requires a database")
		}
		return profiles, nil
	default:
		return nil, fmt.Errorf("unsupported role source %q", cfg.RoleSource)
	}
}

// ProfileSeeder stores a profile row for an identity.
type ProfileSeeder interface {
	Upsert(ctx context.Context, id domainauth.Identity, role domainauth.Role) error
}

// SeedDevProfile signs the default mock account in once and stores its profile,
// so profile-based role lookups succeed for it.
func SeedDevProfile(ctx context.Context, cfg config.AuthConfig, profiles ProfileSeeder, logger *slog.Logger) error {
	if cfg.Mode != config.AuthModeMock || cfg.RoleSource != config.RoleSourceProfiles || profiles == nil {
		return nil
	}
	prov, err := newDevProvider(cfg)
	if err != nil {
		return err
	}
	id, err := prov.SignInWithPassword(ctx, cfg.DevAuth.Email, cfg.DevAuth.Password)
	if err != nil {
		return fmt.Errorf("sign in dev account: %w", err)
	}
	role := domainauth.ParseRole(cfg.DevAuth.Role)
	if err := profiles.Upsert(ctx, id, role); err != nil {
		return fmt.Errorf("seed dev profile: %w", err)
	}
	logger.InfoContext(ctx, "seeded dev profile", "user_id", id.UserID, "role", role)
	return nil
}

// OpenProfiles connects the profiles database when ROLE_SOURCE needs it.
// It returns (nil, nil, nil) for the claims source.
func OpenProfiles(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*sql.DB, *data.ProfileRepo, error) {
	if cfg.Auth.RoleSource != config.RoleSourceProfiles {
		return nil, nil, nil
	}
	db, err := ConnectDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}
	if cfg.Postgres.RunMigrationsOnStart {
		if err := RunMigrations(ctx, db, logger); err != nil {
			return nil, nil, errors.Join(err, db.Close())
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}
	return db, data.NewProfileRepo(db, cfg.Postgres.ProfileQueryTimeout), nil
}

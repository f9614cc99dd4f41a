package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	apperrors "github.com/bnastase-alt/rider-onboarding/internal/errors"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

const defaultProfileQueryTimeout = 3 * time.Second

// ProfileRepo reads the role attribute from the profiles table.
type ProfileRepo struct {
	DB      *sql.DB
	Timeout time.Duration
}

var _ ports.RoleResolver = (*ProfileRepo)(nil)

// NewProfileRepo creates a ProfileRepo. A zero timeout uses the default.
func NewProfileRepo(db *sql.DB, timeout time.Duration) *ProfileRepo {
	if timeout <= 0 {
		timeout = defaultProfileQueryTimeout
	}
	return &ProfileRepo{DB: db, Timeout: timeout}
}

// ResolveRole returns the stored role for the identity's user id.
// A missing profile row is an error (mapped to not_found); callers must not assume a default.
func (r *ProfileRepo) ResolveRole(ctx context.Context, id domainauth.Identity) (domainauth.Role, error) {
	if id.UserID == "" {
		return "", errors.New("identity has no user id")
	}
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var role sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT role FROM profiles WHERE id = $1`, id.UserID).Scan(&role)
	if err != nil {
		return "", apperrors.MapDBError(err)
	}
	return domainauth.ParseRole(role.String), nil
}

// Upsert creates or updates a profile row. Used by seeding and tests.
func (r *ProfileRepo) Upsert(ctx context.Context, id domainauth.Identity, role domainauth.Role) error {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO profiles (id, first_name, last_name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    last_name  = EXCLUDED.last_name,
		    role       = EXCLUDED.role,
		    updated_at = now()
	`, id.UserID, id.FirstName, id.LastName, string(role))
	return apperrors.MapDBError(err)
}

package errors

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	msgDBTimeout     = "Request timed out. Please try again."
	msgDBUnavailable = "The database is unavailable. Please try again."
)

// uniqueKeyDetail matches the Detail of a unique violation: "Key (field)=(value) already exists.".
var uniqueKeyDetail = regexp.MustCompile(`Key \(([^)]+)\)=`)

// MapDBError turns errors from the profiles store into AppErrors:
// context deadline or cancel, missing rows, unreachable servers and Postgres error classes.
// Anything else is returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	var (
		pgErr   *pgconn.PgError
		connErr *pgconn.ConnectError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, msgDBTimeout)
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	case errors.As(err, &pgErr):
		return mapPgError(pgErr)
	case errors.As(err, &connErr):
		return Wrap(err, ErrCodeInternal, msgDBUnavailable)
	default:
		return err
	}
}

func mapPgError(pgErr *pgconn.PgError) *AppError {
	code := pgErr.Code
	switch {
	case code == pgerrcode.UniqueViolation:
		appErr := Wrap(pgErr, ErrCodeValidation, "This value already exists.")
		appErr.Field = violatedField(pgErr)
		return appErr
	case code == pgerrcode.UndefinedTable, code == pgerrcode.UndefinedColumn:
		// migrations have not run against this database
		return Wrap(pgErr, ErrCodeInternal, "The database schema is out of date.")
	case code == pgerrcode.QueryCanceled:
		return Wrap(pgErr, ErrCodeTimeout, msgDBTimeout)
	case pgerrcode.IsInsufficientResources(code), pgerrcode.IsConnectionException(code):
		return Wrap(pgErr, ErrCodeInternal, msgDBUnavailable)
	default:
		return Wrap(pgErr, ErrCodeInternal, "A database error occurred. Please try again.")
	}
}

func violatedField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := uniqueKeyDetail.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	return ""
}

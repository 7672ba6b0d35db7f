package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// PostgreSQL SQLSTATE codes for integrity violations.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeNotNullViolation    = "23502"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint, either raw or already converted by AsConstraintViolation.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == CodeUniqueViolation && pgErr.ConstraintName == constraintName
	}
	return ConstraintName(err) == constraintName
}

// ConstraintName returns the constraint named by a converted violation, or "".
func ConstraintName(err error) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && errors.Is(custom.Err, apperrors.ErrConstraintViolation) {
		return custom.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is any unique violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation
}

// AsConstraintViolation converts integrity violations into apperrors.ErrConstraintViolation
// carrying the server message. Any other error is returned unchanged.
func AsConstraintViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case CodeUniqueViolation, CodeForeignKeyViolation, CodeCheckViolation, CodeNotNullViolation:
		msg := pgErr.Message
		if pgErr.Detail != "" {
			msg = msg + ": " + pgErr.Detail
		}
		return apperrors.NewConstraintError(pgErr.ConstraintName, msg)
	default:
		return err
	}
}

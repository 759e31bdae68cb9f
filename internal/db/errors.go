package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alpost/backend/internal/forum"
)

// PostgreSQL SQLSTATE codes the store reacts to.
const (
	sqlstateUniqueViolation      = "23505"
	sqlstateForeignKeyViolation  = "23503"
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

// translateError maps driver errors onto forum sentinels. Conflicts that a
// rerun of the transaction can resolve become forum.ErrConflict; a missing
// foreign key target becomes forum.ErrNotFound.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case sqlstateSerializationFailure, sqlstateDeadlockDetected, sqlstateUniqueViolation:
		return fmt.Errorf("%w: %w", forum.ErrConflict, err)
	case sqlstateForeignKeyViolation:
		return fmt.Errorf("%w: %s", forum.ErrNotFound, pgErr.ConstraintName)
	default:
		return err
	}
}

// translateUserError reports duplicate usernames and emails as input errors.
func translateUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlstateUniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return &forum.InputError{Field: "email", Message: "email already taken"}
		}
		return &forum.InputError{Field: "username", Message: "username already taken"}
	}
	return translateError(err)
}

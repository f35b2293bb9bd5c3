package repository

import (
	"errors"
	"fmt"

	domainRepo "medical-slot-booking/internal/domain/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the store translates.
const (
	pgUniqueViolation      = "23505"
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// translateError converts driver errors into the domain storage vocabulary so
// that no pgconn type escapes this package.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation, pgExclusionViolation:
		return &domainRepo.UniqueViolationError{Constraint: pgErr.ConstraintName, Err: err}
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return fmt.Errorf("%w: %s", domainRepo.ErrStaleVersion, pgErr.Message)
	default:
		return err
	}
}

package database

import (
	"context"
	"errors"
	"fmt"
	"net"

	"rewards/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the store reacts to
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
	pgLockNotAvailable     = "55P03"
)

// StorageError maps driver errors onto the domain error taxonomy.
// Unrecognized errors are returned unchanged.
func StorageError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%s: %w", pgErr.Message, errors.Join(entities.ErrTransactionConflict, err))
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, errors.Join(entities.ErrAlreadyExists, err))
		}
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return errors.Join(entities.ErrStorageUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.SafeToRetry(err) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(entities.ErrStorageUnavailable, err)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return errors.Join(entities.ErrStorageUnavailable, err)
	}

	return err
}

package database

import (
	"errors"
	"testing"

	"rewards/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestStorageError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, want: entities.ErrTransactionConflict},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: entities.ErrTransactionConflict},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", ConstraintName: "accounts_pkey"}, want: entities.ErrAlreadyExists},
		{name: "connection exception", err: &pgconn.PgError{Code: "08006"}, want: entities.ErrStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := StorageError(tt.err)
			assert.ErrorIs(t, got, tt.want)

			var pgErr *pgconn.PgError
			assert.True(t, errors.As(got, &pgErr), "driver error should stay reachable")
		})
	}

	t.Run("unrelated errors pass through", func(t *testing.T) {
		t.Parallel()

		plain := errors.New("boom")
		assert.Equal(t, plain, StorageError(plain))
		assert.Nil(t, StorageError(nil))
	})
}

package models

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateDBError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows passes through", pgx.ErrNoRows, pgx.ErrNoRows},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrDuplicateKey},
		{"fk violation", &pgconn.PgError{Code: "23503"}, ErrConstraintViolation},
		{"check violation", &pgconn.PgError{Code: "23514"}, ErrConstraintViolation},
		{"statement timeout", &pgconn.PgError{Code: "57014"}, ErrStorageTimeout},
		{"connection failure", &pgconn.PgError{Code: "08006"}, ErrStorageUnavailable},
		{"context deadline", context.DeadlineExceeded, ErrStorageTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateDBError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
			} else {
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}

func TestTranslateDBErrorUnknownPassesThrough(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, err, TranslateDBError(err))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFound(ErrCartNotFound))
	assert.True(t, IsNotFound(ErrProductNotFound))
	assert.True(t, IsNotFound(ErrCustomerNotFound))
	assert.False(t, IsNotFound(ErrEmptyCart))

	assert.True(t, IsRetryable(ErrStorageTimeout))
	assert.True(t, IsRetryable(ErrStorageUnavailable))
	assert.False(t, IsRetryable(ErrCartNotFound))
	assert.False(t, IsRetryable(ErrConstraintViolation))
}

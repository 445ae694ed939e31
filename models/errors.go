package models

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCategoryNotFound = errors.New("category not found")

	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidStatus   = errors.New("invalid order status transition")

	// ErrDuplicateKey is caught inside the cart-item upsert and converted
	// to an increment; callers never see it.
	ErrDuplicateKey = errors.New("duplicate key")

	ErrStorageTimeout      = errors.New("storage timeout")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrConstraintViolation = errors.New("constraint violation")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCategoryNotFound)
}

// IsRetryable reports whether err is a transient storage failure the
// caller may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageTimeout) || errors.Is(err, ErrStorageUnavailable)
}

// TranslateDBError maps pgx errors to the sentinel taxonomy. pgx.ErrNoRows
// is left to the caller, which knows which entity was being looked up.
func TranslateDBError(err error) error {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStorageTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return ErrDuplicateKey
		case pgErr.Code == "57014": // statement timeout
			return ErrStorageTimeout
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23":
			return ErrConstraintViolation
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08":
			return ErrStorageUnavailable
		}
	}

	if pgconn.Timeout(err) {
		return ErrStorageTimeout
	}

	return err
}

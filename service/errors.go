package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the loyalty subsystem. Callers branch with errors.Is;
// raw storage-driver errors never cross this boundary.
var (
	// ErrInvalidInput is returned when an input fails validation before any
	// state is touched.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLoyaltyNotFound is returned when no account exists for a player.
	ErrLoyaltyNotFound = errors.New("loyalty account not found")

	// ErrLoyaltyAlreadyExists is returned on a duplicate initialization
	// attempt. Initialization is a guard, not an upsert.
	ErrLoyaltyAlreadyExists = errors.New("loyalty account already exists")

	// ErrInsufficientBalance is returned when a redemption would take the
	// spendable balance below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrStorageUnavailable is returned for transient infrastructure
	// failures. Safe to retry the whole call: accrual is idempotent per
	// (session_id, transaction_type).
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// InvalidInputError carries the offending field alongside ErrInvalidInput
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// InsufficientBalanceError carries balance details alongside ErrInsufficientBalance
type InsufficientBalanceError struct {
	PlayerID  string
	Available int64
	Requested int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for player %s: have %d, need %d",
		e.PlayerID, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// invalidInput builds an InvalidInputError for a single field
func invalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// storageError tags an unclassified repository error as a transient storage
// failure so callers see the subsystem taxonomy rather than driver details.
// Domain errors pass through untouched.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrLoyaltyNotFound) ||
		errors.Is(err, ErrLoyaltyAlreadyExists) ||
		errors.Is(err, ErrInsufficientBalance) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

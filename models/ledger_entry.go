package models

import (
	"time"
)

// TransactionType represents the kind of point-affecting transaction
type TransactionType string

const (
	TransactionTypeGameplay    TransactionType = "GAMEPLAY"
	TransactionTypeManualBonus TransactionType = "MANUAL_BONUS"
	TransactionTypeRedemption  TransactionType = "REDEMPTION"
	TransactionTypeAdjustment  TransactionType = "ADJUSTMENT"
	TransactionTypePromotion   TransactionType = "PROMOTION"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeGameplay, TransactionTypeManualBonus, TransactionTypeRedemption,
		TransactionTypeAdjustment, TransactionTypePromotion:
		return true
	}
	return false
}

// LedgerEntry represents one immutable point transaction. Entries are
// append-only; corrections are new entries, never edits.
//
// When SessionID is set, (session_id, transaction_type) identifies at most
// one committed entry. That pair is the idempotency key protecting against
// duplicate accrual from retried or concurrently duplicated submissions.
type LedgerEntry struct {
	ID              int64           `db:"id"`
	PlayerID        string          `db:"player_id"`
	PointsChange    int64           `db:"points_change"`
	TransactionType TransactionType `db:"transaction_type"`
	Reason          string          `db:"reason"`
	SessionID       *string         `db:"session_id"`
	RatingSlipID    *string         `db:"rating_slip_id"`
	Source          *string         `db:"source"`
	CreatedAt       time.Time       `db:"created_at"`
}

package service

import (
	"context"

	"pitboss/events"
	"pitboss/models"
)

// LoyaltyRepository defines the interface for loyalty account data access
type LoyaltyRepository interface {
	// Create creates a new account with zero balances and BRONZE tier.
	// Returns ErrLoyaltyAlreadyExists if the player already has an account.
	Create(ctx context.Context, playerID string) (*models.LoyaltyAccount, error)

	// GetByPlayerID retrieves an account. Returns (nil, nil) when absent.
	GetByPlayerID(ctx context.Context, playerID string) (*models.LoyaltyAccount, error)

	// IncrementLoyalty atomically applies a signed point delta to an
	// account: balance moves by delta, lifetime only by positive deltas,
	// and tier/tier_progress are recomputed from the new lifetime total.
	// The row lock is held for the whole read-modify-write.
	IncrementLoyalty(ctx context.Context, playerID string, delta int64) (*models.LoyaltyAccount, error)

	// Update applies a partial field update. Nil fields are left unchanged.
	Update(ctx context.Context, playerID string, fields UpdateLoyaltyFields) (*models.LoyaltyAccount, error)
}

// UpdateLoyaltyFields carries the optional fields for a partial account update
type UpdateLoyaltyFields struct {
	CurrentBalance *int64
	LifetimePoints *int64
	Tier           *models.Tier
	TierProgress   *int
}

// LedgerRepository defines the interface for the append-only transaction log
type LedgerRepository interface {
	// Create appends a ledger entry. When the entry carries a session ID,
	// the write is guarded by the (session_id, transaction_type) uniqueness
	// constraint: a conflicting insert is a soft success, and the entry is
	// populated from the pre-existing row with created=false. Entries
	// without a session ID always insert a new row.
	Create(ctx context.Context, entry *models.LedgerEntry) (created bool, err error)

	// GetBySession retrieves the committed entry for an idempotency key.
	// Returns (nil, nil) when absent.
	GetBySession(ctx context.Context, sessionID string, transactionType models.TransactionType) (*models.LedgerEntry, error)

	// GetByPlayer returns the most recent entries for a player
	GetByPlayer(ctx context.Context, playerID string, limit int) ([]*models.LedgerEntry, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	LoyaltyRepository() LoyaltyRepository
	LedgerRepository() LedgerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AccrueParams carries one point-affecting transaction
type AccrueParams struct {
	PlayerID        string
	Points          int64
	TransactionType models.TransactionType
	Reason          string
	SessionID       *string
	RatingSlipID    *string
	Source          *string
}

// AccrueResult is the tagged outcome of an accrual. Existing reports whether
// the ledger entry pre-existed (an idempotent replay): the balance was not
// touched again and Entry references the originally committed row.
type AccrueResult struct {
	Entry    *models.LedgerEntry
	Account  *models.LoyaltyAccount
	Existing bool
}

// LoyaltyService defines the interface for loyalty operations
type LoyaltyService interface {
	// ComputePoints runs the pure points calculation
	ComputePoints(in CalculationInput) (int64, error)

	// InitializeAccount creates a fresh account for a player.
	// Calling twice is an error, not a no-op.
	InitializeAccount(ctx context.Context, playerID string) (*models.LoyaltyAccount, error)

	// GetAccount returns the current account snapshot
	GetAccount(ctx context.Context, playerID string) (*models.LoyaltyAccount, error)

	// Accrue appends a ledger entry and, on first commit only, applies the
	// balance change. Retries and duplicate submissions are safe.
	Accrue(ctx context.Context, params AccrueParams) (*AccrueResult, error)

	// GetLedger returns the most recent ledger entries for a player
	GetLedger(ctx context.Context, playerID string, limit int) ([]*models.LedgerEntry, error)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"pitboss/database"
	"pitboss/models"
	"pitboss/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// LoyaltyRepository implements the service.LoyaltyRepository interface
type LoyaltyRepository struct {
	q queryable
}

// NewLoyaltyRepository creates a new loyalty repository
func NewLoyaltyRepository(db *database.DB) *LoyaltyRepository {
	return &LoyaltyRepository{q: db.Pool}
}

// newLoyaltyRepositoryWithTx creates a new loyalty repository with a transaction
func newLoyaltyRepositoryWithTx(tx queryable) *LoyaltyRepository {
	return &LoyaltyRepository{q: tx}
}

const loyaltyAccountColumns = `player_id, current_balance, lifetime_points, tier, tier_progress, created_at, updated_at`

func scanLoyaltyAccount(row pgx.Row) (*models.LoyaltyAccount, error) {
	var account models.LoyaltyAccount
	err := row.Scan(
		&account.PlayerID,
		&account.CurrentBalance,
		&account.LifetimePoints,
		&account.Tier,
		&account.TierProgress,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Create creates a new account with zero balances and BRONZE tier. A
// duplicate initialization is rejected by the primary key, not by a
// pre-check, so concurrent initializations cannot both succeed.
func (r *LoyaltyRepository) Create(ctx context.Context, playerID string) (*models.LoyaltyAccount, error) {
	query := `
		INSERT INTO loyalty_accounts (player_id)
		VALUES ($1)
		RETURNING ` + loyaltyAccountColumns

	account, err := scanLoyaltyAccount(r.q.QueryRow(ctx, query, playerID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w: player %s", service.ErrLoyaltyAlreadyExists, playerID)
		}
		return nil, fmt.Errorf("failed to create loyalty account for player %s: %w", playerID, err)
	}

	return account, nil
}

// GetByPlayerID retrieves an account by player ID. Returns (nil, nil) when absent.
func (r *LoyaltyRepository) GetByPlayerID(ctx context.Context, playerID string) (*models.LoyaltyAccount, error) {
	query := `
		SELECT ` + loyaltyAccountColumns + `
		FROM loyalty_accounts
		WHERE player_id = $1
	`

	account, err := scanLoyaltyAccount(r.q.QueryRow(ctx, query, playerID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loyalty account for player %s: %w", playerID, err)
	}

	return account, nil
}

// IncrementLoyalty atomically applies a signed point delta to an account.
//
// The row is locked with SELECT ... FOR UPDATE before the new values are
// computed, so concurrent increments for the same player serialize at the
// storage layer and no update is lost. Lifetime points only ever grow:
// negative deltas move the spendable balance but leave the lifetime total,
// and therefore the tier, untouched. A delta that would take the balance
// below zero is rejected without modifying the row.
func (r *LoyaltyRepository) IncrementLoyalty(ctx context.Context, playerID string, delta int64) (*models.LoyaltyAccount, error) {
	lockQuery := `
		SELECT ` + loyaltyAccountColumns + `
		FROM loyalty_accounts
		WHERE player_id = $1
		FOR UPDATE
	`

	account, err := scanLoyaltyAccount(r.q.QueryRow(ctx, lockQuery, playerID))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: player %s", service.ErrLoyaltyNotFound, playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock loyalty account for player %s: %w", playerID, err)
	}

	newBalance := account.CurrentBalance + delta
	if newBalance < 0 {
		return nil, &service.InsufficientBalanceError{
			PlayerID:  playerID,
			Available: account.CurrentBalance,
			Requested: -delta,
		}
	}

	newLifetime := account.LifetimePoints
	if delta > 0 {
		newLifetime += delta
	}

	updateQuery := `
		UPDATE loyalty_accounts
		SET current_balance = $1,
		    lifetime_points = $2,
		    tier = $3,
		    tier_progress = $4,
		    updated_at = NOW()
		WHERE player_id = $5
		RETURNING ` + loyaltyAccountColumns

	updated, err := scanLoyaltyAccount(r.q.QueryRow(ctx, updateQuery,
		newBalance,
		newLifetime,
		string(models.TierForLifetime(newLifetime)),
		models.TierProgress(newLifetime),
		playerID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update loyalty account for player %s: %w", playerID, err)
	}

	return updated, nil
}

// Update applies a partial field update. Nil fields are left unchanged.
func (r *LoyaltyRepository) Update(ctx context.Context, playerID string, fields service.UpdateLoyaltyFields) (*models.LoyaltyAccount, error) {
	var tier *string
	if fields.Tier != nil {
		t := string(*fields.Tier)
		tier = &t
	}

	query := `
		UPDATE loyalty_accounts
		SET current_balance = COALESCE($1::bigint, current_balance),
		    lifetime_points = COALESCE($2::bigint, lifetime_points),
		    tier = COALESCE($3::text, tier),
		    tier_progress = COALESCE($4::int, tier_progress),
		    updated_at = NOW()
		WHERE player_id = $5
		RETURNING ` + loyaltyAccountColumns

	account, err := scanLoyaltyAccount(r.q.QueryRow(ctx, query,
		fields.CurrentBalance,
		fields.LifetimePoints,
		tier,
		fields.TierProgress,
		playerID,
	))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: player %s", service.ErrLoyaltyNotFound, playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update loyalty account for player %s: %w", playerID, err)
	}

	return account, nil
}

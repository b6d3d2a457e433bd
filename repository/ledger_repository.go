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

const pgForeignKeyViolation = "23503"

// LedgerRepository implements the service.LedgerRepository interface
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

const ledgerEntryColumns = `id, player_id, points_change, transaction_type, reason, session_id, rating_slip_id, source, created_at`

func scanLedgerEntry(row pgx.Row) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := row.Scan(
		&entry.ID,
		&entry.PlayerID,
		&entry.PointsChange,
		&entry.TransactionType,
		&entry.Reason,
		&entry.SessionID,
		&entry.RatingSlipID,
		&entry.Source,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create appends a ledger entry.
//
// Entries carrying a session ID go through the partial unique index on
// (session_id, transaction_type). The insert is ON CONFLICT DO NOTHING
// rather than a check-then-insert, so N concurrent identical submissions
// commit exactly one row: the conflicting callers get the committed row
// back with created=false, never an error. Entries without a session ID
// bypass the guard and always insert.
func (r *LedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) (bool, error) {
	if entry.SessionID == nil {
		query := `
			INSERT INTO ledger_entries
			(player_id, points_change, transaction_type, reason, session_id, rating_slip_id, source)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`
		err := r.q.QueryRow(ctx, query,
			entry.PlayerID,
			entry.PointsChange,
			entry.TransactionType,
			entry.Reason,
			entry.SessionID,
			entry.RatingSlipID,
			entry.Source,
		).Scan(&entry.ID, &entry.CreatedAt)
		if err != nil {
			return false, mapLedgerInsertError(entry.PlayerID, err)
		}
		return true, nil
	}

	query := `
		INSERT INTO ledger_entries
		(player_id, points_change, transaction_type, reason, session_id, rating_slip_id, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id, transaction_type) WHERE session_id IS NOT NULL DO NOTHING
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		entry.PlayerID,
		entry.PointsChange,
		entry.TransactionType,
		entry.Reason,
		entry.SessionID,
		entry.RatingSlipID,
		entry.Source,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err == pgx.ErrNoRows {
		// Soft success: the idempotency key is already committed.
		existing, err := r.GetBySession(ctx, *entry.SessionID, entry.TransactionType)
		if err != nil {
			return false, err
		}
		if existing == nil {
			return false, fmt.Errorf("ledger entry for session %s vanished after conflict", *entry.SessionID)
		}
		*entry = *existing
		return false, nil
	}
	if err != nil {
		return false, mapLedgerInsertError(entry.PlayerID, err)
	}

	return true, nil
}

// GetBySession retrieves the committed entry for an idempotency key.
// Returns (nil, nil) when absent.
func (r *LedgerRepository) GetBySession(ctx context.Context, sessionID string, transactionType models.TransactionType) (*models.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE session_id = $1 AND transaction_type = $2
	`

	entry, err := scanLedgerEntry(r.q.QueryRow(ctx, query, sessionID, transactionType))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry for session %s: %w", sessionID, err)
	}

	return entry, nil
}

// GetByPlayer returns the most recent ledger entries for a player
func (r *LedgerRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE player_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for player %s: %w", playerID, err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// mapLedgerInsertError translates the foreign key violation for a missing
// account into the subsystem's NotFound error
func mapLedgerInsertError(playerID string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: player %s", service.ErrLoyaltyNotFound, playerID)
	}
	return fmt.Errorf("failed to create ledger entry for player %s: %w", playerID, err)
}

package api

import (
	"time"

	"pitboss/models"
	"pitboss/service"
)

// ComputePointsRequest is the request body for a pure points calculation
type ComputePointsRequest struct {
	AverageBet        float64                  `json:"average_bet"`
	TotalRounds       int                      `json:"total_rounds"`
	PlayerTier        string                   `json:"player_tier"`
	GameConfiguration models.GameConfiguration `json:"game_configuration"`
}

// ComputePointsResponse carries the calculated point total
type ComputePointsResponse struct {
	Points int64 `json:"points"`
}

// AccrueRequest is the request body for an idempotent accrual
type AccrueRequest struct {
	Points          int64   `json:"points"`
	TransactionType string  `json:"transaction_type"`
	Reason          string  `json:"reason"`
	SessionID       *string `json:"session_id,omitempty"`
	RatingSlipID    *string `json:"rating_slip_id,omitempty"`
	Source          *string `json:"source,omitempty"`
}

// AccountDTO represents a loyalty account in API responses
type AccountDTO struct {
	PlayerID       string    `json:"player_id"`
	CurrentBalance int64     `json:"current_balance"`
	LifetimePoints int64     `json:"lifetime_points"`
	Tier           string    `json:"tier"`
	TierProgress   int       `json:"tier_progress"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LedgerEntryDTO represents a ledger entry in API responses
type LedgerEntryDTO struct {
	ID              int64     `json:"id"`
	PlayerID        string    `json:"player_id"`
	PointsChange    int64     `json:"points_change"`
	TransactionType string    `json:"transaction_type"`
	Reason          string    `json:"reason"`
	SessionID       *string   `json:"session_id,omitempty"`
	RatingSlipID    *string   `json:"rating_slip_id,omitempty"`
	Source          *string   `json:"source,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// AccrueResponse is the tagged result of an accrual. IsExisting reports an
// idempotent replay of a previously committed entry.
type AccrueResponse struct {
	LedgerEntry LedgerEntryDTO `json:"ledger_entry"`
	Account     AccountDTO     `json:"account"`
	IsExisting  bool           `json:"is_existing"`
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func toAccountDTO(account *models.LoyaltyAccount) AccountDTO {
	return AccountDTO{
		PlayerID:       account.PlayerID,
		CurrentBalance: account.CurrentBalance,
		LifetimePoints: account.LifetimePoints,
		Tier:           string(account.Tier),
		TierProgress:   account.TierProgress,
		UpdatedAt:      account.UpdatedAt,
	}
}

func toLedgerEntryDTO(entry *models.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:              entry.ID,
		PlayerID:        entry.PlayerID,
		PointsChange:    entry.PointsChange,
		TransactionType: string(entry.TransactionType),
		Reason:          entry.Reason,
		SessionID:       entry.SessionID,
		RatingSlipID:    entry.RatingSlipID,
		Source:          entry.Source,
		CreatedAt:       entry.CreatedAt,
	}
}

func toAccrueResponse(result *service.AccrueResult) AccrueResponse {
	return AccrueResponse{
		LedgerEntry: toLedgerEntryDTO(result.Entry),
		Account:     toAccountDTO(result.Account),
		IsExisting:  result.Existing,
	}
}

package service

import (
	"context"
	"fmt"

	"pitboss/events"
	"pitboss/models"

	log "github.com/sirupsen/logrus"
)

// loyaltyService implements the LoyaltyService interface
type loyaltyService struct {
	uowFactory UnitOfWorkFactory
}

// NewLoyaltyService creates a new loyalty service
func NewLoyaltyService(uowFactory UnitOfWorkFactory) LoyaltyService {
	return &loyaltyService{uowFactory: uowFactory}
}

// ComputePoints runs the pure points calculation
func (s *loyaltyService) ComputePoints(in CalculationInput) (int64, error) {
	return CalculatePoints(in)
}

// InitializeAccount creates a fresh loyalty account for a player
func (s *loyaltyService) InitializeAccount(ctx context.Context, playerID string) (*models.LoyaltyAccount, error) {
	if playerID == "" {
		return nil, invalidInput("playerID", "must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError(err)
	}
	defer uow.Rollback()

	account, err := uow.LoyaltyRepository().Create(ctx, playerID)
	if err != nil {
		return nil, storageError(err)
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{PlayerID: playerID})

	if err := uow.Commit(); err != nil {
		return nil, storageError(err)
	}

	log.WithField("playerID", playerID).Info("Initialized loyalty account")
	return account, nil
}

// GetAccount returns the current account snapshot
func (s *loyaltyService) GetAccount(ctx context.Context, playerID string) (*models.LoyaltyAccount, error) {
	if playerID == "" {
		return nil, invalidInput("playerID", "must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError(err)
	}
	defer uow.Rollback()

	account, err := uow.LoyaltyRepository().GetByPlayerID(ctx, playerID)
	if err != nil {
		return nil, storageError(err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: player %s", ErrLoyaltyNotFound, playerID)
	}

	if err := uow.Commit(); err != nil {
		return nil, storageError(err)
	}
	return account, nil
}

// Accrue appends a ledger entry and applies its balance change exactly once.
//
// The ledger insert and the balance update share one transaction, so either
// both commit or neither does. A uniqueness conflict on the entry's
// (session_id, transaction_type) pair means the accrual already happened:
// the pre-existing entry and the current account snapshot are returned with
// Existing=true and the balance is left untouched.
func (s *loyaltyService) Accrue(ctx context.Context, params AccrueParams) (*AccrueResult, error) {
	if err := validateAccrueParams(params); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError(err)
	}
	defer uow.Rollback()

	entry := &models.LedgerEntry{
		PlayerID:        params.PlayerID,
		PointsChange:    params.Points,
		TransactionType: params.TransactionType,
		Reason:          params.Reason,
		SessionID:       params.SessionID,
		RatingSlipID:    params.RatingSlipID,
		Source:          params.Source,
	}

	created, err := uow.LedgerRepository().Create(ctx, entry)
	if err != nil {
		return nil, storageError(err)
	}

	if !created {
		// Idempotent replay: the entry was committed by an earlier call.
		account, err := uow.LoyaltyRepository().GetByPlayerID(ctx, params.PlayerID)
		if err != nil {
			return nil, storageError(err)
		}
		if account == nil {
			return nil, fmt.Errorf("%w: player %s", ErrLoyaltyNotFound, params.PlayerID)
		}
		if err := uow.Commit(); err != nil {
			return nil, storageError(err)
		}

		log.WithFields(log.Fields{
			"playerID":        params.PlayerID,
			"transactionType": params.TransactionType,
			"ledgerEntryID":   entry.ID,
		}).Info("Accrual replayed, existing ledger entry returned")

		return &AccrueResult{Entry: entry, Account: account, Existing: true}, nil
	}

	before, err := uow.LoyaltyRepository().GetByPlayerID(ctx, params.PlayerID)
	if err != nil {
		return nil, storageError(err)
	}
	if before == nil {
		return nil, fmt.Errorf("%w: player %s", ErrLoyaltyNotFound, params.PlayerID)
	}

	account, err := uow.LoyaltyRepository().IncrementLoyalty(ctx, params.PlayerID, params.Points)
	if err != nil {
		return nil, storageError(err)
	}

	uow.EventBus().Publish(events.PointsAccruedEvent{
		PlayerID:        params.PlayerID,
		LedgerEntryID:   entry.ID,
		PointsChange:    params.Points,
		TransactionType: params.TransactionType,
		NewBalance:      account.CurrentBalance,
		NewLifetime:     account.LifetimePoints,
	})
	if before.Tier != account.Tier {
		uow.EventBus().Publish(events.TierChangedEvent{
			PlayerID: params.PlayerID,
			OldTier:  before.Tier,
			NewTier:  account.Tier,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, storageError(err)
	}

	log.WithFields(log.Fields{
		"playerID":        params.PlayerID,
		"transactionType": params.TransactionType,
		"pointsChange":    params.Points,
		"newBalance":      account.CurrentBalance,
		"tier":            account.Tier,
	}).Info("Accrual committed")

	return &AccrueResult{Entry: entry, Account: account, Existing: false}, nil
}

// GetLedger returns the most recent ledger entries for a player
func (s *loyaltyService) GetLedger(ctx context.Context, playerID string, limit int) ([]*models.LedgerEntry, error) {
	if playerID == "" {
		return nil, invalidInput("playerID", "must not be empty")
	}
	if limit <= 0 {
		return nil, invalidInput("limit", "must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError(err)
	}
	defer uow.Rollback()

	entries, err := uow.LedgerRepository().GetByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, storageError(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, storageError(err)
	}
	return entries, nil
}

func validateAccrueParams(params AccrueParams) error {
	if params.PlayerID == "" {
		return invalidInput("playerID", "must not be empty")
	}
	if !params.TransactionType.Valid() {
		return invalidInput("transactionType", "unknown type "+string(params.TransactionType))
	}
	if params.Reason == "" {
		return invalidInput("reason", "must not be empty")
	}
	if params.SessionID != nil && *params.SessionID == "" {
		return invalidInput("sessionID", "must not be empty when provided")
	}
	if params.RatingSlipID != nil && *params.RatingSlipID == "" {
		return invalidInput("ratingSlipID", "must not be empty when provided")
	}
	return nil
}

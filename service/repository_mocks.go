package service

import (
	"context"

	"pitboss/events"
	"pitboss/models"

	"github.com/stretchr/testify/mock"
)

// MockLoyaltyRepository is a mock implementation of LoyaltyRepository
type MockLoyaltyRepository struct {
	mock.Mock
}

func (m *MockLoyaltyRepository) Create(ctx context.Context, playerID string) (*models.LoyaltyAccount, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoyaltyAccount), args.Error(1)
}

func (m *MockLoyaltyRepository) GetByPlayerID(ctx context.Context, playerID string) (*models.LoyaltyAccount, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoyaltyAccount), args.Error(1)
}

func (m *MockLoyaltyRepository) IncrementLoyalty(ctx context.Context, playerID string, delta int64) (*models.LoyaltyAccount, error) {
	args := m.Called(ctx, playerID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoyaltyAccount), args.Error(1)
}

func (m *MockLoyaltyRepository) Update(ctx context.Context, playerID string, fields UpdateLoyaltyFields) (*models.LoyaltyAccount, error) {
	args := m.Called(ctx, playerID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoyaltyAccount), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) GetBySession(ctx context.Context, sessionID string, transactionType models.TransactionType) (*models.LedgerEntry, error) {
	args := m.Called(ctx, sessionID, transactionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) LoyaltyRepository() LoyaltyRepository {
	args := m.Called()
	return args.Get(0).(LoyaltyRepository)
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	args := m.Called()
	return args.Get(0).(LedgerRepository)
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	args := m.Called()
	return args.Get(0).(EventPublisher)
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

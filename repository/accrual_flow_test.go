package repository

import (
	"context"
	"sync"
	"testing"

	"pitboss/events"
	"pitboss/models"
	"pitboss/repository/testutil"
	"pitboss/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End-to-end accrual flow over a real database: the service orchestrates the
// ledger append and balance update through the unit of work built here.
func newLoyaltyService(t *testing.T) (service.LoyaltyService, *testutil.TestDatabase) {
	testDB := testutil.SetupTestDatabase(t)
	uowFactory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	return service.NewLoyaltyService(uowFactory), testDB
}

func TestAccrualFlow_EndToEnd(t *testing.T) {
	svc, _ := newLoyaltyService(t)
	ctx := context.Background()

	account, err := svc.InitializeAccount(ctx, "player-1")
	require.NoError(t, err)
	assert.Zero(t, account.CurrentBalance)
	assert.Equal(t, models.TierBronze, account.Tier)

	// +1000 gameplay accrual crosses into silver
	sessionID := "session-1"
	result, err := svc.Accrue(ctx, service.AccrueParams{
		PlayerID:        "player-1",
		Points:          1000,
		TransactionType: models.TransactionTypeGameplay,
		Reason:          "session close",
		SessionID:       &sessionID,
	})
	require.NoError(t, err)
	assert.False(t, result.Existing)
	assert.Equal(t, int64(1000), result.Account.CurrentBalance)
	assert.Equal(t, int64(1000), result.Account.LifetimePoints)
	assert.Equal(t, models.TierSilver, result.Account.Tier)
	assert.Equal(t, 0, result.Account.TierProgress)

	// -300 redemption reduces the balance but neither lifetime nor tier
	result, err = svc.Accrue(ctx, service.AccrueParams{
		PlayerID:        "player-1",
		Points:          -300,
		TransactionType: models.TransactionTypeRedemption,
		Reason:          "comp dinner",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(700), result.Account.CurrentBalance)
	assert.Equal(t, int64(1000), result.Account.LifetimePoints)
	assert.Equal(t, models.TierSilver, result.Account.Tier)

	// The ledger holds both entries, newest first
	entries, err := svc.GetLedger(ctx, "player-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(-300), entries[0].PointsChange)
	assert.Equal(t, int64(1000), entries[1].PointsChange)
}

func TestAccrualFlow_RetryDoesNotDoubleAccrue(t *testing.T) {
	svc, _ := newLoyaltyService(t)
	ctx := context.Background()

	_, err := svc.InitializeAccount(ctx, "player-1")
	require.NoError(t, err)

	sessionID := "session-1"
	params := service.AccrueParams{
		PlayerID:        "player-1",
		Points:          1620,
		TransactionType: models.TransactionTypeGameplay,
		Reason:          "session close",
		SessionID:       &sessionID,
	}

	first, err := svc.Accrue(ctx, params)
	require.NoError(t, err)
	require.False(t, first.Existing)

	retry, err := svc.Accrue(ctx, params)
	require.NoError(t, err)
	assert.True(t, retry.Existing)
	assert.Equal(t, first.Entry.ID, retry.Entry.ID)
	assert.Equal(t, int64(1620), retry.Account.CurrentBalance, "replay must not move the balance")
	assert.Equal(t, int64(1620), retry.Account.LifetimePoints)
}

func TestAccrualFlow_ConcurrentDuplicateSubmissions(t *testing.T) {
	svc, _ := newLoyaltyService(t)
	ctx := context.Background()

	_, err := svc.InitializeAccount(ctx, "player-1")
	require.NoError(t, err)

	const workers = 8
	sessionID := "session-race"

	var wg sync.WaitGroup
	results := make([]*service.AccrueResult, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Accrue(ctx, service.AccrueParams{
				PlayerID:        "player-1",
				Points:          500,
				TransactionType: models.TransactionTypeGameplay,
				Reason:          "session close",
				SessionID:       &sessionID,
			})
		}(i)
	}
	wg.Wait()

	committed := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if !results[i].Existing {
			committed++
		}
		assert.Equal(t, int64(500), results[i].Entry.PointsChange)
	}
	assert.Equal(t, 1, committed, "exactly one call commits the accrual")

	account, err := svc.GetAccount(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), account.CurrentBalance, "balance accrues exactly once")
	assert.Equal(t, int64(500), account.LifetimePoints)
}

func TestAccrualFlow_OverRedemptionLeavesNoLedgerEntry(t *testing.T) {
	svc, _ := newLoyaltyService(t)
	ctx := context.Background()

	_, err := svc.InitializeAccount(ctx, "player-1")
	require.NoError(t, err)

	_, err = svc.Accrue(ctx, service.AccrueParams{
		PlayerID:        "player-1",
		Points:          -100,
		TransactionType: models.TransactionTypeRedemption,
		Reason:          "comp dinner",
	})
	assert.ErrorIs(t, err, service.ErrInsufficientBalance)

	// The rejected redemption must not leave a ledger entry behind.
	entries, err := svc.GetLedger(ctx, "player-1", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	account, err := svc.GetAccount(ctx, "player-1")
	require.NoError(t, err)
	assert.Zero(t, account.CurrentBalance)
}

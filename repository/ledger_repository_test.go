package repository

import (
	"context"
	"sync"
	"testing"

	"pitboss/models"
	"pitboss/repository/testutil"
	"pitboss/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ledgerRepo := NewLedgerRepository(testDB.DB)
	loyaltyRepo := NewLoyaltyRepository(testDB.DB)
	ctx := context.Background()

	_, err := loyaltyRepo.Create(ctx, "player-1")
	require.NoError(t, err)

	t.Run("session-bound entry inserts once", func(t *testing.T) {
		entry := testutil.CreateTestLedgerEntryForSession("player-1", "session-1", 1620, models.TransactionTypeGameplay)

		created, err := ledgerRepo.Create(ctx, entry)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotZero(t, entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())
	})

	t.Run("replay returns the original row as soft success", func(t *testing.T) {
		original := testutil.CreateTestLedgerEntryForSession("player-1", "session-2", 500, models.TransactionTypeGameplay)
		created, err := ledgerRepo.Create(ctx, original)
		require.NoError(t, err)
		require.True(t, created)

		replay := testutil.CreateTestLedgerEntryForSession("player-1", "session-2", 500, models.TransactionTypeGameplay)
		created, err = ledgerRepo.Create(ctx, replay)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, original.ID, replay.ID)
		assert.Equal(t, original.PointsChange, replay.PointsChange)
		assert.Equal(t, original.CreatedAt, replay.CreatedAt)
	})

	t.Run("distinct transaction types share a session", func(t *testing.T) {
		gameplay := testutil.CreateTestLedgerEntryForSession("player-1", "session-3", 800, models.TransactionTypeGameplay)
		bonus := testutil.CreateTestLedgerEntryForSession("player-1", "session-3", 150, models.TransactionTypeManualBonus)

		created, err := ledgerRepo.Create(ctx, gameplay)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = ledgerRepo.Create(ctx, bonus)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, gameplay.ID, bonus.ID)
	})

	t.Run("entries without a session always insert", func(t *testing.T) {
		first := testutil.CreateTestLedgerEntry("player-1", 100, models.TransactionTypeManualBonus)
		second := testutil.CreateTestLedgerEntry("player-1", 100, models.TransactionTypeManualBonus)

		created, err := ledgerRepo.Create(ctx, first)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = ledgerRepo.Create(ctx, second)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("missing account maps to NotFound", func(t *testing.T) {
		entry := testutil.CreateTestLedgerEntry("ghost", 100, models.TransactionTypeManualBonus)
		_, err := ledgerRepo.Create(ctx, entry)
		assert.ErrorIs(t, err, service.ErrLoyaltyNotFound)
	})
}

func TestLedgerRepository_Create_ConcurrentIdempotency(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ledgerRepo := NewLedgerRepository(testDB.DB)
	loyaltyRepo := NewLoyaltyRepository(testDB.DB)
	ctx := context.Background()

	_, err := loyaltyRepo.Create(ctx, "player-1")
	require.NoError(t, err)

	const workers = 10

	var wg sync.WaitGroup
	results := make([]*models.LedgerEntry, workers)
	createdFlags := make([]bool, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := testutil.CreateTestLedgerEntryForSession("player-1", "session-race", 1620, models.TransactionTypeGameplay)
			created, err := ledgerRepo.Create(ctx, entry)
			results[i] = entry
			createdFlags[i] = created
			errs[i] = err
		}(i)
	}
	wg.Wait()

	createdCount := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], "every concurrent submission must report success")
		if createdFlags[i] {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount, "exactly one submission commits the row")

	// Every caller references the single committed row.
	canonical := results[0].ID
	for i := 0; i < workers; i++ {
		assert.Equal(t, canonical, results[i].ID)
		assert.Equal(t, int64(1620), results[i].PointsChange)
	}

	entries, err := ledgerRepo.GetByPlayer(ctx, "player-1", 100)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only one row may exist for the idempotency key")
}

func TestLedgerRepository_GetBySession(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ledgerRepo := NewLedgerRepository(testDB.DB)
	loyaltyRepo := NewLoyaltyRepository(testDB.DB)
	ctx := context.Background()

	_, err := loyaltyRepo.Create(ctx, "player-1")
	require.NoError(t, err)

	t.Run("absent key returns nil", func(t *testing.T) {
		entry, err := ledgerRepo.GetBySession(ctx, "nope", models.TransactionTypeGameplay)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("existing key round-trips", func(t *testing.T) {
		written := testutil.CreateTestLedgerEntryForSession("player-1", "session-1", 999, models.TransactionTypeGameplay)
		written.RatingSlipID = testutil.StringPtr("slip-12")
		written.Source = testutil.StringPtr("pit-4")

		created, err := ledgerRepo.Create(ctx, written)
		require.NoError(t, err)
		require.True(t, created)

		entry, err := ledgerRepo.GetBySession(ctx, "session-1", models.TransactionTypeGameplay)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, written.ID, entry.ID)
		assert.Equal(t, int64(999), entry.PointsChange)
		require.NotNil(t, entry.RatingSlipID)
		assert.Equal(t, "slip-12", *entry.RatingSlipID)
		require.NotNil(t, entry.Source)
		assert.Equal(t, "pit-4", *entry.Source)
	})
}

func TestLedgerRepository_GetByPlayer(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ledgerRepo := NewLedgerRepository(testDB.DB)
	loyaltyRepo := NewLoyaltyRepository(testDB.DB)
	ctx := context.Background()

	_, err := loyaltyRepo.Create(ctx, "player-1")
	require.NoError(t, err)
	_, err = loyaltyRepo.Create(ctx, "player-2")
	require.NoError(t, err)

	for i := int64(1); i <= 5; i++ {
		entry := testutil.CreateTestLedgerEntry("player-1", i*100, models.TransactionTypeGameplay)
		_, err := ledgerRepo.Create(ctx, entry)
		require.NoError(t, err)
	}
	other := testutil.CreateTestLedgerEntry("player-2", 42, models.TransactionTypeManualBonus)
	_, err = ledgerRepo.Create(ctx, other)
	require.NoError(t, err)

	t.Run("newest first, scoped to player", func(t *testing.T) {
		entries, err := ledgerRepo.GetByPlayer(ctx, "player-1", 10)
		require.NoError(t, err)
		require.Len(t, entries, 5)
		assert.Equal(t, int64(500), entries[0].PointsChange)
		assert.Equal(t, int64(100), entries[4].PointsChange)
		for _, e := range entries {
			assert.Equal(t, "player-1", e.PlayerID)
		}
	})

	t.Run("limit caps the result", func(t *testing.T) {
		entries, err := ledgerRepo.GetByPlayer(ctx, "player-1", 2)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

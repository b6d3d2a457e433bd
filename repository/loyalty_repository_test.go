package repository

import (
	"context"
	"sync"
	"testing"

	"pitboss/models"
	"pitboss/repository/testutil"
	"pitboss/service"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoyaltyRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLoyaltyRepository(testDB.DB)
	ctx := context.Background()

	t.Run("fresh account starts at zero in bronze", func(t *testing.T) {
		account, err := repo.Create(ctx, "player-1")
		require.NoError(t, err)
		assert.Equal(t, "player-1", account.PlayerID)
		assert.Zero(t, account.CurrentBalance)
		assert.Zero(t, account.LifetimePoints)
		assert.Equal(t, models.TierBronze, account.Tier)
		assert.Zero(t, account.TierProgress)
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("duplicate initialization is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, "player-1")
		assert.ErrorIs(t, err, service.ErrLoyaltyAlreadyExists)
	})
}

func TestLoyaltyRepository_GetByPlayerID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLoyaltyRepository(testDB.DB)
	ctx := context.Background()

	t.Run("absent account returns nil", func(t *testing.T) {
		account, err := repo.GetByPlayerID(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("existing account round-trips", func(t *testing.T) {
		_, err := repo.Create(ctx, "player-1")
		require.NoError(t, err)

		account, err := repo.GetByPlayerID(ctx, "player-1")
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, models.TierBronze, account.Tier)
	})
}

func TestLoyaltyRepository_IncrementLoyalty(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLoyaltyRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, "player-1")
	require.NoError(t, err)

	t.Run("positive delta moves balance, lifetime and tier together", func(t *testing.T) {
		account, err := repo.IncrementLoyalty(ctx, "player-1", 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), account.CurrentBalance)
		assert.Equal(t, int64(1000), account.LifetimePoints)
		assert.Equal(t, models.TierSilver, account.Tier)
		assert.Equal(t, 0, account.TierProgress)
	})

	t.Run("negative delta leaves lifetime and tier untouched", func(t *testing.T) {
		account, err := repo.IncrementLoyalty(ctx, "player-1", -300)
		require.NoError(t, err)
		assert.Equal(t, int64(700), account.CurrentBalance)
		assert.Equal(t, int64(1000), account.LifetimePoints)
		assert.Equal(t, models.TierSilver, account.Tier)
	})

	t.Run("over-redemption is rejected without touching the row", func(t *testing.T) {
		_, err := repo.IncrementLoyalty(ctx, "player-1", -701)
		assert.ErrorIs(t, err, service.ErrInsufficientBalance)

		account, err := repo.GetByPlayerID(ctx, "player-1")
		require.NoError(t, err)
		assert.Equal(t, int64(700), account.CurrentBalance)
		assert.Equal(t, int64(1000), account.LifetimePoints)
	})

	t.Run("unknown player is NotFound", func(t *testing.T) {
		_, err := repo.IncrementLoyalty(ctx, "ghost", 100)
		assert.ErrorIs(t, err, service.ErrLoyaltyNotFound)
	})
}

func TestLoyaltyRepository_IncrementLoyalty_ConcurrentSumLaw(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLoyaltyRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, "player-1")
	require.NoError(t, err)

	// Mixed positive and negative deltas; the positive ones land first in
	// expectation terms because balance never goes below zero, so seed a
	// large opening balance to keep every delta applicable.
	_, err = repo.IncrementLoyalty(ctx, "player-1", 10000)
	require.NoError(t, err)

	deltas := []int64{500, -200, 1250, 75, -40, 999, 1, -1, 300, 125,
		-500, 60, 777, -33, 210, 88, -10, 400, 5, 1500}

	var wg sync.WaitGroup
	errCh := make(chan error, len(deltas))

	for _, d := range deltas {
		wg.Add(1)
		go func(delta int64) {
			defer wg.Done()
			err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
				txRepo := newLoyaltyRepositoryWithTx(tx)
				_, err := txRepo.IncrementLoyalty(ctx, "player-1", delta)
				return err
			})
			if err != nil {
				errCh <- err
			}
		}(d)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent increment failed: %v", err)
	}

	var sumAll, sumPositive int64
	for _, d := range deltas {
		sumAll += d
		if d > 0 {
			sumPositive += d
		}
	}

	account, err := repo.GetByPlayerID(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, 10000+sumAll, account.CurrentBalance, "no increment may be lost")
	assert.Equal(t, 10000+sumPositive, account.LifetimePoints, "lifetime counts only positive deltas")
	assert.Equal(t, models.TierForLifetime(account.LifetimePoints), account.Tier)
	assert.Equal(t, models.TierProgress(account.LifetimePoints), account.TierProgress)
}

func TestLoyaltyRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewLoyaltyRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, "player-1")
	require.NoError(t, err)

	t.Run("partial update leaves nil fields unchanged", func(t *testing.T) {
		account, err := repo.Update(ctx, "player-1", service.UpdateLoyaltyFields{
			CurrentBalance: testutil.Int64Ptr(2500),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2500), account.CurrentBalance)
		assert.Equal(t, models.TierBronze, account.Tier)
		assert.Zero(t, account.LifetimePoints)
	})

	t.Run("multiple fields update together", func(t *testing.T) {
		account, err := repo.Update(ctx, "player-1", service.UpdateLoyaltyFields{
			LifetimePoints: testutil.Int64Ptr(5000),
			Tier:           testutil.TierPtr(models.TierGold),
			TierProgress:   testutil.IntPtr(0),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5000), account.LifetimePoints)
		assert.Equal(t, models.TierGold, account.Tier)
		assert.Equal(t, int64(2500), account.CurrentBalance)
	})

	t.Run("unknown player is NotFound", func(t *testing.T) {
		_, err := repo.Update(ctx, "ghost", service.UpdateLoyaltyFields{
			CurrentBalance: testutil.Int64Ptr(1),
		})
		assert.ErrorIs(t, err, service.ErrLoyaltyNotFound)
	})
}

package db

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitkotecha14/sellscale-challenge/internal/apperr"
	"github.com/rohitkotecha14/sellscale-challenge/internal/models"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL, applies
// migrations, and truncates between tests. Skipped when the variable is
// unset so the suite stays runnable without PostgreSQL.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}

	ctx := context.Background()
	require.NoError(t, RunMigrations(dsn))

	database, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(database.Close)

	_, err = database.Pool.Exec(ctx, `TRUNCATE users, portfolios CASCADE`)
	require.NoError(t, err)
	return database
}

func createTestUser(t *testing.T, database *DB, username string) *models.User {
	t.Helper()
	user, err := database.CreateUser(context.Background(), &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "not-a-real-hash",
	})
	require.NoError(t, err)
	return user
}

func TestCreateUser(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "alice")
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.WalletBalance.IsZero())
	assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Minute)

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := database.CreateUser(ctx, &models.User{
			ID:           uuid.New(),
			Username:     "alice",
			Email:        "different@example.com",
			FirstName:    "Test",
			LastName:     "User",
			PasswordHash: "not-a-real-hash",
		})
		assert.ErrorIs(t, err, apperr.ErrUsernameTaken)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := database.CreateUser(ctx, &models.User{
			ID:           uuid.New(),
			Username:     "alice2",
			Email:        "alice@example.com",
			FirstName:    "Test",
			LastName:     "User",
			PasswordHash: "not-a-real-hash",
		})
		assert.ErrorIs(t, err, apperr.ErrEmailTaken)
	})
}

func TestGetUserByUsername(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	created := createTestUser(t, database, "alice")

	found, err := database.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = database.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestDeleteUserCascade(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, database, "alice")
	bob := createTestUser(t, database, "bob")

	_, err := database.BuyStock(ctx, alice.ID, "AAPL", 5)
	require.NoError(t, err)
	_, err = database.BuyStock(ctx, bob.ID, "TSLA", 2)
	require.NoError(t, err)

	require.NoError(t, database.DeleteUser(ctx, alice.ID))

	_, err = database.GetUserByID(ctx, alice.ID)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	aliceEntries, err := database.GetPortfolio(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceEntries)

	bobEntries, err := database.GetPortfolio(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobEntries, 1)
	assert.Equal(t, "TSLA", bobEntries[0].Ticker)

	t.Run("AlreadyDeleted", func(t *testing.T) {
		assert.ErrorIs(t, database.DeleteUser(ctx, alice.ID), apperr.ErrUserNotFound)
	})
}

func TestWalletBalance(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "alice")

	balance, err := database.GetWalletBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	updated, err := database.UpdateWalletBalance(ctx, user.ID, decimal.RequireFromString("250.75"))
	require.NoError(t, err)
	assert.True(t, updated.Equal(decimal.RequireFromString("250.75")))

	balance, err = database.GetWalletBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("250.75")))

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := database.GetWalletBalance(ctx, uuid.New())
		assert.ErrorIs(t, err, apperr.ErrUserNotFound)

		_, err = database.UpdateWalletBalance(ctx, uuid.New(), decimal.NewFromInt(1))
		assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	})
}

func TestBuyStock(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "alice")

	first, err := database.BuyStock(ctx, user.ID, "AAPL", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), first.Quantity)

	second, err := database.BuyStock(ctx, user.ID, "AAPL", 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "repeat buys must reuse the row")
	assert.Equal(t, int64(8), second.Quantity)

	entries, err := database.GetPortfolio(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(8), entries[0].Quantity)

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := database.BuyStock(ctx, uuid.New(), "AAPL", 1)
		assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	})
}

func TestSellStock(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "alice")
	_, err := database.BuyStock(ctx, user.ID, "AAPL", 8)
	require.NoError(t, err)

	t.Run("Insufficient", func(t *testing.T) {
		_, err := database.SellStock(ctx, user.ID, "AAPL", 10)
		var insufficient *apperr.InsufficientQuantityError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, int64(10), insufficient.Requested)
		assert.Equal(t, int64(8), insufficient.Held)
	})

	t.Run("Partial", func(t *testing.T) {
		entry, err := database.SellStock(ctx, user.ID, "AAPL", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(5), entry.Quantity)
	})

	t.Run("ExactRemainderDeletesRow", func(t *testing.T) {
		entry, err := database.SellStock(ctx, user.ID, "AAPL", 5)
		require.NoError(t, err)
		assert.Equal(t, int64(0), entry.Quantity)

		entries, err := database.GetPortfolio(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("PositionGone", func(t *testing.T) {
		_, err := database.SellStock(ctx, user.ID, "AAPL", 1)
		var notFound *apperr.PositionNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "AAPL", notFound.Ticker)
	})
}

// TestConcurrentTrades hammers one position from many goroutines. The upsert
// and the FOR UPDATE lock must keep the final quantity exact.
func TestConcurrentTrades(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "alice")

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := database.BuyStock(ctx, user.ID, "AAPL", 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := database.GetPortfolio(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(workers*10), entries[0].Quantity)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := database.SellStock(ctx, user.ID, "AAPL", 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err = database.GetPortfolio(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

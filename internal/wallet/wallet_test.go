package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitkotecha14/sellscale-challenge/internal/apperr"
)

type fakeStore struct {
	balances map[uuid.UUID]decimal.Decimal
}

func (f *fakeStore) GetWalletBalance(_ context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	balance, ok := f.balances[userID]
	if !ok {
		return decimal.Zero, apperr.ErrUserNotFound
	}
	return balance, nil
}

func (f *fakeStore) UpdateWalletBalance(_ context.Context, userID uuid.UUID, newBalance decimal.Decimal) (decimal.Decimal, error) {
	if _, ok := f.balances[userID]; !ok {
		return decimal.Zero, apperr.ErrUserNotFound
	}
	f.balances[userID] = newBalance
	return newBalance, nil
}

func TestService(t *testing.T) {
	userID := uuid.New()
	svc := NewService(&fakeStore{balances: map[uuid.UUID]decimal.Decimal{
		userID: decimal.Zero,
	}})
	ctx := context.Background()

	balance, err := svc.Balance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	updated, err := svc.SetBalance(ctx, userID, decimal.RequireFromString("250.75"))
	require.NoError(t, err)
	assert.True(t, updated.Equal(decimal.RequireFromString("250.75")))

	balance, err = svc.Balance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("250.75")))

	t.Run("NegativeBalanceAccepted", func(t *testing.T) {
		updated, err := svc.SetBalance(ctx, userID, decimal.RequireFromString("-10"))
		require.NoError(t, err)
		assert.True(t, updated.IsNegative())
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := svc.Balance(ctx, uuid.New())
		assert.ErrorIs(t, err, apperr.ErrUserNotFound)

		_, err = svc.SetBalance(ctx, uuid.New(), decimal.NewFromInt(1))
		assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	})
}

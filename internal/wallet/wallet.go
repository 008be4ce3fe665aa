// Package wallet implements the wallet ledger: a single cash balance per user,
// replaced wholesale on update. Trades never debit or credit the wallet; the
// two ledgers are deliberately decoupled.
package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the slice of persistence the wallet needs.
type Store interface {
	GetWalletBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	UpdateWalletBalance(ctx context.Context, userID uuid.UUID, newBalance decimal.Decimal) (decimal.Decimal, error)
}

// Service reads and overwrites wallet balances.
type Service struct {
	store Store
}

// NewService creates a new wallet service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Balance returns the stored balance, or ErrUserNotFound.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return s.store.GetWalletBalance(ctx, userID)
}

// SetBalance overwrites the stored balance unconditionally and returns the
// new value, or ErrUserNotFound. There is no bounds check against trades.
func (s *Service) SetBalance(ctx context.Context, userID uuid.UUID, newBalance decimal.Decimal) (decimal.Decimal, error) {
	return s.store.UpdateWalletBalance(ctx, userID, newBalance)
}

// Package portfolio implements the portfolio ledger: buy and sell mutations
// over (user, ticker) positions and the invariants around them. Positions hold
// a positive quantity while they exist; selling a position down to exactly
// zero removes it.
package portfolio

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rohitkotecha14/sellscale-challenge/internal/apperr"
	"github.com/rohitkotecha14/sellscale-challenge/internal/metrics"
	"github.com/rohitkotecha14/sellscale-challenge/internal/models"
)

// Store is the slice of persistence the ledger needs. The implementations are
// expected to make each mutation atomic: BuyStock as a single upsert and
// SellStock inside a row-locking transaction, so concurrent trades on the same
// position cannot lose updates.
type Store interface {
	BuyStock(ctx context.Context, userID uuid.UUID, ticker string, quantity int64) (*models.PortfolioEntry, error)
	SellStock(ctx context.Context, userID uuid.UUID, ticker string, quantity int64) (*models.PortfolioEntry, error)
	GetPortfolio(ctx context.Context, userID uuid.UUID) ([]models.PortfolioEntry, error)
}

// Service applies buy/sell mutations with invariant checks.
type Service struct {
	store Store
}

// NewService creates a new portfolio service
func NewService(store Store) *Service {
	return &Service{store: store}
}

func validateTrade(ticker string, quantity int64) (string, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return "", apperr.Validation("ticker cannot be empty")
	}
	if quantity <= 0 {
		return "", apperr.Validation("quantity must be a positive integer")
	}
	return ticker, nil
}

// Buy adds quantity to the user's position in ticker, creating the position
// if it does not exist. Returns the resulting entry.
func (s *Service) Buy(ctx context.Context, userID uuid.UUID, ticker string, quantity int64) (*models.PortfolioEntry, error) {
	ticker, err := validateTrade(ticker, quantity)
	if err != nil {
		return nil, err
	}
	entry, err := s.store.BuyStock(ctx, userID, ticker, quantity)
	if err != nil {
		return nil, err
	}
	metrics.TradesTotal.WithLabelValues("buy").Inc()
	return entry, nil
}

// Sell removes quantity from the user's position in ticker. A missing
// position fails with PositionNotFoundError; asking for more than is held
// fails with InsufficientQuantityError carrying both amounts. The returned
// entry shows the post-decrement quantity, which is zero when the position
// was removed.
func (s *Service) Sell(ctx context.Context, userID uuid.UUID, ticker string, quantity int64) (*models.PortfolioEntry, error) {
	ticker, err := validateTrade(ticker, quantity)
	if err != nil {
		return nil, err
	}
	entry, err := s.store.SellStock(ctx, userID, ticker, quantity)
	if err != nil {
		return nil, err
	}
	metrics.TradesTotal.WithLabelValues("sell").Inc()
	return entry, nil
}

// Portfolio returns all of the user's positions, in no guaranteed order.
func (s *Service) Portfolio(ctx context.Context, userID uuid.UUID) ([]models.PortfolioEntry, error) {
	return s.store.GetPortfolio(ctx, userID)
}

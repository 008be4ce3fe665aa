package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Wallet balances go out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// User represents a registered user and their cash wallet
type User struct {
	ID            uuid.UUID       `json:"id"`
	Username      string          `json:"username"`
	Email         string          `json:"email"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	PasswordHash  string          `json:"-"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PortfolioEntry is one stock position held by a user. Quantity is always
// positive while the row exists; a position sold down to zero is deleted.
type PortfolioEntry struct {
	ID       int64     `json:"id"`
	UserID   uuid.UUID `json:"-"`
	Ticker   string    `json:"ticker"`
	Quantity int64     `json:"quantity"`
}

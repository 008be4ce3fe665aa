// Package apperr defines the domain error taxonomy. Errors are created where
// they happen and translated into HTTP status codes only at the API boundary.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUsernameTaken and ErrEmailTaken are the two distinct duplicate
	// registration failures.
	ErrUsernameTaken = errors.New("username is already registered")
	ErrEmailTaken    = errors.New("email is already registered")

	// ErrInvalidCredentials is deliberately generic: it does not reveal
	// whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotAuthenticated means no session cookie was presented.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUserNotFound means an identifier (or session) did not resolve to a user.
	ErrUserNotFound = errors.New("user not found")

	// ErrRateLimited surfaces a market-data provider throttling response.
	ErrRateLimited = errors.New("market data rate limit exceeded")

	// ErrUpstreamUnavailable surfaces a failed call to a market-data provider.
	// Reads against it are safe to retry.
	ErrUpstreamUnavailable = errors.New("market data provider unavailable")

	// ErrTickerNotFound means the provider has no data for the symbol.
	ErrTickerNotFound = errors.New("ticker not found")
)

// PositionNotFoundError is returned when selling a ticker the user never bought.
type PositionNotFoundError struct {
	Ticker string
}

func (e *PositionNotFoundError) Error() string {
	return fmt.Sprintf("stock %s not found in the portfolio", e.Ticker)
}

// InsufficientQuantityError is returned when a sell asks for more shares than
// are held. It carries both numbers so the client sees exactly what failed.
type InsufficientQuantityError struct {
	Requested int64
	Held      int64
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient stock quantity to sell: %d > %d", e.Requested, e.Held)
}

// ValidationError reports a rejected request input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

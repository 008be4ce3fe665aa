package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rohitkotecha14/sellscale-challenge/internal/apperr"
	"github.com/rohitkotecha14/sellscale-challenge/internal/models"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// New initializes a new database connection pool
func New(ctx context.Context, connString string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.MaxConns = 10

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}

const userColumns = `id, username, email, first_name, last_name, password_hash, wallet_balance, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.WalletBalance, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a new user with a zero wallet balance. Duplicate
// username and email each map to their own error.
func (db *DB) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO users (id, username, email, first_name, last_name, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_username_key":
				return nil, apperr.ErrUsernameTaken
			case "users_email_key":
				return nil, apperr.ErrEmailTaken
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// DeleteUser removes a user. Portfolio rows go with it via ON DELETE CASCADE.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

// GetWalletBalance returns the stored wallet balance for a user
func (db *DB) GetWalletBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := db.Pool.QueryRow(ctx,
		`SELECT wallet_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperr.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to get wallet balance: %w", err)
	}
	return balance, nil
}

// UpdateWalletBalance overwrites the wallet balance wholesale and returns the
// stored value. There is no increment API: trades never touch the wallet.
func (db *DB) UpdateWalletBalance(ctx context.Context, userID uuid.UUID, newBalance decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := db.Pool.QueryRow(ctx,
		`UPDATE users SET wallet_balance = $2 WHERE id = $1 RETURNING wallet_balance`,
		userID, newBalance).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperr.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to update wallet balance: %w", err)
	}
	return balance, nil
}

// BuyStock adds quantity to an existing (user, ticker) position or creates a
// new one. The upsert is a single statement, so two concurrent buys on the
// same position cannot lose an update.
func (db *DB) BuyStock(ctx context.Context, userID uuid.UUID, ticker string, quantity int64) (*models.PortfolioEntry, error) {
	entry := &models.PortfolioEntry{}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO portfolios (user_id, ticker, quantity)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, ticker)
		 DO UPDATE SET quantity = portfolios.quantity + EXCLUDED.quantity
		 RETURNING id, user_id, ticker, quantity`,
		userID, ticker, quantity).Scan(&entry.ID, &entry.UserID, &entry.Ticker, &entry.Quantity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to buy stock: %w", err)
	}
	return entry, nil
}

// SellStock decrements a (user, ticker) position inside one transaction,
// locking the row so concurrent sells cannot both pass the quantity check.
// A position that reaches exactly zero is deleted; the returned entry still
// shows the post-decrement quantity, including zero for a deleted row.
func (db *DB) SellStock(ctx context.Context, userID uuid.UUID, ticker string, quantity int64) (*models.PortfolioEntry, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	entry := &models.PortfolioEntry{UserID: userID, Ticker: ticker}
	err = tx.QueryRow(ctx,
		`SELECT id, quantity FROM portfolios WHERE user_id = $1 AND ticker = $2 FOR UPDATE`,
		userID, ticker).Scan(&entry.ID, &entry.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperr.PositionNotFoundError{Ticker: ticker}
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	if quantity > entry.Quantity {
		return nil, &apperr.InsufficientQuantityError{Requested: quantity, Held: entry.Quantity}
	}

	entry.Quantity -= quantity
	if entry.Quantity == 0 {
		_, err = tx.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, entry.ID)
	} else {
		_, err = tx.Exec(ctx, `UPDATE portfolios SET quantity = $2 WHERE id = $1`, entry.ID, entry.Quantity)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sell stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entry, nil
}

// GetPortfolio retrieves all positions for a user
func (db *DB) GetPortfolio(ctx context.Context, userID uuid.UUID) ([]models.PortfolioEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, ticker, quantity FROM portfolios WHERE user_id = $1 ORDER BY ticker`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	defer rows.Close()

	var entries []models.PortfolioEntry
	for rows.Next() {
		var e models.PortfolioEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Ticker, &e.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

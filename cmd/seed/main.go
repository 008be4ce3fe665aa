package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rohitkotecha14/sellscale-challenge/internal/auth"
	"github.com/rohitkotecha14/sellscale-challenge/internal/config"
	"github.com/rohitkotecha14/sellscale-challenge/internal/db"
	"github.com/rohitkotecha14/sellscale-challenge/internal/portfolio"
	"github.com/rohitkotecha14/sellscale-challenge/internal/wallet"
)

// Seed the database with demo users, balances and holdings
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Skip if demo data is already there
	if _, err := database.GetUserByUsername(ctx, "trader1"); err == nil {
		fmt.Println("Database already seeded. Nothing to do.")
		os.Exit(0)
	}

	authSvc := auth.NewAuthService(database, cfg.SessionSecret, 5*time.Minute)
	portfolioSvc := portfolio.NewService(database)
	walletSvc := wallet.NewService(database)

	seeds := []struct {
		username, email, first, last string
		balance                      string
		holdings                     map[string]int64
	}{
		{
			username: "trader1", email: "trader1@example.com", first: "Alice", last: "Trader",
			balance:  "10000.00",
			holdings: map[string]int64{"AAPL": 10, "TSLA": 5},
		},
		{
			username: "trader2", email: "trader2@example.com", first: "Bob", last: "Trader",
			balance:  "2500.00",
			holdings: map[string]int64{"MSFT": 8},
		},
	}

	for _, s := range seeds {
		user, err := authSvc.Register(ctx, s.username, s.email, s.first, s.last, "password123")
		if err != nil {
			log.Fatalf("Failed to create %s: %v", s.username, err)
		}

		balance, err := decimal.NewFromString(s.balance)
		if err != nil {
			log.Fatalf("Bad balance for %s: %v", s.username, err)
		}
		if _, err := walletSvc.SetBalance(ctx, user.ID, balance); err != nil {
			log.Fatalf("Failed to set balance for %s: %v", s.username, err)
		}

		for ticker, qty := range s.holdings {
			if _, err := portfolioSvc.Buy(ctx, user.ID, ticker, qty); err != nil {
				log.Fatalf("Failed to seed %s position for %s: %v", ticker, s.username, err)
			}
		}
		fmt.Printf("Seeded %s (password: password123)\n", s.username)
	}
}

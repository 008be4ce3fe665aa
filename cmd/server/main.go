package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohitkotecha14/sellscale-challenge/internal/api"
	"github.com/rohitkotecha14/sellscale-challenge/internal/auth"
	"github.com/rohitkotecha14/sellscale-challenge/internal/config"
	"github.com/rohitkotecha14/sellscale-challenge/internal/db"
	"github.com/rohitkotecha14/sellscale-challenge/internal/logger"
	"github.com/rohitkotecha14/sellscale-challenge/internal/market"
	"github.com/rohitkotecha14/sellscale-challenge/internal/metrics"
	"github.com/rohitkotecha14/sellscale-challenge/internal/portfolio"
	"github.com/rohitkotecha14/sellscale-challenge/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer database.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	authSvc := auth.NewAuthService(database, cfg.SessionSecret, cfg.SessionTTL)
	portfolioSvc := portfolio.NewService(database)
	walletSvc := wallet.NewService(database)
	marketClient := market.NewClient(cfg.AlphaVantageURL, cfg.AlphaVantageKey)

	metrics.Init()
	handler := api.NewHandler(authSvc, database, portfolioSvc, walletSvc, marketClient)
	router := api.NewRouter(handler, cfg.CORSOrigin)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

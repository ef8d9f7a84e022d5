// cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calorigram/internal/access"
	"calorigram/internal/bot"
	"calorigram/internal/config"
	"calorigram/internal/db"
	"calorigram/internal/gpt"
	"calorigram/internal/payment"
	"calorigram/internal/server"
	"calorigram/pkg/logger"
)

func main() {
	l := logger.New()
	l.Info("Starting Calorigram bot...")

	cfg, err := config.Load()
	if err != nil {
		l.Fatalw("Failed to load config", "error", err)
	}

	// Validate critical configuration
	if cfg.Telegram.Token == "" {
		l.Fatal("Telegram token is not configured")
	}
	if cfg.Inference.APIKey == "" {
		l.Fatal("Inference API key is not configured")
	}

	// Initialize database connection with retry
	var database *db.PostgresDB
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		database, err = db.NewPostgresDB(db.Config(cfg.DB))
		if err == nil {
			break
		}
		l.Errorw("Failed to connect to database, retrying...", "error", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	if database == nil {
		l.Fatalw("Failed to connect to database after multiple attempts", "error", err)
	}
	defer database.Close()

	stripeClient := payment.NewStripeClient(payment.Config(cfg.Stripe))

	gptClient := gpt.NewClient(
		cfg.Inference.APIKey,
		cfg.Inference.BaseURL,
		cfg.Inference.Model,
		cfg.Inference.TranscribeModel,
	)

	gate := access.New(database, cfg.Access.TrialPeriod, cfg.Access.DailyChecks)

	telegramBot, err := bot.NewBot(bot.Options{
		Token:            cfg.Telegram.Token,
		AdminIDs:         cfg.Telegram.AdminIDs,
		PremiumDays:      cfg.Access.PremiumDays,
		InferenceTimeout: cfg.Inference.Timeout,
	}, database, gate, gptClient, stripeClient, l.Named("bot"))
	if err != nil {
		l.Fatalw("Failed to create Telegram bot", "error", err)
	}

	botCtx, botCancel := context.WithCancel(context.Background())
	defer botCancel()

	if err := telegramBot.Start(botCtx); err != nil {
		l.Fatalw("Failed to start Telegram bot", "error", err)
	}
	l.Info("Telegram bot started successfully")

	httpServer := server.NewServer(cfg.Server.Port, telegramBot, l.Named("http"))
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down bot...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		l.Errorw("Error during HTTP server shutdown", "error", err)
	}

	botCancel()
	telegramBot.Stop()

	l.Info("Bot stopped successfully")
}

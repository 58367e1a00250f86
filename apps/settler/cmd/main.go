package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"settler/apps/settler/internal/api"
	"settler/apps/settler/internal/config"
	"settler/apps/settler/internal/event_publisher"
	"settler/apps/settler/internal/exchange"
	"settler/apps/settler/internal/repository"
	"settler/apps/settler/internal/settings"
	"settler/apps/settler/internal/settlement"
	"settler/apps/settler/internal/withdrawal"
)

func main() {
	// Initialize zap logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	// Load configuration from environment variables
	cfg := config.NewConfig()

	logger.Info("Starting application with configuration",
		zap.String("db_url", cfg.DbURL),
		zap.String("kafka_broker", cfg.KafkaBroker),
		zap.String("kafka_topic", cfg.KafkaTopic),
		zap.String("environment", cfg.Environment),
		zap.String("exchange_base_url", cfg.ExchangeBaseURL),
		zap.String("deposit_asset", cfg.DepositAsset),
		zap.String("reward_currency", cfg.RewardCurrency),
		zap.Int("api_port", cfg.APIPort),
		zap.Bool("exchange_configured", cfg.ExchangeAPIKey != ""),
	)

	// Connect to database
	db, err := sql.Open("postgres", cfg.DbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize database tables
	if err := repository.InitMigration(db); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	claimRepository := repository.NewClaimRepository(db, logger)
	settingsRepository := repository.NewSettingsRepository(db, logger)
	outboxRepository := repository.NewOutboxRepository(db, logger)

	settingsCache := settings.NewCache(settingsRepository, logger)

	exchangeClient := exchange.NewClient(cfg.ExchangeBaseURL, cfg.ExchangeAPIKey, cfg.ExchangeSecretKey, logger)

	claimEngine := settlement.NewEngine(claimRepository, exchangeClient, settingsCache,
		cfg.DepositAsset, cfg.RewardCurrency, cfg.DepositHistoryLimit, logger)
	withdrawalEngine := withdrawal.NewEngine(exchangeClient, settingsCache, cfg.DepositAsset, logger)

	// Create event publisher
	eventPublisher, err := event_publisher.NewEventPublisher(cfg.KafkaBroker, cfg.KafkaTopic, logger, outboxRepository)
	if err != nil {
		logger.Fatal("Failed to create event publisher", zap.Error(err))
	}
	defer eventPublisher.Close()

	// Start event publisher in background
	go eventPublisher.StartPublishing()

	// Create and start API server
	apiServer := api.NewServer(cfg.APIPort, claimEngine, withdrawalEngine, settingsCache,
		exchangeClient, cfg.DepositAsset, cfg.DepositHistoryLimit, cfg.IsProduction(), logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Fatal("API server failed", zap.Error(err))
		}
	}()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Received shutdown signal, starting graceful shutdown...")

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown API server gracefully
	if err := apiServer.Stop(ctx); err != nil {
		logger.Error("Error shutting down API server", zap.Error(err))
	}

	logger.Info("Application shutdown complete")
}

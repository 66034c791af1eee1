package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lumenlabs/lumen-payments/internal/config"
	"github.com/lumenlabs/lumen-payments/internal/infrastructure/database"
	httpServer "github.com/lumenlabs/lumen-payments/internal/infrastructure/http"
	"github.com/lumenlabs/lumen-payments/internal/infrastructure/provider"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connection
	client, err := database.NewConnection(&cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(client, logger); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	db := client.Database(cfg.Mongo.Database)

	// Ensure indexes
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db, logger); err != nil {
		indexCancel()
		logger.Fatal("Failed to ensure database indexes", zap.Error(err))
	}
	indexCancel()

	// Initialize repositories
	repos := database.NewRepositories(db, cfg.Mongo.Timeout, logger)

	// Initialize payment provider
	factory := provider.NewFactory(cfg, logger)
	paymentClient, err := factory.GetClient()
	if err != nil {
		logger.Fatal("Failed to initialize payment provider", zap.Error(err))
	}
	logger.Info("Payment provider initialized", zap.String("provider", paymentClient.Name()))

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize server
	httpSrv := httpServer.NewServer(cfg, logger, repos, paymentClient)

	// Start server
	go func() {
		if err := httpSrv.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	logger.Info("Server shut down successfully")
}

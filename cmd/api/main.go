package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vault-ledger/config"
	httpHandler "vault-ledger/internal/adapter/http/handler"
	pgStorage "vault-ledger/internal/adapter/storage/postgres"
	redisStorage "vault-ledger/internal/adapter/storage/redis"
	kafkaStream "vault-ledger/internal/adapter/stream/kafka"
	"vault-ledger/internal/core/domain"
	"vault-ledger/internal/core/ports"
	"vault-ledger/internal/service"
	"vault-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Vault Ledger")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	entryRepo := pgStorage.NewEntryRepo(pool)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc)

	// Bootstrap the owner account. Its ID becomes the ledger owner for the
	// process lifetime.
	ownerID, err := authSvc.EnsureOwner(ctx, cfg.Vault.OwnerUsername, cfg.Vault.OwnerPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap owner account")
	}
	log.Info().Str("owner", ownerID.String()).Msg("Owner account ready")

	// Outbound transfers go through the settlement endpoint.
	settlement := service.NewSettlementClient(
		cfg.Settlement.Endpoint,
		cfg.Settlement.Secret,
		&http.Client{Timeout: cfg.Settlement.Timeout},
		logger.Component(log, "settlement"),
	)

	// The ledger: all balance state lives here.
	ledger, err := domain.NewLedger(ownerID, domain.Config{
		BankCap:            cfg.Vault.BankCap,
		PerTxWithdrawLimit: cfg.Vault.PerTxWithdrawLimit,
	}, settlement)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid vault configuration")
	}

	// Notification feed out, settlement credits in.
	publisher := kafkaStream.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic, logger.Component(log, "kafka-publisher"))
	defer publisher.Close()

	vaultSvc := service.NewVaultService(ledger, entryRepo, publisher, logger.Component(log, "vault"))

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	creditConsumer := kafkaStream.NewCreditConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.CreditTopic,
		cfg.Kafka.ConsumerGroup,
		vaultSvc,
		logger.Component(log, "kafka-consumer"),
	)
	defer creditConsumer.Close()
	go func() {
		if err := creditConsumer.Run(consumerCtx); err != nil {
			log.Error().Err(err).Msg("Credit consumer stopped")
		}
	}()

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		VaultSvc:       vaultSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

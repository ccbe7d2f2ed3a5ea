package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/user/marina-office/internal/adapter/metrics"
	"github.com/user/marina-office/internal/adapter/notifier"
	"github.com/user/marina-office/internal/adapter/repository/postgres"
	redisrepo "github.com/user/marina-office/internal/adapter/repository/redis"
	"github.com/user/marina-office/internal/pkg/config"
	"github.com/user/marina-office/internal/pkg/logger"
	"github.com/user/marina-office/internal/usecase"
)

const (
	outboxGroup  = "notification-dispatchers"
	pollInterval = 1 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting notifier worker")

	// Create a context that we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stopChan
		log.Info("shutdown signal received, stopping notifier...")
		cancel()
	}()

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis")

	// Connect to PostgreSQL for recipient account lookups
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	// Create a unique consumer name for this instance
	consumerName, err := os.Hostname()
	if err != nil {
		log.Warn("could not get hostname for consumer name, using default", "error", err)
		consumerName = "notifier-default"
	}

	outboxRepo, err := redisrepo.NewOutboxRepository(redisClient, log, outboxGroup, consumerName)
	if err != nil {
		log.Error("failed to create acceptance outbox", "error", err)
		os.Exit(1)
	}
	accountRepo := postgres.NewAccountRepository(db, log)

	var sender notifier.Sender
	if cfg.SMSGatewayURL != "" {
		sender = notifier.NewSMSGateway(cfg.SMSGatewayURL, cfg.SMSGatewayToken, log)
	} else {
		log.Warn("no SMS gateway configured, notifications go to stdout")
		sender = notifier.NewStdoutSender()
	}

	m := metrics.NewOfficeMetrics()
	notifyUseCase := usecase.NewNotifyUseCase(accountRepo, outboxRepo, sender, log, m)

	// Start the dispatch loop
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("notifier worker started, dispatching acceptance events...", "group", outboxGroup, "consumer", consumerName)

Loop:
	for {
		select {
		case <-ticker.C:
			dispatched, err := notifyUseCase.ProcessOutbox(ctx)
			if err != nil {
				log.Error("error processing outbox batch", "error", err)
			}
			if dispatched > 0 {
				log.Info("dispatched acceptance events", "count", dispatched)
			}
		case <-ctx.Done():
			log.Info("context cancelled, shutting down notifier loop")
			break Loop
		}
	}

	log.Info("notifier worker shut down gracefully")
}

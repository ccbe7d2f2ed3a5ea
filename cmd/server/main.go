package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/user/marina-office/internal/adapter/accountops"
	"github.com/user/marina-office/internal/adapter/api"
	"github.com/user/marina-office/internal/adapter/api/handler"
	"github.com/user/marina-office/internal/adapter/metrics"
	"github.com/user/marina-office/internal/adapter/notifier"
	"github.com/user/marina-office/internal/adapter/repository/postgres"
	redisrepo "github.com/user/marina-office/internal/adapter/repository/redis"
	"github.com/user/marina-office/internal/pkg/config"
	"github.com/user/marina-office/internal/pkg/logger"
	"github.com/user/marina-office/internal/usecase"

	_ "github.com/lib/pq" // Keep for postgres driver
)

const outboxGroup = "notification-dispatchers"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.NewOfficeMetrics()

	// --- Start Admin and Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}

	go func() {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database and Redis Connections ---
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	// --- Initialize Repositories ---
	accountRepo := postgres.NewAccountRepository(db, logger)
	resourceRepo := postgres.NewResourceRepository(db, logger)
	landStorageRepo := postgres.NewLandStorageRepository(db, logger)
	interestRepo := postgres.NewInterestRepository(db, logger)
	replyRepo := postgres.NewReplyRepository(db, logger)
	acceptanceRepo := postgres.NewAcceptanceRepository(db, logger)
	feedRepo := redisrepo.NewFeedRepository(redisClient, logger)

	hostname, err := os.Hostname()
	if err != nil {
		logger.Warn("could not get hostname for outbox consumer, using default", "error", err)
		hostname = "office-server"
	}
	outboxRepo, err := redisrepo.NewOutboxRepository(redisClient, logger, outboxGroup, hostname)
	if err != nil {
		logger.Error("failed to initialize acceptance outbox", "error", err)
		os.Exit(1)
	}

	// --- Initialize Use Cases ---
	var sender notifier.Sender
	if cfg.SMSGatewayURL != "" {
		sender = notifier.NewSMSGateway(cfg.SMSGatewayURL, cfg.SMSGatewayToken, logger)
	} else {
		logger.Warn("no SMS gateway configured, notifications go to stdout")
		sender = notifier.NewStdoutSender()
	}

	notifyUseCase := usecase.NewNotifyUseCase(accountRepo, outboxRepo, sender, logger, m)
	intakeUseCase := usecase.NewIntakeUseCase(interestRepo, feedRepo, logger, m)
	offerUseCase := usecase.NewOfferUseCase(interestRepo, replyRepo, resourceRepo, accountRepo, feedRepo, logger, m)
	acceptUseCase := usecase.NewAcceptUseCase(interestRepo, accountRepo, acceptanceRepo, outboxRepo, notifyUseCase, feedRepo, logger, m)
	occupancyUseCase := usecase.NewOccupancyUseCase(resourceRepo, feedRepo, logger)
	reconcileUseCase := usecase.NewReconcileUseCase(accountRepo, resourceRepo, landStorageRepo, logger, m)

	// --- Initialize Feed Broker ---
	feedBroker, err := handler.NewFeedBroker(ctx, feedRepo, logger)
	if err != nil {
		logger.Error("failed to start feed broker", "error", err)
		os.Exit(1)
	}

	// --- Initialize HTTP Server ---
	accountOps := accountops.NewClient(cfg.AccountOpsURL, cfg.AccountOpsToken)

	router := api.NewRouter(cfg, logger, api.RouterDeps{
		Interests: handler.NewInterestHandler(intakeUseCase, offerUseCase, acceptUseCase, replyRepo, logger),
		Resources: handler.NewResourceHandler(occupancyUseCase, offerUseCase, logger),
		Admin:     handler.NewAdminHandler(reconcileUseCase, accountOps, logger),
		Feed:      feedBroker,
	})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting office server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("office server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("office server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}

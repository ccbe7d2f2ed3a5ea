package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/user/marina-office/internal/adapter/metrics"
	"github.com/user/marina-office/internal/adapter/repository/postgres"
	"github.com/user/marina-office/internal/pkg/config"
	"github.com/user/marina-office/internal/pkg/logger"
	"github.com/user/marina-office/internal/usecase"
)

// One-shot bulk reconciliation over every account, for cron or migrations.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	accountRepo := postgres.NewAccountRepository(db, log)
	resourceRepo := postgres.NewResourceRepository(db, log)
	landStorageRepo := postgres.NewLandStorageRepository(db, log)

	m := metrics.NewOfficeMetrics()
	reconcileUseCase := usecase.NewReconcileUseCase(accountRepo, resourceRepo, landStorageRepo, log, m)

	log.Info("starting bulk reconciliation")
	summary, err := reconcileUseCase.ReconcileAll(ctx)
	if err != nil {
		log.Error("bulk reconciliation failed", "error", err)
		os.Exit(1)
	}

	log.Info("bulk reconciliation finished",
		"accounts_scanned", summary.AccountsScanned,
		"links_made", summary.LinksMade,
		"failures", summary.Failures,
	)
	if summary.Failures > 0 {
		os.Exit(2)
	}
}

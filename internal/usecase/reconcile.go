package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/adapter/metrics"
	"github.com/user/marina-office/internal/domain"
	"github.com/user/marina-office/internal/identity"
)

// ReconcileSummary reports the result of a bulk reconciliation run.
type ReconcileSummary struct {
	AccountsScanned int `json:"accounts_scanned"`
	LinksMade       int `json:"links_made"`
	Failures        int `json:"failures"`
}

// ReconcileUseCase links accounts to resources and land storage entries that
// carry matching contact data. Every link is idempotent, so runs are safely
// repeatable and partial failure just leaves work for the next run.
type ReconcileUseCase struct {
	accounts    domain.AccountRepository
	resources   domain.ResourceRepository
	landStorage domain.LandStorageRepository
	logger      *slog.Logger
	metrics     *metrics.OfficeMetrics
}

// NewReconcileUseCase creates a new ReconcileUseCase.
func NewReconcileUseCase(
	accounts domain.AccountRepository,
	resources domain.ResourceRepository,
	landStorage domain.LandStorageRepository,
	logger *slog.Logger,
	m *metrics.OfficeMetrics,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		accounts:    accounts,
		resources:   resources,
		landStorage: landStorage,
		logger:      logger,
		metrics:     m,
	}
}

// ReconcileSelf runs the single-account link for the session bootstrap path,
// where only the caller's account id is at hand.
func (uc *ReconcileUseCase) ReconcileSelf(ctx context.Context, accountID uuid.UUID) (linksMade, failures int, err error) {
	account, err := uc.accounts.FindByID(ctx, accountID)
	if err != nil {
		return 0, 0, err
	}
	linksMade, failures = uc.ReconcileAccount(ctx, account)
	return linksMade, failures, nil
}

// ReconcileAccount links one account to every matching unlinked resource and
// land storage entry. Individual write failures are logged and counted, not
// fatal; the remaining matches are still attempted.
func (uc *ReconcileUseCase) ReconcileAccount(ctx context.Context, account *domain.Account) (linksMade, failures int) {
	phone := identity.CanonicalPhone(account.Phone)
	email := identity.CanonicalEmail(account.Email)
	if phone == "" && email == "" {
		return 0, 0
	}

	resources, err := uc.resources.ListByContact(ctx, phone, email)
	if err != nil {
		uc.logger.Error("failed to list resources by contact", "account_id", account.ID, "error", err)
		uc.metrics.ReconcileFailures.Inc()
		return 0, 1
	}

	for _, r := range resources {
		if r.HasOccupant(account.ID) {
			continue
		}
		linked, err := uc.resources.AppendOccupant(ctx, r.ID, account.ID)
		if err != nil {
			uc.logger.Error("failed to link account to resource",
				"account_id", account.ID, "resource_id", r.ID, "error", err)
			uc.metrics.ReconcileFailures.Inc()
			failures++
			continue
		}
		if linked {
			uc.logger.Info("linked account to resource",
				"account_id", account.ID, "resource_id", r.ID, "marking_code", r.MarkingCode)
			uc.metrics.ReconcileLinks.Inc()
			linksMade++
		}
	}

	entries, err := uc.landStorage.ListByContact(ctx, phone, email)
	if err != nil {
		uc.logger.Error("failed to list land storage by contact", "account_id", account.ID, "error", err)
		uc.metrics.ReconcileFailures.Inc()
		return linksMade, failures + 1
	}

	for _, e := range entries {
		if e.OccupantID != nil {
			continue
		}
		linked, err := uc.landStorage.SetOccupant(ctx, e.Code, account.ID)
		if err != nil {
			uc.logger.Error("failed to link account to land storage",
				"account_id", account.ID, "code", e.Code, "error", err)
			uc.metrics.ReconcileFailures.Inc()
			failures++
			continue
		}
		if linked {
			uc.metrics.ReconcileLinks.Inc()
			linksMade++
		}
	}

	return linksMade, failures
}

// ReconcileAll runs the link pass over every account. Only a failure to list
// the accounts themselves is returned as an error; everything per account is
// best effort and summarized.
func (uc *ReconcileUseCase) ReconcileAll(ctx context.Context) (ReconcileSummary, error) {
	accounts, err := uc.accounts.List(ctx)
	if err != nil {
		return ReconcileSummary{}, err
	}

	var summary ReconcileSummary
	for _, account := range accounts {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		summary.AccountsScanned++
		links, failures := uc.ReconcileAccount(ctx, account)
		summary.LinksMade += links
		summary.Failures += failures
	}

	uc.logger.Info("bulk reconciliation finished",
		"accounts_scanned", summary.AccountsScanned,
		"links_made", summary.LinksMade,
		"failures", summary.Failures,
	)
	return summary, nil
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/domain"
	"github.com/user/marina-office/internal/domain/mocks"
)

func TestReconcileUseCase_ReconcileAccount(t *testing.T) {
	account := &domain.Account{
		ID:    uuid.New(),
		Name:  "Anna Berg",
		Phone: "+46 70-123 45 67",
		Email: "Anna@Example.com",
	}

	t.Run("Links By Phone And Email", func(t *testing.T) {
		byPhone := &domain.Resource{ID: uuid.New(), MarkingCode: "A-12", OccupantPhone: "0701234567"}
		byEmail := &domain.Resource{ID: uuid.New(), MarkingCode: "B-03", OccupantEmail: "anna@example.com"}
		unrelated := &domain.Resource{ID: uuid.New(), MarkingCode: "C-07", OccupantPhone: "0707654321"}

		resourceRepo := &mocks.MockResourceRepository{
			Resources: map[uuid.UUID]*domain.Resource{
				byPhone.ID: byPhone, byEmail.ID: byEmail, unrelated.ID: unrelated,
			},
		}
		landRepo := &mocks.MockLandStorageRepository{
			Entries: map[string]*domain.LandStorageEntry{
				"L-01": {Code: "L-01", OccupantPhone: "+46701234567"},
			},
		}
		uc := NewReconcileUseCase(&mocks.MockAccountRepository{}, resourceRepo, landRepo, testLogger, testMetrics)

		links, failures := uc.ReconcileAccount(context.Background(), account)
		if failures != 0 {
			t.Fatalf("expected no failures, got %d", failures)
		}
		if links != 3 {
			t.Errorf("expected 3 links, got %d", links)
		}
		if !byPhone.HasOccupant(account.ID) || !byEmail.HasOccupant(account.ID) {
			t.Error("matching resources not linked")
		}
		if unrelated.HasOccupant(account.ID) {
			t.Error("unrelated resource was linked")
		}
		if landRepo.Entries["L-01"].OccupantID == nil {
			t.Error("matching land storage entry not linked")
		}
	})

	t.Run("Links By Tenant Entry Contact", func(t *testing.T) {
		// The resource's own occupant columns are empty; only a tenant
		// snapshot carries the matching number.
		r := &domain.Resource{
			ID: uuid.New(),
			Tenants: []domain.TenantContact{
				{UID: uuid.New(), Name: "Anna Berg", Phone: "+46 70 123 45 67"},
			},
		}
		resourceRepo := &mocks.MockResourceRepository{
			Resources: map[uuid.UUID]*domain.Resource{r.ID: r},
		}
		uc := NewReconcileUseCase(&mocks.MockAccountRepository{}, resourceRepo, &mocks.MockLandStorageRepository{}, testLogger, testMetrics)

		links, failures := uc.ReconcileAccount(context.Background(), account)
		if failures != 0 {
			t.Fatalf("expected no failures, got %d", failures)
		}
		if links != 1 {
			t.Errorf("expected 1 link, got %d", links)
		}
		if !r.HasOccupant(account.ID) {
			t.Error("resource with matching tenant entry not linked")
		}
	})

	t.Run("Idempotent Across Runs", func(t *testing.T) {
		r := &domain.Resource{ID: uuid.New(), OccupantPhone: "0701234567"}
		resourceRepo := &mocks.MockResourceRepository{
			Resources: map[uuid.UUID]*domain.Resource{r.ID: r},
		}
		uc := NewReconcileUseCase(&mocks.MockAccountRepository{}, resourceRepo, &mocks.MockLandStorageRepository{}, testLogger, testMetrics)

		first, _ := uc.ReconcileAccount(context.Background(), account)
		second, _ := uc.ReconcileAccount(context.Background(), account)

		if first != 1 || second != 0 {
			t.Errorf("expected (1, 0) links across runs, got (%d, %d)", first, second)
		}
		if len(r.OccupantIDs) != 1 {
			t.Errorf("expected a single occupant link, got %d", len(r.OccupantIDs))
		}
	})

	t.Run("Partial Failure Continues", func(t *testing.T) {
		failing := &domain.Resource{ID: uuid.New(), OccupantPhone: "0701234567"}
		working := &domain.Resource{ID: uuid.New(), OccupantEmail: "anna@example.com"}
		resourceRepo := &mocks.MockResourceRepository{
			Resources: map[uuid.UUID]*domain.Resource{
				failing.ID: failing, working.ID: working,
			},
			AppendErrFor: map[uuid.UUID]error{failing.ID: errors.New("write failed")},
		}
		uc := NewReconcileUseCase(&mocks.MockAccountRepository{}, resourceRepo, &mocks.MockLandStorageRepository{}, testLogger, testMetrics)

		links, failures := uc.ReconcileAccount(context.Background(), account)
		if links != 1 {
			t.Errorf("expected the working resource to still be linked, got %d links", links)
		}
		if failures != 1 {
			t.Errorf("expected 1 failure, got %d", failures)
		}
	})

	t.Run("No Contact Data", func(t *testing.T) {
		resourceRepo := &mocks.MockResourceRepository{
			Resources: map[uuid.UUID]*domain.Resource{},
		}
		uc := NewReconcileUseCase(&mocks.MockAccountRepository{}, resourceRepo, &mocks.MockLandStorageRepository{}, testLogger, testMetrics)

		links, failures := uc.ReconcileAccount(context.Background(), &domain.Account{ID: uuid.New()})
		if links != 0 || failures != 0 {
			t.Errorf("blank contact data must be a no-op, got (%d, %d)", links, failures)
		}
	})

	t.Run("Occupied Land Storage Left Alone", func(t *testing.T) {
		other := uuid.New()
		landRepo := &mocks.MockLandStorageRepository{
			Entries: map[string]*domain.LandStorageEntry{
				"L-01": {Code: "L-01", OccupantID: &other, OccupantPhone: "0701234567"},
			},
		}
		resourceRepo := &mocks.MockResourceRepository{Resources: map[uuid.UUID]*domain.Resource{}}
		uc := NewReconcileUseCase(&mocks.MockAccountRepository{}, resourceRepo, landRepo, testLogger, testMetrics)

		links, _ := uc.ReconcileAccount(context.Background(), account)
		if links != 0 {
			t.Errorf("expected no links to an already occupied entry, got %d", links)
		}
		if *landRepo.Entries["L-01"].OccupantID != other {
			t.Error("existing occupant was overwritten")
		}
	})
}

func TestReconcileUseCase_ReconcileAll(t *testing.T) {
	t.Run("Summarizes All Accounts", func(t *testing.T) {
		anna := &domain.Account{ID: uuid.New(), Phone: "0701234567"}
		bo := &domain.Account{ID: uuid.New(), Email: "bo@example.com"}
		accountRepo := &mocks.MockAccountRepository{
			Accounts: map[uuid.UUID]*domain.Account{anna.ID: anna, bo.ID: bo},
		}
		r := &domain.Resource{ID: uuid.New(), OccupantPhone: "070 123 45 67"}
		resourceRepo := &mocks.MockResourceRepository{
			Resources: map[uuid.UUID]*domain.Resource{r.ID: r},
		}
		uc := NewReconcileUseCase(accountRepo, resourceRepo, &mocks.MockLandStorageRepository{}, testLogger, testMetrics)

		summary, err := uc.ReconcileAll(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if summary.AccountsScanned != 2 {
			t.Errorf("expected 2 accounts scanned, got %d", summary.AccountsScanned)
		}
		if summary.LinksMade != 1 {
			t.Errorf("expected 1 link, got %d", summary.LinksMade)
		}
	})

	t.Run("Account List Failure", func(t *testing.T) {
		accountRepo := &mocks.MockAccountRepository{ListErr: errors.New("db down")}
		uc := NewReconcileUseCase(accountRepo, &mocks.MockResourceRepository{}, &mocks.MockLandStorageRepository{}, testLogger, testMetrics)

		if _, err := uc.ReconcileAll(context.Background()); err == nil {
			t.Fatal("expected an error, got nil")
		}
	})
}

func TestReconcileUseCase_ReconcileSelf(t *testing.T) {
	t.Run("Links The Calling Account", func(t *testing.T) {
		account := &domain.Account{ID: uuid.New(), Name: "Anna Berg", Phone: "0701234567"}
		r := &domain.Resource{ID: uuid.New(), OccupantPhone: "+46 70-123 45 67"}
		accountRepo := &mocks.MockAccountRepository{
			Accounts: map[uuid.UUID]*domain.Account{account.ID: account},
		}
		resourceRepo := &mocks.MockResourceRepository{
			Resources: map[uuid.UUID]*domain.Resource{r.ID: r},
		}
		uc := NewReconcileUseCase(accountRepo, resourceRepo, &mocks.MockLandStorageRepository{}, testLogger, testMetrics)

		links, failures, err := uc.ReconcileSelf(context.Background(), account.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if links != 1 || failures != 0 {
			t.Errorf("expected (1, 0), got (%d, %d)", links, failures)
		}
		if !r.HasOccupant(account.ID) {
			t.Error("resource not linked to the caller")
		}
	})

	t.Run("Unknown Account", func(t *testing.T) {
		uc := NewReconcileUseCase(&mocks.MockAccountRepository{}, &mocks.MockResourceRepository{}, &mocks.MockLandStorageRepository{}, testLogger, testMetrics)

		if _, _, err := uc.ReconcileSelf(context.Background(), uuid.New()); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

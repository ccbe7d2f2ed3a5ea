package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/domain"
	"github.com/user/marina-office/internal/domain/mocks"
)

func TestOccupancyUseCase_AssignTenants(t *testing.T) {
	dockID := uuid.New()
	manager := domain.Actor{AccountID: uuid.New(), Role: domain.RoleDockManager, ManagedDockIDs: []uuid.UUID{dockID}}

	newFixture := func() (*OccupancyUseCase, *domain.Resource, *mocks.MockChangeFeed) {
		resource := &domain.Resource{ID: uuid.New(), DockID: dockID, Status: domain.StatusAvailable}
		repo := &mocks.MockResourceRepository{
			Resources: map[uuid.UUID]*domain.Resource{resource.ID: resource},
		}
		feed := &mocks.MockChangeFeed{}
		return NewOccupancyUseCase(repo, feed, testLogger), resource, feed
	}

	t.Run("Replaces Occupants", func(t *testing.T) {
		uc, resource, feed := newFixture()
		a, b := uuid.New(), uuid.New()

		got, err := uc.AssignTenants(context.Background(), manager, resource.ID, []uuid.UUID{a, b})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got.OccupantIDs) != 2 || got.Status != domain.StatusOccupied {
			t.Errorf("expected 2 occupants and occupied status, got %d and %s", len(got.OccupantIDs), got.Status)
		}
		if len(feed.Published) != 1 || feed.Published[0].Kind != domain.ChangeResourceUpdated {
			t.Error("expected one resource-updated notice")
		}
	})

	t.Run("Clearing Frees The Resource", func(t *testing.T) {
		uc, resource, _ := newFixture()
		resource.AssignOccupants([]uuid.UUID{uuid.New()})

		got, err := uc.AssignTenants(context.Background(), manager, resource.ID, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Status != domain.StatusAvailable {
			t.Errorf("expected available, got %s", got.Status)
		}
	})

	t.Run("Unmanaged Dock Forbidden", func(t *testing.T) {
		uc, resource, _ := newFixture()
		other := domain.Actor{AccountID: uuid.New(), Role: domain.RoleDockManager, ManagedDockIDs: []uuid.UUID{uuid.New()}}

		if _, err := uc.AssignTenants(context.Background(), other, resource.ID, nil); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Tenant Forbidden", func(t *testing.T) {
		uc, resource, _ := newFixture()
		tenant := domain.Actor{AccountID: uuid.New(), Role: domain.RoleTenant}

		if _, err := uc.AssignTenants(context.Background(), tenant, resource.ID, nil); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestOccupancyUseCase_RemoveTenant(t *testing.T) {
	dockID := uuid.New()
	manager := domain.Actor{AccountID: uuid.New(), Role: domain.RoleDockManager, ManagedDockIDs: []uuid.UUID{dockID}}

	first := domain.TenantContact{UID: uuid.New(), Name: "Anna"}
	second := domain.TenantContact{UID: uuid.New(), Name: "Bo"}

	invoiceID := first.UID
	resource := &domain.Resource{
		ID:                   uuid.New(),
		DockID:               dockID,
		Tenants:              []domain.TenantContact{first, second},
		OccupantIDs:          []uuid.UUID{first.UID, second.UID},
		Status:               domain.StatusOccupied,
		InvoiceResponsibleID: &invoiceID,
	}
	repo := &mocks.MockResourceRepository{
		Resources: map[uuid.UUID]*domain.Resource{resource.ID: resource},
	}
	uc := NewOccupancyUseCase(repo, &mocks.MockChangeFeed{}, testLogger)

	got, err := uc.RemoveTenant(context.Background(), manager, resource.ID, first.UID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.InvoiceResponsibleID == nil || *got.InvoiceResponsibleID != second.UID {
		t.Error("invoice responsibility not reassigned to the remaining tenant")
	}
	if got.HasOccupant(first.UID) {
		t.Error("removed tenant still an occupant")
	}
}

func TestOccupancyUseCase_SecondHand(t *testing.T) {
	dockID := uuid.New()
	superadmin := domain.Actor{AccountID: uuid.New(), Role: domain.RoleSuperadmin}

	resource := &domain.Resource{ID: uuid.New(), DockID: dockID}
	repo := &mocks.MockResourceRepository{
		Resources: map[uuid.UUID]*domain.Resource{resource.ID: resource},
	}
	uc := NewOccupancyUseCase(repo, &mocks.MockChangeFeed{}, testLogger)

	subTenant := uuid.New()

	t.Run("Superadmin Manages Any Dock", func(t *testing.T) {
		if _, err := uc.SetSecondHand(context.Background(), superadmin, resource.ID, true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := uc.SetSecondHandTenant(context.Background(), superadmin, resource.ID, subTenant, true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resource.SecondHandTenantID == nil || *resource.SecondHandTenantID != subTenant {
			t.Error("sub-tenant not recorded")
		}
	})

	t.Run("Disable Clears Sub Tenant", func(t *testing.T) {
		if _, err := uc.SetSecondHand(context.Background(), superadmin, resource.ID, false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resource.SecondHandTenantID != nil || resource.InvoiceSecondHandDirectly {
			t.Error("disabling must clear the sub-tenant and billing flag")
		}
	})
}

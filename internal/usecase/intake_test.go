package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/domain"
	"github.com/user/marina-office/internal/domain/mocks"
)

func TestIntakeUseCase_Create(t *testing.T) {
	tenant := domain.Actor{AccountID: uuid.New(), Role: domain.RoleTenant}

	t.Run("Always Starts Pending", func(t *testing.T) {
		interestRepo := &mocks.MockInterestRepository{}
		feed := &mocks.MockChangeFeed{}
		uc := NewIntakeUseCase(interestRepo, feed, testLogger, testMetrics)

		interest, err := uc.Create(context.Background(), tenant, CreateInterestPayload{
			UserName:   "Anna Berg",
			Phone:      "0701234567",
			BoatLength: 9.5,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if interest.Status != domain.InterestPending {
			t.Errorf("expected pending, got %s", interest.Status)
		}
		if interest.UserID != tenant.AccountID {
			t.Error("interest not owned by the acting tenant")
		}
		if interest.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
		if len(feed.Published) != 1 || feed.Published[0].Kind != domain.ChangeInterestCreated {
			t.Error("expected one interest-created notice on the feed")
		}
	})

	t.Run("Repository Error", func(t *testing.T) {
		interestRepo := &mocks.MockInterestRepository{CreateErr: errors.New("db down")}
		uc := NewIntakeUseCase(interestRepo, &mocks.MockChangeFeed{}, testLogger, testMetrics)

		if _, err := uc.Create(context.Background(), tenant, CreateInterestPayload{}); err == nil {
			t.Fatal("expected an error, got nil")
		}
	})

	t.Run("Feed Failure Does Not Fail Creation", func(t *testing.T) {
		interestRepo := &mocks.MockInterestRepository{}
		feed := &mocks.MockChangeFeed{PublishErr: errors.New("redis down")}
		uc := NewIntakeUseCase(interestRepo, feed, testLogger, testMetrics)

		if _, err := uc.Create(context.Background(), tenant, CreateInterestPayload{}); err != nil {
			t.Fatalf("publish failure must not fail creation, got %v", err)
		}
	})
}

func TestIntakeUseCase_ListVisible(t *testing.T) {
	dockA, dockB := uuid.New(), uuid.New()
	inA := &domain.Interest{ID: uuid.New(), PreferredDockID: &dockA}
	inB := &domain.Interest{ID: uuid.New(), PreferredDockID: &dockB}
	anywhere := &domain.Interest{ID: uuid.New()}

	interestRepo := &mocks.MockInterestRepository{
		Interests: map[uuid.UUID]*domain.Interest{
			inA.ID: inA, inB.ID: inB, anywhere.ID: anywhere,
		},
	}
	uc := NewIntakeUseCase(interestRepo, &mocks.MockChangeFeed{}, testLogger, testMetrics)

	t.Run("Superadmin Sees All", func(t *testing.T) {
		admin := domain.Actor{AccountID: uuid.New(), Role: domain.RoleSuperadmin}
		got, err := uc.ListVisible(context.Background(), admin)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected 3 interests, got %d", len(got))
		}
	})

	t.Run("Manager Scoped To Docks", func(t *testing.T) {
		manager := domain.Actor{AccountID: uuid.New(), Role: domain.RoleDockManager, ManagedDockIDs: []uuid.UUID{dockA}}
		got, err := uc.ListVisible(context.Background(), manager)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected dock A interest plus the dockless one, got %d", len(got))
		}
		for _, i := range got {
			if i.ID == inB.ID {
				t.Error("interest on an unmanaged dock leaked into the listing")
			}
		}
	})

	t.Run("Tenant Forbidden", func(t *testing.T) {
		tenant := domain.Actor{AccountID: uuid.New(), Role: domain.RoleTenant}
		if _, err := uc.ListVisible(context.Background(), tenant); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestIntakeUseCase_SetStatus(t *testing.T) {
	manager := domain.Actor{AccountID: uuid.New(), Role: domain.RoleDockManager}

	newUC := func(status domain.InterestStatus) (*IntakeUseCase, *domain.Interest) {
		interest := &domain.Interest{ID: uuid.New(), Status: status}
		repo := &mocks.MockInterestRepository{
			Interests: map[uuid.UUID]*domain.Interest{interest.ID: interest},
		}
		return NewIntakeUseCase(repo, &mocks.MockChangeFeed{}, testLogger, testMetrics), interest
	}

	t.Run("Manual Override", func(t *testing.T) {
		uc, interest := newUC(domain.InterestContacted)
		if err := uc.SetStatus(context.Background(), manager, interest.ID, domain.InterestPending); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if interest.Status != domain.InterestPending {
			t.Errorf("expected pending, got %s", interest.Status)
		}
	})

	t.Run("Resolved Is Terminal", func(t *testing.T) {
		uc, interest := newUC(domain.InterestResolved)
		err := uc.SetStatus(context.Background(), manager, interest.ID, domain.InterestPending)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		if interest.Status != domain.InterestResolved {
			t.Error("resolved interest was mutated")
		}
	})

	t.Run("Tenant Forbidden", func(t *testing.T) {
		uc, interest := newUC(domain.InterestPending)
		tenant := domain.Actor{AccountID: uuid.New(), Role: domain.RoleTenant}
		if err := uc.SetStatus(context.Background(), tenant, interest.ID, domain.InterestContacted); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Out Of Scope Dock", func(t *testing.T) {
		dock := uuid.New()
		interest := &domain.Interest{ID: uuid.New(), Status: domain.InterestPending, PreferredDockID: &dock}
		repo := &mocks.MockInterestRepository{
			Interests: map[uuid.UUID]*domain.Interest{interest.ID: interest},
		}
		uc := NewIntakeUseCase(repo, &mocks.MockChangeFeed{}, testLogger, testMetrics)

		other := domain.Actor{AccountID: uuid.New(), Role: domain.RoleDockManager, ManagedDockIDs: []uuid.UUID{uuid.New()}}
		if err := uc.SetStatus(context.Background(), other, interest.ID, domain.InterestContacted); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestIntakeUseCase_MarkRepliesSeen(t *testing.T) {
	owner := domain.Actor{AccountID: uuid.New(), Role: domain.RoleTenant}
	interest := &domain.Interest{ID: uuid.New(), UserID: owner.AccountID}
	repo := &mocks.MockInterestRepository{
		Interests: map[uuid.UUID]*domain.Interest{interest.ID: interest},
	}
	uc := NewIntakeUseCase(repo, &mocks.MockChangeFeed{}, testLogger, testMetrics)

	t.Run("Owner Stamps Timestamp", func(t *testing.T) {
		if err := uc.MarkRepliesSeen(context.Background(), owner, interest.ID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if interest.LastSeenRepliesAt == nil {
			t.Error("expected last seen timestamp to be set")
		}
	})

	t.Run("Stranger Forbidden", func(t *testing.T) {
		stranger := domain.Actor{AccountID: uuid.New(), Role: domain.RoleTenant}
		if err := uc.MarkRepliesSeen(context.Background(), stranger, interest.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}

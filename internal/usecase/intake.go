package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/adapter/metrics"
	"github.com/user/marina-office/internal/domain"
)

// CreateInterestPayload is the intake form contents for a new interest.
type CreateInterestPayload struct {
	UserName         string     `json:"user_name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	BoatLength       float64    `json:"boat_length"`
	BoatBeam         float64    `json:"boat_beam"`
	BoatDepth        float64    `json:"boat_depth"`
	PreferredDockID  *uuid.UUID `json:"preferred_dock_id,omitempty"`
	PreferredBerthID *uuid.UUID `json:"preferred_berth_id,omitempty"`
	Message          string     `json:"message,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
}

// IntakeUseCase handles creation and visibility scoping of interests.
type IntakeUseCase struct {
	interests domain.InterestRepository
	feed      domain.ChangeFeed
	logger    *slog.Logger
	metrics   *metrics.OfficeMetrics
}

// NewIntakeUseCase creates a new IntakeUseCase.
func NewIntakeUseCase(interests domain.InterestRepository, feed domain.ChangeFeed, logger *slog.Logger, m *metrics.OfficeMetrics) *IntakeUseCase {
	return &IntakeUseCase{
		interests: interests,
		feed:      feed,
		logger:    logger,
		metrics:   m,
	}
}

// Create records a new interest for the acting tenant. Interests always
// start Pending regardless of what the payload claims.
func (uc *IntakeUseCase) Create(ctx context.Context, actor domain.Actor, payload CreateInterestPayload) (*domain.Interest, error) {
	interest := &domain.Interest{
		ID:               uuid.New(),
		UserID:           actor.AccountID,
		UserName:         payload.UserName,
		Email:            payload.Email,
		Phone:            payload.Phone,
		BoatLength:       payload.BoatLength,
		BoatBeam:         payload.BoatBeam,
		BoatDepth:        payload.BoatDepth,
		PreferredDockID:  payload.PreferredDockID,
		PreferredBerthID: payload.PreferredBerthID,
		Message:          payload.Message,
		ImageURL:         payload.ImageURL,
		Status:           domain.InterestPending,
		CreatedAt:        time.Now().UTC(),
	}

	if err := uc.interests.Create(ctx, interest); err != nil {
		return nil, err
	}
	uc.metrics.InterestsCreated.Inc()

	uc.publish(ctx, domain.ChangeNotice{
		Kind:       domain.ChangeInterestCreated,
		InterestID: interest.ID,
		At:         time.Now().UTC(),
	})
	return interest, nil
}

// ListVisible returns the interests inside the acting manager's dock scope.
func (uc *IntakeUseCase) ListVisible(ctx context.Context, actor domain.Actor) ([]*domain.Interest, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	if actor.Role == domain.RoleSuperadmin {
		return uc.interests.ListVisible(ctx, nil)
	}
	return uc.interests.ListVisible(ctx, actor.ManagedDockIDs)
}

// Get returns one interest, to a manager inside its dock scope or to the
// tenant who filed it.
func (uc *IntakeUseCase) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Interest, error) {
	interest, err := uc.interests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !interest.VisibleTo(actor) {
		return nil, domain.ErrForbidden
	}
	return interest, nil
}

// SetStatus applies a manual status override. The repository rejects
// transitions out of Resolved.
func (uc *IntakeUseCase) SetStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, next domain.InterestStatus) error {
	if !actor.IsManager() {
		return domain.ErrForbidden
	}
	interest, err := uc.interests.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !interest.VisibleTo(actor) {
		return domain.ErrForbidden
	}
	if err := uc.interests.UpdateStatus(ctx, id, next); err != nil {
		return err
	}
	uc.publish(ctx, domain.ChangeNotice{
		Kind:       domain.ChangeInterestUpdated,
		InterestID: id,
		At:         time.Now().UTC(),
	})
	return nil
}

// MarkRepliesSeen stamps when the owning tenant last looked at the replies.
func (uc *IntakeUseCase) MarkRepliesSeen(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	interest, err := uc.interests.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if interest.UserID != actor.AccountID {
		return domain.ErrForbidden
	}
	return uc.interests.MarkRepliesSeen(ctx, id, time.Now().UTC())
}

func (uc *IntakeUseCase) publish(ctx context.Context, notice domain.ChangeNotice) {
	if err := uc.feed.Publish(ctx, notice); err != nil {
		uc.logger.Warn("failed to publish change notice", "kind", notice.Kind, "error", err)
	}
}

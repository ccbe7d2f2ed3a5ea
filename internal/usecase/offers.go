package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/adapter/metrics"
	"github.com/user/marina-office/internal/domain"
)

// OfferInput names one berth to offer, with an optional price. When no price
// is given the resource's default price for the current season is used, if
// any is recorded.
type OfferInput struct {
	BerthID uuid.UUID `json:"berth_id"`
	Price   *int64    `json:"price,omitempty"`
}

// OfferUseCase composes manager replies, with or without berth offers, on an
// interest.
type OfferUseCase struct {
	interests domain.InterestRepository
	replies   domain.ReplyRepository
	resources domain.ResourceRepository
	accounts  domain.AccountRepository
	feed      domain.ChangeFeed
	logger    *slog.Logger
	metrics   *metrics.OfficeMetrics
	now       func() time.Time
}

// NewOfferUseCase creates a new OfferUseCase.
func NewOfferUseCase(
	interests domain.InterestRepository,
	replies domain.ReplyRepository,
	resources domain.ResourceRepository,
	accounts domain.AccountRepository,
	feed domain.ChangeFeed,
	logger *slog.Logger,
	m *metrics.OfficeMetrics,
) *OfferUseCase {
	return &OfferUseCase{
		interests: interests,
		replies:   replies,
		resources: resources,
		accounts:  accounts,
		feed:      feed,
		logger:    logger,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// OfferableBerths lists the berths the actor may offer: berth-type resources
// that are currently available, on docks the actor manages.
func (uc *OfferUseCase) OfferableBerths(ctx context.Context, actor domain.Actor) ([]*domain.Resource, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	if actor.Role == domain.RoleSuperadmin {
		return uc.resources.ListOfferable(ctx, nil)
	}
	if len(actor.ManagedDockIDs) == 0 {
		return nil, nil
	}
	return uc.resources.ListOfferable(ctx, actor.ManagedDockIDs)
}

// ComposeReply persists a reply on the interest. Offered berths are checked
// against the actor's dock scope but are not reserved; competing offers for
// the same berth stay legal until one acceptance commits. Replying to a
// Pending interest moves it to Contacted.
func (uc *OfferUseCase) ComposeReply(ctx context.Context, actor domain.Actor, interestID uuid.UUID, message string, offers []OfferInput) (*domain.Reply, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}

	interest, err := uc.interests.FindByID(ctx, interestID)
	if err != nil {
		return nil, err
	}
	if !interest.VisibleTo(actor) {
		return nil, domain.ErrForbidden
	}

	offered, err := uc.resolveOffers(ctx, actor, offers)
	if err != nil {
		return nil, err
	}

	author, err := uc.accounts.FindByID(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}

	reply := &domain.Reply{
		ID:            uuid.New(),
		InterestID:    interestID,
		AuthorID:      author.ID,
		AuthorName:    author.Name,
		AuthorEmail:   author.Email,
		AuthorPhone:   author.Phone,
		Message:       message,
		CreatedAt:     uc.now(),
		OfferedBerths: offered,
	}
	kind := "message"
	if reply.HasOffer() {
		s := domain.OfferPending
		reply.OfferStatus = &s
		kind = "offer"
	}

	if err := uc.replies.Create(ctx, reply); err != nil {
		return nil, err
	}
	uc.metrics.RepliesComposed.WithLabelValues(kind).Inc()

	// Any reply moves a pending interest to contacted. Failure here leaves
	// the status behind but the reply stands; the next reply or a manual
	// override catches it up.
	if interest.Status == domain.InterestPending {
		if err := uc.interests.UpdateStatus(ctx, interestID, domain.InterestContacted); err != nil {
			uc.logger.Warn("failed to move interest to contacted", "interest_id", interestID, "error", err)
		}
	}

	notice := domain.ChangeNotice{
		Kind:       domain.ChangeReplyAdded,
		InterestID: interestID,
		At:         uc.now(),
	}
	if err := uc.feed.Publish(ctx, notice); err != nil {
		uc.logger.Warn("failed to publish reply change notice", "interest_id", interestID, "error", err)
	}

	return reply, nil
}

// resolveOffers validates the offered berths against the actor's scope and
// fills in code, dock name and a default price where none was given.
func (uc *OfferUseCase) resolveOffers(ctx context.Context, actor domain.Actor, offers []OfferInput) ([]domain.OfferedBerth, error) {
	if len(offers) == 0 {
		return nil, nil
	}
	year := uc.now().Year()
	offered := make([]domain.OfferedBerth, 0, len(offers))
	for _, in := range offers {
		resource, err := uc.resources.FindByID(ctx, in.BerthID)
		if err != nil {
			return nil, err
		}
		if resource.Type != domain.TypeBerth {
			return nil, fmt.Errorf("resource %s is not a berth: %w", resource.MarkingCode, domain.ErrForbidden)
		}
		if resource.Status != domain.StatusAvailable {
			return nil, fmt.Errorf("berth %s is not available: %w", resource.MarkingCode, domain.ErrConflict)
		}
		if !actor.ManagesDock(resource.DockID) {
			return nil, fmt.Errorf("berth %s is outside the actor's docks: %w", resource.MarkingCode, domain.ErrForbidden)
		}

		price := in.Price
		if price == nil {
			if p, ok := resource.DefaultPrice(year); ok {
				price = &p
			}
		}
		offered = append(offered, domain.OfferedBerth{
			BerthID:   resource.ID,
			BerthCode: resource.MarkingCode,
			DockName:  resource.DockName,
			Price:     price,
		})
	}
	return offered, nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/user/marina-office/internal/adapter/metrics"
	"github.com/user/marina-office/internal/domain"
)

// AcceptUseCase drives the acceptance transaction: the atomic commit through
// the store, then the best-effort notification and feed side effects. The
// side effects never undo or retry the commit; their failure only changes
// what the caller is told about notifications.
type AcceptUseCase struct {
	interests domain.InterestRepository
	accounts  domain.AccountRepository
	store     domain.AcceptanceStore
	outbox    domain.AcceptanceOutbox
	dispatch  *NotifyUseCase
	feed      domain.ChangeFeed
	logger    *slog.Logger
	metrics   *metrics.OfficeMetrics
	tracer    trace.Tracer
	now       func() time.Time
}

// AcceptResult reports a committed acceptance. NotificationQueued is false
// when the state change committed but the notification path failed; the two
// outcomes must be distinguishable to the user.
type AcceptResult struct {
	Outcome            *domain.AcceptanceOutcome
	NotificationQueued bool
}

// NewAcceptUseCase creates a new AcceptUseCase.
func NewAcceptUseCase(
	interests domain.InterestRepository,
	accounts domain.AccountRepository,
	store domain.AcceptanceStore,
	outbox domain.AcceptanceOutbox,
	dispatch *NotifyUseCase,
	feed domain.ChangeFeed,
	logger *slog.Logger,
	m *metrics.OfficeMetrics,
) *AcceptUseCase {
	return &AcceptUseCase{
		interests: interests,
		accounts:  accounts,
		store:     store,
		outbox:    outbox,
		dispatch:  dispatch,
		feed:      feed,
		logger:    logger,
		metrics:   m,
		tracer:    otel.Tracer("marina-office/acceptance"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Accept commits the tenant's choice of one offered berth. Only the
// interest's own tenant may accept. On a lost race (berth taken, interest
// already resolved) the store returns domain.ErrConflict and nothing is
// mutated.
func (uc *AcceptUseCase) Accept(ctx context.Context, actor domain.Actor, interestID, replyID, berthID uuid.UUID) (*AcceptResult, error) {
	interest, err := uc.interests.FindByID(ctx, interestID)
	if err != nil {
		return nil, err
	}
	if interest.UserID != actor.AccountID {
		return nil, domain.ErrForbidden
	}

	account, err := uc.accounts.FindByID(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}

	cmd := domain.AcceptanceCommand{
		InterestID: interestID,
		ReplyID:    replyID,
		BerthID:    berthID,
		Tenant: domain.TenantContact{
			UID:   account.ID,
			Name:  account.Name,
			Phone: account.Phone,
			Email: account.Email,
		},
		Year: uc.now().Year(),
	}

	ctx, span := uc.tracer.Start(ctx, "acceptance.commit",
		trace.WithAttributes(
			attribute.String("interest_id", interestID.String()),
			attribute.String("berth_id", berthID.String()),
		))
	outcome, err := uc.store.Accept(ctx, cmd)
	span.End()
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrNoPendingOffer):
			uc.metrics.AcceptanceAttempts.WithLabelValues("conflict").Inc()
		default:
			uc.metrics.AcceptanceAttempts.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	uc.metrics.AcceptanceAttempts.WithLabelValues("committed").Inc()

	uc.logger.Info("acceptance committed",
		"interest_id", interestID,
		"berth_code", outcome.Interest.AcceptedBerthCode,
		"declined_siblings", len(outcome.DeclinedReplies),
	)

	queued := uc.notify(ctx, outcome)
	uc.publishResolved(ctx, outcome)

	return &AcceptResult{Outcome: outcome, NotificationQueued: queued}, nil
}

// notify places the acceptance event on the outbox stream. If the outbox is
// down the event is dispatched directly instead, so the offer authors still
// hear about the outcome while the stream is unavailable.
func (uc *AcceptUseCase) notify(ctx context.Context, outcome *domain.AcceptanceOutcome) bool {
	event := domain.AcceptanceEvent{
		InterestID: outcome.Interest.ID,
		BerthCode:  outcome.Interest.AcceptedBerthCode,
		TenantName: outcome.Interest.UserName,
		Winner: domain.Recipient{
			AccountID: outcome.AcceptedReply.AuthorID,
			Name:      outcome.AcceptedReply.AuthorName,
			Phone:     outcome.AcceptedReply.AuthorPhone,
		},
		CommittedAt: uc.now(),
	}
	for _, r := range outcome.DeclinedReplies {
		event.Losers = append(event.Losers, domain.Recipient{
			AccountID: r.AuthorID,
			Name:      r.AuthorName,
			Phone:     r.AuthorPhone,
		})
	}

	if err := uc.outbox.Enqueue(ctx, event); err != nil {
		uc.logger.Error("failed to enqueue acceptance event, dispatching directly",
			"interest_id", event.InterestID, "error", err)
		uc.dispatch.Dispatch(ctx, event)
		return false
	}
	return true
}

func (uc *AcceptUseCase) publishResolved(ctx context.Context, outcome *domain.AcceptanceOutcome) {
	at := uc.now()
	notices := []domain.ChangeNotice{
		{Kind: domain.ChangeInterestResolved, InterestID: outcome.Interest.ID, At: at},
		{Kind: domain.ChangeResourceUpdated, ResourceID: outcome.Resource.ID, At: at},
	}
	for _, n := range notices {
		if err := uc.feed.Publish(ctx, n); err != nil {
			uc.logger.Warn("failed to publish change notice", "kind", n.Kind, "error", err)
		}
	}
}

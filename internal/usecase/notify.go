package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/user/marina-office/internal/adapter/metrics"
	"github.com/user/marina-office/internal/adapter/notifier"
	"github.com/user/marina-office/internal/domain"
	"github.com/user/marina-office/internal/identity"
)

const outboxBatchSize = 32

// NotifyUseCase fans an acceptance event out as SMS to the offer authors.
// Delivery is best effort: a recipient is skipped when the channel is not
// open to them, and a failed send is logged and counted, never retried.
type NotifyUseCase struct {
	accounts domain.AccountRepository
	outbox   domain.AcceptanceOutbox
	sender   notifier.Sender
	logger   *slog.Logger
	metrics  *metrics.OfficeMetrics
}

// NewNotifyUseCase creates a new NotifyUseCase.
func NewNotifyUseCase(
	accounts domain.AccountRepository,
	outbox domain.AcceptanceOutbox,
	sender notifier.Sender,
	logger *slog.Logger,
	m *metrics.OfficeMetrics,
) *NotifyUseCase {
	return &NotifyUseCase{
		accounts: accounts,
		outbox:   outbox,
		sender:   sender,
		logger:   logger,
		metrics:  m,
	}
}

// ProcessOutbox reads a batch of acceptance events, dispatches each, and
// acknowledges them. Events are acked even when sends failed; the contract
// is at-most-once per recipient.
func (uc *NotifyUseCase) ProcessOutbox(ctx context.Context) (int, error) {
	events, err := uc.outbox.Read(ctx, outboxBatchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	messageIDs := make([]string, 0, len(events))
	for _, event := range events {
		uc.Dispatch(ctx, event)
		messageIDs = append(messageIDs, event.StreamMessageID)
	}

	if err := uc.outbox.Ack(ctx, messageIDs...); err != nil {
		uc.logger.Error("failed to ack acceptance events", "count", len(messageIDs), "error", err)
		return len(events), err
	}
	return len(events), nil
}

// Dispatch sends the winner confirmation and the loser notices for one
// acceptance event.
func (uc *NotifyUseCase) Dispatch(ctx context.Context, event domain.AcceptanceEvent) {
	winnerMsg := fmt.Sprintf("Your offer for berth %s was accepted by %s. The berth is now let.",
		event.BerthCode, event.TenantName)
	uc.send(ctx, event.Winner, winnerMsg)

	loserMsg := fmt.Sprintf("Berth %s is no longer available; the tenant accepted another offer.",
		event.BerthCode)
	for _, loser := range event.Losers {
		uc.send(ctx, loser, loserMsg)
	}
}

// send delivers one message if the recipient is reachable by SMS: the number
// must be a local mobile number and the account must have opted in.
func (uc *NotifyUseCase) send(ctx context.Context, to domain.Recipient, message string) {
	if !identity.IsMobile(to.Phone) {
		uc.metrics.NotificationsSent.WithLabelValues("skipped").Inc()
		return
	}
	account, err := uc.accounts.FindByID(ctx, to.AccountID)
	if err != nil {
		uc.logger.Warn("could not load recipient account, skipping SMS",
			"account_id", to.AccountID, "error", err)
		uc.metrics.NotificationsSent.WithLabelValues("skipped").Inc()
		return
	}
	if !account.AllowMapSMS {
		uc.metrics.NotificationsSent.WithLabelValues("skipped").Inc()
		return
	}

	if err := uc.sender.Send(ctx, identity.CanonicalPhone(to.Phone), message); err != nil {
		uc.logger.Error("failed to send SMS", "account_id", to.AccountID, "error", err)
		uc.metrics.NotificationsSent.WithLabelValues("failed").Inc()
		return
	}
	uc.metrics.NotificationsSent.WithLabelValues("sent").Inc()
}

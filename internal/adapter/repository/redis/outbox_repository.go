package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/marina-office/internal/domain"
)

const (
	acceptanceStreamKey = "marina:acceptance_events"
	eventField          = "event"
	readBlock           = 2 * time.Second
)

// OutboxRepository implements domain.AcceptanceOutbox on a Redis Stream with
// a consumer group, buffering acceptance events between the transaction
// commit and the notification dispatcher.
type OutboxRepository struct {
	client   *redis.Client
	logger   *slog.Logger
	group    string
	consumer string
}

// NewOutboxRepository creates the outbox and ensures the consumer group
// exists. Producers may pass empty group/consumer names.
func NewOutboxRepository(client *redis.Client, logger *slog.Logger, group, consumer string) (*OutboxRepository, error) {
	repo := &OutboxRepository{
		client:   client,
		logger:   logger.With("component", "acceptance_outbox"),
		group:    group,
		consumer: consumer,
	}
	if group != "" {
		err := client.XGroupCreateMkStream(context.Background(), acceptanceStreamKey, group, "0").Err()
		if err != nil && !isBusyGroupError(err) {
			return nil, fmt.Errorf("failed to create consumer group: %w", err)
		}
	}
	return repo, nil
}

// Enqueue places one acceptance event on the stream.
func (o *OutboxRepository) Enqueue(ctx context.Context, event domain.AcceptanceEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return o.client.XAdd(ctx, &redis.XAddArgs{
		Stream: acceptanceStreamKey,
		Values: map[string]any{eventField: payload},
	}).Err()
}

// Read returns up to count pending events for this consumer, blocking
// briefly when the stream is empty.
func (o *OutboxRepository) Read(ctx context.Context, count int) ([]domain.AcceptanceEvent, error) {
	streams, err := o.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    o.group,
		Consumer: o.consumer,
		Streams:  []string{acceptanceStreamKey, ">"},
		Count:    int64(count),
		Block:    readBlock,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var events []domain.AcceptanceEvent
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			raw, ok := msg.Values[eventField].(string)
			if !ok {
				o.logger.Warn("dropping malformed outbox message", "message_id", msg.ID)
				if err := o.Ack(ctx, msg.ID); err != nil {
					o.logger.Error("failed to ack malformed message", "message_id", msg.ID, "error", err)
				}
				continue
			}
			var event domain.AcceptanceEvent
			if err := json.Unmarshal([]byte(raw), &event); err != nil {
				o.logger.Warn("dropping undecodable outbox message", "message_id", msg.ID, "error", err)
				if err := o.Ack(ctx, msg.ID); err != nil {
					o.logger.Error("failed to ack undecodable message", "message_id", msg.ID, "error", err)
				}
				continue
			}
			event.StreamMessageID = msg.ID
			events = append(events, event)
		}
	}
	return events, nil
}

// Ack marks events handled.
func (o *OutboxRepository) Ack(ctx context.Context, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return o.client.XAck(ctx, acceptanceStreamKey, o.group, messageIDs...).Err()
}

func isBusyGroupError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}

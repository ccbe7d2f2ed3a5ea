package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/user/marina-office/internal/domain"
)

const changeChannel = "marina:changes"

// FeedRepository implements domain.ChangeFeed on a Redis pub/sub channel.
// Notices are fire-and-forget hints for live list views; losing one only
// delays a view until its next refresh.
type FeedRepository struct {
	client *redis.Client
	logger *slog.Logger
}

// NewFeedRepository creates a new Redis-backed change feed.
func NewFeedRepository(client *redis.Client, logger *slog.Logger) *FeedRepository {
	return &FeedRepository{
		client: client,
		logger: logger.With("component", "change_feed"),
	}
}

// Publish broadcasts one change notice.
func (f *FeedRepository) Publish(ctx context.Context, notice domain.ChangeNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, changeChannel, payload).Err()
}

// Subscribe returns a channel of change notices, closed when ctx ends.
// Malformed messages are logged and dropped.
func (f *FeedRepository) Subscribe(ctx context.Context) (<-chan domain.ChangeNotice, error) {
	sub := f.client.Subscribe(ctx, changeChannel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan domain.ChangeNotice)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var notice domain.ChangeNotice
				if err := json.Unmarshal([]byte(msg.Payload), &notice); err != nil {
					f.logger.Warn("dropping malformed change notice", "error", err)
					continue
				}
				select {
				case out <- notice:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

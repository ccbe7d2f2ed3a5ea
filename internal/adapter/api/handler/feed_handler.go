package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/user/marina-office/internal/domain"
)

// FeedBroker fans the change feed out to connected SSE clients so back-office
// views can refresh without polling.
type FeedBroker struct {
	logger  *slog.Logger
	clients map[chan []byte]struct{}
	mu      sync.RWMutex
}

// NewFeedBroker creates a new FeedBroker and starts consuming the change feed.
func NewFeedBroker(ctx context.Context, feed domain.ChangeFeed, logger *slog.Logger) (*FeedBroker, error) {
	notices, err := feed.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribing to change feed: %w", err)
	}

	broker := &FeedBroker{
		logger:  logger,
		clients: make(map[chan []byte]struct{}),
	}
	go broker.run(ctx, notices)
	return broker, nil
}

// ServeHTTP handles new client connections for the SSE stream.
func (b *FeedBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	messageChan := make(chan []byte, 8)
	b.addClient(messageChan)
	defer b.removeClient(messageChan)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messageChan:
			if !ok {
				return // Channel was closed
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (b *FeedBroker) addClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
	b.logger.Info("feed client connected")
}

func (b *FeedBroker) removeClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
		b.logger.Info("feed client disconnected")
	}
}

func (b *FeedBroker) broadcast(msg []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client <- msg:
		default:
			// Client channel is full, maybe slow client.
			// We don't block the broadcast for one slow client.
		}
	}
}

func (b *FeedBroker) run(ctx context.Context, notices <-chan domain.ChangeNotice) {
	for {
		select {
		case <-ctx.Done():
			return
		case notice, ok := <-notices:
			if !ok {
				return
			}
			jsonData, err := json.Marshal(notice)
			if err != nil {
				b.logger.Error("failed to marshal change notice", "error", err)
				continue
			}
			b.broadcast(jsonData)
		}
	}
}

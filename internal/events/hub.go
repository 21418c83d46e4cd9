package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/tictactoe"
)

const subscriberBuffer = 16

// Hub fans events out to in-process subscribers of a session.
type Hub struct {
	logger *slog.Logger

	mu          sync.Mutex
	nextID      uint64
	subscribers map[string]map[uint64]chan Envelope
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger.With("component", "events-hub"),
		subscribers: make(map[string]map[uint64]chan Envelope),
	}
}

func (that *Hub) Publish(_ context.Context, sessionID string, events []tictactoe.Event) error {
	envelopes, err := NewEnvelopes(sessionID, events)
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for id, subscriber := range that.subscribers[sessionID] {
		for _, envelope := range envelopes {
			select {
			case subscriber <- envelope:
			default:
				// a slow reader must not block the game
				that.logger.Warn("subscriber buffer full, event dropped",
					"session", sessionID, "subscriber", id, "event", envelope.Type)
			}
		}
	}

	return nil
}

// Subscribe registers a subscriber until ctx is done. The returned channel is
// closed after the subscription ends.
func (that *Hub) Subscribe(ctx context.Context, sessionID string) (<-chan Envelope, error) {
	ch := make(chan Envelope, subscriberBuffer)

	that.mu.Lock()
	that.nextID++
	id := that.nextID
	if that.subscribers[sessionID] == nil {
		that.subscribers[sessionID] = make(map[uint64]chan Envelope)
	}
	that.subscribers[sessionID][id] = ch
	that.mu.Unlock()

	go func() {
		<-ctx.Done()
		that.unsubscribe(sessionID, id)
	}()

	return ch, nil
}

func (that *Hub) unsubscribe(sessionID string, id uint64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	subscribers := that.subscribers[sessionID]
	if ch, ok := subscribers[id]; ok {
		delete(subscribers, id)
		close(ch)
	}

	if len(subscribers) == 0 {
		delete(that.subscribers, sessionID)
	}
}

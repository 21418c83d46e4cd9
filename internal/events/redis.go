package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/tictactoe"
)

const channelPrefix = "session-events:"

// RedisBroker delivers session events through Redis pub/sub, so every
// instance sharing the Redis sees the same feed.
type RedisBroker struct {
	logger *slog.Logger
	client *redis.Client
}

func NewRedisBroker(logger *slog.Logger, client *redis.Client) *RedisBroker {
	return &RedisBroker{
		logger: logger.With("component", "events-redis"),
		client: client,
	}
}

func (that *RedisBroker) Publish(ctx context.Context, sessionID string, events []tictactoe.Event) error {
	envelopes, err := NewEnvelopes(sessionID, events)
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}

	for _, envelope := range envelopes {
		payload, err := json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("failed to marshal envelope: %w", err)
		}

		if err = that.client.Publish(ctx, channelPrefix+sessionID, payload).Err(); err != nil {
			return fmt.Errorf("failed to publish %s: %w", envelope.Type, err)
		}
	}

	return nil
}

func (that *RedisBroker) Subscribe(ctx context.Context, sessionID string) (<-chan Envelope, error) {
	pubsub := that.client.Subscribe(ctx, channelPrefix+sessionID)

	// wait for the confirmation so nothing published afterwards is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to session %s: %w", sessionID, err)
	}

	out := make(chan Envelope, subscriberBuffer)

	go that.forward(ctx, pubsub, out)

	return out, nil
}

func (that *RedisBroker) forward(ctx context.Context, pubsub *redis.PubSub, out chan<- Envelope) {
	log := that.logger.With("method", "forward")

	defer close(out)
	defer func() {
		if err := pubsub.Close(); err != nil {
			log.Error("failed to close subscription", "error", err)
		}
	}()

	messages := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-messages:
			if !ok {
				return
			}

			var envelope Envelope
			if err := json.Unmarshal([]byte(message.Payload), &envelope); err != nil {
				log.Error("failed to unmarshal envelope", "error", err)
				continue
			}

			select {
			case out <- envelope:
			case <-ctx.Done():
				return
			}
		}
	}
}

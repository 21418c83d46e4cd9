package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/tictactoe"
)

// Envelope is the wire form of a tictactoe.Event.
type Envelope struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data"`
}

type Broker interface {
	Publish(ctx context.Context, sessionID string, events []tictactoe.Event) error
	Subscribe(ctx context.Context, sessionID string) (<-chan Envelope, error)
}

func NewEnvelope(sessionID string, event tictactoe.Event) (Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s event: %w", event.EventName(), err)
	}

	return Envelope{
		Type:      event.EventName(),
		SessionID: sessionID,
		Data:      data,
	}, nil
}

func NewEnvelopes(sessionID string, events []tictactoe.Event) ([]Envelope, error) {
	envelopes := make([]Envelope, 0, len(events))
	for _, event := range events {
		envelope, err := NewEnvelope(sessionID, event)
		if err != nil {
			return nil, err
		}

		envelopes = append(envelopes, envelope)
	}

	return envelopes, nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"
)

type memoryEntry struct {
	sessionJSON []byte
	version     uint64
}

type memorySession struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

// NewMemorySessionRepository keeps sessions in process memory. Sessions are
// stored as JSON so callers never share state with the repository.
func NewMemorySessionRepository() SessionRepository {
	return &memorySession{
		sessions: make(map[string]memoryEntry),
	}
}

func (that *memorySession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.ID] = memoryEntry{
		sessionJSON: sessionJSON,
		version:     that.sessions[session.ID].version + 1,
	}

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	entry, ok := that.sessions[id]
	that.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	return decodeSession(entry.sessionJSON)
}

// Update runs fn outside the lock and commits only if the version it read is
// still the current one.
func (that *memorySession) Update(_ context.Context, id string, fn UpdateFunc) (*entity.Session, error) {
	for range maxUpdateAttempts {
		that.mu.RLock()
		entry, ok := that.sessions[id]
		that.mu.RUnlock()

		if !ok {
			return nil, ErrSessionNotFound
		}

		session, err := decodeSession(entry.sessionJSON)
		if err != nil {
			return nil, err
		}

		if err = fn(session); err != nil {
			return nil, err
		}

		sessionJSON, err := json.Marshal(session)
		if err != nil {
			return nil, fmt.Errorf("could not marshal session: %w", err)
		}

		if that.commit(id, entry.version, sessionJSON) {
			return session, nil
		}
	}

	return nil, ErrSessionConflict
}

func (that *memorySession) commit(id string, version uint64, sessionJSON []byte) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.sessions[id]
	if !ok || current.version != version {
		return false
	}

	that.sessions[id] = memoryEntry{
		sessionJSON: sessionJSON,
		version:     version + 1,
	}

	return true
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[id]; !ok {
		return ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}

func decodeSession(sessionJSON []byte) (*entity.Session, error) {
	var session entity.Session
	if err := json.Unmarshal(sessionJSON, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

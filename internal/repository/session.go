package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"
)

var (
	ErrSessionNotFound = fmt.Errorf("session %w", apperror.ErrNotFound)
	ErrSessionConflict = fmt.Errorf("session %w", apperror.ErrConflict)
)

const (
	sessionKeyPrefix = "session:"

	// maxUpdateAttempts bounds how often Update reruns its mutation when
	// another writer changed the session in between.
	maxUpdateAttempts = 10
)

// UpdateFunc mutates a freshly loaded session. It may run more than once,
// so it must not keep side effects from earlier runs.
type UpdateFunc func(session *entity.Session) error

type SessionRepository interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error

	// Update loads the session, applies fn and stores the result only if
	// nobody else wrote the session meanwhile. On a conflict it starts over.
	Update(ctx context.Context, id string, fn UpdateFunc) (*entity.Session, error)
}

type redisSession struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository stores sessions in Redis. Every write refreshes the
// ttl, so idle sessions expire on their own.
func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSession{
		client: client,
		ttl:    ttl,
	}
}

func (that *redisSession) CreateOrUpdate(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	if err = that.client.Set(ctx, sessionKeyPrefix+session.ID, sessionJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *redisSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	response, err := that.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var session entity.Session
	if err = json.Unmarshal(response, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (that *redisSession) Update(ctx context.Context, id string, fn UpdateFunc) (*entity.Session, error) {
	key := sessionKeyPrefix + id

	var updated *entity.Session
	txf := func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to get session by id: %w", err)
		}

		session := &entity.Session{}
		if err = json.Unmarshal(response, session); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}

		if err = fn(session); err != nil {
			return err
		}

		sessionJSON, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("could not marshal session: %w", err)
		}

		// EXEC fails with redis.TxFailedErr when the watched key changed
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionJSON, that.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = session

		return nil
	}

	for range maxUpdateAttempts {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, ErrSessionConflict
}

func (that *redisSession) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session by id: %w", err)
	}

	if deleted == 0 {
		return ErrSessionNotFound
	}

	return nil
}

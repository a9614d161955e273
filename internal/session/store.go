package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"customer-addressbook/internal/formkey"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Store persists sessions in Redis with a sliding TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a Redis-backed session store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// TTL returns the session lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// New starts an empty session with a fresh id and form key.
func (s *Store) New() (*Session, error) {
	key, err := formkey.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate form key: %w", err)
	}
	return &Session{id: uuid.NewString(), data: data{FormKey: key}}, nil
}

// Load returns the session stored under id. Unknown, expired or malformed
// ids yield a new session.
func (s *Store) Load(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return s.New()
	}

	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return s.New()
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var d data
	if err := json.Unmarshal(raw, &d); err != nil {
		return s.New()
	}
	if d.FormKey == "" {
		if d.FormKey, err = formkey.Generate(); err != nil {
			return nil, fmt.Errorf("generate form key: %w", err)
		}
	}
	return &Session{id: id, data: d}, nil
}

// Save writes the session and refreshes its TTL. Destroyed sessions are skipped.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if sess.destroyed {
		return nil
	}
	raw, err := json.Marshal(sess.data)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.id, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Regenerate moves the session to a new id with a new form key, dropping
// the old key. Used on login so pre-login ids and form keys cannot be reused.
func (s *Store) Regenerate(ctx context.Context, sess *Session) error {
	key, err := formkey.Generate()
	if err != nil {
		return fmt.Errorf("generate form key: %w", err)
	}
	old := sess.id
	sess.id = uuid.NewString()
	sess.data.FormKey = key
	if err := s.client.Del(ctx, keyPrefix+old).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

// Destroy deletes the session; later Saves of it are no-ops.
func (s *Store) Destroy(ctx context.Context, sess *Session) error {
	sess.destroyed = true
	if err := s.client.Del(ctx, keyPrefix+sess.id).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

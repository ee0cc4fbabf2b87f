// Package session stores authenticated-identity snapshots in Redis, keyed
// by an opaque token carried in a cookie. Session expiry is enforced here,
// by the store's TTL, not by the callers.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edavydova/shortlink/internal/models"
	"github.com/redis/go-redis/v9"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	keyPrefix   = "session:"
	tokenLength = 32
)

// ErrSessionNotFound is returned when a token doesn't resolve to a live
// session, either because it never existed or because it expired.
var ErrSessionNotFound = errors.New("session not found")

type sessionRecord struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsPro    bool   `json:"is_pro"`
	IsAdmin  bool   `json:"is_admin"`
}

// Store keeps session snapshots in Redis with a fixed absolute TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new session store on top of the given Redis client.
// Every session created through it lives for ttl from creation.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// Create issues a fresh opaque token and stores the identity snapshot
// under it.
func (s *Store) Create(ctx context.Context, user models.AuthUser) (string, error) {
	const op = "session.Store.Create"

	token, err := gonanoid.New(tokenLength)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate session token: %w", op, err)
	}

	data, err := json.Marshal(sessionRecord{
		UserID:   user.UserID,
		Username: user.Username,
		IsPro:    user.IsPro,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		return "", fmt.Errorf("%s: failed to marshal session: %w", op, err)
	}

	if err := s.client.Set(ctx, keyPrefix+token, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%s: failed to store session: %w", op, err)
	}

	return token, nil
}

// Get resolves a token to the identity snapshot stored under it.
func (s *Store) Get(ctx context.Context, token string) (models.AuthUser, error) {
	const op = "session.Store.Get"

	data, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.AuthUser{}, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		return models.AuthUser{}, fmt.Errorf("%s: failed to load session: %w", op, err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.AuthUser{}, fmt.Errorf("%s: failed to unmarshal session: %w", op, err)
	}

	return models.AuthUser{
		UserID:   rec.UserID,
		Username: rec.Username,
		IsPro:    rec.IsPro,
		IsAdmin:  rec.IsAdmin,
	}, nil
}

// Delete removes a session; deleting an absent token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	const op = "session.Store.Delete"

	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("%s: failed to delete session: %w", op, err)
	}

	return nil
}

// Package session stores server side session records in Redis, keyed by the
// jti of the cookie JWT. A cookie whose jti has no Redis entry is treated as
// logged out regardless of its signature.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/acervohq/acervo-backend/pkg/config"
	redisclient "github.com/acervohq/acervo-backend/pkg/redis"
)

var ErrSessionNotFound = errors.New("session not found")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager handles creation, lookup and revocation of session records.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	UserID(ctx context.Context, sessionID string) (string, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Create stores a session record mapping the jti to the user id.
func (m *Manager) Create(ctx context.Context, sessionID, userID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	return m.store.Set(ctx, m.keyer.SessionKey(sessionID), userID, m.ttl)
}

// UserID returns the user id bound to the session, or ErrSessionNotFound.
func (m *Manager) UserID(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrSessionNotFound
	}
	value, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if redisclient.IsNil(err) {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	return value, nil
}

// Revoke deletes the session record. Revoking an absent session is a no-op.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) SessionKey(id string) string { return "acervo:session:" + id }

func newTestManager(store *fakeStore) *Manager {
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}
}

func TestManager_CreateAndLookup(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)

	require.NoError(t, m.Create(context.Background(), "jti-1", "user-1"))

	userID, err := m.UserID(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, time.Hour, store.ttls["acervo:session:jti-1"])
}

func TestManager_UserIDMissing(t *testing.T) {
	m := newTestManager(newFakeStore())

	_, err := m.UserID(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Revoke(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)

	require.NoError(t, m.Create(context.Background(), "jti-2", "user-2"))
	require.NoError(t, m.Revoke(context.Background(), "jti-2"))

	_, err := m.UserID(context.Background(), "jti-2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_CreateRequiresIDs(t *testing.T) {
	m := newTestManager(newFakeStore())

	assert.Error(t, m.Create(context.Background(), "", "user"))
	assert.Error(t, m.Create(context.Background(), "jti", ""))
}

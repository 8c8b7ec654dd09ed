package session

import (
	"testing"
	"time"

	"recipe-remix/internal/core/storage"
	"recipe-remix/internal/infrastructure/config"
	"recipe-remix/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(&config.SessionConfig{
		TTL:             ttl,
		CleanupInterval: time.Hour, // 測試內手動觸發清理
		MaxChatMessages: 40,
	}, Collaborators{Store: storage.NewMemoryStore()})
}

func TestManagerCreateAndGet(t *testing.T) {
	m := newTestManager(time.Hour)
	defer m.Close()

	s := m.Create()
	require.NotEmpty(t, s.ID)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	assert.Equal(t, 1, m.Count())
}

func TestManagerGetUnknown(t *testing.T) {
	m := newTestManager(time.Hour)
	defer m.Close()

	_, err := m.Get("no-such-session")
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.ErrCodeSessionNotFound))
}

func TestManagerDelete(t *testing.T) {
	m := newTestManager(time.Hour)
	defer m.Close()

	s := m.Create()
	m.Delete(s.ID)

	_, err := m.Get(s.ID)
	require.Error(t, err)
	assert.Zero(t, m.Count())
}

func TestManagerCleanupExpired(t *testing.T) {
	m := newTestManager(5 * time.Millisecond)
	defer m.Close()

	stale := m.Create()
	time.Sleep(20 * time.Millisecond)
	fresh := m.Create()

	m.cleanupExpired()

	_, err := m.Get(stale.ID)
	require.Error(t, err)

	_, err = m.Get(fresh.ID)
	require.NoError(t, err)
}

func TestManagerCloseIdempotent(t *testing.T) {
	m := newTestManager(time.Hour)
	m.Close()
	m.Close()
}

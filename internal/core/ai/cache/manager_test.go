package cache

import (
	"context"
	"testing"
	"time"

	"recipe-remix/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(maxSize int, ttl time.Duration) *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			Enabled:         true,
			MaxSize:         maxSize,
			TTL:             ttl,
			CleanupInterval: time.Hour,
		},
	}
}

func TestManagerDisabledIsNil(t *testing.T) {
	cfg := testConfig(10, time.Hour)
	cfg.Cache.Enabled = false

	m := NewManager(cfg)
	assert.Nil(t, m)

	// nil 接收者全部安全
	_, err := m.Get(context.Background(), "p", "")
	assert.Error(t, err)
	assert.NoError(t, m.Set(context.Background(), "p", "", "v"))
	m.Close()
}

func TestManagerSetGet(t *testing.T) {
	m := NewManager(testConfig(10, time.Hour))
	defer m.Close()
	ctx := context.Background()

	_, err := m.Get(ctx, "prompt", "")
	require.Error(t, err)

	require.NoError(t, m.Set(ctx, "prompt", "", "answer"))
	got, err := m.Get(ctx, "prompt", "")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)

	hits, misses, _ := m.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestManagerKeyIncludesImage(t *testing.T) {
	m := NewManager(testConfig(10, time.Hour))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "prompt", "image-a", "answer-a"))

	// 同 prompt 不同圖片是不同鍵
	_, err := m.Get(ctx, "prompt", "image-b")
	assert.Error(t, err)

	got, err := m.Get(ctx, "prompt", "image-a")
	require.NoError(t, err)
	assert.Equal(t, "answer-a", got)
}

func TestManagerExpiry(t *testing.T) {
	m := NewManager(testConfig(10, 5*time.Millisecond))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "prompt", "", "answer"))
	time.Sleep(10 * time.Millisecond)

	_, err := m.Get(ctx, "prompt", "")
	assert.Error(t, err)
}

func TestManagerEviction(t *testing.T) {
	m := NewManager(testConfig(2, time.Hour))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "", "1"))
	time.Sleep(time.Millisecond)
	require.NoError(t, m.Set(ctx, "b", "", "2"))
	time.Sleep(time.Millisecond)
	require.NoError(t, m.Set(ctx, "c", "", "3"))

	// 容量 2，最舊的 a 被淘汰
	_, err := m.Get(ctx, "a", "")
	assert.Error(t, err)
	_, err = m.Get(ctx, "c", "")
	assert.NoError(t, err)
}

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"recipe-remix/internal/infrastructure/config"
	"recipe-remix/internal/pkg/common"

	"go.uber.org/zap"
)

// Manager AI 回應快取管理器
// 以 prompt 與圖片哈希為鍵的記憶體快取，對話輪不經過這裡
type Manager struct {
	config *config.Config
	mu     sync.Mutex
	store  map[string]cacheEntry
	done   chan struct{}
	once   sync.Once
	stats  cacheStats
}

// cacheEntry 快取條目
type cacheEntry struct {
	value       string
	expiresAt   time.Time
	imageHash   string
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 快取統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewManager 創建快取管理器，快取關閉時回傳 nil
func NewManager(cfg *config.Config) *Manager {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil
	}

	m := &Manager{
		config: cfg,
		store:  make(map[string]cacheEntry),
		done:   make(chan struct{}),
	}

	// 啟動清理過期快取的協程
	go m.startCleanup()

	common.LogInfo("快取管理員已初始化",
		zap.Int("最大容量", cfg.Cache.MaxSize),
		zap.Duration("存活時間", cfg.Cache.TTL),
		zap.Duration("清理間隔", cfg.Cache.CleanupInterval),
	)

	return m
}

// Get 獲取快取值
func (m *Manager) Get(ctx context.Context, prompt, imageData string) (string, error) {
	if m == nil {
		return "", fmt.Errorf("cache disabled")
	}

	key := m.generateKey(prompt, imageData)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		common.LogDebug("快取未命中", zap.String("鍵", key))
		return "", fmt.Errorf("cache miss")
	}

	// 檢查是否過期
	if time.Now().After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		common.LogDebug("快取已過期", zap.String("鍵", key))
		return "", fmt.Errorf("cache expired")
	}

	// 檢查圖片哈希是否匹配
	if imageData != "" && entry.imageHash != hashImage(imageData) {
		m.stats.misses++
		common.LogDebug("快取因圖片變更未命中", zap.String("鍵", key))
		return "", fmt.Errorf("image changed")
	}

	// 更新訪問統計
	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++

	common.LogDebug("快取命中", zap.String("鍵", key))
	return entry.value, nil
}

// Set 設置快取值，容量滿時先淘汰最久未使用的條目
func (m *Manager) Set(ctx context.Context, prompt, imageData, value string) error {
	if m == nil {
		return nil
	}

	key := m.generateKey(prompt, imageData)
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.store) >= m.config.Cache.MaxSize {
		m.evictOldest()
	}

	m.store[key] = cacheEntry{
		value:      value,
		expiresAt:  now.Add(m.config.Cache.TTL),
		imageHash:  hashImage(imageData),
		createdAt:  now,
		lastAccess: now,
	}
	return nil
}

// evictOldest 淘汰最久未訪問的條目，呼叫端需持有鎖
func (m *Manager) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for k, e := range m.store {
		if oldestKey == "" || e.lastAccess.Before(oldestTime) {
			oldestKey = k
			oldestTime = e.lastAccess
		}
	}
	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
	}
}

// generateKey 生成快取鍵
func (m *Manager) generateKey(prompt, imageData string) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	if imageData != "" {
		h.Write([]byte(hashImage(imageData)))
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// hashImage 計算圖片數據哈希
func hashImage(imageData string) string {
	if imageData == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(imageData))
	return hex.EncodeToString(sum[:])
}

// startCleanup 定期清理過期條目
func (m *Manager) startCleanup() {
	ticker := time.NewTicker(m.config.Cache.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			removed := 0
			m.mu.Lock()
			for k, e := range m.store {
				if now.After(e.expiresAt) {
					delete(m.store, k)
					m.stats.evictions++
					removed++
				}
			}
			m.mu.Unlock()
			if removed > 0 {
				common.LogDebug("清理過期快取", zap.Int("數量", removed))
			}
		case <-m.done:
			return
		}
	}
}

// Close 停止清理協程
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.once.Do(func() {
		close(m.done)
	})
}

// Stats 回傳命中／未命中／淘汰統計
func (m *Manager) Stats() (hits, misses, evictions int64) {
	if m == nil {
		return 0, 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats.hits, m.stats.misses, m.stats.evictions
}

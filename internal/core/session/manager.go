package session

import (
	"fmt"
	"sync"
	"time"

	"recipe-remix/internal/infrastructure/config"
	"recipe-remix/internal/pkg/common"

	"go.uber.org/zap"
)

// Manager 會話管理器
// 以會話 ID 索引，閒置超過 TTL 的會話由背景清理移除
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	collab    Collaborators
	ttl       time.Duration
	maxChat   int
	done      chan struct{}
	closeOnce sync.Once
}

// NewManager 創建會話管理器並啟動過期清理
func NewManager(cfg *config.SessionConfig, collab Collaborators) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		collab:   collab,
		ttl:      cfg.TTL,
		maxChat:  cfg.MaxChatMessages,
		done:     make(chan struct{}),
	}

	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go m.cleanupLoop(interval)

	common.LogInfo("會話管理器已初始化",
		zap.Duration("ttl", m.ttl),
		zap.Duration("cleanup_interval", interval),
	)
	return m
}

// Create 創建新會話
func (m *Manager) Create() *Session {
	s := NewSession(common.GenerateUUID(), m.collab, m.maxChat)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	common.LogInfo("已創建會話", zap.String("session_id", s.ID))
	return s
}

// Get 取得既有會話
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, common.ErrSessionNotFound.WithCause(fmt.Errorf("session %s not found", id))
	}
	return s, nil
}

// Delete 移除會話
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count 目前活躍會話數
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// cleanupLoop 定期移除閒置過久的會話
func (m *Manager) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.done:
			return
		}
	}
}

// cleanupExpired 移除所有超過 TTL 的會話
func (m *Manager) cleanupExpired() {
	m.mu.RLock()
	candidates := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		candidates = append(candidates, s)
	}
	m.mu.RUnlock()

	// IdleSince 需要會話鎖，在管理器鎖外逐一檢查
	expired := make([]string, 0)
	for _, s := range candidates {
		if s.IdleSince() > m.ttl {
			expired = append(expired, s.ID)
		}
	}
	if len(expired) == 0 {
		return
	}

	m.mu.Lock()
	for _, id := range expired {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	common.LogInfo("已清理過期會話", zap.Int("count", len(expired)))
}

// Close 停止背景清理
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

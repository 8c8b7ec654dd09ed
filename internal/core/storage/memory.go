package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"recipe-remix/internal/core/recipe"
	"recipe-remix/internal/pkg/common"
)

// MemoryStore 記憶體食譜儲存
// Redis 未啟用時的退路，也供測試使用；語義與 RedisStore 一致
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]map[string]SavedRecipe // sessionID → savedID → snapshot
}

// NewMemoryStore 創建記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]map[string]SavedRecipe),
	}
}

// Save 儲存食譜與食材快照
func (s *MemoryStore) Save(ctx context.Context, sessionID string, rec recipe.Recipe, ingredients []recipe.Ingredient) (*SavedRecipe, error) {
	saved := SavedRecipe{
		ID:              common.GenerateUUID(),
		SessionID:       sessionID,
		RecipeTitle:     rec.Title,
		Recipe:          rec.Clone(),
		IngredientsUsed: recipe.CloneIngredients(ingredients),
		CreatedAt:       time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items[sessionID] == nil {
		s.items[sessionID] = make(map[string]SavedRecipe)
	}
	s.items[sessionID][saved.ID] = saved

	out := saved
	return &out, nil
}

// List 列出會話的所有已儲存食譜，依建立時間新到舊排序
func (s *MemoryStore) List(ctx context.Context, sessionID string) ([]SavedRecipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SavedRecipe, 0, len(s.items[sessionID]))
	for _, saved := range s.items[sessionID] {
		out = append(out, saved)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete 刪除已儲存食譜
func (s *MemoryStore) Delete(ctx context.Context, sessionID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[sessionID][id]; !ok {
		return common.ErrNotFound.WithCause(fmt.Errorf("saved recipe %s not found", id))
	}
	delete(s.items[sessionID], id)
	return nil
}

// SetFavorite 切換最愛狀態
func (s *MemoryStore) SetFavorite(ctx context.Context, sessionID, id string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, ok := s.items[sessionID][id]
	if !ok {
		return common.ErrNotFound.WithCause(fmt.Errorf("saved recipe %s not found", id))
	}
	saved.IsFavorite = favorite
	s.items[sessionID][id] = saved
	return nil
}

// Count 會話已儲存食譜數量
func (s *MemoryStore) Count(ctx context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items[sessionID]), nil
}

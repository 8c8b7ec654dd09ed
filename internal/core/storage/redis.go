package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"recipe-remix/internal/core/recipe"
	"recipe-remix/internal/infrastructure/config"
	"recipe-remix/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore Redis 食譜儲存
// 每個會話一個 hash，欄位為儲存 ID、值為 JSON 快照
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 創建 Redis 儲存並驗證連線
func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 儲存已初始化", zap.String("addr", cfg.Addr))
	return &RedisStore{client: client}, nil
}

// sessionKey 會話對應的 Redis 鍵
func sessionKey(sessionID string) string {
	return "saved_recipes:" + sessionID
}

// Save 儲存食譜與食材快照
func (s *RedisStore) Save(ctx context.Context, sessionID string, rec recipe.Recipe, ingredients []recipe.Ingredient) (*SavedRecipe, error) {
	saved := &SavedRecipe{
		ID:              common.GenerateUUID(),
		SessionID:       sessionID,
		RecipeTitle:     rec.Title,
		Recipe:          rec.Clone(),
		IngredientsUsed: recipe.CloneIngredients(ingredients),
		CreatedAt:       time.Now().UTC(),
	}

	data, err := json.Marshal(saved)
	if err != nil {
		return nil, common.ErrPersistenceFailure.WithCause(fmt.Errorf("marshal saved recipe: %w", err))
	}

	if err := s.client.HSet(ctx, sessionKey(sessionID), saved.ID, data).Err(); err != nil {
		return nil, common.ErrPersistenceFailure.WithCause(fmt.Errorf("save recipe: %w", err))
	}
	return saved, nil
}

// List 列出會話的所有已儲存食譜，依建立時間新到舊排序
func (s *RedisStore) List(ctx context.Context, sessionID string) ([]SavedRecipe, error) {
	values, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, common.ErrPersistenceFailure.WithCause(fmt.Errorf("list recipes: %w", err))
	}

	out := make([]SavedRecipe, 0, len(values))
	for id, raw := range values {
		var saved SavedRecipe
		if err := json.Unmarshal([]byte(raw), &saved); err != nil {
			// 壞掉的快照跳過並警告，不讓整個列表失敗
			common.LogWarn("略過無法解析的儲存快照",
				zap.String("session_id", sessionID),
				zap.String("saved_id", id),
				zap.Error(err),
			)
			continue
		}
		out = append(out, saved)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete 刪除已儲存食譜
func (s *RedisStore) Delete(ctx context.Context, sessionID, id string) error {
	removed, err := s.client.HDel(ctx, sessionKey(sessionID), id).Result()
	if err != nil {
		return common.ErrPersistenceFailure.WithCause(fmt.Errorf("delete recipe: %w", err))
	}
	if removed == 0 {
		return common.ErrNotFound.WithCause(fmt.Errorf("saved recipe %s not found", id))
	}
	return nil
}

// SetFavorite 切換最愛狀態
func (s *RedisStore) SetFavorite(ctx context.Context, sessionID, id string, favorite bool) error {
	key := sessionKey(sessionID)
	raw, err := s.client.HGet(ctx, key, id).Result()
	if err == redis.Nil {
		return common.ErrNotFound.WithCause(fmt.Errorf("saved recipe %s not found", id))
	}
	if err != nil {
		return common.ErrPersistenceFailure.WithCause(fmt.Errorf("load recipe: %w", err))
	}

	var saved SavedRecipe
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		return common.ErrPersistenceFailure.WithCause(fmt.Errorf("unmarshal saved recipe: %w", err))
	}

	saved.IsFavorite = favorite
	data, err := json.Marshal(&saved)
	if err != nil {
		return common.ErrPersistenceFailure.WithCause(fmt.Errorf("marshal saved recipe: %w", err))
	}
	if err := s.client.HSet(ctx, key, id, data).Err(); err != nil {
		return common.ErrPersistenceFailure.WithCause(fmt.Errorf("update favorite: %w", err))
	}
	return nil
}

// Count 會話已儲存食譜數量
func (s *RedisStore) Count(ctx context.Context, sessionID string) (int, error) {
	n, err := s.client.HLen(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return 0, common.ErrPersistenceFailure.WithCause(fmt.Errorf("count recipes: %w", err))
	}
	return int(n), nil
}

// Close 關閉 Redis 連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

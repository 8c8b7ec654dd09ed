package service

import (
	"context"
	"strings"
	"time"

	"recipe-remix/internal/core/ai/cache"
	"recipe-remix/internal/core/ai/openrouter"
	"recipe-remix/internal/infrastructure/config"
	"recipe-remix/internal/pkg/common"
)

// Response AI 回應結構
type Response struct {
	Content  string
	CacheHit bool
}

// Service AI 服務
// 統一入口：正規化 prompt、查詢快取、轉交 OpenRouter 客戶端
type Service struct {
	config       *config.Config
	client       *openrouter.Client
	cacheManager *cache.Manager
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, cacheManager *cache.Manager) *Service {
	return &Service{
		config:       cfg,
		client:       openrouter.NewClient(cfg),
		cacheManager: cacheManager,
	}
}

// ProcessRequest 單輪請求，結果進快取
func (s *Service) ProcessRequest(ctx context.Context, prompt string, imageData string) (*Response, error) {
	// 統一 prompt 空白格式，確保快取鍵一致
	prompt = squashWhitespace(prompt)

	// 檢查快取
	if s.config.Cache.Enabled && s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, prompt, imageData); err == nil && val != "" {
			return &Response{Content: val, CacheHit: true}, nil
		}
	}

	start := time.Now()
	content, err := s.client.GenerateResponse(ctx, prompt, imageData)
	common.LogAICall("generate", time.Since(start), err, "")
	if err != nil {
		return nil, err
	}

	if s.config.Cache.Enabled && s.cacheManager != nil {
		_ = s.cacheManager.Set(ctx, prompt, imageData, content)
	}

	return &Response{Content: content}, nil
}

// Chat 多輪對話請求，不經過快取（對話內容依賴完整上下文）
func (s *Service) Chat(ctx context.Context, system string, messages []openrouter.Message, tools []openrouter.Tool) (*openrouter.ChatResult, error) {
	start := time.Now()
	result, err := s.client.ChatComplete(ctx, system, messages, tools)
	common.LogAICall("chat", time.Since(start), err, "")
	return result, err
}

// squashWhitespace 去除多餘空白、tab、換行，連續空白合併為一格
func squashWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

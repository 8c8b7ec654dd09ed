package recipe

import (
	"context"
	"fmt"

	"recipe-remix/internal/core/ai/service"
	"recipe-remix/internal/pkg/common"

	"go.uber.org/zap"
)

// detectPrompt 食材辨識提示詞，回應限定為 JSON 陣列
const detectPrompt = `Analyze this image and identify all food ingredients visible. Return a JSON array of ingredients with this exact structure:
[
  {
    "name": "ingredient name (lowercase, singular)",
    "category": "produce|protein|dairy|grain|spice",
    "quantity": "estimated quantity (e.g., '3', '2 cups', '1 lb')"
  }
]

Categories:
- produce: fruits, vegetables
- protein: meat, fish, eggs, tofu, beans
- dairy: milk, cheese, yogurt, butter
- grain: bread, pasta, rice, flour
- spice: herbs, spices, condiments, oils

Return ONLY the JSON array, no other text. Be specific with ingredient names (e.g., "chicken breast" not "chicken").`

// DetectionService 圖片食材辨識服務
type DetectionService struct {
	aiService  *service.Service
	normalizer *Normalizer
}

// NewDetectionService 創建食材辨識服務
func NewDetectionService(aiService *service.Service) *DetectionService {
	return &DetectionService{
		aiService:  aiService,
		normalizer: NewNormalizer(),
	}
}

// DetectIngredients 辨識圖片中的食材
// 圖片驗證由呼叫端先行完成，這裡只負責 AI 呼叫與正規化
func (s *DetectionService) DetectIngredients(ctx context.Context, imageData string) ([]Ingredient, error) {
	resp, err := s.aiService.ProcessRequest(ctx, detectPrompt, imageData)
	if err != nil {
		return nil, common.ErrServiceFailure.WithCause(fmt.Errorf("ingredient detection: %w", err))
	}
	if resp == nil || resp.Content == "" {
		return nil, common.ErrServiceFailure.WithCause(fmt.Errorf("empty AI response"))
	}

	items, err := s.normalizer.Ingredients(resp.Content)
	if err != nil {
		common.LogError("食材辨識回應正規化失敗",
			zap.Error(err),
			zap.String("raw_preview", common.Truncate(resp.Content, 300)),
		)
		return nil, err
	}

	common.LogInfo("食材辨識完成",
		zap.Int("數量", len(items)),
		zap.Bool("cache_hit", resp.CacheHit),
	)
	return items, nil
}

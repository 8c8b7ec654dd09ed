package recipe

import (
	"context"
	"fmt"
	"strings"

	"recipe-remix/internal/core/ai/service"
	"recipe-remix/internal/pkg/common"

	"go.uber.org/zap"
)

// GenerationService 食譜生成服務
// 根據目前食材生成三個菜系、每菜系兩道食譜的批次
type GenerationService struct {
	aiService  *service.Service
	normalizer *Normalizer
}

// NewGenerationService 創建食譜生成服務
func NewGenerationService(aiService *service.Service) *GenerationService {
	return &GenerationService{
		aiService:  aiService,
		normalizer: NewNormalizer(),
	}
}

// buildGeneratePrompt 組合食譜生成提示詞
func buildGeneratePrompt(ingredients []Ingredient) string {
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		names = append(names, ing.Name)
	}

	return fmt.Sprintf(`I have these ingredients: %s

Generate 3 DIFFERENT cuisine styles, each with 2 recipe suggestions (6 total). Return ONLY valid JSON array with this EXACT structure:
[
  {
    "name": "Mediterranean",
    "description": "Fresh, healthy dishes with olive oil and herbs",
    "recipes": [
      {
        "title": "Recipe Name",
        "cookTime": 25,
        "difficulty": "easy|medium|hard",
        "ingredientsNeeded": ["ingredient1", "ingredient2"],
        "ingredientsMatched": ["ingredient1", "ingredient2"],
        "matchPercentage": 75,
        "description": "A compelling 2-3 sentence description",
        "cuisine": "Mediterranean",
        "steps": [
          {
            "stepNumber": 1,
            "instruction": "Clear, actionable instruction",
            "estimatedTime": "5 min"
          }
        ]
      }
    ]
  }
]

CRITICAL Requirements:
- Choose 3 distinct cuisines (Mediterranean, Asian, Mexican or similar)
- Each cuisine must have EXACTLY 2 recipes
- Each recipe must have EXACTLY 4-5 cooking steps
- Keep descriptions under 100 characters
- ingredientsMatched: only ingredients from my list, must be a subset of ingredientsNeeded
- matchPercentage: round to nearest integer
- Ensure all JSON is VALID - use double quotes, escape special chars
- cuisine field must match cuisine group name exactly

Return ONLY the JSON array. NO markdown, NO explanations, ONLY the JSON array starting with [ and ending with ].`,
		strings.Join(names, ", "))
}

// GenerateCuisines 以目前食材快照生成菜系群組批次
func (s *GenerationService) GenerateCuisines(ctx context.Context, ingredients []Ingredient) ([]CuisineGroup, error) {
	if len(ingredients) == 0 {
		return nil, common.ErrInvalidInput.WithCause(fmt.Errorf("no ingredients to generate recipes from"))
	}

	resp, err := s.aiService.ProcessRequest(ctx, buildGeneratePrompt(ingredients), "")
	if err != nil {
		return nil, common.ErrServiceFailure.WithCause(fmt.Errorf("recipe generation: %w", err))
	}
	if resp == nil || resp.Content == "" {
		return nil, common.ErrServiceFailure.WithCause(fmt.Errorf("empty AI response"))
	}

	common.LogDebug("AI 回應內容 (recipes/generate)",
		zap.Int("ai_response_length", len(resp.Content)),
		zap.String("ai_response_preview", common.Truncate(resp.Content, 300)),
	)

	groups, err := s.normalizer.CuisineGroups(resp.Content)
	if err != nil {
		common.LogError("食譜生成回應正規化失敗",
			zap.Error(err),
			zap.String("raw_preview", common.Truncate(resp.Content, 300)),
		)
		return nil, err
	}

	total := 0
	for _, g := range groups {
		total += len(g.Recipes)
	}
	common.LogInfo("食譜生成完成",
		zap.Int("菜系數", len(groups)),
		zap.Int("食譜數", total),
		zap.Bool("cache_hit", resp.CacheHit),
	)
	return groups, nil
}

package recipe

import (
	"context"
	"fmt"
	"strings"

	"recipe-remix/internal/core/ai/service"
	"recipe-remix/internal/pkg/common"

	"go.uber.org/zap"
)

// SubstitutionService 食材替換建議服務
type SubstitutionService struct {
	aiService  *service.Service
	normalizer *Normalizer
}

// NewSubstitutionService 創建替換建議服務
func NewSubstitutionService(aiService *service.Service) *SubstitutionService {
	return &SubstitutionService{
		aiService:  aiService,
		normalizer: NewNormalizer(),
	}
}

// buildSubstitutionPrompt 組合替換建議提示詞
func buildSubstitutionPrompt(rec Recipe, available []Ingredient, missing []string) string {
	names := make([]string, 0, len(available))
	for _, ing := range available {
		names = append(names, ing.Name)
	}

	return fmt.Sprintf(`Recipe: %s
Ingredients I have: %s
All ingredients needed: %s
Missing ingredients: %s

For each missing ingredient, suggest a creative substitution using what I have. Return a JSON array:
[
  {
    "original": "missing ingredient",
    "substitute": "ingredient from my list to use instead",
    "flavorScience": "2-3 sentences explaining the chemistry/science behind why this substitution works. Include specific compounds, flavors, or cooking properties.",
    "flavorImpact": 1-5,
    "textureImpact": 1-5
  }
]

Requirements:
- Only substitute ingredients I don't have
- Substitutes must come from my available ingredients
- flavorImpact: 1=minimal change, 5=significant change
- textureImpact: 1=minimal change, 5=significant change
- flavorScience must be educational and specific (mention acids, umami, Maillard reaction, etc.)
- Be creative but practical

Return ONLY the JSON array, no other text.`,
		rec.Title,
		strings.Join(names, ", "),
		strings.Join(rec.IngredientsNeeded, ", "),
		strings.Join(missing, ", "))
}

// GenerateSubstitutions 為所選食譜的缺少食材生成替換建議
// 完美匹配的情況由狀態機短路處理，這裡仍防禦性地回傳空清單而非錯誤
func (s *SubstitutionService) GenerateSubstitutions(ctx context.Context, rec Recipe, available []Ingredient) ([]Substitution, error) {
	missing := rec.MissingIngredients()
	if len(missing) == 0 {
		return []Substitution{}, nil
	}

	resp, err := s.aiService.ProcessRequest(ctx, buildSubstitutionPrompt(rec, available, missing), "")
	if err != nil {
		return nil, common.ErrServiceFailure.WithCause(fmt.Errorf("substitution generation: %w", err))
	}
	if resp == nil || resp.Content == "" {
		return nil, common.ErrServiceFailure.WithCause(fmt.Errorf("empty AI response"))
	}

	subs, err := s.normalizer.Substitutions(resp.Content, rec)
	if err != nil {
		common.LogError("替換建議回應正規化失敗",
			zap.Error(err),
			zap.String("raw_preview", common.Truncate(resp.Content, 300)),
		)
		return nil, err
	}

	common.LogInfo("替換建議生成完成",
		zap.String("recipe", rec.Title),
		zap.Int("缺少食材數", len(missing)),
		zap.Int("建議數", len(subs)),
		zap.Bool("cache_hit", resp.CacheHit),
	)
	return subs, nil
}

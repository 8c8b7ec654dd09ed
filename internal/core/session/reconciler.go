package session

import (
	"recipe-remix/internal/core/recipe"

	"recipe-remix/internal/pkg/common"

	"go.uber.org/zap"
)

// MergePatch 將對話提出的部分更新套用到基底食譜
// 淺層合併：有提供的欄位覆寫、未提供的欄位保留原值。
// Steps 一旦提供即整串取代，步驟編號依補丁內容為準、不重編號；
// 補丁更動 ingredientsNeeded 而未附 matched／百分比時，
// 以現有食材重算兩者，維持 matched ⊆ needed 不變式
func MergePatch(base recipe.Recipe, p recipe.Patch, have []recipe.Ingredient) recipe.Recipe {
	merged := base.Clone()

	if p.CookTime != nil {
		merged.CookTime = *p.CookTime
	}
	if p.Description != nil {
		merged.Description = *p.Description
	}
	if p.Steps != nil {
		merged.Steps = append([]recipe.CookingStep(nil), p.Steps...)
	}
	if p.IngredientsNeeded != nil {
		merged.IngredientsNeeded = append([]string(nil), p.IngredientsNeeded...)
		matched, pct := recipe.RecomputeMatch(merged.IngredientsNeeded, have)
		merged.IngredientsMatched = matched
		merged.MatchPercentage = pct

		common.LogDebug("補丁更動食材清單，重算相符狀態",
			zap.String("recipe", merged.Title),
			zap.Int("needed", len(merged.IngredientsNeeded)),
			zap.Int("matched", len(matched)),
			zap.Int("match_percentage", pct),
		)
	}

	return merged
}

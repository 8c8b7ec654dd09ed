package recipe

import (
	"fmt"
	"regexp"
	"strings"

	"recipe-remix/internal/pkg/common"

	"go.uber.org/zap"
)

// Normalizer AI 回應正規化器
// 將外部 AI 回傳的自由文字轉成強型別結構，四種載荷各有一個驗證入口；
// 純轉換、無 I/O，網路呼叫由外部協作方負責
type Normalizer struct {
	newID func() string
}

// NewNormalizer 創建正規化器，食譜 ID 以 UUID 指派
func NewNormalizer() *Normalizer {
	return &Normalizer{newID: common.GenerateUUID}
}

var trailingCommaPattern = regexp.MustCompile(`,\s*([\]}])`)

// extractJSONBlock 取出文字中最外層的 JSON 陣列或物件
// 從第一個 [ 或 { 到對應的最後一個 ] 或 }，前後的說明文字一律捨棄
func extractJSONBlock(raw string) (string, error) {
	arrStart := strings.Index(raw, "[")
	objStart := strings.Index(raw, "{")

	start, closer := -1, ""
	switch {
	case arrStart != -1 && (objStart == -1 || arrStart < objStart):
		start, closer = arrStart, "]"
	case objStart != -1:
		start, closer = objStart, "}"
	default:
		return "", fmt.Errorf("no JSON block found in response")
	}

	end := strings.LastIndex(raw, closer)
	if end == -1 || end < start {
		return "", fmt.Errorf("unterminated JSON block in response")
	}
	return raw[start : end+1], nil
}

// repairJSON 有界修復：去除閉括號前的尾逗號、壓平區塊內的換行與 tab
func repairJSON(candidate string) string {
	repaired := strings.ReplaceAll(candidate, "\n", " ")
	repaired = strings.ReplaceAll(repaired, "\t", " ")
	repaired = trailingCommaPattern.ReplaceAllString(repaired, "$1")
	return repaired
}

// decode 嚴格解析候選區塊，失敗時套用修復後重試一次
func decode(raw string, v interface{}) error {
	candidate, err := extractJSONBlock(raw)
	if err != nil {
		return common.NewMalformedAIError(raw, err)
	}

	if err := common.ParseJSON(candidate, v); err == nil {
		return nil
	}

	// 修復後只重試一次，仍失敗即回報原始內容
	if err := common.ParseJSON(repairJSON(candidate), v); err != nil {
		return common.NewMalformedAIError(raw, err)
	}
	return nil
}

// Ingredients 解析食材清單載荷
func (n *Normalizer) Ingredients(raw string) ([]Ingredient, error) {
	var items []Ingredient
	if err := decode(raw, &items); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].Name = NormalizeName(items[i].Name)
		if items[i].Name == "" {
			return nil, common.NewMalformedAIError(raw, fmt.Errorf("ingredient %d: missing name", i))
		}
		if !items[i].Category.Valid() {
			return nil, common.NewMalformedAIError(raw, fmt.Errorf("ingredient %q: invalid category %q", items[i].Name, items[i].Category))
		}
	}
	return items, nil
}

// CuisineGroups 解析菜系群組載荷
// 空群組以警告捨棄而非整批失敗，維持對部分錯誤的韌性；
// matched ⊄ needed 屬不變式違反，整批拒絕
func (n *Normalizer) CuisineGroups(raw string) ([]CuisineGroup, error) {
	var groups []CuisineGroup
	if err := decode(raw, &groups); err != nil {
		return nil, err
	}

	valid := make([]CuisineGroup, 0, len(groups))
	for _, g := range groups {
		if g.Name == "" {
			common.LogWarn("捨棄無名稱的菜系群組")
			continue
		}
		if len(g.Recipes) == 0 {
			common.LogWarn("捨棄沒有食譜的菜系群組", zap.String("cuisine", g.Name))
			continue
		}

		for i := range g.Recipes {
			r := &g.Recipes[i]
			if r.Title == "" {
				return nil, common.NewMalformedAIError(raw, fmt.Errorf("cuisine %q: recipe %d missing title", g.Name, i))
			}
			if !r.Difficulty.Valid() {
				return nil, common.NewMalformedAIError(raw, fmt.Errorf("recipe %q: invalid difficulty %q", r.Title, r.Difficulty))
			}
			if r.Description == "" {
				return nil, common.NewMalformedAIError(raw, fmt.Errorf("recipe %q: missing description", r.Title))
			}
			if r.CookTime <= 0 {
				return nil, common.NewMalformedAIError(raw, fmt.Errorf("recipe %q: invalid cookTime %d", r.Title, r.CookTime))
			}
			if len(r.IngredientsNeeded) == 0 {
				return nil, common.NewMalformedAIError(raw, fmt.Errorf("recipe %q: empty ingredientsNeeded", r.Title))
			}
			if !isSubset(r.IngredientsMatched, r.IngredientsNeeded) {
				return nil, common.NewMalformedAIError(raw, fmt.Errorf("recipe %q: ingredientsMatched is not a subset of ingredientsNeeded", r.Title))
			}

			// 不信任模型算術，一律以清單長度重算
			r.MatchPercentage = ComputeMatchPercentage(len(r.IngredientsMatched), len(r.IngredientsNeeded))
			// cuisine 欄位以群組名稱為準
			r.Cuisine = g.Name
			r.ID = n.newID()

			// 步驟允許為空（退化狀態），但編號必須回填
			for j := range r.Steps {
				if r.Steps[j].StepNumber == 0 {
					r.Steps[j].StepNumber = j + 1
				}
			}
		}
		valid = append(valid, g)
	}

	if len(valid) == 0 {
		return nil, common.NewMalformedAIError(raw, fmt.Errorf("no usable cuisine group in response"))
	}
	return valid, nil
}

// Substitutions 解析替換建議載荷
// original 必須屬於該食譜的缺少食材，影響值必須落在 1–5；
// 個別違規項目以警告捨棄，全數無效才視為格式錯誤
func (n *Normalizer) Substitutions(raw string, rec Recipe) ([]Substitution, error) {
	var subs []Substitution
	if err := decode(raw, &subs); err != nil {
		return nil, err
	}

	missing := make(map[string]struct{})
	for _, m := range rec.MissingIngredients() {
		missing[NormalizeName(m)] = struct{}{}
	}

	valid := make([]Substitution, 0, len(subs))
	for _, s := range subs {
		if s.Original == "" || s.Substitute == "" {
			common.LogWarn("捨棄欄位不全的替換建議", zap.String("original", s.Original))
			continue
		}
		if _, ok := missing[NormalizeName(s.Original)]; !ok {
			common.LogWarn("捨棄非缺少食材的替換建議",
				zap.String("original", s.Original),
				zap.String("recipe", rec.Title),
			)
			continue
		}
		if s.FlavorImpact < 1 || s.FlavorImpact > 5 || s.TextureImpact < 1 || s.TextureImpact > 5 {
			common.LogWarn("捨棄影響值超出範圍的替換建議",
				zap.String("original", s.Original),
				zap.Int("flavor_impact", s.FlavorImpact),
				zap.Int("texture_impact", s.TextureImpact),
			)
			continue
		}
		valid = append(valid, s)
	}

	if len(subs) > 0 && len(valid) == 0 {
		return nil, common.NewMalformedAIError(raw, fmt.Errorf("no usable substitution in response"))
	}
	return valid, nil
}

// Patch 解析食譜更新載荷（工具呼叫引數）
func (n *Normalizer) Patch(raw string) (*Patch, error) {
	var p Patch
	if err := decode(raw, &p); err != nil {
		return nil, err
	}

	if p.Explanation == "" {
		return nil, common.NewMalformedAIError(raw, fmt.Errorf("patch missing explanation"))
	}
	for i := range p.Steps {
		if p.Steps[i].Instruction == "" {
			return nil, common.NewMalformedAIError(raw, fmt.Errorf("patch step %d: missing instruction", i))
		}
	}
	return &p, nil
}

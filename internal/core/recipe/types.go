package recipe

import (
	"math"
	"strings"
)

// Category 食材分類
type Category string

const (
	CategoryProduce Category = "produce"
	CategoryProtein Category = "protein"
	CategoryDairy   Category = "dairy"
	CategoryGrain   Category = "grain"
	CategorySpice   Category = "spice"
)

// Valid 檢查分類是否為允許值
func (c Category) Valid() bool {
	switch c {
	case CategoryProduce, CategoryProtein, CategoryDairy, CategoryGrain, CategorySpice:
		return true
	}
	return false
}

// Difficulty 食譜難度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid 檢查難度是否為允許值
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Ingredient 食材
// 識別依位置而非穩定 ID，允許重複項目
type Ingredient struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Quantity string   `json:"quantity,omitempty"`
}

// CookingStep 烹飪步驟
type CookingStep struct {
	StepNumber    int    `json:"stepNumber"`
	Instruction   string `json:"instruction"`
	EstimatedTime string `json:"estimatedTime,omitempty"`
}

// Recipe 食譜
// ID 於正規化時以 UUID 指派，目錄查找與更新一律以 ID 為準；
// 標題僅作顯示用途，跨菜系重複不影響識別
type Recipe struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	CookTime           int           `json:"cookTime"`
	Difficulty         Difficulty    `json:"difficulty"`
	IngredientsNeeded  []string      `json:"ingredientsNeeded"`
	IngredientsMatched []string      `json:"ingredientsMatched"`
	MatchPercentage    int           `json:"matchPercentage"`
	Description        string        `json:"description"`
	Steps              []CookingStep `json:"steps"`
	Cuisine            string        `json:"cuisine,omitempty"`
}

// CuisineGroup 菜系群組，一批生成結果內名稱唯一
type CuisineGroup struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Recipes     []Recipe `json:"recipes"`
}

// Substitution 食材替換建議
type Substitution struct {
	Original      string `json:"original"`
	Substitute    string `json:"substitute"`
	FlavorScience string `json:"flavorScience"`
	FlavorImpact  int    `json:"flavorImpact"`
	TextureImpact int    `json:"textureImpact"`
}

// Patch 對話協作方提出的部分食譜更新
// 純量欄位以指標區分「未提供」與零值；切片欄位以 nil 表示未提供，
// Steps 一旦提供即整串取代，不做步驟層級合併
type Patch struct {
	IngredientsNeeded []string      `json:"ingredientsNeeded,omitempty"`
	Steps             []CookingStep `json:"steps,omitempty"`
	CookTime          *int          `json:"cookTime,omitempty"`
	Description       *string       `json:"description,omitempty"`
	Explanation       string        `json:"explanation"`
}

// ChatMessage 對話訊息
type ChatMessage struct {
	Role    string `json:"role"` // user / assistant
	Content string `json:"content"`
}

// NormalizeName 統一食材名稱格式：小寫、去除前後空白
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ComputeMatchPercentage 計算相符百分比，needed 為零時回傳 0
func ComputeMatchPercentage(matched, needed int) int {
	if needed <= 0 {
		return 0
	}
	return int(math.Round(float64(matched) / float64(needed) * 100))
}

// MissingIngredients 計算尚缺食材：needed 減去 matched 的值集合差，保留原始順序
func (r Recipe) MissingIngredients() []string {
	matched := make(map[string]struct{}, len(r.IngredientsMatched))
	for _, m := range r.IngredientsMatched {
		matched[NormalizeName(m)] = struct{}{}
	}

	missing := make([]string, 0, len(r.IngredientsNeeded))
	for _, n := range r.IngredientsNeeded {
		if _, ok := matched[NormalizeName(n)]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// RecomputeMatch 以現有食材重算 matched 與百分比，維持 matched ⊆ needed 不變式
func RecomputeMatch(needed []string, have []Ingredient) ([]string, int) {
	owned := make(map[string]struct{}, len(have))
	for _, ing := range have {
		owned[NormalizeName(ing.Name)] = struct{}{}
	}

	matched := make([]string, 0, len(needed))
	for _, n := range needed {
		if _, ok := owned[NormalizeName(n)]; ok {
			matched = append(matched, n)
		}
	}
	return matched, ComputeMatchPercentage(len(matched), len(needed))
}

// isSubset 檢查 sub 的值集合是否包含於 super
func isSubset(sub, super []string) bool {
	set := make(map[string]struct{}, len(super))
	for _, s := range super {
		set[NormalizeName(s)] = struct{}{}
	}
	for _, s := range sub {
		if _, ok := set[NormalizeName(s)]; !ok {
			return false
		}
	}
	return true
}

// Clone 深拷貝食譜，避免共享底層切片
func (r Recipe) Clone() Recipe {
	c := r
	c.IngredientsNeeded = append([]string(nil), r.IngredientsNeeded...)
	c.IngredientsMatched = append([]string(nil), r.IngredientsMatched...)
	c.Steps = append([]CookingStep(nil), r.Steps...)
	return c
}

// CloneIngredients 深拷貝食材切片
func CloneIngredients(items []Ingredient) []Ingredient {
	return append([]Ingredient(nil), items...)
}

package recipe

import (
	"fmt"

	"recipe-remix/internal/pkg/common"
)

// IngredientSet 會話食材集合
// 單一邏輯擁有者（會話狀態機）負責所有變更並以會話鎖保護，
// 本身不帶鎖；不去重，項目以位置區分
type IngredientSet struct {
	items []Ingredient
}

// NewIngredientSet 創建空食材集合
func NewIngredientSet() *IngredientSet {
	return &IngredientSet{}
}

// Add 附加一項食材，名稱與分類為必填
func (s *IngredientSet) Add(ing Ingredient) error {
	ing.Name = NormalizeName(ing.Name)
	if ing.Name == "" {
		return common.ErrInvalidInput.WithCause(fmt.Errorf("ingredient name is required"))
	}
	if !ing.Category.Valid() {
		return common.ErrInvalidInput.WithCause(fmt.Errorf("invalid ingredient category %q", ing.Category))
	}
	s.items = append(s.items, ing)
	return nil
}

// Remove 依位置移除食材，越界屬呼叫端錯誤，以錯誤回報而非靜默忽略
func (s *IngredientSet) Remove(index int) error {
	if index < 0 || index >= len(s.items) {
		return common.ErrInvalidInput.WithCause(fmt.Errorf("ingredient index %d out of range [0,%d)", index, len(s.items)))
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return nil
}

// ReplaceAll 整批替換內容（載入樣本集或 AI 辨識結果時使用）
func (s *IngredientSet) ReplaceAll(items []Ingredient) {
	next := make([]Ingredient, 0, len(items))
	for _, ing := range items {
		ing.Name = NormalizeName(ing.Name)
		next = append(next, ing)
	}
	s.items = next
}

// Clear 清空集合
func (s *IngredientSet) Clear() {
	s.items = nil
}

// Snapshot 取得目前內容的拷貝
func (s *IngredientSet) Snapshot() []Ingredient {
	return CloneIngredients(s.items)
}

// Len 目前食材數量
func (s *IngredientSet) Len() int {
	return len(s.items)
}

// SampleIngredients 內建樣本食材集，無需上傳圖片即可體驗流程
func SampleIngredients() []Ingredient {
	return []Ingredient{
		{Name: "tomato", Category: CategoryProduce, Quantity: "3"},
		{Name: "onion", Category: CategoryProduce, Quantity: "2"},
		{Name: "garlic", Category: CategoryProduce, Quantity: "1 head"},
		{Name: "chicken breast", Category: CategoryProtein, Quantity: "1 lb"},
		{Name: "rice", Category: CategoryGrain, Quantity: "2 cups"},
		{Name: "olive oil", Category: CategorySpice, Quantity: "1 bottle"},
		{Name: "basil", Category: CategorySpice, Quantity: "1 bunch"},
		{Name: "parmesan", Category: CategoryDairy, Quantity: "1 block"},
	}
}

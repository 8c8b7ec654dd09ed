package recipe

import (
	"sync"

	"recipe-remix/internal/pkg/common"

	"go.uber.org/zap"
)

// Catalog 食譜目錄
// 持有最近一批菜系群組，換批採單一參考原子替換，
// 消費者不會觀察到半更新狀態；更新走 copy-on-write，不就地改動巢狀切片
type Catalog struct {
	mu     sync.RWMutex
	groups []CuisineGroup
}

// NewCatalog 創建空目錄
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Replace 原子替換整批菜系群組
func (c *Catalog) Replace(groups []CuisineGroup) {
	next := make([]CuisineGroup, len(groups))
	for i, g := range groups {
		next[i] = g
		next[i].Recipes = make([]Recipe, len(g.Recipes))
		for j, r := range g.Recipes {
			next[i].Recipes[j] = r.Clone()
		}
	}

	c.mu.Lock()
	c.groups = next
	c.mu.Unlock()
}

// Clear 清空目錄（Reset 轉移用）
func (c *Catalog) Clear() {
	c.mu.Lock()
	c.groups = nil
	c.mu.Unlock()
}

// Groups 取得目前批次的菜系群組
func (c *Catalog) Groups() []CuisineGroup {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.groups
}

// FindRecipe 以 ID 查找食譜，回傳深拷貝
func (c *Catalog) FindRecipe(id string) (Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, g := range c.groups {
		for _, r := range g.Recipes {
			if r.ID == id {
				return r.Clone(), true
			}
		}
	}
	return Recipe{}, false
}

// FindRecipeByTitle 以標題線性查找，精確字串比對
// 標題屬弱識別，僅供顯示層使用；同名食譜只回傳第一筆
func (c *Catalog) FindRecipeByTitle(title string) (Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, g := range c.groups {
		for _, r := range g.Recipes {
			if r.Title == title {
				return r.Clone(), true
			}
		}
	}
	return Recipe{}, false
}

// UpdateRecipe 以 ID 替換食譜，整批 copy-on-write 後原子換參考
// ID 唯一，最多命中一筆
func (c *Catalog) UpdateRecipe(id string, updated Recipe) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	next := make([]CuisineGroup, len(c.groups))
	for i, g := range c.groups {
		next[i] = g
		next[i].Recipes = make([]Recipe, len(g.Recipes))
		for j, r := range g.Recipes {
			if r.ID == id {
				merged := updated.Clone()
				merged.ID = id
				merged.Cuisine = g.Name
				next[i].Recipes[j] = merged
				found = true
			} else {
				next[i].Recipes[j] = r
			}
		}
	}

	if !found {
		common.LogWarn("目錄中找不到要更新的食譜", zap.String("recipe_id", id))
		return false
	}

	c.groups = next
	return true
}

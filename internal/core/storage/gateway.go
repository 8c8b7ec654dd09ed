package storage

import (
	"context"
	"time"

	"recipe-remix/internal/core/recipe"
)

// SavedRecipe 已儲存食譜
// 歸屬於建立它的會話；快照一經儲存即不可變，
// 只能透過最愛切換或刪除變更
type SavedRecipe struct {
	ID              string              `json:"id"`
	SessionID       string              `json:"sessionId"`
	RecipeTitle     string              `json:"recipeTitle"`
	Recipe          recipe.Recipe       `json:"recipe"`
	IngredientsUsed []recipe.Ingredient `json:"ingredientsUsed"`
	IsFavorite      bool                `json:"isFavorite"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// Gateway 食譜儲存閘道
// 所有操作以匿名會話識別為範圍；儲存失敗以暫時性通知呈現，
// 不阻擋使用者繼續瀏覽或烹飪
type Gateway interface {
	Save(ctx context.Context, sessionID string, rec recipe.Recipe, ingredients []recipe.Ingredient) (*SavedRecipe, error)
	List(ctx context.Context, sessionID string) ([]SavedRecipe, error)
	Delete(ctx context.Context, sessionID, id string) error
	SetFavorite(ctx context.Context, sessionID, id string, favorite bool) error
	Count(ctx context.Context, sessionID string) (int, error)
}

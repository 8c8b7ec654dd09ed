package storage

import (
	"context"
	"testing"
	"time"

	"recipe-remix/internal/core/recipe"
	"recipe-remix/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecipe(title string) recipe.Recipe {
	return recipe.Recipe{
		ID:                 "r-" + title,
		Title:              title,
		IngredientsNeeded:  []string{"tomato"},
		IngredientsMatched: []string{"tomato"},
	}
}

func TestMemoryStoreSaveAndList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.Save(ctx, "sess1", testRecipe("Pasta"), []recipe.Ingredient{{Name: "tomato", Category: recipe.CategoryProduce}})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Pasta", first.RecipeTitle)
	assert.False(t, first.CreatedAt.IsZero())

	time.Sleep(time.Millisecond)
	second, err := s.Save(ctx, "sess1", testRecipe("Salad"), nil)
	require.NoError(t, err)

	list, err := s.List(ctx, "sess1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	// 新到舊排序
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestMemoryStoreSessionIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Save(ctx, "sess1", testRecipe("Pasta"), nil)
	require.NoError(t, err)

	list, err := s.List(ctx, "sess2")
	require.NoError(t, err)
	assert.Empty(t, list)

	count, err := s.Count(ctx, "sess2")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	saved, err := s.Save(ctx, "sess1", testRecipe("Pasta"), nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "sess1", saved.ID))

	err = s.Delete(ctx, "sess1", saved.ID)
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.ErrCodeNotFound))
}

func TestMemoryStoreSetFavorite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	saved, err := s.Save(ctx, "sess1", testRecipe("Pasta"), nil)
	require.NoError(t, err)

	require.NoError(t, s.SetFavorite(ctx, "sess1", saved.ID, true))
	list, _ := s.List(ctx, "sess1")
	assert.True(t, list[0].IsFavorite)

	require.NoError(t, s.SetFavorite(ctx, "sess1", saved.ID, false))
	list, _ = s.List(ctx, "sess1")
	assert.False(t, list[0].IsFavorite)

	err = s.SetFavorite(ctx, "sess1", "missing", true)
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.ErrCodeNotFound))
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := testRecipe("Pasta")
	saved, err := s.Save(ctx, "sess1", rec, nil)
	require.NoError(t, err)

	// 儲存的是快照，之後改動原值不影響已存內容
	rec.IngredientsNeeded[0] = "mutated"
	list, _ := s.List(ctx, "sess1")
	assert.Equal(t, "tomato", list[0].Recipe.IngredientsNeeded[0])
	_ = saved
}

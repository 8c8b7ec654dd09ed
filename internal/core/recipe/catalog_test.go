package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGroups() []CuisineGroup {
	return []CuisineGroup{
		{
			Name: "Italian",
			Recipes: []Recipe{
				{ID: "r1", Title: "Pasta", Cuisine: "Italian", IngredientsNeeded: []string{"tomato", "pasta"}},
				{ID: "r2", Title: "Risotto", Cuisine: "Italian", IngredientsNeeded: []string{"rice"}},
			},
		},
		{
			Name: "Asian",
			Recipes: []Recipe{
				{ID: "r3", Title: "Fried Rice", Cuisine: "Asian", IngredientsNeeded: []string{"rice"}},
			},
		},
	}
}

func TestCatalogReplaceAndFind(t *testing.T) {
	c := NewCatalog()
	c.Replace(testGroups())

	r, ok := c.FindRecipe("r2")
	require.True(t, ok)
	assert.Equal(t, "Risotto", r.Title)

	_, ok = c.FindRecipe("missing")
	assert.False(t, ok)

	// 查找結果是拷貝，改動不會回寫目錄
	r.Title = "mutated"
	again, _ := c.FindRecipe("r2")
	assert.Equal(t, "Risotto", again.Title)
}

func TestCatalogReplaceIdempotent(t *testing.T) {
	c := NewCatalog()
	c.Replace(testGroups())
	once := c.Groups()

	c.Replace(testGroups())
	twice := c.Groups()

	assert.Equal(t, once, twice)
}

func TestCatalogReplaceDiscardsOldBatch(t *testing.T) {
	c := NewCatalog()
	c.Replace(testGroups())
	c.Replace([]CuisineGroup{{Name: "Mexican", Recipes: []Recipe{{ID: "m1", Title: "Tacos"}}}})

	_, ok := c.FindRecipe("r1")
	assert.False(t, ok)
	groups := c.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Mexican", groups[0].Name)
}

func TestCatalogUpdateRecipe(t *testing.T) {
	c := NewCatalog()
	c.Replace(testGroups())

	updated := Recipe{ID: "r3", Title: "Veggie Fried Rice", IngredientsNeeded: []string{"rice", "peas"}}
	require.True(t, c.UpdateRecipe("r3", updated))

	r, ok := c.FindRecipe("r3")
	require.True(t, ok)
	assert.Equal(t, "Veggie Fried Rice", r.Title)
	// ID 與菜系由目錄維持
	assert.Equal(t, "r3", r.ID)
	assert.Equal(t, "Asian", r.Cuisine)

	// 其他食譜不受影響
	other, _ := c.FindRecipe("r1")
	assert.Equal(t, "Pasta", other.Title)

	assert.False(t, c.UpdateRecipe("missing", updated))
}

func TestCatalogFindRecipeByTitle(t *testing.T) {
	c := NewCatalog()
	c.Replace(testGroups())

	r, ok := c.FindRecipeByTitle("Fried Rice")
	require.True(t, ok)
	assert.Equal(t, "r3", r.ID)

	_, ok = c.FindRecipeByTitle("fried rice")
	assert.False(t, ok)
}

func TestCatalogClear(t *testing.T) {
	c := NewCatalog()
	c.Replace(testGroups())
	c.Clear()
	assert.Empty(t, c.Groups())
}

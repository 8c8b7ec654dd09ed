package recipe

import (
	"testing"

	"recipe-remix/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizerIngredients(t *testing.T) {
	n := NewNormalizer()

	t.Run("prose wrapped with trailing comma", func(t *testing.T) {
		raw := `Here are the detected ingredients:
[
  {"name": " Tomato ", "category": "produce", "quantity": "2 pieces"},
]
Let me know if you need anything else.`

		items, err := n.Ingredients(raw)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "tomato", items[0].Name)
		assert.Equal(t, CategoryProduce, items[0].Category)
		assert.Equal(t, "2 pieces", items[0].Quantity)
	})

	t.Run("invalid category rejects payload", func(t *testing.T) {
		raw := `[{"name": "tomato", "category": "vegetable"}]`
		_, err := n.Ingredients(raw)
		require.Error(t, err)
		assert.True(t, common.IsMalformedAIResponse(err))
	})

	t.Run("missing name rejects payload", func(t *testing.T) {
		raw := `[{"name": "  ", "category": "produce"}]`
		_, err := n.Ingredients(raw)
		require.Error(t, err)
		assert.True(t, common.IsMalformedAIResponse(err))
	})

	t.Run("truncated JSON keeps raw response in error", func(t *testing.T) {
		raw := `[{"name": "tomato", "cat`
		_, err := n.Ingredients(raw)
		require.Error(t, err)
		assert.True(t, common.IsMalformedAIResponse(err))
		assert.Equal(t, raw, common.RawAIResponse(err))
	})

	t.Run("no JSON block at all", func(t *testing.T) {
		_, err := n.Ingredients("Sorry, I cannot analyze this image.")
		require.Error(t, err)
		assert.True(t, common.IsMalformedAIResponse(err))
	})
}

func TestNormalizerCuisineGroups(t *testing.T) {
	n := NewNormalizer()

	validPayload := `[
		{"name": "Italian", "description": "Mediterranean comfort", "recipes": [
			{"title": "Margherita Pasta", "cookTime": 25, "difficulty": "easy",
			 "ingredientsNeeded": ["tomato", "basil", "pasta"],
			 "ingredientsMatched": ["tomato", "basil"],
			 "matchPercentage": 10,
			 "description": "Simple pasta",
			 "steps": [{"stepNumber": 0, "instruction": "Boil pasta"}, {"stepNumber": 0, "instruction": "Add sauce"}]}
		]},
		{"name": "", "recipes": [{"title": "x"}]},
		{"name": "Empty Cuisine", "recipes": []}
	]`

	t.Run("drops unusable groups, repairs recipes", func(t *testing.T) {
		groups, err := n.CuisineGroups(validPayload)
		require.NoError(t, err)
		require.Len(t, groups, 1)

		r := groups[0].Recipes[0]
		assert.NotEmpty(t, r.ID)
		// 模型給的 matchPercentage 不可信，以清單長度重算
		assert.Equal(t, 67, r.MatchPercentage)
		assert.Equal(t, "Italian", r.Cuisine)
		assert.Equal(t, 1, r.Steps[0].StepNumber)
		assert.Equal(t, 2, r.Steps[1].StepNumber)
	})

	t.Run("assigns unique recipe IDs", func(t *testing.T) {
		payload := `[{"name": "Asian", "recipes": [
			{"title": "Fried Rice", "cookTime": 15, "difficulty": "easy", "description": "Wok classic", "ingredientsNeeded": ["rice"], "ingredientsMatched": []},
			{"title": "Fried Rice", "cookTime": 15, "difficulty": "easy", "description": "Wok classic", "ingredientsNeeded": ["rice"], "ingredientsMatched": []}
		]}]`
		groups, err := n.CuisineGroups(payload)
		require.NoError(t, err)
		require.Len(t, groups[0].Recipes, 2)
		assert.NotEqual(t, groups[0].Recipes[0].ID, groups[0].Recipes[1].ID)
	})

	t.Run("matched not subset of needed rejects payload", func(t *testing.T) {
		payload := `[{"name": "Italian", "recipes": [
			{"title": "Pasta", "cookTime": 20, "difficulty": "easy", "description": "Simple pasta",
			 "ingredientsNeeded": ["tomato"],
			 "ingredientsMatched": ["tomato", "truffle"]}
		]}]`
		_, err := n.CuisineGroups(payload)
		require.Error(t, err)
		assert.True(t, common.IsMalformedAIResponse(err))
	})

	t.Run("all groups unusable is malformed", func(t *testing.T) {
		payload := `[{"name": "", "recipes": []}]`
		_, err := n.CuisineGroups(payload)
		require.Error(t, err)
		assert.True(t, common.IsMalformedAIResponse(err))
	})

	t.Run("invalid difficulty rejects payload", func(t *testing.T) {
		payload := `[{"name": "Italian", "recipes": [
			{"title": "Pasta", "difficulty": "expert", "ingredientsNeeded": ["tomato"], "ingredientsMatched": []}
		]}]`
		_, err := n.CuisineGroups(payload)
		require.Error(t, err)
	})

	t.Run("missing description rejects payload", func(t *testing.T) {
		payload := `[{"name": "Italian", "recipes": [
			{"title": "Pasta", "cookTime": 20, "difficulty": "easy", "ingredientsNeeded": ["tomato"], "ingredientsMatched": []}
		]}]`
		_, err := n.CuisineGroups(payload)
		require.Error(t, err)
		assert.True(t, common.IsMalformedAIResponse(err))
	})

	t.Run("non-positive cookTime rejects payload", func(t *testing.T) {
		payload := `[{"name": "Italian", "recipes": [
			{"title": "Pasta", "cookTime": 0, "difficulty": "easy", "description": "Simple pasta", "ingredientsNeeded": ["tomato"], "ingredientsMatched": []}
		]}]`
		_, err := n.CuisineGroups(payload)
		require.Error(t, err)
		assert.True(t, common.IsMalformedAIResponse(err))
	})
}

func TestNormalizerSubstitutions(t *testing.T) {
	n := NewNormalizer()
	rec := Recipe{
		Title:              "Pasta",
		IngredientsNeeded:  []string{"tomato", "basil", "parmesan"},
		IngredientsMatched: []string{"tomato"},
	}

	t.Run("keeps valid, drops invalid entries", func(t *testing.T) {
		raw := `[
			{"original": "Basil", "substitute": "oregano", "flavorScience": "shared volatile oils", "flavorImpact": 2, "textureImpact": 1},
			{"original": "tomato", "substitute": "ketchup", "flavorScience": "n/a", "flavorImpact": 3, "textureImpact": 3},
			{"original": "parmesan", "substitute": "nutritional yeast", "flavorScience": "glutamates", "flavorImpact": 6, "textureImpact": 2},
			{"original": "", "substitute": "x", "flavorImpact": 1, "textureImpact": 1}
		]`

		subs, err := n.Substitutions(raw, rec)
		require.NoError(t, err)
		// tomato 不在缺少清單、影響值 6 超界、空 original 都被捨棄
		require.Len(t, subs, 1)
		assert.Equal(t, "Basil", subs[0].Original)
	})

	t.Run("parsed but all dropped is malformed", func(t *testing.T) {
		raw := `[{"original": "tomato", "substitute": "ketchup", "flavorImpact": 3, "textureImpact": 3}]`
		_, err := n.Substitutions(raw, rec)
		require.Error(t, err)
		assert.True(t, common.IsMalformedAIResponse(err))
	})

	t.Run("empty array is valid", func(t *testing.T) {
		subs, err := n.Substitutions(`[]`, rec)
		require.NoError(t, err)
		assert.Empty(t, subs)
	})
}

func TestNormalizerPatch(t *testing.T) {
	n := NewNormalizer()

	t.Run("valid patch", func(t *testing.T) {
		raw := `{"cookTime": 30, "explanation": "Longer simmer deepens the sauce."}`
		p, err := n.Patch(raw)
		require.NoError(t, err)
		require.NotNil(t, p.CookTime)
		assert.Equal(t, 30, *p.CookTime)
		assert.Nil(t, p.Description)
		assert.Nil(t, p.IngredientsNeeded)
	})

	t.Run("missing explanation is malformed", func(t *testing.T) {
		_, err := n.Patch(`{"cookTime": 30}`)
		require.Error(t, err)
		assert.True(t, common.IsMalformedAIResponse(err))
	})

	t.Run("step without instruction is malformed", func(t *testing.T) {
		raw := `{"steps": [{"stepNumber": 1, "instruction": ""}], "explanation": "rework steps"}`
		_, err := n.Patch(raw)
		require.Error(t, err)
	})
}

func TestExtractJSONBlock(t *testing.T) {
	t.Run("prefers earlier opener", func(t *testing.T) {
		block, err := extractJSONBlock(`note {"a": 1} tail`)
		require.NoError(t, err)
		assert.Equal(t, `{"a": 1}`, block)
	})

	t.Run("array before object", func(t *testing.T) {
		block, err := extractJSONBlock(`[{"a": 1}]`)
		require.NoError(t, err)
		assert.Equal(t, `[{"a": 1}]`, block)
	})

	t.Run("unterminated block", func(t *testing.T) {
		_, err := extractJSONBlock(`result: [1, 2`)
		assert.Error(t, err)
	})
}

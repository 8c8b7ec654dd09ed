package session

import (
	"testing"

	"recipe-remix/internal/core/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRecipe() recipe.Recipe {
	return recipe.Recipe{
		ID:                 "r1",
		Title:              "Pasta",
		CookTime:           25,
		Difficulty:         recipe.DifficultyEasy,
		IngredientsNeeded:  []string{"tomato", "basil", "pasta"},
		IngredientsMatched: []string{"tomato", "basil"},
		MatchPercentage:    67,
		Description:        "Simple pasta",
		Steps: []recipe.CookingStep{
			{StepNumber: 1, Instruction: "Boil pasta"},
			{StepNumber: 2, Instruction: "Make sauce"},
			{StepNumber: 3, Instruction: "Combine"},
		},
	}
}

func TestMergePatchScalarOnly(t *testing.T) {
	ct := 40
	merged := MergePatch(baseRecipe(), recipe.Patch{CookTime: &ct, Explanation: "slower simmer"}, nil)

	assert.Equal(t, 40, merged.CookTime)
	// 未提供的欄位全部保留
	assert.Equal(t, "Simple pasta", merged.Description)
	assert.Len(t, merged.Steps, 3)
	assert.Equal(t, []string{"tomato", "basil", "pasta"}, merged.IngredientsNeeded)
	assert.Equal(t, 67, merged.MatchPercentage)
}

func TestMergePatchStepsReplacedWholesale(t *testing.T) {
	p := recipe.Patch{
		Steps: []recipe.CookingStep{
			{StepNumber: 1, Instruction: "One-pot everything"},
			{StepNumber: 2, Instruction: "Serve"},
		},
		Explanation: "simplified method",
	}
	merged := MergePatch(baseRecipe(), p, nil)

	// 三步被兩步整串取代，不做步驟層級合併
	require.Len(t, merged.Steps, 2)
	assert.Equal(t, "One-pot everything", merged.Steps[0].Instruction)
}

func TestMergePatchRecomputesMatchOnNeededChange(t *testing.T) {
	have := []recipe.Ingredient{
		{Name: "tomato", Category: recipe.CategoryProduce},
		{Name: "rice", Category: recipe.CategoryGrain},
	}
	p := recipe.Patch{
		IngredientsNeeded: []string{"tomato", "rice", "saffron", "shrimp"},
		Explanation:       "turned it into paella",
	}
	merged := MergePatch(baseRecipe(), p, have)

	assert.Equal(t, []string{"tomato", "rice"}, merged.IngredientsMatched)
	assert.Equal(t, 50, merged.MatchPercentage)
}

func TestMergePatchDoesNotMutateBase(t *testing.T) {
	base := baseRecipe()
	p := recipe.Patch{
		IngredientsNeeded: []string{"water"},
		Steps:             []recipe.CookingStep{{StepNumber: 1, Instruction: "Drink"}},
		Explanation:       "minimalism",
	}
	_ = MergePatch(base, p, nil)

	assert.Len(t, base.Steps, 3)
	assert.Equal(t, []string{"tomato", "basil", "pasta"}, base.IngredientsNeeded)
}

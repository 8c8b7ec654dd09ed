package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeMatchPercentage(t *testing.T) {
	assert.Equal(t, 0, ComputeMatchPercentage(0, 0))
	assert.Equal(t, 0, ComputeMatchPercentage(3, 0))
	assert.Equal(t, 100, ComputeMatchPercentage(5, 5))
	assert.Equal(t, 60, ComputeMatchPercentage(3, 5))
	// 四捨五入
	assert.Equal(t, 67, ComputeMatchPercentage(2, 3))
	assert.Equal(t, 33, ComputeMatchPercentage(1, 3))
}

func TestMissingIngredients(t *testing.T) {
	r := Recipe{
		IngredientsNeeded:  []string{"Tomato", "onion", "garlic"},
		IngredientsMatched: []string{"tomato", "Onion"},
	}
	// 比對不分大小寫，結果保留 needed 的原始寫法與順序
	assert.Equal(t, []string{"garlic"}, r.MissingIngredients())

	perfect := Recipe{
		IngredientsNeeded:  []string{"rice"},
		IngredientsMatched: []string{"rice"},
	}
	assert.Empty(t, perfect.MissingIngredients())
}

func TestRecomputeMatch(t *testing.T) {
	have := []Ingredient{
		{Name: "Tomato", Category: CategoryProduce},
		{Name: "chicken breast", Category: CategoryProtein},
	}

	matched, pct := RecomputeMatch([]string{"tomato", "rice", "chicken breast", "basil"}, have)
	assert.Equal(t, []string{"tomato", "chicken breast"}, matched)
	assert.Equal(t, 50, pct)

	matched, pct = RecomputeMatch(nil, have)
	assert.Empty(t, matched)
	assert.Equal(t, 0, pct)
}

func TestRecipeClone(t *testing.T) {
	r := Recipe{
		ID:                "r1",
		Title:             "Test",
		IngredientsNeeded: []string{"a", "b"},
		Steps:             []CookingStep{{StepNumber: 1, Instruction: "do"}},
	}
	c := r.Clone()
	c.IngredientsNeeded[0] = "changed"
	c.Steps[0].Instruction = "changed"

	assert.Equal(t, "a", r.IngredientsNeeded[0])
	assert.Equal(t, "do", r.Steps[0].Instruction)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "tomato", NormalizeName("  Tomato "))
	assert.Equal(t, "", NormalizeName("   "))
}

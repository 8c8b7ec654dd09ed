package recipe

import (
	"testing"

	"recipe-remix/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientSetAdd(t *testing.T) {
	s := NewIngredientSet()

	require.NoError(t, s.Add(Ingredient{Name: " Tomato ", Category: CategoryProduce}))
	assert.Equal(t, "tomato", s.Snapshot()[0].Name)

	// 重複項目允許，以位置區分
	require.NoError(t, s.Add(Ingredient{Name: "tomato", Category: CategoryProduce}))
	assert.Equal(t, 2, s.Len())

	err := s.Add(Ingredient{Name: "", Category: CategoryProduce})
	require.Error(t, err)
	assert.True(t, common.IsInvalidInput(err))

	err = s.Add(Ingredient{Name: "salt", Category: "seasoning"})
	require.Error(t, err)
	assert.True(t, common.IsInvalidInput(err))
}

func TestIngredientSetRemove(t *testing.T) {
	s := NewIngredientSet()
	s.ReplaceAll([]Ingredient{
		{Name: "a", Category: CategoryProduce},
		{Name: "b", Category: CategoryProduce},
		{Name: "c", Category: CategoryProduce},
	})

	require.NoError(t, s.Remove(1))
	names := []string{s.Snapshot()[0].Name, s.Snapshot()[1].Name}
	assert.Equal(t, []string{"a", "c"}, names)

	// 越界是呼叫端錯誤，不靜默忽略
	err := s.Remove(5)
	require.Error(t, err)
	assert.True(t, common.IsInvalidInput(err))
	assert.Error(t, s.Remove(-1))
}

func TestIngredientSetSnapshotIsolation(t *testing.T) {
	s := NewIngredientSet()
	s.ReplaceAll([]Ingredient{{Name: "a", Category: CategoryProduce}})

	snap := s.Snapshot()
	snap[0].Name = "mutated"
	assert.Equal(t, "a", s.Snapshot()[0].Name)
}

func TestSampleIngredients(t *testing.T) {
	items := SampleIngredients()
	require.NotEmpty(t, items)
	for _, ing := range items {
		assert.True(t, ing.Category.Valid(), "sample %q has invalid category", ing.Name)
		assert.Equal(t, NormalizeName(ing.Name), ing.Name)
	}
}

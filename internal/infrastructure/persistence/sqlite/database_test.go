package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	gormModels "github.com/alchemorsel/mealcart/internal/infrastructure/persistence/gorm"
)

func TestSeedDatabase(t *testing.T) {
	db, err := SetupDatabase("", logger.Discard)
	require.NoError(t, err)

	require.NoError(t, SeedDatabase(db))
	require.NoError(t, SeedDatabase(db), "seeding twice is a no-op")

	cat, err := gormModels.NewDishRepository(db).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(DemoDishes()), cat.Len())

	dish, ok := cat.Dish("1")
	require.True(t, ok)
	assert.Equal(t, "Garlic Butter Salmon", dish.Name)
	assert.Len(t, dish.Ingredients[0].Substitutions, 2)
}

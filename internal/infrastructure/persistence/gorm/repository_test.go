package gorm

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

// RepositoryTestSuite runs the GORM repositories against in-memory SQLite
type RepositoryTestSuite struct {
	suite.Suite
	db       *gorm.DB
	dishes   *DishRepository
	sessions *SessionRepository
	ctx      context.Context
}

func (suite *RepositoryTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)
	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(suite.T(), db.AutoMigrate(Models()...))

	suite.db = db
	suite.dishes = NewDishRepository(db)
	suite.sessions = NewSessionRepository(db, time.Hour)
	suite.ctx = context.Background()
}

func (suite *RepositoryTestSuite) TearDownTest() {
	if sqlDB, err := suite.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func testDishes() []catalog.Dish {
	return []catalog.Dish{
		{
			ID:         "b",
			Name:       "Beans on Toast",
			PrepTime:   2,
			CookTime:   5,
			Difficulty: catalog.DifficultyEasy,
			Badges:     []string{"Budget"},
			Ingredients: []catalog.Ingredient{
				{
					Name:      "Baked Beans",
					Quantity:  "1 can",
					Nutrition: catalog.NutritionFacts{Calories: 300, Protein: 14},
					Substitutions: []catalog.Substitution{
						{Name: "Black Beans", Quantity: "1 can", Nutrition: catalog.NutritionFacts{Calories: 330}},
					},
				},
				{Name: "Bread", Quantity: "2 slices"},
			},
		},
		{ID: "a", Name: "Apple Slices", Ingredients: []catalog.Ingredient{{Name: "Apple", Quantity: "1"}}},
	}
}

func (suite *RepositoryTestSuite) TestDishRoundTrip() {
	// Arrange
	require.NoError(suite.T(), suite.dishes.Replace(suite.ctx, testDishes()))

	// Act
	cat, err := suite.dishes.Load(suite.ctx)

	// Assert
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 2, cat.Len())
	assert.Equal(suite.T(), catalog.DishID("b"), cat.Dishes()[0].ID, "catalog order is preserved")

	beans, ok := cat.Dish("b")
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), testDishes()[0], *beans)
}

func (suite *RepositoryTestSuite) TestReplaceSwapsCatalog() {
	require.NoError(suite.T(), suite.dishes.Replace(suite.ctx, testDishes()))
	require.NoError(suite.T(), suite.dishes.Replace(suite.ctx, testDishes()[1:]))

	count, err := suite.dishes.Count(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *RepositoryTestSuite) TestReplaceRejectsInvalidCatalog() {
	require.NoError(suite.T(), suite.dishes.Replace(suite.ctx, testDishes()))

	err := suite.dishes.Replace(suite.ctx, []catalog.Dish{{ID: "x"}})

	assert.ErrorIs(suite.T(), err, catalog.ErrDishNameRequired)
	count, _ := suite.dishes.Count(suite.ctx)
	assert.Equal(suite.T(), int64(2), count, "existing catalog survives")
}

func (suite *RepositoryTestSuite) TestSessionLifecycle() {
	id := uuid.New()
	snap := selection.Snapshot{
		Selected: []catalog.DishID{"b"},
		Slots: []selection.SlotSnapshot{
			{DishID: "b", Ingredient: 0, Original: true, Substitutions: []int{0}},
		},
		Revision: 4,
	}

	require.NoError(suite.T(), suite.sessions.Save(suite.ctx, id, snap))
	snap.Revision = 5
	require.NoError(suite.T(), suite.sessions.Save(suite.ctx, id, snap), "save is an upsert")

	loaded, err := suite.sessions.Load(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), snap, loaded)

	require.NoError(suite.T(), suite.sessions.Delete(suite.ctx, id))
	_, err = suite.sessions.Load(suite.ctx, id)
	assert.ErrorIs(suite.T(), err, outbound.ErrSessionNotFound)
}

func (suite *RepositoryTestSuite) TestExpiredSession() {
	id := uuid.New()
	require.NoError(suite.T(), suite.sessions.Save(suite.ctx, id, selection.Snapshot{}))

	suite.sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := suite.sessions.Load(suite.ctx, id)
	assert.ErrorIs(suite.T(), err, outbound.ErrSessionNotFound)

	purged, err := suite.sessions.PurgeExpired(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), purged)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

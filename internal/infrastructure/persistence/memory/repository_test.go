package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveLoadDelete", func(t *testing.T) {
		repo := NewSessionRepository(time.Hour)
		id := uuid.New()
		snap := selection.Snapshot{
			Selected: []catalog.DishID{"1"},
			Slots:    []selection.SlotSnapshot{{DishID: "1", Ingredient: 0, Substitutions: []int{2}}},
			Revision: 3,
		}

		require.NoError(t, repo.Save(ctx, id, snap))
		snap.Slots[0].Substitutions[0] = 9

		loaded, err := repo.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, loaded.Slots[0].Substitutions, "stored copy is isolated")

		require.NoError(t, repo.Delete(ctx, id))
		_, err = repo.Load(ctx, id)
		assert.ErrorIs(t, err, outbound.ErrSessionNotFound)
	})

	t.Run("Expiry", func(t *testing.T) {
		repo := NewSessionRepository(time.Minute)
		id := uuid.New()
		require.NoError(t, repo.Save(ctx, id, selection.Snapshot{}))

		repo.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

		_, err := repo.Load(ctx, id)
		assert.ErrorIs(t, err, outbound.ErrSessionNotFound)

		purged, err := repo.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), purged)
		assert.Zero(t, repo.Len())
	})

	t.Run("ZeroTTL_ShouldNeverExpire", func(t *testing.T) {
		repo := NewSessionRepository(0)
		id := uuid.New()
		require.NoError(t, repo.Save(ctx, id, selection.Snapshot{}))
		repo.now = func() time.Time { return time.Now().Add(24 * 365 * time.Hour) }

		_, err := repo.Load(ctx, id)
		assert.NoError(t, err)
	})
}

func TestCatalogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository()

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)

	require.NoError(t, repo.Replace(ctx, []catalog.Dish{{ID: "1", Name: "Soup"}}))
	err = repo.Replace(ctx, []catalog.Dish{{ID: "1", Name: "A"}, {ID: "1", Name: "B"}})
	assert.ErrorIs(t, err, catalog.ErrDuplicateDish)

	cat, err := repo.Load(ctx)
	require.NoError(t, err)
	_, ok := cat.Dish("1")
	assert.True(t, ok, "failed replace keeps the previous catalog")
}

//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/mealcart/internal/application/mealplan"
	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/infrastructure/persistence/memory"
	redisRepo "github.com/alchemorsel/mealcart/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/mealcart/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/mealcart/internal/ports/inbound"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
	"github.com/alchemorsel/mealcart/test/testutils"
)

func TestRedisSessionRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	client := testutils.SetupRedis(t)
	repo := redisRepo.NewSessionRepository(client, "mealcart:test:", time.Second, zaptest.NewLogger(t))

	t.Run("SaveAndLoad_ShouldRoundTripSnapshot", func(t *testing.T) {
		id := uuid.New()
		snap := selection.Snapshot{
			Selected: []catalog.DishID{"1", "3"},
			Slots: []selection.SlotSnapshot{
				{DishID: "1", Ingredient: 0, Original: true, Substitutions: []int{1}},
			},
			Revision: 4,
		}

		require.NoError(t, repo.Save(ctx, id, snap))

		loaded, err := repo.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, snap, loaded)
	})

	t.Run("Delete_ShouldForgetSession", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, repo.Save(ctx, id, selection.Snapshot{}))
		require.NoError(t, repo.Delete(ctx, id))

		_, err := repo.Load(ctx, id)
		assert.ErrorIs(t, err, outbound.ErrSessionNotFound)
	})

	t.Run("TTL_ShouldExpireSession", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, repo.Save(ctx, id, selection.Snapshot{Revision: 1}))

		assert.Eventually(t, func() bool {
			_, err := repo.Load(ctx, id)
			return err == outbound.ErrSessionNotFound
		}, 5*time.Second, 100*time.Millisecond)
	})
}

func TestRedisCartBroadcaster(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := testutils.SetupRedis(t)
	broadcaster := redisRepo.NewCartBroadcaster(client, "mealcart:test:", zaptest.NewLogger(t))
	local := testutils.NewMockCartNotifier(nil)

	ctx, cancel := context.WithCancel(context.Background())
	relayed := make(chan error, 1)
	go func() { relayed <- broadcaster.Relay(ctx, local) }()

	// A second instance publishing through the same channel
	catalogs := memory.NewCatalogRepository()
	require.NoError(t, catalogs.Replace(ctx, sqlite.DemoDishes()))
	sessions := redisRepo.NewSessionRepository(client, "mealcart:test:", time.Minute, zaptest.NewLogger(t))
	service := mealplan.NewMealPlanService(catalogs, sessions, broadcaster, testutils.NewMockMetricsRecorder(),
		selection.PolicyDefaultOriginals, zaptest.NewLogger(t))

	session, err := service.StartSession(ctx)
	require.NoError(t, err)

	// the relay subscribes asynchronously, so toggle until an update arrives
	require.Eventually(t, func() bool {
		if _, err := service.ToggleDish(ctx, inbound.ToggleDishCommand{SessionID: session.ID, DishID: "2"}); err != nil {
			return false
		}
		return len(local.Updates()) > 0
	}, 10*time.Second, 200*time.Millisecond)

	update := local.Updates()[0]
	assert.Equal(t, session.ID, update.SessionID)
	assert.Equal(t, mealplan.ActionToggleDish, update.Action)

	cancel()
	select {
	case err := <-relayed:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop after cancellation")
	}
}

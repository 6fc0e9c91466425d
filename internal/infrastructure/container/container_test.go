package container

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/mealcart/internal/ports/outbound"
	"github.com/alchemorsel/mealcart/test/testutils"
)

func TestModule_GraphIsComplete(t *testing.T) {
	err := fx.ValidateApp(fx.NopLogger, New(ConfigPath("")))
	require.NoError(t, err)
}

func TestModule_ResolvesCatalogForExport(t *testing.T) {
	var catalogs outbound.CatalogRepository
	err := fx.ValidateApp(fx.NopLogger, New(ConfigPath("")), fx.Populate(&catalogs))
	require.NoError(t, err)
}

type countingPurger struct {
	calls atomic.Int32
}

func (p *countingPurger) PurgeExpired(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	return 1, nil
}

func TestRunPurger(t *testing.T) {
	t.Run("Ticks_ShouldPurgeAndReportUntilCancelled", func(t *testing.T) {
		// Arrange
		purger := &countingPurger{}
		metrics := testutils.NewMockMetricsRecorder()
		metrics.AddActiveSessions(5)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		// Act
		go func() { done <- runPurger(ctx, purger, metrics, 10*time.Millisecond, zaptest.NewLogger(t)) }()

		// Assert
		assert.Eventually(t, func() bool { return purger.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("purger did not stop")
		}
		assert.Equal(t, 5-int(purger.calls.Load()), metrics.ActiveSessions(), "each purged session leaves the gauge")
	})
}

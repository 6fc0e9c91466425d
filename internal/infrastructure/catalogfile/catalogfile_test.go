package catalogfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/infrastructure/persistence/memory"
)

const sampleCatalog = `
dishes:
  - id: 1
    name: Garlic Butter Salmon
    prep_time: 10
    cook_time: 15
    difficulty: easy
    badges: [Quick]
    ingredients:
      - name: Garlic
        quantity: 4 cloves
        nutrition: {calories: 18, carbs: 4}
        substitutions:
          - name: Garlic Powder
            quantity: 1 tsp
  - name: Green Salad
    ingredients:
      - name: Lettuce
        quantity: 1 head
`

func TestParse(t *testing.T) {
	t.Run("ValidDocument", func(t *testing.T) {
		dishes, err := Parse(strings.NewReader(sampleCatalog))
		require.NoError(t, err)
		require.Len(t, dishes, 2)

		assert.Equal(t, catalog.DishID("1"), dishes[0].ID)
		assert.Equal(t, catalog.DifficultyEasy, dishes[0].Difficulty)
		assert.Equal(t, 18, dishes[0].Ingredients[0].Nutrition.Calories)
		assert.Equal(t, "Garlic Powder", dishes[0].Ingredients[0].Substitutions[0].Name)

		cat, err := catalog.NewCatalog(dishes)
		require.NoError(t, err)
		_, ok := cat.Dish("green-salad")
		assert.True(t, ok, "missing id derived from name")
	})

	tests := []struct {
		name string
		doc  string
	}{
		{"Empty", ""},
		{"NoDishes", "dishes: []"},
		{"MissingName", "dishes:\n  - id: 1\n"},
		{"BadDifficulty", "dishes:\n  - name: Soup\n    difficulty: brutal\n"},
		{"MissingIngredientName", "dishes:\n  - name: Soup\n    ingredients:\n      - quantity: 1 cup\n"},
		{"UnknownField", "dishes:\n  - name: Soup\n    spiciness: 3\n"},
		{"NegativeTime", "dishes:\n  - name: Soup\n    cook_time: -5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestEncode_ShouldRoundTrip(t *testing.T) {
	dishes, err := Parse(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, dishes))

	again, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, dishes, again)
}

func TestExport(t *testing.T) {
	t.Run("StoredCatalog_ShouldLoadBackFromFile", func(t *testing.T) {
		// Arrange
		dishes, err := Parse(strings.NewReader(sampleCatalog))
		require.NoError(t, err)
		repo := memory.NewCatalogRepository()
		require.NoError(t, repo.Replace(context.Background(), dishes))
		path := filepath.Join(t.TempDir(), "exported.yaml")

		// Act
		n, err := Export(context.Background(), repo, path)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, len(dishes), n)
		loaded, err := LoadFile(path)
		require.NoError(t, err)
		stored, err := repo.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, stored.Dishes(), loaded)
	})

	t.Run("MissingDirectory_ShouldFail", func(t *testing.T) {
		// Arrange
		dishes, err := Parse(strings.NewReader(sampleCatalog))
		require.NoError(t, err)
		repo := memory.NewCatalogRepository()
		require.NoError(t, repo.Replace(context.Background(), dishes))
		path := filepath.Join(t.TempDir(), "missing", "exported.yaml")

		// Act
		_, err = Export(context.Background(), repo, path)

		// Assert
		require.Error(t, err)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	repo := memory.NewCatalogRepository()
	watcher := NewWatcher(path, repo, 20*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, watcher.Sync(ctx))
	cat, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	results := make(chan error, 8)
	watcher.reloaded = func(err error) { results <- err }

	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	// Give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)

	t.Run("InvalidFile_ShouldKeepPreviousCatalog", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("dishes:\n  - id: 1\n"), 0o600))
		assert.Error(t, waitReload(t, results))

		cat, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, cat.Len())
	})

	t.Run("ValidFile_ShouldReplaceCatalog", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("dishes:\n  - name: Soup\n"), 0o600))
		require.NoError(t, waitReload(t, results))

		cat, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, cat.Len())
	})

	cancel()
	assert.NoError(t, <-done)
}

// waitReload returns the first settled reload result. Writers may emit
// several events, so results are drained until the file settles.
func waitReload(t *testing.T, results <-chan error) error {
	t.Helper()
	var last error
	seen := false
	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-results:
			last, seen = err, true
		case <-time.After(200 * time.Millisecond):
			if seen {
				return last
			}
		case <-deadline:
			t.Fatal("timed out waiting for catalog reload")
			return nil
		}
	}
}

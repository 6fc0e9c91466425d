package catalogfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

// Export writes the stored catalog to path in catalog file layout, so a
// database catalog can be handed over to the file source. The file is
// written next to path and renamed into place, which keeps a watcher on
// path from reloading a half-written document.
func Export(ctx context.Context, catalogs outbound.CatalogRepository, path string) (int, error) {
	cat, err := catalogs.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load catalog: %w", err)
	}
	dishes := cat.Dishes()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.yaml")
	if err != nil {
		return 0, fmt.Errorf("failed to create catalog file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, dishes); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to write catalog file: %w", err)
	}
	return len(dishes), nil
}

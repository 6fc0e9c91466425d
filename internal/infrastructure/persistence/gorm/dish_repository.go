// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

// DishRepository implements the catalog repository using GORM
type DishRepository struct {
	db *gorm.DB
}

// NewDishRepository creates a new dish repository
func NewDishRepository(db *gorm.DB) *DishRepository {
	return &DishRepository{db: db}
}

var (
	_ outbound.CatalogRepository = (*DishRepository)(nil)
	_ outbound.CatalogWriter     = (*DishRepository)(nil)
)

// Load reads every dish in catalog order and validates them as a catalog
func (r *DishRepository) Load(ctx context.Context) (*catalog.Catalog, error) {
	var models []DishModel
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("load dishes: %w", err)
	}

	dishes := make([]catalog.Dish, len(models))
	for i := range models {
		dishes[i] = ModelToDish(&models[i])
	}
	return catalog.NewCatalog(dishes)
}

// Replace swaps the stored catalog for dishes in a single transaction.
// Dishes are validated first so a bad feed never wipes the table.
func (r *DishRepository) Replace(ctx context.Context, dishes []catalog.Dish) error {
	validated, err := catalog.NewCatalog(dishes)
	if err != nil {
		return err
	}

	models := make([]*DishModel, 0, validated.Len())
	for i, d := range validated.Dishes() {
		models = append(models, DishToModel(&d, i))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&DishModel{}).Error; err != nil {
			return fmt.Errorf("clear dishes: %w", err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(models, 100).Error; err != nil {
			return fmt.Errorf("insert dishes: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored dishes
func (r *DishRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DishModel{}).Count(&count).Error
	return count, err
}

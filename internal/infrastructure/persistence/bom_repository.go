package persistence

import (
	"context"

	"github.com/mfgops/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormBOMRepository implements inventory.BOMRepository using GORM
type GormBOMRepository struct {
	db *gorm.DB
}

// NewGormBOMRepository creates a new GormBOMRepository
func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

// ComponentsFor lists the BOM lines feeding one product
func (r *GormBOMRepository) ComponentsFor(ctx context.Context, productType inventory.ItemType, productCode string) ([]inventory.BOMComponent, error) {
	var components []inventory.BOMComponent
	if err := r.db.WithContext(ctx).
		Where("product_type = ? AND product_code = ?", productType, productCode).
		Order("component_type ASC, component_code ASC").
		Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}

// Save creates or updates a BOM line
func (r *GormBOMRepository) Save(ctx context.Context, component *inventory.BOMComponent) error {
	return r.db.WithContext(ctx).Save(component).Error
}

// ReplaceForProduct atomically swaps a product's BOM lines
func (r *GormBOMRepository) ReplaceForProduct(ctx context.Context, productType inventory.ItemType, productCode string, components []inventory.BOMComponent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("product_type = ? AND product_code = ?", productType, productCode).
			Delete(&inventory.BOMComponent{}).Error; err != nil {
			return err
		}
		if len(components) == 0 {
			return nil
		}
		return tx.Create(&components).Error
	})
}

// DeleteForProduct removes every line of a product's BOM
func (r *GormBOMRepository) DeleteForProduct(ctx context.Context, productType inventory.ItemType, productCode string) error {
	return r.db.WithContext(ctx).
		Where("product_type = ? AND product_code = ?", productType, productCode).
		Delete(&inventory.BOMComponent{}).Error
}

var _ inventory.BOMRepository = (*GormBOMRepository)(nil)

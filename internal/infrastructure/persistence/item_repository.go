package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormItemRepository implements inventory.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByCode finds an item by pool and business code
func (r *GormItemRepository) FindByCode(ctx context.Context, itemType inventory.ItemType, code string) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("item_type = ? AND code = ?", itemType, code).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByKeys loads multiple items in one query. Missing keys are simply
// absent from the result map.
func (r *GormItemRepository) FindByKeys(ctx context.Context, keys []inventory.ItemKey) (map[inventory.ItemKey]*inventory.InventoryItem, error) {
	result := make(map[inventory.ItemKey]*inventory.InventoryItem, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	query := r.db.WithContext(ctx).Model(&inventory.InventoryItem{})
	conditions := r.db.Session(&gorm.Session{NewDB: true})
	for _, key := range keys {
		conditions = conditions.Or("item_type = ? AND code = ?", key.Type, key.Code)
	}

	var items []inventory.InventoryItem
	if err := query.Where(conditions).Find(&items).Error; err != nil {
		return nil, err
	}
	for i := range items {
		result[items[i].Key()] = &items[i]
	}
	return result, nil
}

// FindAll lists items, optionally filtered by pool
func (r *GormItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.InventoryItem{}), filter)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindBelowMinimum lists items under their minimum stock threshold
func (r *GormItemRepository) FindBelowMinimum(ctx context.Context, filter shared.Filter) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.InventoryItem{}).
			Where("min_stock > 0 AND quantity < min_stock"),
		filter,
	)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindMostUsed ranks a pool's items by consumption frequency
func (r *GormItemRepository) FindMostUsed(ctx context.Context, itemType inventory.ItemType, limit int) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("item_type = ?", itemType).
		Order("usage_count DESC, code ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// SaveWithLock saves with optimistic locking on the aggregate version.
// The aggregate incremented its version in memory; the row must still hold
// the previous one.
func (r *GormItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(item).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"quantity":    item.Quantity,
			"unit":        item.Unit,
			"unit_cost":   item.UnitCost,
			"min_stock":   item.MinStock,
			"usage_count": item.UsageCount,
			"version":     item.Version,
			"updated_at":  item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes an item
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.InventoryItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts items matching the filter
func (r *GormItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&inventory.InventoryItem{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ItemSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormItemRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "item_type":
			query = query.Where("item_type = ?", value)
		case "below_minimum":
			if value == true {
				query = query.Where("min_stock > 0 AND quantity < min_stock")
			}
		case "has_stock":
			if value == true {
				query = query.Where("quantity > 0")
			}
		}
	}
	return query
}

var _ inventory.ItemRepository = (*GormItemRepository)(nil)

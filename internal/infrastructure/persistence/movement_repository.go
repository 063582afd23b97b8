package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMovementRepository implements the append-only movement ledger using
// GORM. Records are only ever inserted; the reference key's unique index is
// the idempotency backstop for retried transitions.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends a movement record
func (r *GormMovementRepository) Create(ctx context.Context, movement *inventory.Movement) error {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// ExistsByReference reports whether a movement with the reference key was
// already appended
func (r *GormMovementRepository) ExistsByReference(ctx context.Context, referenceKey string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.Movement{}).
		Where("reference_key = ?", referenceKey).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByItem lists movements for one item, newest first
func (r *GormMovementRepository) FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Movement{}).Where("item_id = ?", itemID),
		filter,
	)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindAll lists movements with optional item type / date range filters
func (r *GormMovementRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.Movement{}), filter)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// CountByItem counts movements for one item
func (r *GormMovementRepository) CountByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&inventory.Movement{}).Where("item_id = ?", itemID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Count counts movements matching the filter
func (r *GormMovementRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&inventory.Movement{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NetQuantity returns total in minus total out for one item over the whole ledger
func (r *GormMovementRepository) NetQuantity(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Net decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.Movement{}).
		Select("COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END), 0) as net").
		Where("item_id = ?", itemID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Net, nil
}

// SumByDirection returns total moved quantity per direction over a period
func (r *GormMovementRepository) SumByDirection(ctx context.Context, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var result struct {
		TotalIn  decimal.Decimal
		TotalOut decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.Movement{}).
		Select(
			"COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE 0 END), 0) as total_in, " +
				"COALESCE(SUM(CASE WHEN direction = 'out' THEN quantity ELSE 0 END), 0) as total_out").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Scan(&result).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return result.TotalIn, result.TotalOut, nil
}

// FindMostActive aggregates the ledger into per-item activity, ordered by
// movement count descending
func (r *GormMovementRepository) FindMostActive(ctx context.Context, from, to time.Time, limit int) ([]inventory.ItemActivity, error) {
	var activities []inventory.ItemActivity
	if err := r.db.WithContext(ctx).
		Model(&inventory.Movement{}).
		Select(
			"item_id, item_type, item_code, COUNT(*) as movement_count, "+
				"COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE 0 END), 0) as total_in, "+
				"COALESCE(SUM(CASE WHEN direction = 'out' THEN quantity ELSE 0 END), 0) as total_out").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Group("item_id, item_type, item_code").
		Order("movement_count DESC").
		Limit(limit).
		Scan(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *GormMovementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, MovementSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormMovementRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "item_type":
			query = query.Where("item_type = ?", value)
		case "item_code":
			query = query.Where("item_code = ?", value)
		case "direction":
			query = query.Where("direction = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at <= ?", value)
		}
	}
	return query
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)

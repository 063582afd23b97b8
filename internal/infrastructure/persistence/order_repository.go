package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/production"
	"github.com/mfgops/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderSequence backs the per-kind order code sequence
type OrderSequence struct {
	Kind  string `gorm:"type:varchar(15);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderSequence) TableName() string {
	return "order_sequences"
}

// GormOrderRepository implements production.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID retrieves an order with its lines by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.Order, error) {
	var order production.Order
	if err := r.db.WithContext(ctx).Preload("Lines").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByCode retrieves an order with its lines by its unique code
func (r *GormOrderRepository) FindByCode(ctx context.Context, code string) (*production.Order, error) {
	var order production.Order
	if err := r.db.WithContext(ctx).Preload("Lines").First(&order, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll retrieves orders of a kind with pagination
func (r *GormOrderRepository) FindAll(ctx context.Context, kind production.OrderKind, filter shared.Filter) (shared.Paginated[production.Order], error) {
	return r.findPage(ctx, kind, "", filter)
}

// FindByStatus retrieves orders of a kind in a given status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, kind production.OrderKind, status production.OrderStatus, filter shared.Filter) (shared.Paginated[production.Order], error) {
	return r.findPage(ctx, kind, status, filter)
}

func (r *GormOrderRepository) findPage(ctx context.Context, kind production.OrderKind, status production.OrderStatus, filter shared.Filter) (shared.Paginated[production.Order], error) {
	base := r.db.WithContext(ctx).Model(&production.Order{})
	if kind != "" {
		base = base.Where("kind = ?", kind)
	}
	if status != "" {
		base = base.Where("status = ?", status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("code LIKE ? OR product_code LIKE ?", pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return shared.Paginated[production.Order]{}, err
	}

	query := base.Preload("Lines")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var orders []production.Order
	if err := query.Order(orderBy + " " + orderDir).Find(&orders).Error; err != nil {
		return shared.Paginated[production.Order]{}, err
	}

	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// Save persists an order and its lines
func (r *GormOrderRepository) Save(ctx context.Context, order *production.Order) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error
}

// SaveWithLock persists the order header only if the stored version still
// matches expectedVersion. Lines are frozen at creation and never updated
// here.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *production.Order, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(order).
		Where("id = ? AND version = ?", order.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":           order.Status,
			"total_cost":       order.TotalCost,
			"completion_cycle": order.CompletionCycle,
			"completed_at":     order.CompletedAt,
			"cancelled_at":     order.CancelledAt,
			"version":          order.Version,
			"updated_at":       order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes an order and its lines
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&production.OrderLine{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&production.Order{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count returns the number of orders of a kind
func (r *GormOrderRepository) Count(ctx context.Context, kind production.OrderKind) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&production.Order{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextSequence returns the next value of the per-kind code sequence. The
// sequence row is locked for the duration of the surrounding transaction,
// so concurrent creates get distinct codes.
func (r *GormOrderRepository) NextSequence(ctx context.Context, kind production.OrderKind) (int64, error) {
	var seq OrderSequence
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(OrderSequence{Kind: kind.String()}).
			FirstOrCreate(&seq).Error; err != nil {
			return err
		}
		seq.Value++
		return tx.Save(&seq).Error
	})
	if err != nil {
		return 0, err
	}
	return seq.Value, nil
}

var _ production.OrderRepository = (*GormOrderRepository)(nil)

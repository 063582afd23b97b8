package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemRepository provides access to the four inventory pools
type ItemRepository interface {
	// FindByID finds an item by its surrogate ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	// FindByCode finds an item by pool and business code
	FindByCode(ctx context.Context, itemType ItemType, code string) (*InventoryItem, error)
	// FindByKeys loads multiple items in one query; missing keys are
	// simply absent from the result map
	FindByKeys(ctx context.Context, keys []ItemKey) (map[ItemKey]*InventoryItem, error)
	// FindAll lists items, optionally filtered by pool
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryItem, error)
	// FindBelowMinimum lists items under their minimum stock threshold
	FindBelowMinimum(ctx context.Context, filter shared.Filter) ([]InventoryItem, error)
	// FindMostUsed ranks items by usage count for procurement prioritisation
	FindMostUsed(ctx context.Context, itemType ItemType, limit int) ([]InventoryItem, error)
	// Save creates or updates an item
	Save(ctx context.Context, item *InventoryItem) error
	// SaveWithLock saves with optimistic locking on the aggregate version
	SaveWithLock(ctx context.Context, item *InventoryItem) error
	// Delete removes an item
	Delete(ctx context.Context, id uuid.UUID) error
	// Count counts items matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// MovementRepository is the append-only movement ledger
type MovementRepository interface {
	// Create appends a movement record. Inserting a duplicate ReferenceKey
	// fails with shared.ErrAlreadyExists.
	Create(ctx context.Context, movement *Movement) error
	// ExistsByReference reports whether a movement with the reference key
	// was already appended (idempotency probe)
	ExistsByReference(ctx context.Context, referenceKey string) (bool, error)
	// FindByItem lists movements for one item, newest first
	FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]Movement, error)
	// FindAll lists movements with optional item type / date range filters
	FindAll(ctx context.Context, filter shared.Filter) ([]Movement, error)
	// CountByItem counts movements for one item
	CountByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) (int64, error)
	// Count counts movements matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// NetQuantity returns total in minus total out for one item over the
	// whole ledger; the reconciliation job compares it with the pool row
	NetQuantity(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error)
	// SumByDirection returns total moved quantity per direction over a period
	SumByDirection(ctx context.Context, from, to time.Time) (in, out decimal.Decimal, err error)
	// FindMostActive aggregates the ledger into per-item activity, ordered
	// by movement count descending
	FindMostActive(ctx context.Context, from, to time.Time, limit int) ([]ItemActivity, error)
}

// BOMRepository provides access to bill-of-materials definitions
type BOMRepository interface {
	// ComponentsFor lists the BOM lines feeding one product
	ComponentsFor(ctx context.Context, productType ItemType, productCode string) ([]BOMComponent, error)
	// Save creates or updates a BOM line
	Save(ctx context.Context, component *BOMComponent) error
	// ReplaceForProduct atomically swaps a product's BOM lines
	ReplaceForProduct(ctx context.Context, productType ItemType, productCode string, components []BOMComponent) error
	// DeleteForProduct removes every line of a product's BOM
	DeleteForProduct(ctx context.Context, productType ItemType, productCode string) error
}

package inventory

import (
	"fmt"
	"time"

	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemType identifies which of the four inventory pools an item belongs to.
type ItemType string

const (
	ItemTypeRaw          ItemType = "raw"
	ItemTypeSemiFinished ItemType = "semi_finished"
	ItemTypePackaging    ItemType = "packaging"
	ItemTypeFinished     ItemType = "finished"
)

// String returns the string representation of ItemType
func (t ItemType) String() string {
	return string(t)
}

// IsValid returns true if the item type is one of the four pools
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeRaw, ItemTypeSemiFinished, ItemTypePackaging, ItemTypeFinished:
		return true
	}
	return false
}

// ItemKey uniquely identifies an inventory item across the four pools.
// Codes are stable business keys, unique per pool.
type ItemKey struct {
	Type ItemType
	Code string
}

// String returns "type/code" for logging and error messages
func (k ItemKey) String() string {
	return string(k.Type) + "/" + k.Code
}

// InventoryItem is the aggregate root for a stock position in one of the
// four pools. Quantities are mutated exclusively through Consume, Produce
// and AdjustTo; the quantity invariant (>= 0) is enforced here.
type InventoryItem struct {
	shared.BaseAggregateRoot
	ItemType   ItemType        `gorm:"type:varchar(20);not null;uniqueIndex:idx_inventory_item_type_code,priority:1"`
	Code       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_inventory_item_type_code,priority:2"`
	Name       string          `gorm:"type:varchar(120);not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Unit       string          `gorm:"type:varchar(20);not null"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UsageCount int64           `gorm:"not null;default:0"` // consumption frequency, used for procurement ranking
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem creates a new inventory item in the given pool
func NewInventoryItem(itemType ItemType, code, name, unit string) (*InventoryItem, error) {
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Unknown inventory pool: "+string(itemType))
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Item code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Item unit cannot be empty")
	}

	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemType:          itemType,
		Code:              code,
		Name:              name,
		Quantity:          decimal.Zero,
		Unit:              unit,
		UnitCost:          decimal.Zero,
		MinStock:          decimal.Zero,
	}, nil
}

// Key returns the item's pool-scoped business key
func (i *InventoryItem) Key() ItemKey {
	return ItemKey{Type: i.ItemType, Code: i.Code}
}

// CanFulfill returns true if the on-hand quantity covers the requested quantity
func (i *InventoryItem) CanFulfill(quantity decimal.Decimal) bool {
	return i.Quantity.GreaterThanOrEqual(quantity)
}

// Consume debits the pool. It fails without side effects if the debit would
// drive the quantity negative, reporting the exact missing amount.
func (i *InventoryItem) Consume(quantity decimal.Decimal, reason string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Consumption quantity must be positive")
	}
	if i.Quantity.LessThan(quantity) {
		missing := quantity.Sub(i.Quantity)
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for %s: need %s, have %s, missing %s",
				i.Key(), quantity.String(), i.Quantity.String(), missing.String()))
	}

	i.Quantity = i.Quantity.Sub(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewStockConsumedEvent(i, quantity, reason))

	if i.IsBelowMinimum() {
		i.AddDomainEvent(NewStockBelowThresholdEvent(i))
	}

	return nil
}

// Produce credits the pool and records the producing batch's unit cost.
// Cost writes are last-producer-wins, with one guard: a zero computed cost
// never overwrites an existing non-zero cost (a priced item must not be
// silently zeroed by an order whose cost links are missing).
func (i *InventoryItem) Produce(quantity, unitCost decimal.Decimal, reason string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Production quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	i.Quantity = i.Quantity.Add(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	if unitCost.IsPositive() || i.UnitCost.IsZero() {
		if !i.UnitCost.Equal(unitCost) {
			i.AddDomainEvent(NewItemCostChangedEvent(i, i.UnitCost, unitCost))
		}
		i.UnitCost = unitCost
	}

	i.AddDomainEvent(NewStockProducedEvent(i, quantity, reason))

	return nil
}

// AdjustTo sets the quantity to the counted value (reconciliation only).
// The reason is recorded on the resulting movement for audit purposes.
func (i *InventoryItem) AdjustTo(actual decimal.Decimal, reason string) (decimal.Decimal, error) {
	if actual.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Actual quantity cannot be negative")
	}
	if reason == "" {
		return decimal.Zero, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}

	difference := actual.Sub(i.Quantity)
	i.Quantity = actual
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	if i.IsBelowMinimum() {
		i.AddDomainEvent(NewStockBelowThresholdEvent(i))
	}

	return difference, nil
}

// SetMinStock sets the minimum stock threshold for procurement alerts
func (i *InventoryItem) SetMinStock(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum stock cannot be negative")
	}

	i.MinStock = quantity
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	if i.IsBelowMinimum() {
		i.AddDomainEvent(NewStockBelowThresholdEvent(i))
	}

	return nil
}

// RecordUsage bumps the consumption frequency counter
func (i *InventoryItem) RecordUsage() {
	i.UsageCount++
	i.UpdatedAt = time.Now()
}

// IsBelowMinimum returns true if the quantity dropped below the configured threshold
func (i *InventoryItem) IsBelowMinimum() bool {
	return i.MinStock.GreaterThan(decimal.Zero) && i.Quantity.LessThan(i.MinStock)
}

// TotalValue returns quantity * unit cost
func (i *InventoryItem) TotalValue() decimal.Decimal {
	return i.Quantity.Mul(i.UnitCost)
}

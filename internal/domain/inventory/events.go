package inventory

import (
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeStockConsumed       = "inventory.stock_consumed"
	EventTypeStockProduced       = "inventory.stock_produced"
	EventTypeStockBelowThreshold = "inventory.stock_below_threshold"
	EventTypeItemCostChanged     = "inventory.item_cost_changed"
)

// AggregateTypeInventoryItem is the aggregate type for inventory events
const AggregateTypeInventoryItem = "InventoryItem"

// StockConsumedEvent is emitted when a pool is debited
type StockConsumedEvent struct {
	shared.BaseDomainEvent
	ItemType ItemType        `json:"item_type"`
	ItemCode string          `json:"item_code"`
	Quantity decimal.Decimal `json:"quantity"`
	Balance  decimal.Decimal `json:"balance"`
	Reason   string          `json:"reason"`
}

// NewStockConsumedEvent creates a new StockConsumedEvent
func NewStockConsumedEvent(item *InventoryItem, quantity decimal.Decimal, reason string) *StockConsumedEvent {
	return &StockConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockConsumed, AggregateTypeInventoryItem, item.ID),
		ItemType:        item.ItemType,
		ItemCode:        item.Code,
		Quantity:        quantity,
		Balance:         item.Quantity,
		Reason:          reason,
	}
}

// StockProducedEvent is emitted when a pool is credited
type StockProducedEvent struct {
	shared.BaseDomainEvent
	ItemType ItemType        `json:"item_type"`
	ItemCode string          `json:"item_code"`
	Quantity decimal.Decimal `json:"quantity"`
	Balance  decimal.Decimal `json:"balance"`
	Reason   string          `json:"reason"`
}

// NewStockProducedEvent creates a new StockProducedEvent
func NewStockProducedEvent(item *InventoryItem, quantity decimal.Decimal, reason string) *StockProducedEvent {
	return &StockProducedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockProduced, AggregateTypeInventoryItem, item.ID),
		ItemType:        item.ItemType,
		ItemCode:        item.Code,
		Quantity:        quantity,
		Balance:         item.Quantity,
		Reason:          reason,
	}
}

// StockBelowThresholdEvent is emitted when an item drops below its
// minimum stock threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ItemType ItemType        `json:"item_type"`
	ItemCode string          `json:"item_code"`
	ItemName string          `json:"item_name"`
	Quantity decimal.Decimal `json:"quantity"`
	MinStock decimal.Decimal `json:"min_stock"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(item *InventoryItem) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeInventoryItem, item.ID),
		ItemType:        item.ItemType,
		ItemCode:        item.Code,
		ItemName:        item.Name,
		Quantity:        item.Quantity,
		MinStock:        item.MinStock,
	}
}

// ItemCostChangedEvent is emitted when cost propagation rewrites an
// item's unit cost
type ItemCostChangedEvent struct {
	shared.BaseDomainEvent
	ItemType ItemType        `json:"item_type"`
	ItemCode string          `json:"item_code"`
	OldCost  decimal.Decimal `json:"old_cost"`
	NewCost  decimal.Decimal `json:"new_cost"`
}

// NewItemCostChangedEvent creates a new ItemCostChangedEvent
func NewItemCostChangedEvent(item *InventoryItem, oldCost, newCost decimal.Decimal) *ItemCostChangedEvent {
	return &ItemCostChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCostChanged, AggregateTypeInventoryItem, item.ID),
		ItemType:        item.ItemType,
		ItemCode:        item.Code,
		OldCost:         oldCost,
		NewCost:         newCost,
	}
}

package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Direction indicates whether a movement credits or debits a pool
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Opposite returns the compensating direction
func (d Direction) Opposite() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

// Movement is an immutable record of one quantity change in one pool.
// Records are append-only: corrections and reversals append new records
// with the opposite direction, never edit history.
//
// BalanceAfter is an advisory audit snapshot taken at write time; the
// authoritative balance is always the inventory item row.
type Movement struct {
	shared.BaseEntity
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_item"`
	ItemType     ItemType        `gorm:"type:varchar(20);not null;index:idx_movement_type"`
	ItemCode     string          `gorm:"type:varchar(50);not null;index:idx_movement_code"`
	Direction    Direction       `gorm:"type:varchar(5);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"` // always positive
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"` // cost per unit at movement time
	Reason       string          `gorm:"type:varchar(255);not null"`
	ReferenceKey string          `gorm:"type:varchar(120);not null;uniqueIndex:idx_movement_reference"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "inventory_movements"
}

// NewMovement creates a new movement record for an item
func NewMovement(
	item *InventoryItem,
	direction Direction,
	quantity decimal.Decimal,
	reason string,
	referenceKey string,
) (*Movement, error) {
	if item == nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Movement requires an inventory item")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Movement direction must be in or out")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Movement reason cannot be empty")
	}
	if referenceKey == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Movement reference key cannot be empty")
	}

	return &Movement{
		BaseEntity:   shared.NewBaseEntity(),
		ItemID:       item.ID,
		ItemType:     item.ItemType,
		ItemCode:     item.Code,
		Direction:    direction,
		Quantity:     quantity,
		UnitCost:     item.UnitCost,
		Reason:       reason,
		ReferenceKey: referenceKey,
		BalanceAfter: item.Quantity,
	}, nil
}

// SignedQuantity returns the quantity with sign: positive in, negative out
func (m *Movement) SignedQuantity() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// TransitionReference builds the structured idempotency key for a lifecycle
// transition's movements: orderCode:cycle:direction:seq. Duplicate inserts
// for the same key are rejected by the ledger's unique index, making retried
// transitions safe. The cycle distinguishes a re-completion after a reversal
// from a retry of the same completion.
func TransitionReference(orderCode string, cycle int, direction Direction, seq int) string {
	return fmt.Sprintf("%s:%d:%s:%d", orderCode, cycle, direction, seq)
}

// ReversalReference builds the idempotency key for the compensating
// movements appended when a completion is reversed.
func ReversalReference(orderCode string, cycle int, direction Direction, seq int) string {
	return fmt.Sprintf("%s:%d:reversal:%s:%d", orderCode, cycle, direction, seq)
}

// SyncReference builds the idempotency key for a reconciliation correction,
// scoped to one item and one calendar day so reruns are no-ops.
func SyncReference(itemType ItemType, code string, day time.Time) string {
	return fmt.Sprintf("sync:%s:%s:%s", itemType, code, day.Format("2006-01-02"))
}

// ItemActivity is a ledger aggregate: movement count and net quantity for
// one item over a period. Used by the most-active-items report.
type ItemActivity struct {
	ItemID        uuid.UUID       `json:"item_id"`
	ItemType      ItemType        `json:"item_type"`
	ItemCode      string          `json:"item_code"`
	MovementCount int64           `json:"movement_count"`
	TotalIn       decimal.Decimal `json:"total_in"`
	TotalOut      decimal.Decimal `json:"total_out"`
}

// NetQuantity returns total in minus total out
func (a ItemActivity) NetQuantity() decimal.Decimal {
	return a.TotalIn.Sub(a.TotalOut)
}

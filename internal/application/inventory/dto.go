package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ItemResponse represents an inventory item in API responses
type ItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ItemType       string          `json:"item_type"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	TotalValue     decimal.Decimal `json:"total_value"`
	MinStock       decimal.Decimal `json:"min_stock"`
	IsBelowMinimum bool            `json:"is_below_minimum"`
	UsageCount     int64           `json:"usage_count"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToItemResponse converts an inventory item to its response DTO
func ToItemResponse(item *inventory.InventoryItem) *ItemResponse {
	return &ItemResponse{
		ID:             item.ID,
		ItemType:       item.ItemType.String(),
		Code:           item.Code,
		Name:           item.Name,
		Quantity:       item.Quantity,
		Unit:           item.Unit,
		UnitCost:       item.UnitCost,
		TotalValue:     item.TotalValue(),
		MinStock:       item.MinStock,
		IsBelowMinimum: item.IsBelowMinimum(),
		UsageCount:     item.UsageCount,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
		Version:        item.GetVersion(),
	}
}

// ItemListFilter represents filter options for item listing
type ItemListFilter struct {
	ItemType     string `form:"item_type" binding:"omitempty,oneof=raw semi_finished packaging finished"`
	Search       string `form:"search"`
	BelowMinimum bool   `form:"below_minimum"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateItemRequest represents a request to register an item in a pool
type CreateItemRequest struct {
	ItemType string          `json:"item_type" binding:"required,oneof=raw semi_finished packaging finished"`
	Code     string          `json:"code" binding:"required,max=50"`
	Name     string          `json:"name" binding:"required,max=120"`
	Unit     string          `json:"unit" binding:"required,max=20"`
	MinStock decimal.Decimal `json:"min_stock"`
}

// UpdateItemRequest represents a request to update an item's master data
type UpdateItemRequest struct {
	Name     *string          `json:"name" binding:"omitempty,max=120"`
	Unit     *string          `json:"unit" binding:"omitempty,max=20"`
	MinStock *decimal.Decimal `json:"min_stock"`
}

// ReceiveStockRequest represents an inbound stock receipt
type ReceiveStockRequest struct {
	ItemType  string          `json:"item_type" binding:"required,oneof=raw semi_finished packaging finished"`
	Code      string          `json:"code" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Reason    string          `json:"reason" binding:"required,max=255"`
	Reference string          `json:"reference" binding:"omitempty,max=120"`
}

// IssueStockRequest represents an outbound stock issue
type IssueStockRequest struct {
	ItemType  string          `json:"item_type" binding:"required,oneof=raw semi_finished packaging finished"`
	Code      string          `json:"code" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Reason    string          `json:"reason" binding:"required,max=255"`
	Reference string          `json:"reference" binding:"omitempty,max=120"`
}

// AdjustStockRequest sets an item's quantity to a counted value
type AdjustStockRequest struct {
	ItemType string          `json:"item_type" binding:"required,oneof=raw semi_finished packaging finished"`
	Code     string          `json:"code" binding:"required"`
	Actual   decimal.Decimal `json:"actual"`
	Reason   string          `json:"reason" binding:"required,max=255"`
}

// MovementResponse represents a ledger record in API responses
type MovementResponse struct {
	ID           uuid.UUID       `json:"id"`
	ItemID       uuid.UUID       `json:"item_id"`
	ItemType     string          `json:"item_type"`
	ItemCode     string          `json:"item_code"`
	Direction    string          `json:"direction"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Reason       string          `json:"reason"`
	ReferenceKey string          `json:"reference_key"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToMovementResponse converts a movement to its response DTO
func ToMovementResponse(m *inventory.Movement) *MovementResponse {
	return &MovementResponse{
		ID:           m.ID,
		ItemID:       m.ItemID,
		ItemType:     m.ItemType.String(),
		ItemCode:     m.ItemCode,
		Direction:    m.Direction.String(),
		Quantity:     m.Quantity,
		UnitCost:     m.UnitCost,
		Reason:       m.Reason,
		ReferenceKey: m.ReferenceKey,
		BalanceAfter: m.BalanceAfter,
		CreatedAt:    m.CreatedAt,
	}
}

// MovementListFilter represents filter options for ledger listing
type MovementListFilter struct {
	ItemType string     `form:"item_type" binding:"omitempty,oneof=raw semi_finished packaging finished"`
	ItemCode string     `form:"item_code"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BOMComponentRequest is one line of a product's bill of materials
type BOMComponentRequest struct {
	ComponentType string          `json:"component_type" binding:"required,oneof=raw semi_finished packaging"`
	ComponentCode string          `json:"component_code" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Basis         string          `json:"basis" binding:"required,oneof=per_unit percent"`
}

// ReplaceBOMRequest swaps a product's bill of materials
type ReplaceBOMRequest struct {
	ProductType string                `json:"product_type" binding:"required,oneof=semi_finished finished"`
	ProductCode string                `json:"product_code" binding:"required"`
	Components  []BOMComponentRequest `json:"components" binding:"required,min=1,dive"`
}

// BOMComponentResponse represents a BOM line in API responses
type BOMComponentResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductType   string          `json:"product_type"`
	ProductCode   string          `json:"product_code"`
	ComponentType string          `json:"component_type"`
	ComponentCode string          `json:"component_code"`
	Quantity      decimal.Decimal `json:"quantity"`
	Basis         string          `json:"basis"`
}

// ToBOMComponentResponse converts a BOM component to its response DTO
func ToBOMComponentResponse(c *inventory.BOMComponent) *BOMComponentResponse {
	return &BOMComponentResponse{
		ID:            c.ID,
		ProductType:   c.ProductType.String(),
		ProductCode:   c.ProductCode,
		ComponentType: c.ComponentType.String(),
		ComponentCode: c.ComponentCode,
		Quantity:      c.Quantity,
		Basis:         string(c.Basis),
	}
}

// ItemActivityResponse is one row of the most-active-items report
type ItemActivityResponse struct {
	ItemID        uuid.UUID       `json:"item_id"`
	ItemType      string          `json:"item_type"`
	ItemCode      string          `json:"item_code"`
	MovementCount int64           `json:"movement_count"`
	TotalIn       decimal.Decimal `json:"total_in"`
	TotalOut      decimal.Decimal `json:"total_out"`
	NetQuantity   decimal.Decimal `json:"net_quantity"`
}

// MovementSummaryResponse aggregates ledger volume over a period
type MovementSummaryResponse struct {
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	TotalIn  decimal.Decimal `json:"total_in"`
	TotalOut decimal.Decimal `json:"total_out"`
	Net      decimal.Decimal `json:"net"`
}

// ReconciliationResult reports one item's reconciliation outcome
type ReconciliationResult struct {
	ItemType   string          `json:"item_type"`
	ItemCode   string          `json:"item_code"`
	LedgerNet  decimal.Decimal `json:"ledger_net"`
	PoolOnHand decimal.Decimal `json:"pool_on_hand"`
	Corrected  bool            `json:"corrected"`
	Difference decimal.Decimal `json:"difference"`
}

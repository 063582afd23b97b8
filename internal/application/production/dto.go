package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/production"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents a request to create a manufacturing order
type CreateOrderRequest struct {
	Kind        string          `json:"kind" binding:"required,oneof=production packaging"`
	ProductCode string          `json:"product_code" binding:"required,max=50"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Unit        string          `json:"unit" binding:"required,max=20"`
	OrderDate   *time.Time      `json:"order_date"`
}

// TransitionRequest represents a request to move an order to a new status
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderLineResponse represents one frozen requirement line
type OrderLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ItemType         string          `json:"item_type"`
	ItemCode         string          `json:"item_code"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
}

// OrderResponse represents a manufacturing order in API responses
type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	Kind        string              `json:"kind"`
	Code        string              `json:"code"`
	ProductCode string              `json:"product_code"`
	Quantity    decimal.Decimal     `json:"quantity"`
	Unit        string              `json:"unit"`
	Status      string              `json:"status"`
	OrderDate   time.Time           `json:"order_date"`
	Lines       []OrderLineResponse `json:"lines"`
	TotalCost   decimal.Decimal     `json:"total_cost"`
	UnitCost    decimal.Decimal     `json:"unit_cost"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	CancelledAt *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Version     int                 `json:"version"`
}

// ToOrderResponse converts an order to its response DTO
func ToOrderResponse(order *production.Order) *OrderResponse {
	lines := make([]OrderLineResponse, 0, len(order.Lines))
	for i := range order.Lines {
		lines = append(lines, OrderLineResponse{
			ID:               order.Lines[i].ID,
			ItemType:         order.Lines[i].ItemType.String(),
			ItemCode:         order.Lines[i].ItemCode,
			RequiredQuantity: order.Lines[i].RequiredQuantity,
		})
	}

	unitCost := decimal.Zero
	if order.Quantity.IsPositive() {
		unitCost = order.TotalCost.Div(order.Quantity).Round(4)
	}

	return &OrderResponse{
		ID:          order.ID,
		Kind:        order.Kind.String(),
		Code:        order.Code,
		ProductCode: order.ProductCode,
		Quantity:    order.Quantity,
		Unit:        order.Unit,
		Status:      order.Status.String(),
		OrderDate:   order.OrderDate,
		Lines:       lines,
		TotalCost:   order.TotalCost,
		UnitCost:    unitCost,
		CompletedAt: order.CompletedAt,
		CancelledAt: order.CancelledAt,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
		Version:     order.GetVersion(),
	}
}

// OrderListFilter represents filter options for order listing
type OrderListFilter struct {
	Kind     string `form:"kind" binding:"omitempty,oneof=production packaging"`
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

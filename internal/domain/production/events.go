package production

import (
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeOrderCreated            = "production.order_created"
	EventTypeOrderStatusChanged      = "production.order_status_changed"
	EventTypeOrderCompleted          = "production.order_completed"
	EventTypeOrderCompletionReversed = "production.order_completion_reversed"

	AggregateTypeOrder = "Order"
)

// OrderCreatedEvent is emitted when an order enters the pending status
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	Kind        OrderKind       `json:"kind"`
	Code        string          `json:"code"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// NewOrderCreatedEvent creates a new order created event
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, order.ID),
		Kind:            order.Kind,
		Code:            order.Code,
		ProductCode:     order.ProductCode,
		Quantity:        order.Quantity,
	}
}

// OrderStatusChangedEvent is emitted for transitions without inventory effect
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	Code       string      `json:"code"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status"`
}

// NewOrderStatusChangedEvent creates a new status changed event
func NewOrderStatusChangedEvent(order *Order, from, to OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, order.ID),
		Code:            order.Code,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// OrderCompletedEvent is emitted when an order completes and its inventory
// effects have been applied
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	Code        string          `json:"code"`
	FromStatus  OrderStatus     `json:"from_status"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// NewOrderCompletedEvent creates a new order completed event
func NewOrderCompletedEvent(order *Order, from OrderStatus) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, AggregateTypeOrder, order.ID),
		Code:            order.Code,
		FromStatus:      from,
		ProductCode:     order.ProductCode,
		Quantity:        order.Quantity,
		TotalCost:       order.TotalCost,
	}
}

// OrderCompletionReversedEvent is emitted when a completed order is moved
// back to a non-completed status and its inventory effects undone
type OrderCompletionReversedEvent struct {
	shared.BaseDomainEvent
	Code        string          `json:"code"`
	ToStatus    OrderStatus     `json:"to_status"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// NewOrderCompletionReversedEvent creates a new completion reversed event
func NewOrderCompletionReversedEvent(order *Order, to OrderStatus) *OrderCompletionReversedEvent {
	return &OrderCompletionReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompletionReversed, AggregateTypeOrder, order.ID),
		Code:            order.Code,
		ToStatus:        to,
		ProductCode:     order.ProductCode,
		Quantity:        order.Quantity,
	}
}

package production

import "github.com/mfgops/backend/internal/domain/shared"

// OrderStatus represents the lifecycle status of a manufacturing order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// completed and cancelled are terminal for the normal flow but remain
// exitable as corrections: leaving completed triggers the compensating
// reversal of the order's inventory effects.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s == target {
		return false
	}
	switch s {
	case OrderStatusPending:
		return target == OrderStatusInProgress || target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusInProgress:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusCompleted:
		return target == OrderStatusPending || target == OrderStatusInProgress || target == OrderStatusCancelled
	case OrderStatusCancelled:
		return target == OrderStatusPending || target == OrderStatusInProgress
	}
	return false
}

// ParseOrderStatus parses a status string, accepting both the stored form
// and the camel-case form used by older API clients
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch s {
	case "pending":
		return OrderStatusPending, nil
	case "in_progress", "inProgress":
		return OrderStatusInProgress, nil
	case "completed":
		return OrderStatusCompleted, nil
	case "cancelled":
		return OrderStatusCancelled, nil
	}
	return "", shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+s)
}

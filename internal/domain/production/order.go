package production

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderKind distinguishes the two manufacturing order types
type OrderKind string

const (
	// OrderKindProduction turns raw materials into a semi-finished product
	OrderKindProduction OrderKind = "production"
	// OrderKindPackaging turns a semi-finished product plus packaging
	// materials into a finished product
	OrderKindPackaging OrderKind = "packaging"
)

// IsValid returns true if the kind is valid
func (k OrderKind) IsValid() bool {
	return k == OrderKindProduction || k == OrderKindPackaging
}

// String returns the string representation of OrderKind
func (k OrderKind) String() string {
	return string(k)
}

// OutputType returns the pool the order's product lands in
func (k OrderKind) OutputType() inventory.ItemType {
	if k == OrderKindPackaging {
		return inventory.ItemTypeFinished
	}
	return inventory.ItemTypeSemiFinished
}

// FormatOrderCode builds the human-facing order code from the per-kind
// sequence, e.g. PRD-00042 or PKG-00042
func FormatOrderCode(kind OrderKind, seq int64) string {
	prefix := "PRD"
	if kind == OrderKindPackaging {
		prefix = "PKG"
	}
	return fmt.Sprintf("%s-%05d", prefix, seq)
}

// OrderLine is one frozen requirement of an order: the BOM scaled to the
// order quantity at creation time. The lifecycle engine treats these lines
// as the authoritative recipe for the order and never re-reads the live BOM.
type OrderLine struct {
	ID               uuid.UUID          `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID          `gorm:"type:uuid;not null;index"`
	ItemType         inventory.ItemType `gorm:"type:varchar(20);not null"`
	ItemCode         string             `gorm:"type:varchar(50);not null"`
	RequiredQuantity decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	CreatedAt        time.Time
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "manufacturing_order_lines"
}

// NewOrderLine creates a frozen requirement line
func NewOrderLine(orderID uuid.UUID, itemType inventory.ItemType, itemCode string, requiredQty decimal.Decimal) (*OrderLine, error) {
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Unknown inventory pool: "+string(itemType))
	}
	if itemCode == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Line item code cannot be empty")
	}
	if requiredQty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Required quantity must be positive")
	}

	return &OrderLine{
		ID:               uuid.New(),
		OrderID:          orderID,
		ItemType:         itemType,
		ItemCode:         itemCode,
		RequiredQuantity: requiredQty,
		CreatedAt:        time.Now(),
	}, nil
}

// Requirement converts the line to an inventory requirement
func (l *OrderLine) Requirement() inventory.Requirement {
	return inventory.Requirement{
		ItemType: l.ItemType,
		Code:     l.ItemCode,
		Quantity: l.RequiredQuantity,
	}
}

// Order is the aggregate root for both production and packaging orders.
// The two kinds share the same lifecycle; the kind constrains which pools
// the frozen lines may draw from and which pool receives the output.
type Order struct {
	shared.BaseAggregateRoot
	Kind        OrderKind       `gorm:"type:varchar(15);not null;index"`
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ProductCode string          `gorm:"type:varchar(50);not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit        string          `gorm:"type:varchar(20);not null"`
	Status      OrderStatus     `gorm:"type:varchar(15);not null;index"`
	OrderDate   time.Time       `gorm:"type:timestamptz;not null"`
	Lines       []OrderLine     `gorm:"foreignKey:OrderID;references:ID"`
	TotalCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // provisional until completed
	// CompletionCycle counts how many times the order has been completed.
	// It feeds the ledger reference keys so a re-completion after a
	// reversal is not mistaken for a retry of the first completion.
	CompletionCycle int `gorm:"not null;default:0"`
	CompletedAt     *time.Time
	CancelledAt     *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "manufacturing_orders"
}

// NewOrder creates an order in pending status with its frozen requirement
// lines. Line pools are validated against the kind: production orders
// consume raw materials only; packaging orders consume exactly one
// semi-finished line plus packaging lines.
func NewOrder(kind OrderKind, code, productCode, unit string, quantity decimal.Decimal, orderDate time.Time) (*Order, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Unknown order kind: "+string(kind))
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_CODE", "Order code cannot be empty")
	}
	if productCode == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Order quantity must be positive")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Code:              code,
		ProductCode:       productCode,
		Quantity:          quantity,
		Unit:              unit,
		Status:            OrderStatusPending,
		OrderDate:         orderDate,
		Lines:             make([]OrderLine, 0),
		TotalCost:         decimal.Zero,
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// AddLine appends a frozen requirement line. Only allowed while pending,
// before the order has had any inventory effect.
func (o *Order) AddLine(itemType inventory.ItemType, itemCode string, requiredQty decimal.Decimal) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify lines of a non-pending order")
	}
	if !o.allowsLineType(itemType) {
		return shared.NewDomainError("INVALID_BOM_LINK",
			fmt.Sprintf("%s orders cannot consume from the %s pool", o.Kind, itemType))
	}
	for _, line := range o.Lines {
		if line.ItemType == itemType && line.ItemCode == itemCode {
			return shared.NewDomainError("DUPLICATE_LINE", "Item already present in order requirements")
		}
	}

	line, err := NewOrderLine(o.ID, itemType, itemCode, requiredQty)
	if err != nil {
		return err
	}

	o.Lines = append(o.Lines, *line)
	o.UpdatedAt = time.Now()

	return nil
}

// allowsLineType reports whether the kind may consume from the pool
func (o *Order) allowsLineType(itemType inventory.ItemType) bool {
	if o.Kind == OrderKindProduction {
		return itemType == inventory.ItemTypeRaw
	}
	return itemType == inventory.ItemTypeSemiFinished || itemType == inventory.ItemTypePackaging
}

// ValidateLines checks the structural shape of the frozen requirement set:
// production orders need at least one raw line; packaging orders need
// exactly one semi-finished line.
func (o *Order) ValidateLines() error {
	if len(o.Lines) == 0 {
		return shared.NewDomainError("INSUFFICIENT_SPEC", "Order has no requirement lines; is the product's BOM defined?")
	}
	if o.Kind == OrderKindPackaging {
		semiCount := 0
		for _, line := range o.Lines {
			if line.ItemType == inventory.ItemTypeSemiFinished {
				semiCount++
			}
		}
		if semiCount != 1 {
			return shared.NewDomainError("INSUFFICIENT_SPEC", "Packaging order must consume exactly one semi-finished item")
		}
	}
	return nil
}

// OutputType returns the pool the produced quantity lands in
func (o *Order) OutputType() inventory.ItemType {
	return o.Kind.OutputType()
}

// Requirements returns the frozen requirement set as inventory requirements
func (o *Order) Requirements() []inventory.Requirement {
	reqs := make([]inventory.Requirement, 0, len(o.Lines))
	for i := range o.Lines {
		reqs = append(reqs, o.Lines[i].Requirement())
	}
	return reqs
}

// SetProvisionalCost stores a cost estimate while the order is not yet
// completed. The authoritative total is written by Complete.
func (o *Order) SetProvisionalCost(cost decimal.Decimal) error {
	if o.Status == OrderStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Total cost of a completed order is owned by the lifecycle engine")
	}
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Cost cannot be negative")
	}
	o.TotalCost = cost
	o.UpdatedAt = time.Now()
	return nil
}

// ChangeStatus performs a transition with no inventory effect
// (pending <-> in_progress, cancellation before completion, corrections
// out of cancelled). Transitions into or out of completed must go through
// Complete / RevertCompletion.
func (o *Order) ChangeStatus(target OrderStatus) error {
	if target == OrderStatusCompleted || o.Status == OrderStatusCompleted {
		return shared.NewDomainError("INVALID_TRANSITION", "Completion transitions carry inventory effects and must use the lifecycle engine")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}

	from := o.Status
	now := time.Now()
	o.Status = target
	if target == OrderStatusCancelled {
		o.CancelledAt = &now
	} else {
		o.CancelledAt = nil
	}
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target))

	return nil
}

// Complete marks the order completed and records the authoritative batch
// cost computed by cost propagation. The caller is responsible for having
// already applied the consumption and production effects.
func (o *Order) Complete(totalCost decimal.Decimal) error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}
	if totalCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Total cost cannot be negative")
	}

	from := o.Status
	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletionCycle++
	o.TotalCost = totalCost
	o.CompletedAt = &now
	o.CancelledAt = nil
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCompletedEvent(o, from))

	return nil
}

// RevertCompletion moves a completed order back to a non-completed status.
// The caller is responsible for the compensating inventory reversal.
func (o *Order) RevertCompletion(target OrderStatus) error {
	if o.Status != OrderStatusCompleted {
		return shared.NewDomainError("INVALID_TRANSITION", "Only completed orders can be reverted")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot revert completed order to %s", target))
	}

	now := time.Now()
	o.Status = target
	o.CompletedAt = nil
	if target == OrderStatusCancelled {
		o.CancelledAt = &now
	}
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCompletionReversedEvent(o, target))

	return nil
}

// CanDelete reports whether the order may be deleted. Only pending orders
// qualify: they have never had an inventory effect.
func (o *Order) CanDelete() bool {
	return o.Status == OrderStatusPending
}

package inventory

import (
	"fmt"
	"strings"

	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Requirement is one line of a requirement set: the order needs
// Quantity of the item identified by (Type, Code).
type Requirement struct {
	ItemType ItemType
	Code     string
	Quantity decimal.Decimal
}

// Key returns the requirement's item key
func (r Requirement) Key() ItemKey {
	return ItemKey{Type: r.ItemType, Code: r.Code}
}

// Shortage reports one unmet requirement line
type Shortage struct {
	ItemType  ItemType
	Code      string
	Required  decimal.Decimal
	Available decimal.Decimal
}

// Missing returns how much is missing for this line
func (s Shortage) Missing() decimal.Decimal {
	return s.Required.Sub(s.Available)
}

// CheckAvailability verifies the whole requirement set against the loaded
// items before any debit is attempted. It returns every unmet line, so the
// caller can report the full shortfall rather than the first failure.
// A requirement whose item is absent from the map counts as fully short.
func CheckAvailability(requirements []Requirement, items map[ItemKey]*InventoryItem) []Shortage {
	shortages := make([]Shortage, 0)
	for _, req := range requirements {
		item, ok := items[req.Key()]
		if !ok {
			shortages = append(shortages, Shortage{
				ItemType:  req.ItemType,
				Code:      req.Code,
				Required:  req.Quantity,
				Available: decimal.Zero,
			})
			continue
		}
		if !item.CanFulfill(req.Quantity) {
			shortages = append(shortages, Shortage{
				ItemType:  req.ItemType,
				Code:      req.Code,
				Required:  req.Quantity,
				Available: item.Quantity,
			})
		}
	}
	return shortages
}

// NewInsufficientStockError builds the user-facing error for a failed
// availability check, naming each item and its missing quantity.
func NewInsufficientStockError(shortages []Shortage) *shared.DomainError {
	parts := make([]string, 0, len(shortages))
	for _, s := range shortages {
		parts = append(parts, fmt.Sprintf("%s/%s missing %s (need %s, have %s)",
			s.ItemType, s.Code, s.Missing().String(), s.Required.String(), s.Available.String()))
	}
	return shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock: "+strings.Join(parts, "; "))
}

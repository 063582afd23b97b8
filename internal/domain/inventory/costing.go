package inventory

import (
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CostLine pairs a requirement with the input item's current unit cost.
// Costs are read at completion time, never frozen at order creation, so a
// finished product always rolls up the latest semi-finished cost.
type CostLine struct {
	Requirement
	UnitCost decimal.Decimal
}

// BatchCost sums unit_cost * required quantity over all lines
func BatchCost(lines []CostLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitCost.Mul(line.Quantity))
	}
	return total
}

// UnitCostFor divides the batch cost across the produced quantity
func UnitCostFor(batchCost, producedQty decimal.Decimal) (decimal.Decimal, error) {
	if producedQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Produced quantity must be positive")
	}
	return batchCost.Div(producedQty).Round(4), nil
}

// CostLinesFrom resolves each requirement's current unit cost from the
// loaded items. Requirements for unknown items carry zero cost; the
// availability gate rejects those before costing matters.
func CostLinesFrom(requirements []Requirement, items map[ItemKey]*InventoryItem) []CostLine {
	lines := make([]CostLine, 0, len(requirements))
	for _, req := range requirements {
		unitCost := decimal.Zero
		if item, ok := items[req.Key()]; ok {
			unitCost = item.UnitCost
		}
		lines = append(lines, CostLine{Requirement: req, UnitCost: unitCost})
	}
	return lines
}

package inventory

import (
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BOMBasis describes how a component quantity scales to an order quantity
type BOMBasis string

const (
	// BOMBasisPerUnit is consumed quantity per produced unit
	BOMBasisPerUnit BOMBasis = "per_unit"
	// BOMBasisPercent is percentage-of-batch composition (raw materials
	// of a semi-finished recipe)
	BOMBasisPercent BOMBasis = "percent"
)

// IsValid returns true if the basis is valid
func (b BOMBasis) IsValid() bool {
	return b == BOMBasisPerUnit || b == BOMBasisPercent
}

// BOMComponent is one line of a bill of materials: the product
// (type, code) consumes the component (type, code) at the given rate.
//
// Allowed shapes: a finished product references one semi-finished
// component and any number of packaging components (per_unit basis);
// a semi-finished product references raw materials (percent basis).
type BOMComponent struct {
	shared.BaseEntity
	ProductType   ItemType        `gorm:"type:varchar(20);not null;index:idx_bom_product,priority:1"`
	ProductCode   string          `gorm:"type:varchar(50);not null;index:idx_bom_product,priority:2"`
	ComponentType ItemType        `gorm:"type:varchar(20);not null"`
	ComponentCode string          `gorm:"type:varchar(50);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Basis         BOMBasis        `gorm:"type:varchar(10);not null"`
}

// TableName returns the table name for GORM
func (BOMComponent) TableName() string {
	return "bom_components"
}

// NewBOMComponent creates a BOM line, validating the product/component
// pool combination.
func NewBOMComponent(productType ItemType, productCode string, componentType ItemType, componentCode string, quantity decimal.Decimal, basis BOMBasis) (*BOMComponent, error) {
	if productCode == "" || componentCode == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product and component codes cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Component quantity must be positive")
	}
	if !basis.IsValid() {
		return nil, shared.NewDomainError("INVALID_BASIS", "Unknown BOM basis: "+string(basis))
	}

	switch {
	case productType == ItemTypeSemiFinished && componentType == ItemTypeRaw && basis == BOMBasisPercent:
	case productType == ItemTypeFinished && componentType == ItemTypeSemiFinished && basis == BOMBasisPerUnit:
	case productType == ItemTypeFinished && componentType == ItemTypePackaging && basis == BOMBasisPerUnit:
	default:
		return nil, shared.NewDomainError("INVALID_BOM_LINK",
			"Component "+string(componentType)+" cannot feed product "+string(productType)+" on basis "+string(basis))
	}

	return &BOMComponent{
		BaseEntity:    shared.NewBaseEntity(),
		ProductType:   productType,
		ProductCode:   productCode,
		ComponentType: componentType,
		ComponentCode: componentCode,
		Quantity:      quantity,
		Basis:         basis,
	}, nil
}

// RequiredFor scales the component to an order quantity.
// per_unit: quantity * orderQty; percent: orderQty * quantity / 100.
func (c *BOMComponent) RequiredFor(orderQty decimal.Decimal) decimal.Decimal {
	if c.Basis == BOMBasisPercent {
		return orderQty.Mul(c.Quantity).Div(decimal.NewFromInt(100)).Round(4)
	}
	return c.Quantity.Mul(orderQty).Round(4)
}

package inventory

import (
	"context"

	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/shared"
)

// BOMService manages bill-of-materials definitions. A product's BOM is
// replaced as a whole; existing orders are unaffected because their
// requirement lines were frozen at creation time.
type BOMService struct {
	txScope TransactionScope
}

// NewBOMService creates a new BOMService
func NewBOMService(txScope TransactionScope) *BOMService {
	return &BOMService{txScope: txScope}
}

// Replace swaps a product's BOM lines atomically. Every component must
// exist in its pool before it can appear in a recipe.
func (s *BOMService) Replace(ctx context.Context, req ReplaceBOMRequest) ([]BOMComponentResponse, error) {
	productType := inventory.ItemType(req.ProductType)

	components := make([]inventory.BOMComponent, 0, len(req.Components))
	for _, line := range req.Components {
		component, err := inventory.NewBOMComponent(
			productType,
			req.ProductCode,
			inventory.ItemType(line.ComponentType),
			line.ComponentCode,
			line.Quantity,
			inventory.BOMBasis(line.Basis),
		)
		if err != nil {
			return nil, err
		}
		components = append(components, *component)
	}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ItemRepo().FindByCode(ctx, productType, req.ProductCode); err != nil {
			return err
		}
		keys := make([]inventory.ItemKey, 0, len(components))
		for i := range components {
			keys = append(keys, inventory.ItemKey{Type: components[i].ComponentType, Code: components[i].ComponentCode})
		}
		loaded, err := repos.ItemRepo().FindByKeys(ctx, keys)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if _, ok := loaded[key]; !ok {
				return shared.NewDomainError("NOT_FOUND", "BOM component "+key.String()+" is not registered")
			}
		}

		return repos.BOMRepo().ReplaceForProduct(ctx, productType, req.ProductCode, components)
	})
	if err != nil {
		return nil, err
	}

	responses := make([]BOMComponentResponse, 0, len(components))
	for i := range components {
		responses = append(responses, *ToBOMComponentResponse(&components[i]))
	}
	return responses, nil
}

// ComponentsFor lists a product's BOM lines
func (s *BOMService) ComponentsFor(ctx context.Context, productType inventory.ItemType, productCode string) ([]BOMComponentResponse, error) {
	var components []inventory.BOMComponent
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		components, err = repos.BOMRepo().ComponentsFor(ctx, productType, productCode)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]BOMComponentResponse, 0, len(components))
	for i := range components {
		responses = append(responses, *ToBOMComponentResponse(&components[i]))
	}
	return responses, nil
}

// DeleteFor removes a product's BOM definition
func (s *BOMService) DeleteFor(ctx context.Context, productType inventory.ItemType, productCode string) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.BOMRepo().DeleteForProduct(ctx, productType, productCode)
	})
}

package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ItemService handles inventory item master data operations
type ItemService struct {
	itemRepo       inventory.ItemRepository
	movementRepo   inventory.MovementRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo inventory.ItemRepository, movementRepo inventory.MovementRepository, logger *zap.Logger) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ItemService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ItemService) publishDomainEvents(ctx context.Context, item *inventory.InventoryItem) {
	if s.eventPublisher == nil {
		return
	}
	events := item.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events", zap.Error(err))
	}
	item.ClearDomainEvents()
}

// Create registers a new item in one of the four pools
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	itemType := inventory.ItemType(req.ItemType)

	existing, err := s.itemRepo.FindByCode(ctx, itemType, req.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Item "+req.Code+" already exists in pool "+req.ItemType)
	}

	item, err := inventory.NewInventoryItem(itemType, req.Code, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	if !req.MinStock.IsZero() {
		if err := item.SetMinStock(req.MinStock); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	return ToItemResponse(item), nil
}

// Update changes an item's master data. Quantities are never updated here;
// they move only through receipts, issues and order transitions.
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
		}
		item.Name = *req.Name
	}
	if req.Unit != nil {
		if *req.Unit == "" {
			return nil, shared.NewDomainError("INVALID_UNIT", "Item unit cannot be empty")
		}
		item.Unit = *req.Unit
	}
	if req.MinStock != nil {
		if err := item.SetMinStock(*req.MinStock); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	return ToItemResponse(item), nil
}

// Delete removes an item that has no ledger history. Items with movements
// are part of the audit trail and cannot be deleted.
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.movementRepo.CountByItem(ctx, item.ID, shared.DefaultFilter())
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("NOT_DELETABLE", "Item "+item.Code+" has ledger history and cannot be deleted")
	}

	return s.itemRepo.Delete(ctx, id)
}

// GetByID retrieves an item by its ID
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

// GetByCode retrieves an item by pool and business code
func (s *ItemService) GetByCode(ctx context.Context, itemType inventory.ItemType, code string) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByCode(ctx, itemType, code)
	if err != nil {
		return nil, err
	}
	return ToItemResponse(item), nil
}

// List retrieves items with pagination, optionally scoped to one pool
func (s *ItemService) List(ctx context.Context, filter ItemListFilter) ([]ItemResponse, int64, error) {
	domainFilter := toDomainFilter(filter)

	var (
		items []inventory.InventoryItem
		err   error
	)
	if filter.BelowMinimum {
		items, err = s.itemRepo.FindBelowMinimum(ctx, domainFilter)
	} else {
		items, err = s.itemRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.itemRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *ToItemResponse(&items[i]))
	}
	return responses, total, nil
}

// ListMostUsed ranks a pool's items by consumption frequency
func (s *ItemService) ListMostUsed(ctx context.Context, itemType inventory.ItemType, limit int) ([]ItemResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	items, err := s.itemRepo.FindMostUsed(ctx, itemType, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *ToItemResponse(&items[i]))
	}
	return responses, nil
}

func toDomainFilter(filter ItemListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.ItemType != "" {
		domainFilter.Filters["item_type"] = filter.ItemType
	}
	return domainFilter
}

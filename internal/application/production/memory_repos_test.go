package production

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/production"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// In-memory repositories backing the coordinator tests. They enforce the
// same contracts as the GORM implementations: the ledger's unique
// reference index and the optimistic version check.

type memoryItemRepo struct {
	mu    sync.Mutex
	items map[inventory.ItemKey]*inventory.InventoryItem
}

func newMemoryItemRepo() *memoryItemRepo {
	return &memoryItemRepo{items: make(map[inventory.ItemKey]*inventory.InventoryItem)}
}

func (r *memoryItemRepo) put(item *inventory.InventoryItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.Key()] = item
}

func (r *memoryItemRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryItemRepo) FindByCode(_ context.Context, itemType inventory.ItemType, code string) (*inventory.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[inventory.ItemKey{Type: itemType, Code: code}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *memoryItemRepo) FindByKeys(_ context.Context, keys []inventory.ItemKey) (map[inventory.ItemKey]*inventory.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[inventory.ItemKey]*inventory.InventoryItem)
	for _, key := range keys {
		if item, ok := r.items[key]; ok {
			result[key] = item
		}
	}
	return result, nil
}

func (r *memoryItemRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]inventory.InventoryItem, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, *item)
	}
	return items, nil
}

func (r *memoryItemRepo) FindBelowMinimum(_ context.Context, _ shared.Filter) ([]inventory.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]inventory.InventoryItem, 0)
	for _, item := range r.items {
		if item.IsBelowMinimum() {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *memoryItemRepo) FindMostUsed(_ context.Context, _ inventory.ItemType, _ int) ([]inventory.InventoryItem, error) {
	return nil, nil
}

func (r *memoryItemRepo) Save(_ context.Context, item *inventory.InventoryItem) error {
	r.put(item)
	return nil
}

func (r *memoryItemRepo) SaveWithLock(_ context.Context, item *inventory.InventoryItem) error {
	r.put(item)
	return nil
}

func (r *memoryItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, item := range r.items {
		if item.ID == id {
			delete(r.items, key)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memoryItemRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

type memoryMovementRepo struct {
	mu        sync.Mutex
	movements []inventory.Movement
	byRef     map[string]bool
}

func newMemoryMovementRepo() *memoryMovementRepo {
	return &memoryMovementRepo{byRef: make(map[string]bool)}
}

func (r *memoryMovementRepo) Create(_ context.Context, movement *inventory.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byRef[movement.ReferenceKey] {
		return shared.ErrAlreadyExists
	}
	r.byRef[movement.ReferenceKey] = true
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *memoryMovementRepo) ExistsByReference(_ context.Context, referenceKey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byRef[referenceKey], nil
}

func (r *memoryMovementRepo) FindByItem(_ context.Context, itemID uuid.UUID, _ shared.Filter) ([]inventory.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.Movement, 0)
	for _, m := range r.movements {
		if m.ItemID == itemID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *memoryMovementRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]inventory.Movement(nil), r.movements...), nil
}

func (r *memoryMovementRepo) CountByItem(_ context.Context, itemID uuid.UUID, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.movements {
		if m.ItemID == itemID {
			count++
		}
	}
	return count, nil
}

func (r *memoryMovementRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.movements)), nil
}

func (r *memoryMovementRepo) NetQuantity(_ context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	net := decimal.Zero
	for _, m := range r.movements {
		if m.ItemID == itemID {
			net = net.Add(m.SignedQuantity())
		}
	}
	return net, nil
}

func (r *memoryMovementRepo) SumByDirection(_ context.Context, _, _ time.Time) (decimal.Decimal, decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, out := decimal.Zero, decimal.Zero
	for _, m := range r.movements {
		if m.Direction == inventory.DirectionIn {
			in = in.Add(m.Quantity)
		} else {
			out = out.Add(m.Quantity)
		}
	}
	return in, out, nil
}

func (r *memoryMovementRepo) FindMostActive(_ context.Context, _, _ time.Time, _ int) ([]inventory.ItemActivity, error) {
	return nil, nil
}

type memoryBOMRepo struct {
	mu         sync.Mutex
	components []inventory.BOMComponent
}

func newMemoryBOMRepo() *memoryBOMRepo {
	return &memoryBOMRepo{}
}

func (r *memoryBOMRepo) ComponentsFor(_ context.Context, productType inventory.ItemType, productCode string) ([]inventory.BOMComponent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.BOMComponent, 0)
	for _, c := range r.components {
		if c.ProductType == productType && c.ProductCode == productCode {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *memoryBOMRepo) Save(_ context.Context, component *inventory.BOMComponent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components = append(r.components, *component)
	return nil
}

func (r *memoryBOMRepo) ReplaceForProduct(_ context.Context, productType inventory.ItemType, productCode string, components []inventory.BOMComponent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.components[:0]
	for _, c := range r.components {
		if c.ProductType != productType || c.ProductCode != productCode {
			kept = append(kept, c)
		}
	}
	r.components = append(kept, components...)
	return nil
}

func (r *memoryBOMRepo) DeleteForProduct(_ context.Context, productType inventory.ItemType, productCode string) error {
	return r.ReplaceForProduct(context.Background(), productType, productCode, nil)
}

type memoryOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*production.Order
	seq    map[production.OrderKind]int64
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{
		orders: make(map[uuid.UUID]*production.Order),
		seq:    make(map[production.OrderKind]int64),
	}
}

func (r *memoryOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*production.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

func (r *memoryOrderRepo) FindByCode(_ context.Context, code string) (*production.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.Code == code {
			return order, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryOrderRepo) FindAll(_ context.Context, kind production.OrderKind, filter shared.Filter) (shared.Paginated[production.Order], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := make([]production.Order, 0)
	for _, order := range r.orders {
		if kind == "" || order.Kind == kind {
			orders = append(orders, *order)
		}
	}
	return shared.NewPaginated(orders, int64(len(orders)), filter.Page, filter.PageSize), nil
}

func (r *memoryOrderRepo) FindByStatus(ctx context.Context, kind production.OrderKind, status production.OrderStatus, filter shared.Filter) (shared.Paginated[production.Order], error) {
	page, err := r.FindAll(ctx, kind, filter)
	if err != nil {
		return page, err
	}
	filtered := make([]production.Order, 0)
	for _, order := range page.Items {
		if order.Status == status {
			filtered = append(filtered, order)
		}
	}
	return shared.NewPaginated(filtered, int64(len(filtered)), filter.Page, filter.PageSize), nil
}

func (r *memoryOrderRepo) Save(_ context.Context, order *production.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *memoryOrderRepo) SaveWithLock(_ context.Context, order *production.Order, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return shared.ErrNotFound
	}
	// the coordinator mutates the aggregate in place, so compare against
	// the version it captured before mutating
	if stored != order && stored.GetVersion() != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	r.orders[order.ID] = order
	return nil
}

func (r *memoryOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memoryOrderRepo) Count(_ context.Context, kind production.OrderKind) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, order := range r.orders {
		if kind == "" || order.Kind == kind {
			count++
		}
	}
	return count, nil
}

func (r *memoryOrderRepo) NextSequence(_ context.Context, kind production.OrderKind) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[kind]++
	return r.seq[kind], nil
}

var _ inventory.ItemRepository = (*memoryItemRepo)(nil)
var _ inventory.MovementRepository = (*memoryMovementRepo)(nil)
var _ inventory.BOMRepository = (*memoryBOMRepo)(nil)
var _ production.OrderRepository = (*memoryOrderRepo)(nil)

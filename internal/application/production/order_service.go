package production

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/production"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OrderService coordinates the manufacturing order lifecycle. Transitions
// into and out of completed carry inventory effects; the service applies
// them atomically with the status flip inside one transaction scope.
type OrderService struct {
	txScope          TransactionScope
	eventPublisher   shared.EventPublisher
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	logger           *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(txScope TransactionScope, logger *zap.Logger) *OrderService {
	return &OrderService{
		txScope:        txScope,
		idempotencyCfg: shared.IdempotencyConfig{},
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore sets an optional fast-path duplicate guard in front
// of the ledger's unique reference index
func (s *OrderService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotencyStore = store
	s.idempotencyCfg = cfg
}

func (s *OrderService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events", zap.Error(err))
	}
}

// Create builds an order in pending status. The product's BOM is scaled to
// the order quantity and frozen into requirement lines; later BOM edits
// never affect this order. No inventory is touched.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	kind := production.OrderKind(req.Kind)
	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	var order *production.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		outputType := kind.OutputType()

		if _, err := repos.ItemRepo().FindByCode(ctx, outputType, req.ProductCode); err != nil {
			return err
		}

		components, err := repos.BOMRepo().ComponentsFor(ctx, outputType, req.ProductCode)
		if err != nil {
			return err
		}
		if len(components) == 0 {
			return shared.NewDomainError("INSUFFICIENT_SPEC",
				"Product "+req.ProductCode+" has no bill of materials")
		}

		seq, err := repos.OrderRepo().NextSequence(ctx, kind)
		if err != nil {
			return err
		}

		order, err = production.NewOrder(kind, production.FormatOrderCode(kind, seq),
			req.ProductCode, req.Unit, req.Quantity, orderDate)
		if err != nil {
			return err
		}

		for i := range components {
			required := components[i].RequiredFor(order.Quantity)
			if err := order.AddLine(components[i].ComponentType, components[i].ComponentCode, required); err != nil {
				return err
			}
		}
		if err := order.ValidateLines(); err != nil {
			return err
		}

		// estimate with current input costs; the authoritative cost is
		// computed again at completion time
		items, err := repos.ItemRepo().FindByKeys(ctx, requirementKeys(order.Requirements()))
		if err != nil {
			return err
		}
		estimate := inventory.BatchCost(inventory.CostLinesFrom(order.Requirements(), items))
		if err := order.SetProvisionalCost(estimate); err != nil {
			return err
		}

		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	s.publishEvents(ctx, events)

	s.logger.Info("manufacturing order created",
		zap.String("kind", order.Kind.String()),
		zap.String("code", order.Code),
		zap.String("product_code", order.ProductCode),
		zap.String("quantity", order.Quantity.String()))

	return ToOrderResponse(order), nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	var order *production.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(order), nil
}

// GetByCode retrieves an order by its unique code
func (s *OrderService) GetByCode(ctx context.Context, code string) (*OrderResponse, error) {
	var order *production.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByCode(ctx, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(order), nil
}

// List retrieves orders with pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) (shared.Paginated[OrderResponse], error) {
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

	kind := production.OrderKind(filter.Kind)

	var page shared.Paginated[production.Order]
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if filter.Status != "" {
			status, perr := production.ParseOrderStatus(filter.Status)
			if perr != nil {
				return perr
			}
			page, err = repos.OrderRepo().FindByStatus(ctx, kind, status, domainFilter)
			return err
		}
		page, err = repos.OrderRepo().FindAll(ctx, kind, domainFilter)
		return err
	})
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}

	responses := make([]OrderResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, *ToOrderResponse(&page.Items[i]))
	}
	return shared.NewPaginated(responses, page.Total, page.Page, page.PageSize), nil
}

// Delete removes an order. Only pending orders qualify; anything further
// along is part of the audit trail.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !order.CanDelete() {
			return shared.NewDomainError("NOT_DELETABLE",
				"Order "+order.Code+" is "+order.Status.String()+"; only pending orders can be deleted")
		}
		return repos.OrderRepo().Delete(ctx, id)
	})
}

// Transition moves an order to the target status. Entering completed
// consumes every requirement line, produces the output and propagates
// cost; leaving completed appends the compensating reversal. All other
// transitions only flip the status.
func (s *OrderService) Transition(ctx context.Context, id uuid.UUID, req TransitionRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "transition")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, id.String(),
		telemetry.SpanAttrOrderStatus, req.Status,
	)

	target, err := production.ParseOrderStatus(req.Status)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		order  *production.Order
		events []shared.DomainEvent
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		switch {
		case target == production.OrderStatusCompleted:
			err = s.complete(ctx, repos, order)
		case order.Status == production.OrderStatusCompleted:
			err = s.revertCompletion(ctx, repos, order, target)
		default:
			expected := order.GetVersion()
			if err := order.ChangeStatus(target); err != nil {
				return err
			}
			err = repos.OrderRepo().SaveWithLock(ctx, order, expected)
		}
		if err != nil {
			return err
		}

		events = order.GetDomainEvents()
		order.ClearDomainEvents()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "order_transitioned",
		telemetry.SpanAttrOrderCode, order.Code,
		telemetry.SpanAttrOrderKind, order.Kind.String(),
	)

	s.publishEvents(ctx, events)

	return ToOrderResponse(order), nil
}

// complete applies a completion: availability gate over the full frozen
// requirement set, all-or-nothing consumption, output production with the
// propagated batch cost, one ledger record per touched pool.
func (s *OrderService) complete(ctx context.Context, repos TransactionalRepositories, order *production.Order) error {
	if !order.Status.CanTransitionTo(production.OrderStatusCompleted) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot complete order %s in %s status", order.Code, order.Status))
	}
	if err := order.ValidateLines(); err != nil {
		return err
	}

	cycle := order.CompletionCycle + 1
	outputRef := inventory.TransitionReference(order.Code, cycle, inventory.DirectionIn, 0)
	if err := s.guardDuplicate(ctx, repos, outputRef); err != nil {
		return err
	}

	requirements := order.Requirements()
	items, err := repos.ItemRepo().FindByKeys(ctx, requirementKeys(requirements))
	if err != nil {
		return err
	}

	if shortages := inventory.CheckAvailability(requirements, items); len(shortages) > 0 {
		return inventory.NewInsufficientStockError(shortages)
	}

	batchCost := inventory.BatchCost(inventory.CostLinesFrom(requirements, items))
	unitCost, err := inventory.UnitCostFor(batchCost, order.Quantity)
	if err != nil {
		return err
	}

	reason := "completion of order " + order.Code
	for i, req := range requirements {
		item := items[req.Key()]
		if err := item.Consume(req.Quantity, reason); err != nil {
			return err
		}
		if item.ItemType == inventory.ItemTypeRaw {
			item.RecordUsage()
		}
		if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}

		movement, err := inventory.NewMovement(item, inventory.DirectionOut, req.Quantity, reason,
			inventory.TransitionReference(order.Code, cycle, inventory.DirectionOut, i))
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return duplicateAsConflict(err)
		}
	}

	output, err := repos.ItemRepo().FindByCode(ctx, order.OutputType(), order.ProductCode)
	if err != nil {
		return err
	}
	if err := output.Produce(order.Quantity, unitCost, reason); err != nil {
		return err
	}
	if err := repos.ItemRepo().SaveWithLock(ctx, output); err != nil {
		return err
	}
	outMovement, err := inventory.NewMovement(output, inventory.DirectionIn, order.Quantity, reason, outputRef)
	if err != nil {
		return err
	}
	if err := repos.MovementRepo().Create(ctx, outMovement); err != nil {
		return duplicateAsConflict(err)
	}

	expected := order.GetVersion()
	if err := order.Complete(batchCost); err != nil {
		return err
	}
	if err := repos.OrderRepo().SaveWithLock(ctx, order, expected); err != nil {
		return err
	}

	for _, item := range items {
		for _, e := range item.GetDomainEvents() {
			order.AddDomainEvent(e)
		}
		item.ClearDomainEvents()
	}
	for _, e := range output.GetDomainEvents() {
		order.AddDomainEvent(e)
	}
	output.ClearDomainEvents()

	s.logger.Info("order completed",
		zap.String("code", order.Code),
		zap.String("batch_cost", batchCost.String()),
		zap.String("unit_cost", unitCost.String()))

	return nil
}

// revertCompletion appends the compensating movements: every consumed line
// is credited back, the produced output is debited. If the output was
// already consumed downstream the debit fails and the whole reversal rolls
// back, leaving the order completed.
func (s *OrderService) revertCompletion(ctx context.Context, repos TransactionalRepositories, order *production.Order, target production.OrderStatus) error {
	cycle := order.CompletionCycle
	outputRef := inventory.ReversalReference(order.Code, cycle, inventory.DirectionOut, 0)
	if err := s.guardDuplicate(ctx, repos, outputRef); err != nil {
		return err
	}

	reason := "reversal of order " + order.Code

	output, err := repos.ItemRepo().FindByCode(ctx, order.OutputType(), order.ProductCode)
	if err != nil {
		return err
	}
	if err := output.Consume(order.Quantity, reason); err != nil {
		if derr := new(shared.DomainError); errors.As(err, &derr) && derr.Code == "INSUFFICIENT_STOCK" {
			return shared.NewDomainError("INVALID_TRANSITION",
				fmt.Sprintf("Cannot revert order %s: produced output was already consumed (%s)", order.Code, derr.Message))
		}
		return err
	}
	if err := repos.ItemRepo().SaveWithLock(ctx, output); err != nil {
		return err
	}
	outMovement, err := inventory.NewMovement(output, inventory.DirectionOut, order.Quantity, reason, outputRef)
	if err != nil {
		return err
	}
	if err := repos.MovementRepo().Create(ctx, outMovement); err != nil {
		return duplicateAsConflict(err)
	}

	requirements := order.Requirements()
	items, err := repos.ItemRepo().FindByKeys(ctx, requirementKeys(requirements))
	if err != nil {
		return err
	}
	for i, req := range requirements {
		item, ok := items[req.Key()]
		if !ok {
			return shared.NewDomainError("NOT_FOUND",
				"Input item "+req.Key().String()+" no longer exists; cannot credit it back")
		}
		// credit back at the item's current cost; reversal does not
		// rewind cost history
		if err := item.Produce(req.Quantity, item.UnitCost, reason); err != nil {
			return err
		}
		if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}
		movement, err := inventory.NewMovement(item, inventory.DirectionIn, req.Quantity, reason,
			inventory.ReversalReference(order.Code, cycle, inventory.DirectionIn, i))
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return duplicateAsConflict(err)
		}
	}

	expected := order.GetVersion()
	if err := order.RevertCompletion(target); err != nil {
		return err
	}
	if err := repos.OrderRepo().SaveWithLock(ctx, order, expected); err != nil {
		return err
	}

	for _, item := range items {
		for _, e := range item.GetDomainEvents() {
			order.AddDomainEvent(e)
		}
		item.ClearDomainEvents()
	}
	for _, e := range output.GetDomainEvents() {
		order.AddDomainEvent(e)
	}
	output.ClearDomainEvents()

	s.logger.Warn("order completion reversed",
		zap.String("code", order.Code),
		zap.String("target_status", target.String()))

	return nil
}

// guardDuplicate rejects a transition whose movements were already
// appended. The ledger probe is authoritative; the idempotency store is a
// cheaper first check when configured.
func (s *OrderService) guardDuplicate(ctx context.Context, repos TransactionalRepositories, referenceKey string) error {
	if s.idempotencyStore != nil && s.idempotencyCfg.Enabled {
		processed, err := s.idempotencyStore.IsProcessed(ctx, referenceKey)
		if err != nil {
			s.logger.Warn("idempotency store probe failed, falling back to ledger",
				zap.String("reference", referenceKey), zap.Error(err))
		} else if processed {
			return duplicateTransitionError(referenceKey)
		}
	}

	applied, err := repos.MovementRepo().ExistsByReference(ctx, referenceKey)
	if err != nil {
		return err
	}
	if applied {
		return duplicateTransitionError(referenceKey)
	}

	if s.idempotencyStore != nil && s.idempotencyCfg.Enabled {
		if _, err := s.idempotencyStore.MarkProcessed(ctx, referenceKey, s.idempotencyCfg.TTL); err != nil {
			s.logger.Warn("failed to mark transition in idempotency store",
				zap.String("reference", referenceKey), zap.Error(err))
		}
	}
	return nil
}

func duplicateTransitionError(referenceKey string) error {
	return shared.NewDomainError("DUPLICATE_TRANSITION",
		"Transition already applied (reference "+referenceKey+")")
}

// duplicateAsConflict maps a unique index rejection into a duplicate
// transition error: a concurrent attempt won the race
func duplicateAsConflict(err error) error {
	if errors.Is(err, shared.ErrAlreadyExists) {
		return shared.NewDomainError("DUPLICATE_TRANSITION",
			"Transition movements were already recorded by a concurrent attempt")
	}
	return err
}

func requirementKeys(requirements []inventory.Requirement) []inventory.ItemKey {
	keys := make([]inventory.ItemKey, 0, len(requirements))
	for _, req := range requirements {
		keys = append(keys, req.Key())
	}
	return keys
}

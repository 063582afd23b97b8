package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockService handles direct stock receipts, issues and adjustments.
// Every quantity change appends a ledger record inside the same database
// transaction that updates the pool row.
type StockService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(txScope TransactionScope, logger *zap.Logger) *StockService {
	return &StockService{txScope: txScope, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *StockService) publishDomainEvents(ctx context.Context, item *inventory.InventoryItem) {
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

// referenceOrNew returns the client-supplied reference key, or a fresh
// unique one when the client did not ask for idempotent replay protection
func referenceOrNew(prefix, reference string) string {
	if reference != "" {
		return reference
	}
	return fmt.Sprintf("%s:%s", prefix, uuid.NewString())
}

// Receive credits a pool from an external source (purchase receipt,
// opening balance). A client-supplied reference makes the call idempotent:
// a replay with the same reference returns the current state unchanged.
func (s *StockService) Receive(ctx context.Context, req ReceiveStockRequest) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "receive")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemType, req.ItemType,
		telemetry.SpanAttrItemCode, req.Code,
		telemetry.SpanAttrQuantity, req.Quantity.String(),
	)

	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Receipt quantity must be positive")
	}
	if req.UnitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	itemType := inventory.ItemType(req.ItemType)
	referenceKey := referenceOrNew("receipt", req.Reference)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDirection, inventory.DirectionIn.String(),
		telemetry.SpanAttrReferenceKey, referenceKey,
	)

	var item *inventory.InventoryItem
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		applied, err := repos.MovementRepo().ExistsByReference(ctx, referenceKey)
		if err != nil {
			return err
		}

		found, err := repos.ItemRepo().FindByCode(ctx, itemType, req.Code)
		if err != nil {
			return err
		}
		item = found

		if applied {
			return nil
		}

		if err := item.Produce(req.Quantity, req.UnitCost, req.Reason); err != nil {
			return err
		}
		if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}

		movement, err := inventory.NewMovement(item, inventory.DirectionIn, req.Quantity, req.Reason, referenceKey)
		if err != nil {
			return err
		}
		return repos.MovementRepo().Create(ctx, movement)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, item)

	return ToItemResponse(item), nil
}

// Issue debits a pool for an external sink (sale, waste, sample). The
// quantity invariant is enforced: an issue that would drive the pool
// negative fails without any side effect.
func (s *StockService) Issue(ctx context.Context, req IssueStockRequest) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "issue")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemType, req.ItemType,
		telemetry.SpanAttrItemCode, req.Code,
		telemetry.SpanAttrQuantity, req.Quantity.String(),
	)

	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Issue quantity must be positive")
	}

	itemType := inventory.ItemType(req.ItemType)
	referenceKey := referenceOrNew("issue", req.Reference)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDirection, inventory.DirectionOut.String(),
		telemetry.SpanAttrReferenceKey, referenceKey,
	)

	var item *inventory.InventoryItem
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		applied, err := repos.MovementRepo().ExistsByReference(ctx, referenceKey)
		if err != nil {
			return err
		}

		found, err := repos.ItemRepo().FindByCode(ctx, itemType, req.Code)
		if err != nil {
			return err
		}
		item = found

		if applied {
			return nil
		}

		if err := item.Consume(req.Quantity, req.Reason); err != nil {
			return err
		}
		if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}

		movement, err := inventory.NewMovement(item, inventory.DirectionOut, req.Quantity, req.Reason, referenceKey)
		if err != nil {
			return err
		}
		return repos.MovementRepo().Create(ctx, movement)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, item)

	return ToItemResponse(item), nil
}

// Adjust sets a pool's quantity to a counted value and appends a correction
// movement for the difference. A zero difference appends nothing.
func (s *StockService) Adjust(ctx context.Context, req AdjustStockRequest) (*ItemResponse, error) {
	itemType := inventory.ItemType(req.ItemType)

	var item *inventory.InventoryItem
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.ItemRepo().FindByCode(ctx, itemType, req.Code)
		if err != nil {
			return err
		}
		item = found

		difference, err := item.AdjustTo(req.Actual, req.Reason)
		if err != nil {
			return err
		}
		if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}
		if difference.IsZero() {
			return nil
		}

		direction := inventory.DirectionIn
		if difference.IsNegative() {
			direction = inventory.DirectionOut
		}
		movement, err := inventory.NewMovement(item, direction, difference.Abs(), req.Reason,
			fmt.Sprintf("adjust:%s", uuid.NewString()))
		if err != nil {
			return err
		}
		return repos.MovementRepo().Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, item)

	return ToItemResponse(item), nil
}

// ListMovements lists ledger records, optionally scoped to one item
func (s *StockService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.ItemType != "" {
		domainFilter.Filters["item_type"] = filter.ItemType
	}
	if filter.ItemCode != "" {
		domainFilter.Filters["item_code"] = filter.ItemCode
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		domainFilter.Filters["to"] = *filter.To
	}

	var movements []inventory.Movement
	var total int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		movements, err = repos.MovementRepo().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.MovementRepo().Count(ctx, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, *ToMovementResponse(&movements[i]))
	}
	return responses, total, nil
}

// IsDuplicateReference reports whether an error is the ledger's unique
// index rejecting a replayed reference key
func IsDuplicateReference(err error) bool {
	return errors.Is(err, shared.ErrAlreadyExists)
}

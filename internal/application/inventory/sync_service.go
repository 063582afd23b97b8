package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SyncService reconciles the pool rows against the movement ledger. The
// ledger is the audit source of truth; when a pool row drifts (manual DB
// edits, interrupted writes from before transactional coupling), the job
// realigns the row to the ledger's net quantity and appends a correction
// movement documenting the drift.
//
// Corrections are keyed per item and calendar day, so rerunning the job
// the same day is a no-op for already-corrected items.
type SyncService struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(txScope TransactionScope, logger *zap.Logger) *SyncService {
	return &SyncService{
		txScope: txScope,
		logger:  logger,
	}
}

// ReconcileAll reconciles every item in every pool
func (s *SyncService) ReconcileAll(ctx context.Context) ([]ReconciliationResult, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 1000

	var items []inventory.InventoryItem
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		items, err = repos.ItemRepo().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	results := make([]ReconciliationResult, 0, len(items))
	for i := range items {
		result, err := s.ReconcileItem(ctx, items[i].ItemType, items[i].Code)
		if err != nil {
			s.logger.Error("reconciliation failed for item",
				zap.String("item_type", items[i].ItemType.String()),
				zap.String("item_code", items[i].Code),
				zap.Error(err))
			continue
		}
		results = append(results, *result)
	}
	return results, nil
}

// ReconcileItem realigns one pool row to the ledger's net quantity
func (s *SyncService) ReconcileItem(ctx context.Context, itemType inventory.ItemType, code string) (*ReconciliationResult, error) {
	var result *ReconciliationResult

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.ItemRepo().FindByCode(ctx, itemType, code)
		if err != nil {
			return err
		}

		ledgerNet, err := repos.MovementRepo().NetQuantity(ctx, item.ID)
		if err != nil {
			return err
		}

		result = &ReconciliationResult{
			ItemType:   item.ItemType.String(),
			ItemCode:   item.Code,
			LedgerNet:  ledgerNet,
			PoolOnHand: item.Quantity,
		}

		difference := ledgerNet.Sub(item.Quantity)
		if difference.IsZero() {
			return nil
		}

		referenceKey := inventory.SyncReference(item.ItemType, item.Code, time.Now())
		applied, err := repos.MovementRepo().ExistsByReference(ctx, referenceKey)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}

		if _, err := item.AdjustTo(ledgerNet, "ledger reconciliation"); err != nil {
			return err
		}
		if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}

		direction := inventory.DirectionIn
		if difference.IsNegative() {
			direction = inventory.DirectionOut
		}
		movement, err := inventory.NewMovement(item, direction, difference.Abs(), "ledger reconciliation", referenceKey)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			// lost a race against a concurrent run of the same day's job
			if errors.Is(err, shared.ErrAlreadyExists) {
				return nil
			}
			return err
		}

		result.Corrected = true
		result.Difference = difference

		s.logger.Warn("pool row drifted from ledger, corrected",
			zap.String("item_type", item.ItemType.String()),
			zap.String("item_code", item.Code),
			zap.String("ledger_net", ledgerNet.String()),
			zap.String("difference", difference.String()))

		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

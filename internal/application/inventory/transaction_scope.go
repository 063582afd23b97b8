package inventory

import (
	"context"

	"github.com/mfgops/backend/internal/domain/inventory"
)

// TransactionScope runs a function with a set of repositories bound to one
// database transaction. Everything done through those repositories commits
// or rolls back as a unit, which is what keeps the movement ledger and the
// item balances consistent.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the inventory repositories inside a
// running transaction. Items and BOMs are aggregate roots with their own
// repositories; movements are append-only ledger rows written alongside
// the item balance they affect.
type TransactionalRepositories interface {
	ItemRepo() inventory.ItemRepository
	MovementRepo() inventory.MovementRepository
	BOMRepo() inventory.BOMRepository
}

// NoOpTransactionScope satisfies TransactionScope without a database. Test
// fixtures hand it in-memory repositories; Execute calls the function
// directly with no transactional guarantees.
type NoOpTransactionScope struct {
	itemRepo     inventory.ItemRepository
	movementRepo inventory.MovementRepository
	bomRepo      inventory.BOMRepository
}

func NewNoOpTransactionScope(
	itemRepo inventory.ItemRepository,
	movementRepo inventory.MovementRepository,
	bomRepo inventory.BOMRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		bomRepo:      bomRepo,
	}
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ItemRepo() inventory.ItemRepository { return s.itemRepo }

func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository { return s.movementRepo }

func (s *NoOpTransactionScope) BOMRepo() inventory.BOMRepository { return s.bomRepo }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)

package production

import (
	"context"

	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/production"
)

// TransactionScope provides transactional access to the repositories a
// lifecycle transition touches. A completion debits every input pool,
// credits the output pool, appends the ledger records and flips the order
// status; all of it commits or rolls back as one unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// ItemRepo returns the item repository scoped to the current transaction
	ItemRepo() inventory.ItemRepository
	// MovementRepo returns the ledger repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
	// BOMRepo returns the BOM repository scoped to the current transaction
	BOMRepo() inventory.BOMRepository
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() production.OrderRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests.
type NoOpTransactionScope struct {
	itemRepo     inventory.ItemRepository
	movementRepo inventory.MovementRepository
	bomRepo      inventory.BOMRepository
	orderRepo    production.OrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	itemRepo inventory.ItemRepository,
	movementRepo inventory.MovementRepository,
	bomRepo inventory.BOMRepository,
	orderRepo production.OrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		bomRepo:      bomRepo,
		orderRepo:    orderRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ItemRepo returns the item repository
func (s *NoOpTransactionScope) ItemRepo() inventory.ItemRepository {
	return s.itemRepo
}

// MovementRepo returns the ledger repository
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository {
	return s.movementRepo
}

// BOMRepo returns the BOM repository
func (s *NoOpTransactionScope) BOMRepo() inventory.BOMRepository {
	return s.bomRepo
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() production.OrderRepository {
	return s.orderRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

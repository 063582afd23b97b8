package persistence

import (
	"context"

	appinventory "github.com/mfgops/backend/internal/application/inventory"
	appproduction "github.com/mfgops/backend/internal/application/production"
	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/production"
	"gorm.io/gorm"
)

// GormTransactionScope implements the application-layer transaction scopes
// on a single GORM connection. Every repository handed to the callback is
// bound to the same transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction for inventory operations
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepos{tx: tx})
	})
}

// Production returns the same scope exposed through the production
// coordinator's interface
func (s *GormTransactionScope) Production() appproduction.TransactionScope {
	return &gormProductionScope{db: s.db}
}

type gormProductionScope struct {
	db *gorm.DB
}

func (s *gormProductionScope) Execute(ctx context.Context, fn func(repos appproduction.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepos{tx: tx})
	})
}

// gormTransactionalRepos binds every repository to one transaction
type gormTransactionalRepos struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepos) ItemRepo() inventory.ItemRepository {
	return NewGormItemRepository(r.tx)
}

func (r *gormTransactionalRepos) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormTransactionalRepos) BOMRepo() inventory.BOMRepository {
	return NewGormBOMRepository(r.tx)
}

func (r *gormTransactionalRepos) OrderRepo() production.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

var _ appinventory.TransactionScope = (*GormTransactionScope)(nil)
var _ appproduction.TransactionScope = (*gormProductionScope)(nil)
var _ appinventory.TransactionalRepositories = (*gormTransactionalRepos)(nil)
var _ appproduction.TransactionalRepositories = (*gormTransactionalRepos)(nil)

package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
)

// OrderRepository defines the persistence interface for manufacturing orders
type OrderRepository interface {
	// FindByID retrieves an order with its lines by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByCode retrieves an order with its lines by its unique code
	FindByCode(ctx context.Context, code string) (*Order, error)

	// FindAll retrieves orders of a kind with pagination. An empty kind
	// matches both kinds.
	FindAll(ctx context.Context, kind OrderKind, filter shared.Filter) (shared.Paginated[Order], error)

	// FindByStatus retrieves orders of a kind in a given status
	FindByStatus(ctx context.Context, kind OrderKind, status OrderStatus, filter shared.Filter) (shared.Paginated[Order], error)

	// Save persists an order and its lines
	Save(ctx context.Context, order *Order) error

	// SaveWithLock persists an order only if the stored version matches
	// expectedVersion, returning shared.ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, order *Order, expectedVersion int) error

	// Delete removes an order and its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of orders of a kind
	Count(ctx context.Context, kind OrderKind) (int64, error)

	// NextSequence returns the next value of the per-kind code sequence
	NextSequence(ctx context.Context, kind OrderKind) (int64, error)
}

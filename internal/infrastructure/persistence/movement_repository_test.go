package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendMovement(t *testing.T, repo *GormMovementRepository, item *inventory.InventoryItem, direction inventory.Direction, qty int64, reference string) *inventory.Movement {
	t.Helper()
	movement, err := inventory.NewMovement(item, direction, decimal.NewFromInt(qty), "test movement", reference)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), movement))
	return movement
}

func TestGormMovementRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()

	item := newTestItem(t, inventory.ItemTypeRaw, "RM-FLOUR")

	t.Run("appends a movement record", func(t *testing.T) {
		appendMovement(t, repo, item, inventory.DirectionIn, 100, "receipt:first")

		exists, err := repo.ExistsByReference(ctx, "receipt:first")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("rejects a duplicate reference key", func(t *testing.T) {
		appendMovement(t, repo, item, inventory.DirectionIn, 10, "receipt:once")

		duplicate, err := inventory.NewMovement(item, inventory.DirectionIn, decimal.NewFromInt(10), "retry", "receipt:once")
		require.NoError(t, err)
		err = repo.Create(ctx, duplicate)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("reference probe is negative for unknown keys", func(t *testing.T) {
		exists, err := repo.ExistsByReference(ctx, "receipt:never")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormMovementRepository_FindByItem(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()

	flour := newTestItem(t, inventory.ItemTypeRaw, "RM-FLOUR")
	sugar := newTestItem(t, inventory.ItemTypeRaw, "RM-SUGAR")

	appendMovement(t, repo, flour, inventory.DirectionIn, 100, "receipt:f1")
	appendMovement(t, repo, flour, inventory.DirectionOut, 40, "issue:f2")
	appendMovement(t, repo, sugar, inventory.DirectionIn, 50, "receipt:s1")

	t.Run("lists only the item's movements", func(t *testing.T) {
		movements, err := repo.FindByItem(ctx, flour.ID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, movements, 2)
		for _, m := range movements {
			assert.Equal(t, flour.ID, m.ItemID)
		}
	})

	t.Run("counts per item", func(t *testing.T) {
		count, err := repo.CountByItem(ctx, sugar.ID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("filters by direction", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["direction"] = "out"
		movements, err := repo.FindByItem(ctx, flour.ID, filter)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, "issue:f2", movements[0].ReferenceKey)
	})
}

func TestGormMovementRepository_NetQuantity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()

	item := newTestItem(t, inventory.ItemTypeRaw, "RM-FLOUR")
	appendMovement(t, repo, item, inventory.DirectionIn, 100, "receipt:1")
	appendMovement(t, repo, item, inventory.DirectionIn, 20, "receipt:2")
	appendMovement(t, repo, item, inventory.DirectionOut, 45, "issue:1")

	net, err := repo.NetQuantity(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, net.Equal(decimal.NewFromInt(75)), "net = %s", net)
}

func TestGormMovementRepository_SumByDirection(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()

	item := newTestItem(t, inventory.ItemTypeRaw, "RM-FLOUR")
	appendMovement(t, repo, item, inventory.DirectionIn, 100, "receipt:1")
	appendMovement(t, repo, item, inventory.DirectionOut, 30, "issue:1")
	appendMovement(t, repo, item, inventory.DirectionOut, 10, "issue:2")

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)

	totalIn, totalOut, err := repo.SumByDirection(ctx, from, to)
	require.NoError(t, err)
	assert.True(t, totalIn.Equal(decimal.NewFromInt(100)), "in = %s", totalIn)
	assert.True(t, totalOut.Equal(decimal.NewFromInt(40)), "out = %s", totalOut)
}

func TestGormMovementRepository_FindMostActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()

	flour := newTestItem(t, inventory.ItemTypeRaw, "RM-FLOUR")
	sugar := newTestItem(t, inventory.ItemTypeRaw, "RM-SUGAR")

	appendMovement(t, repo, flour, inventory.DirectionIn, 100, "receipt:f1")
	appendMovement(t, repo, flour, inventory.DirectionOut, 30, "issue:f1")
	appendMovement(t, repo, flour, inventory.DirectionOut, 20, "issue:f2")
	appendMovement(t, repo, sugar, inventory.DirectionIn, 50, "receipt:s1")

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)

	t.Run("ranks items by movement count", func(t *testing.T) {
		activities, err := repo.FindMostActive(ctx, from, to, 10)
		require.NoError(t, err)
		require.Len(t, activities, 2)

		assert.Equal(t, "RM-FLOUR", activities[0].ItemCode)
		assert.Equal(t, int64(3), activities[0].MovementCount)
		assert.True(t, activities[0].TotalIn.Equal(decimal.NewFromInt(100)))
		assert.True(t, activities[0].TotalOut.Equal(decimal.NewFromInt(50)))
		assert.True(t, activities[0].NetQuantity().Equal(decimal.NewFromInt(50)))

		assert.Equal(t, "RM-SUGAR", activities[1].ItemCode)
		assert.Equal(t, int64(1), activities[1].MovementCount)
	})

	t.Run("applies the limit", func(t *testing.T) {
		activities, err := repo.FindMostActive(ctx, from, to, 1)
		require.NoError(t, err)
		require.Len(t, activities, 1)
		assert.Equal(t, "RM-FLOUR", activities[0].ItemCode)
	})
}

package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLite-compatible versions of the persistence models for testing. The
// production tags use postgres column types; these mirrors share the table
// names so the repositories run unchanged against an in-memory database.

type inventoryItemSQLite struct {
	ID         string  `gorm:"primaryKey"`
	ItemType   string  `gorm:"not null;uniqueIndex:idx_inventory_item_type_code,priority:1"`
	Code       string  `gorm:"not null;uniqueIndex:idx_inventory_item_type_code,priority:2"`
	Name       string  `gorm:"not null"`
	Quantity   float64 `gorm:"not null;default:0"`
	Unit       string  `gorm:"not null"`
	UnitCost   float64 `gorm:"not null;default:0"`
	MinStock   float64 `gorm:"not null;default:0"`
	UsageCount int64   `gorm:"not null;default:0"`
	Version    int     `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (inventoryItemSQLite) TableName() string {
	return "inventory_items"
}

type movementSQLite struct {
	ID           string  `gorm:"primaryKey"`
	ItemID       string  `gorm:"not null;index"`
	ItemType     string  `gorm:"not null;index"`
	ItemCode     string  `gorm:"not null;index"`
	Direction    string  `gorm:"not null"`
	Quantity     float64 `gorm:"not null"`
	UnitCost     float64 `gorm:"not null"`
	Reason       string  `gorm:"not null"`
	ReferenceKey string  `gorm:"not null;uniqueIndex:idx_movement_reference"`
	BalanceAfter float64 `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (movementSQLite) TableName() string {
	return "inventory_movements"
}

type bomComponentSQLite struct {
	ID            string  `gorm:"primaryKey"`
	ProductType   string  `gorm:"not null;index:idx_bom_product,priority:1"`
	ProductCode   string  `gorm:"not null;index:idx_bom_product,priority:2"`
	ComponentType string  `gorm:"not null"`
	ComponentCode string  `gorm:"not null"`
	Quantity      float64 `gorm:"not null"`
	Basis         string  `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (bomComponentSQLite) TableName() string {
	return "bom_components"
}

type orderSQLite struct {
	ID              string  `gorm:"primaryKey"`
	Kind            string  `gorm:"not null;index"`
	Code            string  `gorm:"not null;uniqueIndex"`
	ProductCode     string  `gorm:"not null;index"`
	Quantity        float64 `gorm:"not null"`
	Unit            string  `gorm:"not null"`
	Status          string  `gorm:"not null;index"`
	OrderDate       time.Time
	TotalCost       float64 `gorm:"not null;default:0"`
	CompletionCycle int     `gorm:"not null;default:0"`
	CompletedAt     *time.Time
	CancelledAt     *time.Time
	Version         int `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (orderSQLite) TableName() string {
	return "manufacturing_orders"
}

type orderLineSQLite struct {
	ID               string  `gorm:"primaryKey"`
	OrderID          string  `gorm:"not null;index"`
	ItemType         string  `gorm:"not null"`
	ItemCode         string  `gorm:"not null"`
	RequiredQuantity float64 `gorm:"not null"`
	CreatedAt        time.Time
}

func (orderLineSQLite) TableName() string {
	return "manufacturing_order_lines"
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&inventoryItemSQLite{},
		&movementSQLite{},
		&bomComponentSQLite{},
		&orderSQLite{},
		&orderLineSQLite{},
		&OrderSequence{},
	)
	require.NoError(t, err)

	return db
}

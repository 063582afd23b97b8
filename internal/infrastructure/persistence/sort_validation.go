package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is invalid, empty, or not in
// the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ItemSortFields contains allowed sort fields for inventory items
var ItemSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"item_type":   true,
	"code":        true,
	"name":        true,
	"quantity":    true,
	"unit_cost":   true,
	"usage_count": true,
}

// MovementSortFields contains allowed sort fields for movements
var MovementSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"item_type":  true,
	"item_code":  true,
	"direction":  true,
	"quantity":   true,
}

// OrderSortFields contains allowed sort fields for manufacturing orders
var OrderSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"status":     true,
	"order_date": true,
	"quantity":   true,
	"total_cost": true,
}

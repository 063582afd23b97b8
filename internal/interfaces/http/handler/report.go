package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/mfgops/backend/internal/application/inventory"
)

// parseDateTime parses a datetime string in various formats
func parseDateTime(s string) (time.Time, error) {
	// Try RFC3339 first
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	// Try ISO date format
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	// Try datetime without timezone
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	// Default to RFC3339 parsing error
	return time.Parse(time.RFC3339, s)
}

// parsePeriod extracts an optional from/to period from query parameters,
// defaulting to the last 30 days
func parsePeriod(c *gin.Context) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		parsed, err := parseDateTime(raw)
		if err != nil {
			return from, to, err
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := parseDateTime(raw)
		if err != nil {
			return from, to, err
		}
		to = parsed
	}
	return from, to, nil
}

// ReportHandler handles ledger-derived report API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *inventoryapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *inventoryapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// RegisterRoutes registers report routes on the given router group
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/most-active", h.MostActiveItems)
		reports.GET("/movement-summary", h.MovementSummary)
		reports.GET("/below-minimum", h.BelowMinimum)
		reports.GET("/items/:id/movements", h.ItemMovements)
	}
}

// MostActiveItems godoc
// @ID           reportMostActiveItems
// @Summary      Most active items
// @Description  Aggregate the ledger into per-item activity over a period, ordered by movement count
// @Tags         reports
// @Produce      json
// @Param        from query string false "Start of period (default 30 days ago)" format(date)
// @Param        to query string false "End of period (default now)" format(date)
// @Param        limit query int false "Maximum results" default(10)
// @Success      200 {object} APIResponse[[]inventoryapp.ItemActivityResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /reports/most-active [get]
func (h *ReportHandler) MostActiveItems(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		h.BadRequest(c, "Invalid period format")
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	rows, err := h.reportService.MostActiveItems(c.Request.Context(), from, to, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// ItemMovements godoc
// @ID           reportItemMovements
// @Summary      Movement history for one item
// @Tags         reports
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Param        from query string false "Start of period" format(date)
// @Param        to query string false "End of period" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]inventoryapp.MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /reports/items/{id}/movements [get]
func (h *ReportHandler) ItemMovements(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	movements, total, err := h.reportService.ItemMovements(c.Request.Context(), itemID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// MovementSummary godoc
// @ID           reportMovementSummary
// @Summary      Ledger volume summary
// @Description  Total quantity moved in and out over a period
// @Tags         reports
// @Produce      json
// @Param        from query string false "Start of period (default 30 days ago)" format(date)
// @Param        to query string false "End of period (default now)" format(date)
// @Success      200 {object} APIResponse[inventoryapp.MovementSummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /reports/movement-summary [get]
func (h *ReportHandler) MovementSummary(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		h.BadRequest(c, "Invalid period format")
		return
	}

	summary, err := h.reportService.MovementSummary(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// BelowMinimum godoc
// @ID           reportBelowMinimum
// @Summary      Items below minimum stock
// @Description  List every item currently under its minimum stock threshold
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[[]inventoryapp.ItemResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /reports/below-minimum [get]
func (h *ReportHandler) BelowMinimum(c *gin.Context) {
	items, err := h.reportService.BelowMinimum(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

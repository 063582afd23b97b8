package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/mfgops/backend/internal/application/inventory"
)

// StockHandler handles stock mutation and ledger API endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
	}
}

// RegisterRoutes registers stock routes on the given router group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/inventory/stock")
	{
		stock.POST("/receive", h.Receive)
		stock.POST("/issue", h.Issue)
		stock.POST("/adjust", h.Adjust)
	}
	rg.GET("/inventory/movements", h.ListMovements)
}

// Receive godoc
// @ID           receiveStock
// @Summary      Receive stock
// @Description  Credit a pool with incoming quantity at a unit cost and append the ledger
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ReceiveStockRequest true "Stock receipt request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /inventory/stock/receive [post]
func (h *StockHandler) Receive(c *gin.Context) {
	var req inventoryapp.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.stockService.Receive(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Issue godoc
// @ID           issueStock
// @Summary      Issue stock
// @Description  Debit a pool by outgoing quantity and append the ledger
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.IssueStockRequest true "Stock issue request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /inventory/stock/issue [post]
func (h *StockHandler) Issue(c *gin.Context) {
	var req inventoryapp.IssueStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.stockService.Issue(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Adjust godoc
// @ID           adjustStock
// @Summary      Adjust stock
// @Description  Set a pool's on-hand quantity to a counted value; the delta is ledgered
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.AdjustStockRequest true "Stock adjustment request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /inventory/stock/adjust [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.stockService.Adjust(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// ListMovements godoc
// @ID           listStockMovements
// @Summary      List stock movements
// @Description  Retrieve a paginated slice of the movement ledger, newest first
// @Tags         stock
// @Produce      json
// @Param        item_type query string false "Filter by pool" Enums(raw, semi_finished, packaging, finished)
// @Param        from query string false "Start of period" format(date)
// @Param        to query string false "End of period" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]inventoryapp.MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /inventory/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
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

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	productionapp "github.com/mfgops/backend/internal/application/production"
)

// OrderHandler handles manufacturing order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *productionapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *productionapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers order routes on the given router group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/code/:code", h.GetByCode)
		orders.GET("/:id", h.GetByID)
		orders.DELETE("/:id", h.Delete)
		orders.POST("/:id/transition", h.Transition)
	}
}

// Create godoc
// @ID           createOrder
// @Summary      Create a manufacturing order
// @Description  Create a production or packaging order; requirement lines are frozen from the product's BOM at creation time
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body productionapp.CreateOrderRequest true "Order creation request"
// @Success      201 {object} APIResponse[productionapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req productionapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @ID           getOrderById
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[productionapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByCode godoc
// @ID           getOrderByCode
// @Summary      Get order by code
// @Description  Retrieve an order by its business code, e.g. MO-2026-00042
// @Tags         orders
// @Produce      json
// @Param        code path string true "Order code"
// @Success      200 {object} APIResponse[productionapp.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /orders/code/{code} [get]
func (h *OrderHandler) GetByCode(c *gin.Context) {
	order, err := h.orderService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
// @ID           listOrders
// @Summary      List manufacturing orders
// @Tags         orders
// @Produce      json
// @Param        kind query string false "Filter by order kind" Enums(production, packaging)
// @Param        status query string false "Filter by status"
// @Param        search query string false "Search term matching code or product code"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(order_date)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]productionapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter productionapp.OrderListFilter
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

	page, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, filter.Page, filter.PageSize)
}

// Delete godoc
// @ID           deleteOrder
// @Summary      Delete an order
// @Description  Delete an order; only pending orders can be deleted
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Transition godoc
// @ID           transitionOrder
// @Summary      Transition an order
// @Description  Move an order to a new lifecycle status. Completing consumes inputs and produces output atomically; leaving completed reverses the stock effects.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body productionapp.TransitionRequest true "Target status"
// @Success      200 {object} APIResponse[productionapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id}/transition [post]
func (h *OrderHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req productionapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Transition(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/mfgops/backend/internal/application/inventory"
	"github.com/mfgops/backend/internal/domain/inventory"
)

// ItemHandler handles inventory item API endpoints
type ItemHandler struct {
	BaseHandler
	itemService *inventoryapp.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService *inventoryapp.ItemService) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
	}
}

// RegisterRoutes registers item routes on the given router group
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/inventory/items")
	{
		items.POST("", h.Create)
		items.GET("", h.List)
		items.GET("/most-used", h.ListMostUsed)
		items.GET("/:id", h.GetByID)
		items.PUT("/:id", h.Update)
		items.DELETE("/:id", h.Delete)
	}
	pools := rg.Group("/inventory/pools")
	{
		pools.GET("/:item_type/items/:code", h.GetByCode)
	}
}

// parseItemType validates an item type path or query value
func parseItemType(s string) (inventory.ItemType, bool) {
	t := inventory.ItemType(s)
	return t, t.IsValid()
}

// Create godoc
// @ID           createInventoryItem
// @Summary      Create inventory item
// @Description  Register a new item in one of the four inventory pools
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateItemRequest true "Item creation request"
// @Success      201 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /inventory/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// Update godoc
// @ID           updateInventoryItem
// @Summary      Update inventory item
// @Description  Update an item's descriptive fields and minimum stock threshold
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Param        request body inventoryapp.UpdateItemRequest true "Item update request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /inventory/items/{id} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req inventoryapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Delete godoc
// @ID           deleteInventoryItem
// @Summary      Delete inventory item
// @Description  Remove an item from its pool
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /inventory/items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID godoc
// @ID           getInventoryItemById
// @Summary      Get inventory item by ID
// @Description  Retrieve an inventory item by its surrogate ID
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /inventory/items/{id} [get]
func (h *ItemHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	item, err := h.itemService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// GetByCode godoc
// @ID           getInventoryItemByCode
// @Summary      Get inventory item by pool and code
// @Description  Retrieve an item by its natural key (pool, business code)
// @Tags         inventory
// @Produce      json
// @Param        item_type path string true "Inventory pool" Enums(raw, semi_finished, packaging, finished)
// @Param        code path string true "Item business code"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /inventory/pools/{item_type}/items/{code} [get]
func (h *ItemHandler) GetByCode(c *gin.Context) {
	itemType, ok := parseItemType(c.Param("item_type"))
	if !ok {
		h.BadRequest(c, "Invalid inventory pool: "+c.Param("item_type"))
		return
	}

	item, err := h.itemService.GetByCode(c.Request.Context(), itemType, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// List godoc
// @ID           listInventoryItems
// @Summary      List inventory items
// @Description  Retrieve a paginated list of items with optional pool and search filters
// @Tags         inventory
// @Produce      json
// @Param        item_type query string false "Filter by pool" Enums(raw, semi_finished, packaging, finished)
// @Param        search query string false "Search term matching code or name"
// @Param        below_minimum query boolean false "Only items under their minimum stock"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /inventory/items [get]
func (h *ItemHandler) List(c *gin.Context) {
	var filter inventoryapp.ItemListFilter
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

	items, total, err := h.itemService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ListMostUsed godoc
// @ID           listMostUsedInventoryItems
// @Summary      List most used items
// @Description  Rank items of a pool by usage count for procurement prioritisation
// @Tags         inventory
// @Produce      json
// @Param        item_type query string true "Inventory pool" Enums(raw, semi_finished, packaging, finished)
// @Param        limit query int false "Maximum results" default(10)
// @Success      200 {object} APIResponse[[]inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /inventory/items/most-used [get]
func (h *ItemHandler) ListMostUsed(c *gin.Context) {
	itemType, ok := parseItemType(c.Query("item_type"))
	if !ok {
		h.BadRequest(c, "Invalid inventory pool: "+c.Query("item_type"))
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

	items, err := h.itemService.ListMostUsed(c.Request.Context(), itemType, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

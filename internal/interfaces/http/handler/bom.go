package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/mfgops/backend/internal/application/inventory"
)

// BOMHandler handles bill-of-materials API endpoints
type BOMHandler struct {
	BaseHandler
	bomService *inventoryapp.BOMService
}

// NewBOMHandler creates a new BOMHandler
func NewBOMHandler(bomService *inventoryapp.BOMService) *BOMHandler {
	return &BOMHandler{
		bomService: bomService,
	}
}

// RegisterRoutes registers BOM routes on the given router group
func (h *BOMHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bom := rg.Group("/inventory/bom")
	{
		bom.PUT("", h.Replace)
		bom.GET("/:product_type/:product_code", h.ComponentsFor)
		bom.DELETE("/:product_type/:product_code", h.DeleteFor)
	}
}

// Replace godoc
// @ID           replaceBOM
// @Summary      Replace a product's bill of materials
// @Description  Atomically swap every BOM line of a semi-finished or finished product
// @Tags         bom
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ReplaceBOMRequest true "BOM replacement request"
// @Success      200 {object} APIResponse[[]inventoryapp.BOMComponentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /inventory/bom [put]
func (h *BOMHandler) Replace(c *gin.Context) {
	var req inventoryapp.ReplaceBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	components, err := h.bomService.Replace(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, components)
}

// ComponentsFor godoc
// @ID           getBOMComponents
// @Summary      Get a product's bill of materials
// @Description  List the component lines feeding one product
// @Tags         bom
// @Produce      json
// @Param        product_type path string true "Product pool" Enums(semi_finished, finished)
// @Param        product_code path string true "Product business code"
// @Success      200 {object} APIResponse[[]inventoryapp.BOMComponentResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /inventory/bom/{product_type}/{product_code} [get]
func (h *BOMHandler) ComponentsFor(c *gin.Context) {
	productType, ok := parseItemType(c.Param("product_type"))
	if !ok {
		h.BadRequest(c, "Invalid inventory pool: "+c.Param("product_type"))
		return
	}

	components, err := h.bomService.ComponentsFor(c.Request.Context(), productType, c.Param("product_code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, components)
}

// DeleteFor godoc
// @ID           deleteBOM
// @Summary      Delete a product's bill of materials
// @Description  Remove every BOM line of one product
// @Tags         bom
// @Produce      json
// @Param        product_type path string true "Product pool" Enums(semi_finished, finished)
// @Param        product_code path string true "Product business code"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Router       /inventory/bom/{product_type}/{product_code} [delete]
func (h *BOMHandler) DeleteFor(c *gin.Context) {
	productType, ok := parseItemType(c.Param("product_type"))
	if !ok {
		h.BadRequest(c, "Invalid inventory pool: "+c.Param("product_type"))
		return
	}

	if err := h.bomService.DeleteFor(c.Request.Context(), productType, c.Param("product_code")); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

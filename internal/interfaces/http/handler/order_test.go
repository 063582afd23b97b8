package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	productionapp "github.com/mfgops/backend/internal/application/production"
	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupOrderTestHandler() (*OrderHandler, *memoryItemRepo, *memoryBOMRepo) {
	gin.SetMode(gin.TestMode)

	itemRepo := newMemoryItemRepo()
	movementRepo := newMemoryMovementRepo()
	bomRepo := newMemoryBOMRepo()
	orderRepo := newMemoryOrderRepo()
	txScope := productionapp.NewNoOpTransactionScope(itemRepo, movementRepo, bomRepo, orderRepo)
	service := productionapp.NewOrderService(txScope, zap.NewNop())

	return NewOrderHandler(service), itemRepo, bomRepo
}

// seedProductionFixtures registers a semi-finished product with a single
// raw input covering 100% of its recipe, and stocks the input.
func seedProductionFixtures(t *testing.T, itemRepo *memoryItemRepo, bomRepo *memoryBOMRepo, rawStock int64) {
	t.Helper()

	seedItem(t, itemRepo, inventory.ItemTypeSemiFinished, "SF-001")
	raw := seedItem(t, itemRepo, inventory.ItemTypeRaw, "RM-001")
	if rawStock > 0 {
		require.NoError(t, raw.Produce(decimal.NewFromInt(rawStock), decimal.NewFromInt(2), "opening balance"))
	}

	component, err := inventory.NewBOMComponent(
		inventory.ItemTypeSemiFinished, "SF-001",
		inventory.ItemTypeRaw, "RM-001",
		decimal.NewFromInt(100), inventory.BOMBasisPercent,
	)
	require.NoError(t, err)
	require.NoError(t, bomRepo.Save(context.Background(), component))
}

func createOrderViaHandler(t *testing.T, handler *OrderHandler) map[string]interface{} {
	t.Helper()

	w := postJSON(t, handler.Create, "/orders", productionapp.CreateOrderRequest{
		Kind:        "production",
		ProductCode: "SF-001",
		Quantity:    decimal.NewFromInt(10),
		Unit:        "kg",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data.(map[string]interface{})
}

func transitionOrder(t *testing.T, handler *OrderHandler, orderID, status string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(productionapp.TransitionRequest{Status: status})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/orders/"+orderID+"/transition", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: orderID}}

	handler.Transition(c)
	return w
}

func TestOrderHandler_Create_Success(t *testing.T) {
	handler, itemRepo, bomRepo := setupOrderTestHandler()
	seedProductionFixtures(t, itemRepo, bomRepo, 100)

	data := createOrderViaHandler(t, handler)

	assert.Equal(t, "PRD-00001", data["code"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "SF-001", data["product_code"])

	lines := data["lines"].([]interface{})
	require.Len(t, lines, 1)
	line := lines[0].(map[string]interface{})
	assert.Equal(t, "RM-001", line["item_code"])
	assert.Equal(t, "10", line["required_quantity"])
}

func TestOrderHandler_Create_NoBOM(t *testing.T) {
	handler, itemRepo, _ := setupOrderTestHandler()
	seedItem(t, itemRepo, inventory.ItemTypeSemiFinished, "SF-001")

	w := postJSON(t, handler.Create, "/orders", productionapp.CreateOrderRequest{
		Kind:        "production",
		ProductCode: "SF-001",
		Quantity:    decimal.NewFromInt(10),
		Unit:        "kg",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInsufficientSpec, resp.Error.Code)
}

func TestOrderHandler_Create_UnknownProduct(t *testing.T) {
	handler, _, _ := setupOrderTestHandler()

	w := postJSON(t, handler.Create, "/orders", productionapp.CreateOrderRequest{
		Kind:        "production",
		ProductCode: "SF-404",
		Quantity:    decimal.NewFromInt(10),
		Unit:        "kg",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_Transition_Complete(t *testing.T) {
	handler, itemRepo, bomRepo := setupOrderTestHandler()
	seedProductionFixtures(t, itemRepo, bomRepo, 100)

	data := createOrderViaHandler(t, handler)
	orderID := data["id"].(string)

	w := transitionOrder(t, handler, orderID, "completed")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	completed := resp.Data.(map[string]interface{})
	assert.Equal(t, "completed", completed["status"])

	raw, err := itemRepo.FindByCode(context.Background(), inventory.ItemTypeRaw, "RM-001")
	require.NoError(t, err)
	assert.True(t, raw.Quantity.Equal(decimal.NewFromInt(90)))

	output, err := itemRepo.FindByCode(context.Background(), inventory.ItemTypeSemiFinished, "SF-001")
	require.NoError(t, err)
	assert.True(t, output.Quantity.Equal(decimal.NewFromInt(10)))
}

func TestOrderHandler_Transition_InsufficientStock(t *testing.T) {
	handler, itemRepo, bomRepo := setupOrderTestHandler()
	seedProductionFixtures(t, itemRepo, bomRepo, 5)

	data := createOrderViaHandler(t, handler)
	orderID := data["id"].(string)

	w := transitionOrder(t, handler, orderID, "completed")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)

	// nothing consumed
	raw, err := itemRepo.FindByCode(context.Background(), inventory.ItemTypeRaw, "RM-001")
	require.NoError(t, err)
	assert.True(t, raw.Quantity.Equal(decimal.NewFromInt(5)))
}

func TestOrderHandler_Transition_RevertCompletion(t *testing.T) {
	handler, itemRepo, bomRepo := setupOrderTestHandler()
	seedProductionFixtures(t, itemRepo, bomRepo, 100)

	data := createOrderViaHandler(t, handler)
	orderID := data["id"].(string)

	require.Equal(t, http.StatusOK, transitionOrder(t, handler, orderID, "completed").Code)

	w := transitionOrder(t, handler, orderID, "pending")
	assert.Equal(t, http.StatusOK, w.Code)

	raw, err := itemRepo.FindByCode(context.Background(), inventory.ItemTypeRaw, "RM-001")
	require.NoError(t, err)
	assert.True(t, raw.Quantity.Equal(decimal.NewFromInt(100)))

	output, err := itemRepo.FindByCode(context.Background(), inventory.ItemTypeSemiFinished, "SF-001")
	require.NoError(t, err)
	assert.True(t, output.Quantity.IsZero())
}

func TestOrderHandler_Transition_InvalidFromCancelled(t *testing.T) {
	handler, itemRepo, bomRepo := setupOrderTestHandler()
	seedProductionFixtures(t, itemRepo, bomRepo, 100)

	data := createOrderViaHandler(t, handler)
	orderID := data["id"].(string)

	require.Equal(t, http.StatusOK, transitionOrder(t, handler, orderID, "cancelled").Code)

	w := transitionOrder(t, handler, orderID, "completed")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidTransition, resp.Error.Code)
}

func TestOrderHandler_Transition_UnknownStatus(t *testing.T) {
	handler, itemRepo, bomRepo := setupOrderTestHandler()
	seedProductionFixtures(t, itemRepo, bomRepo, 100)

	data := createOrderViaHandler(t, handler)
	orderID := data["id"].(string)

	w := transitionOrder(t, handler, orderID, "shipped")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_Delete_Pending(t *testing.T) {
	handler, itemRepo, bomRepo := setupOrderTestHandler()
	seedProductionFixtures(t, itemRepo, bomRepo, 100)

	data := createOrderViaHandler(t, handler)
	orderID := data["id"].(string)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/orders/"+orderID, nil)
	c.Params = gin.Params{{Key: "id", Value: orderID}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOrderHandler_Delete_Completed(t *testing.T) {
	handler, itemRepo, bomRepo := setupOrderTestHandler()
	seedProductionFixtures(t, itemRepo, bomRepo, 100)

	data := createOrderViaHandler(t, handler)
	orderID := data["id"].(string)

	require.Equal(t, http.StatusOK, transitionOrder(t, handler, orderID, "completed").Code)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/orders/"+orderID, nil)
	c.Params = gin.Params{{Key: "id", Value: orderID}}

	handler.Delete(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeNotDeletable, resp.Error.Code)
}

func TestOrderHandler_GetByCode(t *testing.T) {
	handler, itemRepo, bomRepo := setupOrderTestHandler()
	seedProductionFixtures(t, itemRepo, bomRepo, 100)
	createOrderViaHandler(t, handler)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/orders/code/PRD-00001", nil)
	c.Params = gin.Params{{Key: "code", Value: "PRD-00001"}}

	handler.GetByCode(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "PRD-00001", data["code"])
}

func TestOrderHandler_List(t *testing.T) {
	handler, itemRepo, bomRepo := setupOrderTestHandler()
	seedProductionFixtures(t, itemRepo, bomRepo, 100)
	createOrderViaHandler(t, handler)
	createOrderViaHandler(t, handler)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/orders?kind=production&page=1&page_size=20", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
}

func TestOrderHandler_GetByID_InvalidID(t *testing.T) {
	handler, _, _ := setupOrderTestHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	handler.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_GetByID_NotFound(t *testing.T) {
	handler, _, _ := setupOrderTestHandler()
	missing := uuid.New()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/orders/"+missing.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: missing.String()}}

	handler.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

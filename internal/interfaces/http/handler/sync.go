package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/mfgops/backend/internal/application/inventory"
	"github.com/mfgops/backend/internal/infrastructure/scheduler"
	"github.com/mfgops/backend/internal/interfaces/http/dto"
)

// SyncHandler handles ledger reconciliation API endpoints
type SyncHandler struct {
	BaseHandler
	syncService *inventoryapp.SyncService
	scheduler   *scheduler.ReconcileScheduler
}

// NewSyncHandler creates a new SyncHandler. The scheduler may be nil when
// background reconciliation is disabled; manual triggers then run inline.
func NewSyncHandler(syncService *inventoryapp.SyncService, sched *scheduler.ReconcileScheduler) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		scheduler:   sched,
	}
}

// RegisterRoutes registers sync routes on the given router group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/reconcile", h.TriggerReconcile)
		sync.POST("/reconcile/pools/:item_type/items/:code", h.ReconcileItem)
		sync.GET("/jobs", h.ListJobs)
	}
}

// ReconcileJobResponse represents a reconciliation run in API responses
// @Description One reconciliation run with its results
type ReconcileJobResponse struct {
	ID             string     `json:"id"`
	Trigger        string     `json:"trigger"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	RetryCount     int        `json:"retry_count"`
	ItemsChecked   int        `json:"items_checked"`
	ItemsCorrected int        `json:"items_corrected"`
}

func toReconcileJobResponse(job *scheduler.ReconcileJob) ReconcileJobResponse {
	return ReconcileJobResponse{
		ID:             job.ID.String(),
		Trigger:        job.Trigger,
		Status:         string(job.Status),
		Error:          job.Error,
		StartedAt:      job.StartedAt,
		CompletedAt:    job.CompletedAt,
		RetryCount:     job.RetryCount,
		ItemsChecked:   job.ItemsChecked,
		ItemsCorrected: job.ItemsCorrected,
	}
}

// TriggerReconcile godoc
// @ID           triggerReconcile
// @Summary      Trigger a full reconciliation
// @Description  Queue a run that compares every pool row against the ledger's net quantity and corrects drift. With no scheduler the run executes inline and the results are returned directly.
// @Tags         sync
// @Produce      json
// @Success      200 {object} APIResponse[[]inventoryapp.ReconciliationResult]
// @Success      202 {object} APIResponse[ReconcileJobResponse]
// @Failure      500 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /sync/reconcile [post]
func (h *SyncHandler) TriggerReconcile(c *gin.Context) {
	if h.scheduler != nil {
		job, err := h.scheduler.TriggerNow()
		if err != nil {
			if errors.Is(err, scheduler.ErrSchedulerNotRunning) || errors.Is(err, scheduler.ErrJobQueueFull) {
				h.ErrorWithCode(c, dto.ErrCodeUnavailable, err.Error())
				return
			}
			h.HandleError(c, err)
			return
		}
		h.Accepted(c, toReconcileJobResponse(job))
		return
	}

	results, err := h.syncService.ReconcileAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// ReconcileItem godoc
// @ID           reconcileItem
// @Summary      Reconcile a single item
// @Description  Compare one pool row against the ledger and correct drift immediately
// @Tags         sync
// @Produce      json
// @Param        item_type path string true "Inventory pool" Enums(raw, semi_finished, packaging, finished)
// @Param        code path string true "Item business code"
// @Success      200 {object} APIResponse[inventoryapp.ReconciliationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /sync/reconcile/pools/{item_type}/items/{code} [post]
func (h *SyncHandler) ReconcileItem(c *gin.Context) {
	itemType, ok := parseItemType(c.Param("item_type"))
	if !ok {
		h.BadRequest(c, "Invalid inventory pool: "+c.Param("item_type"))
		return
	}

	result, err := h.syncService.ReconcileItem(c.Request.Context(), itemType, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListJobs godoc
// @ID           listReconcileJobs
// @Summary      List reconciliation runs
// @Description  Recent reconciliation runs, newest first
// @Tags         sync
// @Produce      json
// @Param        limit query int false "Maximum results (0 for all retained runs)"
// @Success      200 {object} APIResponse[[]ReconcileJobResponse]
// @Failure      503 {object} ErrorResponse
// @Router       /sync/jobs [get]
func (h *SyncHandler) ListJobs(c *gin.Context) {
	if h.scheduler == nil {
		h.ErrorWithCode(c, dto.ErrCodeUnavailable, "Background reconciliation is disabled")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	jobs := h.scheduler.GetJobHistory(limit)
	responses := make([]ReconcileJobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, toReconcileJobResponse(job))
	}

	h.Success(c, responses)
}

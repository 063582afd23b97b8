package scheduler

import (
	"context"

	appinventory "github.com/mfgops/backend/internal/application/inventory"
	"go.uber.org/zap"
)

// Reconciler is the application-level reconciliation entrypoint
type Reconciler interface {
	ReconcileAll(ctx context.Context) ([]appinventory.ReconciliationResult, error)
}

// SyncExecutor implements ReconcileExecutor on top of the inventory
// reconciliation service
type SyncExecutor struct {
	reconciler Reconciler
	logger     *zap.Logger
}

// NewSyncExecutor creates a new sync executor
func NewSyncExecutor(reconciler Reconciler, logger *zap.Logger) *SyncExecutor {
	return &SyncExecutor{
		reconciler: reconciler,
		logger:     logger,
	}
}

// Execute runs a full reconciliation pass and records the outcome on the job
func (e *SyncExecutor) Execute(ctx context.Context, job *ReconcileJob) error {
	results, err := e.reconciler.ReconcileAll(ctx)
	if err != nil {
		return err
	}

	corrected := 0
	for i := range results {
		if results[i].Corrected {
			corrected++
			e.logger.Warn("reconciliation corrected drifted pool row",
				zap.String("item_type", results[i].ItemType),
				zap.String("item_code", results[i].ItemCode),
				zap.String("difference", results[i].Difference.String()),
			)
		}
	}

	job.Complete(len(results), corrected)
	return nil
}

var _ ReconcileExecutor = (*SyncExecutor)(nil)

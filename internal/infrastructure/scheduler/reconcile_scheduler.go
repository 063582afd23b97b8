package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Reconcile Job Types
// ---------------------------------------------------------------------------

// ReconcileJobStatus represents the status of a reconciliation job
type ReconcileJobStatus string

const (
	ReconcileJobStatusPending ReconcileJobStatus = "PENDING"
	ReconcileJobStatusRunning ReconcileJobStatus = "RUNNING"
	ReconcileJobStatusSuccess ReconcileJobStatus = "SUCCESS"
	ReconcileJobStatusFailed  ReconcileJobStatus = "FAILED"
)

// ReconcileJob represents one ledger reconciliation run. A run walks every
// pool row, compares it against the movement ledger's net quantity and
// appends correction movements where the row has drifted.
type ReconcileJob struct {
	ID          uuid.UUID
	Trigger     string // "interval" or "manual"
	Status      ReconcileJobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time

	// Run results
	ItemsChecked   int
	ItemsCorrected int
}

// NewReconcileJob creates a new reconciliation job
func NewReconcileJob(trigger string, maxRetries int) *ReconcileJob {
	return &ReconcileJob{
		ID:         uuid.New(),
		Trigger:    trigger,
		Status:     ReconcileJobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *ReconcileJob) Start() {
	now := time.Now()
	j.Status = ReconcileJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *ReconcileJob) Complete(itemsChecked, itemsCorrected int) {
	now := time.Now()
	j.Status = ReconcileJobStatusSuccess
	j.CompletedAt = &now
	j.ItemsChecked = itemsChecked
	j.ItemsCorrected = itemsCorrected
}

// Fail marks the job as failed
func (j *ReconcileJob) Fail(err string) {
	now := time.Now()
	j.Status = ReconcileJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *ReconcileJob) ShouldRetry() bool {
	return j.Status == ReconcileJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff
func (j *ReconcileJob) ScheduleRetry(baseDelay time.Duration) {
	j.RetryCount++
	j.Status = ReconcileJobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > 30*time.Minute {
		delay = 30 * time.Minute
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// ---------------------------------------------------------------------------
// ReconcileExecutor Interface
// ---------------------------------------------------------------------------

// ReconcileExecutor executes reconciliation jobs
type ReconcileExecutor interface {
	// Execute runs a full ledger reconciliation and fills in the job's
	// result counts
	Execute(ctx context.Context, job *ReconcileJob) error
}

// ---------------------------------------------------------------------------
// ReconcileSchedulerConfig
// ---------------------------------------------------------------------------

// ReconcileSchedulerConfig holds configuration for the reconciliation scheduler
type ReconcileSchedulerConfig struct {
	// Enabled indicates if periodic reconciliation runs
	Enabled bool
	// Interval is how often a reconciliation run is scheduled
	Interval time.Duration
	// JobTimeout is the maximum time a run can take
	JobTimeout time.Duration
	// RetryAttempts is the number of retry attempts for failed runs
	RetryAttempts int
	// RetryDelay is the base delay between retries (with exponential backoff)
	RetryDelay time.Duration
}

// DefaultReconcileSchedulerConfig returns default configuration
func DefaultReconcileSchedulerConfig() ReconcileSchedulerConfig {
	return ReconcileSchedulerConfig{
		Enabled:       true,
		Interval:      1 * time.Hour,
		JobTimeout:    10 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    1 * time.Minute,
	}
}

// Validate validates the configuration
func (c *ReconcileSchedulerConfig) Validate() error {
	if c.Interval < time.Minute {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 {
		return ErrInvalidConfig
	}
	if c.RetryDelay <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// ReconcileScheduler
// ---------------------------------------------------------------------------

// ReconcileScheduler runs ledger reconciliation on an interval. Runs are
// serialized through a single worker since a reconciliation walks the whole
// item table; overlapping runs would only race each other on the same
// correction keys.
type ReconcileScheduler struct {
	config   ReconcileSchedulerConfig
	executor ReconcileExecutor
	logger   *zap.Logger

	jobs      chan *ReconcileJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Job history for monitoring (in-memory, limited size)
	historyMu  sync.RWMutex
	history    []*ReconcileJob
	maxHistory int
}

// NewReconcileScheduler creates a new reconciliation scheduler
func NewReconcileScheduler(config ReconcileSchedulerConfig, executor ReconcileExecutor, logger *zap.Logger) (*ReconcileScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ReconcileScheduler{
		config:     config,
		executor:   executor,
		logger:     logger,
		jobs:       make(chan *ReconcileJob, 10),
		history:    make([]*ReconcileJob, 0, 50),
		maxHistory: 50,
	}, nil
}

// Start starts the scheduler
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.worker(ctx)

	if s.config.Enabled {
		s.wg.Add(1)
		go s.tickLoop(ctx)
	}

	s.logger.Info("Reconciliation scheduler started",
		zap.Bool("periodic", s.config.Enabled),
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	close(s.jobs)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reconciliation scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reconciliation scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow submits a manual reconciliation run
func (s *ReconcileScheduler) TriggerNow() (*ReconcileJob, error) {
	job := NewReconcileJob("manual", s.config.RetryAttempts)
	if err := s.submitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

// submitJob submits a job for execution
func (s *ReconcileScheduler) submitJob(job *ReconcileJob) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	select {
	case s.jobs <- job:
		s.logger.Debug("Reconciliation job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("trigger", job.Trigger),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// tickLoop schedules a run every interval
func (s *ReconcileScheduler) tickLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job := NewReconcileJob("interval", s.config.RetryAttempts)
			if err := s.submitJob(job); err != nil {
				s.logger.Warn("Failed to schedule periodic reconciliation",
					zap.Error(err),
				)
			}
		}
	}
}

// worker processes jobs from the queue
func (s *ReconcileScheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Reconciliation worker stopping")
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job)
		}
	}
}

// processJob executes a single job
func (s *ReconcileScheduler) processJob(ctx context.Context, job *ReconcileJob) {
	// Check if job is ready to run (for retries)
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		select {
		case s.jobs <- job:
		default:
			s.logger.Warn("Failed to re-queue reconciliation job for retry",
				zap.String("job_id", job.ID.String()),
			)
		}
		return
	}

	job.Start()
	s.logger.Info("Running ledger reconciliation",
		zap.String("job_id", job.ID.String()),
		zap.String("trigger", job.Trigger),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	err := s.executor.Execute(jobCtx, job)
	if err != nil {
		job.Fail(err.Error())
		s.logger.Error("Ledger reconciliation failed",
			zap.String("job_id", job.ID.String()),
			zap.String("trigger", job.Trigger),
			zap.Error(err),
		)

		if job.ShouldRetry() {
			job.ScheduleRetry(s.config.RetryDelay)
			s.logger.Info("Reconciliation scheduled for retry",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
			)
			select {
			case s.jobs <- job:
			default:
				s.logger.Warn("Failed to re-queue reconciliation job for retry",
					zap.String("job_id", job.ID.String()),
				)
			}
		}

		s.addToHistory(job)
		return
	}

	s.logger.Info("Ledger reconciliation completed",
		zap.String("job_id", job.ID.String()),
		zap.String("trigger", job.Trigger),
		zap.Int("items_checked", job.ItemsChecked),
		zap.Int("items_corrected", job.ItemsCorrected),
	)

	s.addToHistory(job)
}

// addToHistory adds a completed job to history
func (s *ReconcileScheduler) addToHistory(job *ReconcileJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*ReconcileJob{job}, s.history...)

	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// GetJobHistory returns recent job history
func (s *ReconcileScheduler) GetJobHistory(limit int) []*ReconcileJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}

	result := make([]*ReconcileJob, limit)
	copy(result, s.history[:limit])
	return result
}

package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning rejects submissions to a stopped scheduler.
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull signals the bounded job queue rejected a submission.
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidConfig rejects a scheduler built with bad settings.
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrReconcileTimeout marks a reconciliation run that outlived its budget.
	ErrReconcileTimeout = errors.New("reconciliation run timed out")
)

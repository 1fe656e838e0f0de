package scheduler

import "errors"

// Submission errors
var (
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
	ErrJobQueueFull        = errors.New("scheduler: job queue full")
	// ErrJobAlreadyQueued is returned while the channel has a job queued or running
	ErrJobAlreadyQueued = errors.New("scheduler: import already queued for channel")
)

var (
	// ErrInvalidConfig wraps every rejected ImportSchedulerConfig field
	ErrInvalidConfig = errors.New("scheduler: invalid configuration")
	// ErrImportTimeout is returned when a run outlives the job timeout
	ErrImportTimeout = errors.New("scheduler: import run timed out")
)

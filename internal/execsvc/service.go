package execsvc

import (
	"context"

	"github.com/vk/stagewatch/internal/model"
)

// Service is the execution-engine contract this application consumes. Every
// call may fail with a plain error; callers decide whether that aborts an
// initial load or quietly ends a polling session.
type Service interface {
	// GetRun fetches the current metadata of a run.
	GetRun(ctx context.Context, runID string) (*model.Run, error)

	// GetTimeline fetches the flat record list describing the run's
	// execution tree at this point in time.
	GetTimeline(ctx context.Context, runID string) ([]model.TimelineRecord, error)

	// GetLogContent fetches the full content of one log of the run.
	GetLogContent(ctx context.Context, runID string, logID int) (string, error)

	// StartRun queues a new run of the pipeline.
	StartRun(ctx context.Context, pipelineID string) (*model.Run, error)

	// CancelRun asks the engine to cancel an in-flight run.
	CancelRun(ctx context.Context, runID string) error

	// RetryRun re-queues a finished run.
	RetryRun(ctx context.Context, runID string) (*model.Run, error)
}

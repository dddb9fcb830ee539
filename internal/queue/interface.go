package queue

import (
	"context"
	"time"

	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/internal/models"
)

// JobStore is the contract the queue manager needs from the job table. All
// mutable state lives behind it; the manager itself holds no job state, so
// any number of manager instances can share one store.
type JobStore interface {
	Create(ctx context.Context, job *models.SyncJob) error
	Get(ctx context.Context, id uint) (*models.SyncJob, error)
	List(ctx context.Context, status config.JobStatus, syncType config.SyncType, limit int) ([]models.SyncJob, error)
	ClaimNext(ctx context.Context) (*models.SyncJob, error)
	MarkCompleted(ctx context.Context, id uint) error
	ReturnForRetry(ctx context.Context, id uint, errMsg string) error
	MarkFailed(ctx context.Context, id uint, errMsg string) error
	CancelPending(ctx context.Context, syncType config.SyncType) (int64, error)
	DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[config.JobStatus]int64, error)
	RequeueStale(ctx context.Context, before time.Time) (int64, error)
}

// RunLogStore appends run attempt records.
type RunLogStore interface {
	Append(ctx context.Context, entry *models.SyncRunLog) error
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/internal/models"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new pending job row. Returns an error if the database
// operation fails.
func (r *JobRepository) Create(ctx context.Context, job *models.SyncJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// Get retrieves a single job by its ID.
func (r *JobRepository) Get(ctx context.Context, id uint) (*models.SyncJob, error) {
	var job models.SyncJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job not found: %w", err)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// List retrieves jobs, optionally filtered by status and sync type, newest
// first, capped at limit rows.
func (r *JobRepository) List(ctx context.Context, status config.JobStatus, syncType config.SyncType, limit int) ([]models.SyncJob, error) {
	query := r.db.WithContext(ctx).Model(&models.SyncJob{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if syncType != "" {
		query = query.Where("type = ?", syncType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var jobs []models.SyncJob
	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// ClaimNext atomically claims the next runnable job: highest priority first,
// FIFO within a priority. The transition to running is a conditional update
// keyed on status = 'pending', so a concurrent claimer can never double-run
// the same job; on a lost race the next candidate is tried. Returns
// (nil, nil) when no pending job exists.
func (r *JobRepository) ClaimNext(ctx context.Context) (*models.SyncJob, error) {
	for {
		var job models.SyncJob
		err := r.db.WithContext(ctx).
			Where("status = ?", config.JobStatusPending).
			Order("priority DESC, created_at ASC, id ASC").
			First(&job).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("select next job: %w", err)
		}

		now := time.Now().UTC()
		res := r.db.WithContext(ctx).Model(&models.SyncJob{}).
			Where("id = ? AND status = ?", job.ID, config.JobStatusPending).
			Updates(map[string]any{
				"status":     config.JobStatusRunning,
				"started_at": now,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("claim job %d: %w", job.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the race; someone else claimed or cancelled it.
			continue
		}

		job.Status = config.JobStatusRunning
		job.StartedAt = &now
		return &job, nil
	}
}

// MarkCompleted finishes a running job successfully.
func (r *JobRepository) MarkCompleted(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Model(&models.SyncJob{}).
		Where("id = ? AND status = ?", id, config.JobStatusRunning).
		Updates(map[string]any{
			"status":        config.JobStatusCompleted,
			"completed_at":  time.Now().UTC(),
			"error_message": "",
		}).Error; err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// ReturnForRetry puts a failed attempt back into the pending queue,
// incrementing retry_count atomically at the database level and recording
// the failure reason for operators. The job re-enters the priority queue at
// its original priority.
func (r *JobRepository) ReturnForRetry(ctx context.Context, id uint, errMsg string) error {
	if err := r.db.WithContext(ctx).Model(&models.SyncJob{}).
		Where("id = ? AND status = ?", id, config.JobStatusRunning).
		Updates(map[string]any{
			"status":        config.JobStatusPending,
			"retry_count":   gorm.Expr("retry_count + ?", 1),
			"error_message": errMsg,
			"started_at":    nil,
		}).Error; err != nil {
		return fmt.Errorf("return for retry: %w", err)
	}
	return nil
}

// MarkFailed settles a job into the failed state permanently. retry_count is
// left as-is: it counts retries granted, not attempts made.
func (r *JobRepository) MarkFailed(ctx context.Context, id uint, errMsg string) error {
	if err := r.db.WithContext(ctx).Model(&models.SyncJob{}).
		Where("id = ? AND status = ?", id, config.JobStatusRunning).
		Updates(map[string]any{
			"status":        config.JobStatusFailed,
			"completed_at":  time.Now().UTC(),
			"error_message": errMsg,
		}).Error; err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// CancelPending transitions pending jobs to cancelled, optionally filtered
// to one sync type. Running and terminal jobs are never touched.
func (r *JobRepository) CancelPending(ctx context.Context, syncType config.SyncType) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SyncJob{}).
		Where("status = ?", config.JobStatusPending)
	if syncType != "" {
		query = query.Where("type = ?", syncType)
	}

	res := query.Update("status", config.JobStatusCancelled)
	if res.Error != nil {
		return 0, fmt.Errorf("cancel pending jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteTerminalOlderThan removes terminal jobs whose completed_at (or
// created_at when the job never completed, e.g. cancelled) is before the
// cutoff. Pending and running rows survive regardless of age.
func (r *JobRepository) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status IN ?", []config.JobStatus{
			config.JobStatusCompleted,
			config.JobStatusFailed,
			config.JobStatusCancelled,
		}).
		Where("(completed_at IS NOT NULL AND completed_at < ?) OR (completed_at IS NULL AND created_at < ?)", cutoff, cutoff).
		Delete(&models.SyncJob{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete old jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountByStatus returns job counts grouped by status. Statuses with no rows
// are reported as zero.
func (r *JobRepository) CountByStatus(ctx context.Context) (map[config.JobStatus]int64, error) {
	var rows []struct {
		Status config.JobStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.SyncJob{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	counts := map[config.JobStatus]int64{
		config.JobStatusPending:   0,
		config.JobStatusRunning:   0,
		config.JobStatusCompleted: 0,
		config.JobStatusFailed:    0,
		config.JobStatusCancelled: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// RequeueStale returns jobs that have sat in running longer than the lock
// window back to pending. Covers worker crashes mid-job; retry_count still
// caps total attempts.
func (r *JobRepository) RequeueStale(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.SyncJob{}).
		Where("status = ? AND started_at < ?", config.JobStatusRunning, before).
		Updates(map[string]any{
			"status":     config.JobStatusPending,
			"started_at": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("requeue stale jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

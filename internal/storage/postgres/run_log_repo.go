package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/internal/models"
)

// RunLogRepository appends and reads the immutable run history in
// sync_logs. There is deliberately no update or delete here.
type RunLogRepository struct {
	db *gorm.DB
}

func NewRunLogRepository(db *gorm.DB) *RunLogRepository {
	return &RunLogRepository{db: db}
}

// Append writes one run attempt record.
func (r *RunLogRepository) Append(ctx context.Context, entry *models.SyncRunLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append run log: %w", err)
	}
	return nil
}

// ListSince returns all run logs started at or after the given time, oldest
// first.
func (r *RunLogRepository) ListSince(ctx context.Context, since time.Time) ([]models.SyncRunLog, error) {
	var logs []models.SyncRunLog
	if err := r.db.WithContext(ctx).
		Where("started_at >= ?", since).
		Order("started_at ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list run logs: %w", err)
	}
	return logs, nil
}

// ListRecent returns the most recent run logs, newest first.
func (r *RunLogRepository) ListRecent(ctx context.Context, limit int) ([]models.SyncRunLog, error) {
	if limit <= 0 {
		limit = 10
	}
	var logs []models.SyncRunLog
	if err := r.db.WithContext(ctx).
		Order("started_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list recent run logs: %w", err)
	}
	return logs, nil
}

// LastCompletedByType returns, per sync type, the completion time of the
// most recent successful run. Types that never completed are absent.
func (r *RunLogRepository) LastCompletedByType(ctx context.Context) (map[config.SyncType]time.Time, error) {
	var rows []struct {
		SyncType config.SyncType
		Last     time.Time
	}
	if err := r.db.WithContext(ctx).Model(&models.SyncRunLog{}).
		Select("sync_type, max(completed_at) as last").
		Where("status = ?", config.RunStatusCompleted).
		Group("sync_type").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("last completed by type: %w", err)
	}

	out := make(map[config.SyncType]time.Time, len(rows))
	for _, row := range rows {
		out[row.SyncType] = row.Last
	}
	return out, nil
}

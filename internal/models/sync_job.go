package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/openjuris/docketsync/internal/config"
)

// SyncJob is one scheduled unit of synchronization work against the court
// records API. Rows are created by the queue manager, mutated only by the
// worker loop, and deleted only by cleanup.
type SyncJob struct {
	ID           uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Type         config.SyncType  `gorm:"type:varchar(50);not null;index" json:"type"`
	Options      datatypes.JSON   `gorm:"type:jsonb" json:"options"`
	Priority     int              `gorm:"not null;default:50;index:idx_sync_queue_claim,priority:1" json:"priority"`
	Status       config.JobStatus `gorm:"type:varchar(50);not null;default:'pending';index" json:"status"`
	RetryCount   int              `gorm:"not null;default:0" json:"retry_count"`
	MaxRetries   int              `gorm:"not null;default:3" json:"max_retries"`
	ErrorMessage string           `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time        `gorm:"autoCreateTime;index:idx_sync_queue_claim,priority:2" json:"created_at"`
	StartedAt    *time.Time       `json:"started_at,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

func (SyncJob) TableName() string {
	return "sync_queue"
}

// Terminal reports whether the job can never transition again.
func (j *SyncJob) Terminal() bool {
	switch j.Status {
	case config.JobStatusCompleted, config.JobStatusFailed, config.JobStatusCancelled:
		return true
	}
	return false
}

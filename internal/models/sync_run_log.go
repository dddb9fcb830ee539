package models

import (
	"time"

	"github.com/openjuris/docketsync/internal/config"
)

// SyncRunLog is the append-only record of one concluded run attempt. One row
// is written per attempt, success or failure, so operator-facing success
// rates count every execution. Rows are never mutated or deleted here;
// retention is an external concern.
type SyncRunLog struct {
	ID           uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID        uint             `gorm:"not null;index" json:"job_id"`
	SyncType     config.SyncType  `gorm:"type:varchar(50);not null" json:"sync_type"`
	Status       config.RunStatus `gorm:"type:varchar(50);not null" json:"status"`
	StartedAt    time.Time        `gorm:"not null;index" json:"started_at"`
	CompletedAt  time.Time        `gorm:"not null" json:"completed_at"`
	DurationMs   int64            `gorm:"not null" json:"duration_ms"`
	ErrorMessage string           `gorm:"type:text" json:"error_message,omitempty"`
}

func (SyncRunLog) TableName() string {
	return "sync_logs"
}

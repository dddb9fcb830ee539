package dto

import (
	"encoding/json"
	"time"

	"github.com/openjuris/docketsync/internal/config"
)

// SyncActionRequest is the body of the operator action endpoint. Action
// decides which fields matter; unknown actions are rejected at the boundary.
type SyncActionRequest struct {
	Action   string          `json:"action" validate:"required,oneof=queue_job cancel_jobs cleanup restart_queue"`
	Type     string          `json:"type,omitempty" validate:"omitempty,oneof=decision judge"`
	Options  json.RawMessage `json:"options,omitempty"`
	Priority int             `json:"priority,omitempty" validate:"gte=0,lte=1000"`
	Days     int             `json:"days,omitempty" validate:"gte=0,lte=365"`
}

// CronTriggerRequest widens the standing daily jobs when an operator fires
// the cron route by hand.
type CronTriggerRequest struct {
	Force     bool `json:"force"`
	BatchSize int  `json:"batchSize" validate:"gte=0,lte=500"`
}

type JobResponse struct {
	ID           uint             `json:"id"`
	Type         config.SyncType  `json:"type"`
	Options      json.RawMessage  `json:"options"`
	Priority     int              `json:"priority"`
	Status       config.JobStatus `json:"status"`
	RetryCount   int              `json:"retry_count"`
	MaxRetries   int              `json:"max_retries"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	StartedAt    *time.Time       `json:"started_at,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

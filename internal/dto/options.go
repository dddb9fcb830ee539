package dto

// DecisionSyncOptions shapes the payload of a decision sync job. Validated
// against these tags when the job is claimed, not when it is enqueued.
type DecisionSyncOptions struct {
	Jurisdiction string `json:"jurisdiction,omitempty"`
	LookbackDays int    `json:"lookback_days,omitempty" validate:"gte=0,lte=3650"`
	BatchSize    int    `json:"batch_size,omitempty" validate:"gte=0,lte=500"`
	MaxRecords   int    `json:"max_records,omitempty" validate:"gte=0,lte=10000"`
	ForceRefresh bool   `json:"force_refresh,omitempty"`
}

// JudgeSyncOptions shapes the payload of a judge profile refresh job.
type JudgeSyncOptions struct {
	Jurisdiction   string `json:"jurisdiction,omitempty"`
	BatchSize      int    `json:"batch_size,omitempty" validate:"gte=0,lte=500"`
	MaxPerJudge    int    `json:"max_per_judge,omitempty" validate:"gte=0,lte=5000"`
	StaleOnly      bool   `json:"stale_only,omitempty"`
	StaleAfterDays int    `json:"stale_after_days,omitempty" validate:"gte=0,lte=3650"`
	ForceRefresh   bool   `json:"force_refresh,omitempty"`
}

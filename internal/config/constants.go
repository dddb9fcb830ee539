package config

// JobStatus is the lifecycle state of a row in sync_queue.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// TerminalStatuses never transition further; only these are eligible for
// cleanup.
var TerminalStatuses = []JobStatus{JobStatusCompleted, JobStatusFailed, JobStatusCancelled}

// SyncType identifies which synchronization routine a job runs.
type SyncType string

const (
	SyncTypeDecision SyncType = "decision"
	SyncTypeJudge    SyncType = "judge"
)

var AllowedSyncTypes = []SyncType{SyncTypeDecision, SyncTypeJudge}

// Standing priorities. Manual jobs jump the queue, daily decision syncs beat
// bulk judge refreshes, everything else defaults to PriorityNormal.
const (
	PriorityManual   = 200
	PriorityDecision = 100
	PriorityNormal   = 50
)

// RunStatus is the outcome recorded in sync_logs for one attempt.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Package queue owns the sync job lifecycle: enqueue, claim-and-run,
// retry-or-fail, cancel, and cleanup. The manager is stateless; every
// transition is a conditional update against the job store, so concurrent
// manager instances sharing one database behave correctly.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/openjuris/docketsync/common"
	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/internal/models"
)

// Stats is a point-in-time count of jobs by status.
type Stats struct {
	Pending   int64 `json:"pending"`
	Running   int64 `json:"running"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Cancelled int64 `json:"cancelled"`
}

// Backlog is the work not yet finished: queued plus in-flight.
func (s Stats) Backlog() int64 {
	return s.Pending + s.Running
}

type Manager struct {
	jobs     JobStore
	logs     RunLogStore
	registry *Registry

	maxRetries   int
	pollInterval time.Duration
	lockDuration time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Settings bounds the worker loop and the default retry budget.
type Settings struct {
	MaxRetries   int
	PollInterval time.Duration
	LockDuration time.Duration
}

func NewManager(jobs JobStore, logs RunLogStore, registry *Registry, settings Settings) *Manager {
	if settings.MaxRetries <= 0 {
		settings.MaxRetries = 3
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = 5 * time.Second
	}
	if settings.LockDuration <= 0 {
		settings.LockDuration = 10 * time.Minute
	}
	return &Manager{
		jobs:         jobs,
		logs:         logs,
		registry:     registry,
		maxRetries:   settings.MaxRetries,
		pollInterval: settings.PollInterval,
		lockDuration: settings.LockDuration,
	}
}

// AddJob validates the type and options, then inserts one pending job.
// Malformed options are rejected here rather than silently accepted; they
// are checked again at claim time before dispatch. Returns the new job id.
func (m *Manager) AddJob(ctx context.Context, syncType config.SyncType, options json.RawMessage, priority int) (uint, error) {
	if err := ctx.Err(); err != nil {
		return 0, common.Errf(http.StatusRequestTimeout, "request canceled or timed out")
	}

	if !m.registry.Known(syncType) {
		return 0, common.NewAPIError(
			http.StatusBadRequest,
			"unknown sync type",
			map[string]any{
				"provided": syncType,
				"allowed":  m.registry.Types(),
			},
		)
	}

	if len(options) > 0 && !json.Valid(options) {
		return 0, common.ValidationErr("options must be valid JSON")
	}

	if err := m.registry.ValidateOptions(syncType, options); err != nil {
		return 0, err
	}

	if priority <= 0 {
		priority = config.PriorityNormal
	}

	job := models.SyncJob{
		Type:       syncType,
		Options:    datatypes.JSON(options),
		Priority:   priority,
		Status:     config.JobStatusPending,
		MaxRetries: m.maxRetries,
	}

	if err := m.jobs.Create(ctx, &job); err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return 0, common.Errf(http.StatusRequestTimeout, "request was canceled")
		default:
			logrus.WithField("error", err.Error()).Error("enqueue failed")
			return 0, common.InternalErr("failed to add job to queue")
		}
	}

	logrus.WithFields(logrus.Fields{
		"job_id":   job.ID,
		"type":     syncType,
		"priority": priority,
	}).Info("job enqueued")
	return job.ID, nil
}

// CancelJobs transitions pending jobs to cancelled, optionally only those of
// one type. Running jobs are left to finish on their own. Returns the number
// of jobs cancelled.
func (m *Manager) CancelJobs(ctx context.Context, syncType config.SyncType) (int64, error) {
	if syncType != "" && !m.registry.Known(syncType) {
		return 0, common.ValidationErr("unknown sync type: %s", syncType)
	}

	count, err := m.jobs.CancelPending(ctx, syncType)
	if err != nil {
		logrus.WithField("error", err.Error()).Error("cancel failed")
		return 0, common.InternalErr("failed to cancel jobs")
	}

	logrus.WithFields(logrus.Fields{"cancelled": count, "type": syncType}).Info("jobs cancelled")
	return count, nil
}

// CleanupOldJobs deletes terminal jobs older than the given number of days,
// judged by completed_at or created_at for jobs that never completed.
// Pending and running jobs survive regardless of age.
func (m *Manager) CleanupOldJobs(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, common.ValidationErr("days must be at least 1")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	count, err := m.jobs.DeleteTerminalOlderThan(ctx, cutoff)
	if err != nil {
		logrus.WithField("error", err.Error()).Error("cleanup failed")
		return 0, common.InternalErr("failed to clean up old jobs")
	}

	logrus.WithFields(logrus.Fields{"deleted": count, "days": days}).Info("old jobs cleaned up")
	return count, nil
}

// GetStats returns current job counts by status.
func (m *Manager) GetStats(ctx context.Context) (Stats, error) {
	counts, err := m.jobs.CountByStatus(ctx)
	if err != nil {
		return Stats{}, common.InternalErr("failed to read queue stats")
	}
	return Stats{
		Pending:   counts[config.JobStatusPending],
		Running:   counts[config.JobStatusRunning],
		Completed: counts[config.JobStatusCompleted],
		Failed:    counts[config.JobStatusFailed],
		Cancelled: counts[config.JobStatusCancelled],
	}, nil
}

// ListJobs exposes recent jobs for the operator surface.
func (m *Manager) ListJobs(ctx context.Context, status config.JobStatus, syncType config.SyncType, limit int) ([]models.SyncJob, error) {
	if status != "" {
		switch status {
		case config.JobStatusPending, config.JobStatusRunning, config.JobStatusCompleted,
			config.JobStatusFailed, config.JobStatusCancelled:
		default:
			return nil, common.ValidationErr("unknown status: %s", status)
		}
	}
	if syncType != "" && !m.registry.Known(syncType) {
		return nil, common.ValidationErr("unknown sync type: %s", syncType)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	jobs, err := m.jobs.List(ctx, status, syncType, limit)
	if err != nil {
		return nil, common.InternalErr("failed to list jobs")
	}
	return jobs, nil
}

// StartProcessing launches the worker loop. Calling it while the loop is
// already running is a no-op.
func (m *Manager) StartProcessing() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.runLoop(ctx, m.done)
	logrus.Info("queue processing started")
}

// StopProcessing stops the worker loop and waits for an in-flight job to
// finish. Idempotent.
func (m *Manager) StopProcessing() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logrus.Info("queue processing stopped")
}

// Processing reports whether the worker loop is running.
func (m *Manager) Processing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

func (m *Manager) runLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	m.recoverStaleJobs(ctx)

	idleDelay := m.pollInterval
	maxDelay := time.Minute

	for {
		job, err := m.jobs.ClaimNext(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			// Store unavailable: log, back off, keep the loop alive.
			logrus.WithField("error", err.Error()).Error("claim failed, backing off")
			idleDelay = min(idleDelay*2, maxDelay)
		case job == nil:
			idleDelay = m.pollInterval
		default:
			m.execute(ctx, job)
			idleDelay = m.pollInterval
			continue
		}

		select {
		case <-time.After(idleDelay):
		case <-ctx.Done():
			return
		}
	}
}

// recoverStaleJobs requeues jobs stranded in running by a crashed worker.
func (m *Manager) recoverStaleJobs(ctx context.Context) {
	before := time.Now().UTC().Add(-2 * m.lockDuration)
	n, err := m.jobs.RequeueStale(ctx, before)
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("stale job recovery failed")
		return
	}
	if n > 0 {
		logrus.WithField("requeued", n).Info("recovered stale running jobs")
	}
}

// execute runs one claimed job to conclusion and records the attempt in the
// run log. A failure never propagates: the job either re-enters the queue
// or settles into failed.
func (m *Manager) execute(ctx context.Context, job *models.SyncJob) {
	started := time.Now().UTC()
	if job.StartedAt != nil {
		started = *job.StartedAt
	}

	log := logrus.WithFields(logrus.Fields{
		"job_id":  job.ID,
		"type":    job.Type,
		"attempt": job.RetryCount + 1,
	})
	log.Info("job started")

	runCtx, cancelRun := context.WithTimeout(ctx, m.lockDuration)
	runErr := m.registry.Run(runCtx, job.Type, json.RawMessage(job.Options))
	cancelRun()

	finished := time.Now().UTC()
	durationMs := finished.Sub(started).Milliseconds()

	if runErr == nil {
		if err := m.jobs.MarkCompleted(ctx, job.ID); err != nil {
			log.WithField("error", err.Error()).Error("failed to mark job completed")
		}
		m.appendRunLog(ctx, job, config.RunStatusCompleted, started, finished, durationMs, "")
		log.WithField("duration_ms", durationMs).Info("job completed")
		return
	}

	// One run-log row per attempt, success or failure, so the success rate
	// reflects every execution.
	m.appendRunLog(ctx, job, config.RunStatusFailed, started, finished, durationMs, runErr.Error())

	maxRetries := job.MaxRetries
	if maxRetries <= 0 {
		maxRetries = m.maxRetries
	}

	if job.RetryCount < maxRetries {
		if err := m.jobs.ReturnForRetry(ctx, job.ID, runErr.Error()); err != nil {
			log.WithField("error", err.Error()).Error("failed to requeue job for retry")
			return
		}
		log.WithFields(logrus.Fields{
			"error":       runErr.Error(),
			"retry_count": job.RetryCount + 1,
		}).Warn("job failed, requeued for retry")
		return
	}

	if err := m.jobs.MarkFailed(ctx, job.ID, runErr.Error()); err != nil {
		log.WithField("error", err.Error()).Error("failed to mark job failed")
		return
	}
	log.WithField("error", runErr.Error()).Error("job failed permanently")
}

func (m *Manager) appendRunLog(ctx context.Context, job *models.SyncJob, status config.RunStatus, started, finished time.Time, durationMs int64, errMsg string) {
	entry := &models.SyncRunLog{
		JobID:        job.ID,
		SyncType:     job.Type,
		Status:       status,
		StartedAt:    started,
		CompletedAt:  finished,
		DurationMs:   durationMs,
		ErrorMessage: errMsg,
	}
	if err := m.logs.Append(ctx, entry); err != nil {
		logrus.WithFields(logrus.Fields{
			"job_id": job.ID,
			"error":  err.Error(),
		}).Error("failed to append run log")
	}
}

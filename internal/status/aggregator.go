// Package status computes point-in-time health snapshots from the job table
// and the run log. Everything here is read-only derived data; nothing is
// persisted.
package status

import (
	"context"
	"math"
	"time"

	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/internal/models"
	"github.com/openjuris/docketsync/internal/queue"
)

// Health classifications, worst first.
const (
	HealthCritical = "critical"
	HealthWarning  = "warning"
	HealthCaution  = "caution"
	HealthHealthy  = "healthy"
)

const uptimeSampleSize = 50

// JobCounter is the slice of the job store the aggregator reads.
type JobCounter interface {
	CountByStatus(ctx context.Context) (map[config.JobStatus]int64, error)
}

// RunLogReader is the slice of the run-log store the aggregator reads.
type RunLogReader interface {
	ListSince(ctx context.Context, since time.Time) ([]models.SyncRunLog, error)
	ListRecent(ctx context.Context, limit int) ([]models.SyncRunLog, error)
	LastCompletedByType(ctx context.Context) (map[config.SyncType]time.Time, error)
}

// Thresholds drive the health ladder. Defaults match the operator runbook;
// deployments tune them through config.
type Thresholds struct {
	CriticalRate    float64
	WarningRate     float64
	CautionRate     float64
	CriticalBacklog int64
	WarningBacklog  int64
	CautionBacklog  int64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalRate:    75,
		WarningRate:     90,
		CautionRate:     95,
		CriticalBacklog: 100,
		WarningBacklog:  50,
		CautionBacklog:  20,
	}
}

// WindowStats summarizes run attempts over a trailing window.
type WindowStats struct {
	TotalRuns     int     `json:"total_runs"`
	CompletedRuns int     `json:"completed_runs"`
	FailedRuns    int     `json:"failed_runs"`
	SuccessRate   float64 `json:"success_rate"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

// Freshness reports when a sync type last completed successfully.
type Freshness struct {
	LastCompleted time.Time `json:"last_completed"`
	AgeHours      float64   `json:"age_hours"`
}

type Snapshot struct {
	Health      string                         `json:"health"`
	GeneratedAt time.Time                      `json:"generated_at"`
	Queue       QueueSection                   `json:"queue"`
	Performance PerformanceSection             `json:"performance"`
	Freshness   map[config.SyncType]*Freshness `json:"freshness"`
	RecentLogs  []models.SyncRunLog            `json:"recent_logs"`
}

type QueueSection struct {
	queue.Stats
	Backlog int64 `json:"backlog"`
}

type PerformanceSection struct {
	Last24h WindowStats `json:"last_24h"`
	Last7d  WindowStats `json:"last_7d"`
	Uptime  float64     `json:"uptime"`
}

type Aggregator struct {
	jobs       JobCounter
	logs       RunLogReader
	thresholds Thresholds
	now        func() time.Time
}

func NewAggregator(jobs JobCounter, logs RunLogReader, thresholds Thresholds) *Aggregator {
	return &Aggregator{jobs: jobs, logs: logs, thresholds: thresholds, now: time.Now}
}

// BuildSnapshot computes the full health view: queue depth, success rates
// over 24h and 7d, a recency-weighted uptime proxy, per-type freshness, and
// the latest run logs.
func (a *Aggregator) BuildSnapshot(ctx context.Context) (*Snapshot, error) {
	now := a.now().UTC()

	counts, err := a.jobs.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := queue.Stats{
		Pending:   counts[config.JobStatusPending],
		Running:   counts[config.JobStatusRunning],
		Completed: counts[config.JobStatusCompleted],
		Failed:    counts[config.JobStatusFailed],
		Cancelled: counts[config.JobStatusCancelled],
	}

	logs24h, err := a.logs.ListSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	logs7d, err := a.logs.ListSince(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	uptimeSample, err := a.logs.ListRecent(ctx, uptimeSampleSize)
	if err != nil {
		return nil, err
	}
	recent, err := a.logs.ListRecent(ctx, 10)
	if err != nil {
		return nil, err
	}
	lastCompleted, err := a.logs.LastCompletedByType(ctx)
	if err != nil {
		return nil, err
	}

	window24h := summarize(logs24h)
	backlog := stats.Backlog()

	freshness := make(map[config.SyncType]*Freshness, len(config.AllowedSyncTypes))
	for _, t := range config.AllowedSyncTypes {
		if last, ok := lastCompleted[t]; ok {
			freshness[t] = &Freshness{
				LastCompleted: last,
				AgeHours:      round2(now.Sub(last).Hours()),
			}
		} else {
			freshness[t] = nil
		}
	}

	return &Snapshot{
		Health:      a.classify(window24h.SuccessRate, backlog),
		GeneratedAt: now,
		Queue: QueueSection{
			Stats:   stats,
			Backlog: backlog,
		},
		Performance: PerformanceSection{
			Last24h: window24h,
			Last7d:  summarize(logs7d),
			Uptime:  uptime(uptimeSample),
		},
		Freshness:  freshness,
		RecentLogs: recent,
	}, nil
}

// classify walks the threshold ladder over (success rate, backlog), worst
// classification first.
func (a *Aggregator) classify(successRate float64, backlog int64) string {
	t := a.thresholds
	switch {
	case successRate < t.CriticalRate || backlog > t.CriticalBacklog:
		return HealthCritical
	case successRate < t.WarningRate || backlog > t.WarningBacklog:
		return HealthWarning
	case successRate < t.CautionRate || backlog > t.CautionBacklog:
		return HealthCaution
	default:
		return HealthHealthy
	}
}

func summarize(logs []models.SyncRunLog) WindowStats {
	stats := WindowStats{TotalRuns: len(logs)}
	if stats.TotalRuns == 0 {
		return stats
	}

	var durationSum int64
	for _, entry := range logs {
		if entry.Status == config.RunStatusCompleted {
			stats.CompletedRuns++
		} else {
			stats.FailedRuns++
		}
		durationSum += entry.DurationMs
	}

	stats.SuccessRate = round1(float64(stats.CompletedRuns) / float64(stats.TotalRuns) * 100)
	stats.AvgDurationMs = round1(float64(durationSum) / float64(stats.TotalRuns))
	return stats
}

// uptime is completed/total over the most recent sample of run logs: a
// recency-weighted availability proxy, not wall-clock uptime.
func uptime(sample []models.SyncRunLog) float64 {
	if len(sample) == 0 {
		return 0
	}
	completed := 0
	for _, entry := range sample {
		if entry.Status == config.RunStatusCompleted {
			completed++
		}
	}
	return round2(float64(completed) / float64(len(sample)) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

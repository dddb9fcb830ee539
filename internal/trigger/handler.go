// Package trigger is the operator surface of the sync engine: the admin
// action endpoint, the cron entrypoint, and the status route. Handlers only
// translate HTTP to queue manager calls; auth happens in middleware before
// anything here runs.
package trigger

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openjuris/docketsync/common"
	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/internal/dto"
	"github.com/openjuris/docketsync/internal/queue"
	"github.com/openjuris/docketsync/internal/status"
	"github.com/openjuris/docketsync/middleware"
)

type Handler struct {
	manager    *queue.Manager
	aggregator *status.Aggregator
}

func NewHandler(manager *queue.Manager, aggregator *status.Aggregator) *Handler {
	return &Handler{manager: manager, aggregator: aggregator}
}

// RegisterRoutes mounts the sync routes. Admin routes require the API key;
// the cron route requires the platform scheduler's secret.
func (h *Handler) RegisterRoutes(r *gin.Engine, cfg *config.Config) {
	api := r.Group("/api/v1/sync")

	admin := api.Group("", middleware.RequireAPIKey(cfg.AdminAPIKey))
	admin.GET("/status", h.Status)
	admin.GET("/jobs", h.ListJobs)
	admin.POST("", h.Action)

	api.POST("/cron", middleware.RequireCronSecret(cfg.CronSecret), h.Cron)
}

// Status returns the aggregator's health snapshot.
func (h *Handler) Status(c *gin.Context) {
	snapshot, err := h.aggregator.BuildSnapshot(c.Request.Context())
	if err != nil {
		c.Error(common.InternalErr("failed to build status snapshot"))
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ListJobs returns recent jobs, filterable by status and type.
func (h *Handler) ListJobs(c *gin.Context) {
	jobs, err := h.manager.ListJobs(
		c.Request.Context(),
		config.JobStatus(c.Query("status")),
		config.SyncType(c.Query("type")),
		0,
	)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

// Action dispatches an operator action onto the queue manager. Unknown
// actions are a client error.
func (h *Handler) Action(c *gin.Context) {
	var req dto.SyncActionRequest
	if !middleware.Bind(c, &req) {
		return
	}

	ctx := c.Request.Context()

	switch req.Action {
	case "queue_job":
		if req.Type == "" {
			c.Error(common.ValidationErr("type is required for queue_job"))
			return
		}
		priority := req.Priority
		if priority == 0 {
			priority = config.PriorityManual
		}
		id, err := h.manager.AddJob(ctx, config.SyncType(req.Type), req.Options, priority)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"job_id": id, "status": "queued"})

	case "cancel_jobs":
		count, err := h.manager.CancelJobs(ctx, config.SyncType(req.Type))
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cancelled": count})

	case "cleanup":
		days := req.Days
		if days == 0 {
			days = 30
		}
		count, err := h.manager.CleanupOldJobs(ctx, days)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": count})

	case "restart_queue":
		h.manager.StopProcessing()
		h.manager.StartProcessing()
		c.JSON(http.StatusOK, gin.H{"status": "restarted"})

	default:
		// Unreachable given the binding validation, kept for safety.
		c.Error(common.ValidationErr("unknown action: %s", req.Action))
	}
}

// Cron enqueues the two standing daily jobs. The optional body widens the
// lookback and caps for a manual run.
func (h *Handler) Cron(c *gin.Context) {
	var req dto.CronTriggerRequest
	if c.Request.ContentLength > 0 {
		if !middleware.Bind(c, &req) {
			return
		}
	}

	ids, err := EnqueueStandingJobs(c.Request.Context(), h.manager, req.Force, req.BatchSize)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queued": ids})
}

// EnqueueStandingJobs queues the daily decision sync (short lookback, high
// priority) and the judge profile refresh (stale-only, normal priority).
// force widens the decision lookback and raises the per-judge record cap.
func EnqueueStandingJobs(ctx context.Context, manager *queue.Manager, force bool, batchSize int) ([]uint, error) {
	decisionOpts := dto.DecisionSyncOptions{
		LookbackDays: 2,
		BatchSize:    batchSize,
		ForceRefresh: force,
	}
	judgeOpts := dto.JudgeSyncOptions{
		BatchSize:   batchSize,
		StaleOnly:   true,
		MaxPerJudge: 500,
	}
	if force {
		decisionOpts.LookbackDays = 7
		judgeOpts.MaxPerJudge = 2000
		judgeOpts.StaleOnly = false
	}

	decisionRaw, err := marshalOptions(decisionOpts)
	if err != nil {
		return nil, err
	}
	judgeRaw, err := marshalOptions(judgeOpts)
	if err != nil {
		return nil, err
	}

	decisionID, err := manager.AddJob(ctx, config.SyncTypeDecision, decisionRaw, config.PriorityDecision)
	if err != nil {
		return nil, err
	}
	judgeID, err := manager.AddJob(ctx, config.SyncTypeJudge, judgeRaw, config.PriorityNormal)
	if err != nil {
		return nil, err
	}

	return []uint{decisionID, judgeID}, nil
}

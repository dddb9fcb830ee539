package trigger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/openjuris/docketsync/internal/queue"
)

func marshalOptions(opts any) (json.RawMessage, error) {
	raw, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("marshal options: %w", err)
	}
	return raw, nil
}

// Scheduler fires the standing daily jobs on a cron expression for worker
// deployments that do not rely on a platform cron caller.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a scheduler using the standard 5-field
// cron syntax, with panic recovery around every entry.
func NewScheduler() *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// ScheduleStandingJobs registers the daily enqueue at the given cron spec.
func (s *Scheduler) ScheduleStandingJobs(spec string, manager *queue.Manager) error {
	_, err := s.cron.AddFunc(spec, func() {
		ids, err := EnqueueStandingJobs(context.Background(), manager, false, 0)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("scheduled enqueue failed")
			return
		}
		logrus.WithField("job_ids", ids).Info("standing sync jobs enqueued")
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Stop halts the scheduler and waits for in-flight entries.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

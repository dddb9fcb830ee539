package syncer

import (
	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/internal/dto"
	"github.com/openjuris/docketsync/internal/queue"
)

// RegisterHandlers binds the sync routines into the queue's job-type
// registry with their option schemas.
func RegisterHandlers(reg *queue.Registry, s *Syncer) {
	queue.Register[dto.DecisionSyncOptions](reg, config.SyncTypeDecision, s.SyncDecisions)
	queue.Register[dto.JudgeSyncOptions](reg, config.SyncTypeJudge, s.SyncJudges)
}

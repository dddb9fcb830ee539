package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/internal/courtapi"
	"github.com/openjuris/docketsync/internal/queue"
	"github.com/openjuris/docketsync/internal/storage/postgres"
	"github.com/openjuris/docketsync/internal/syncer"
	"github.com/openjuris/docketsync/internal/trigger"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	cfg.ConfigureLogging()

	db, err := postgres.ConnectDB(ctx, nil)
	if err != nil {
		logrus.Fatalf("database connection failed: %v", err)
	}

	jobRepo := postgres.NewJobRepository(db)
	logRepo := postgres.NewRunLogRepository(db)

	registry := queue.NewRegistry()
	client := courtapi.NewClient(cfg.CourtAPIBaseURL, cfg.CourtAPIToken, cfg.CourtAPIDelay, cfg.CourtAPITimeout)
	syncer.RegisterHandlers(registry, syncer.NewSyncer(client, postgres.NewRecordSink(db)))

	manager := queue.NewManager(jobRepo, logRepo, registry, queue.Settings{
		MaxRetries:   cfg.MaxRetries,
		PollInterval: cfg.PollInterval,
		LockDuration: cfg.LockDuration,
	})

	manager.StartProcessing()

	scheduler := trigger.NewScheduler()
	if err := scheduler.ScheduleStandingJobs(cfg.CronSpec, manager); err != nil {
		logrus.Fatalf("failed to schedule standing jobs: %v", err)
	}

	logrus.Info("worker active")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	scheduler.Stop()
	manager.StopProcessing()
	logrus.Info("worker stopped")
}

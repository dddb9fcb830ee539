package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/internal/courtapi"
	"github.com/openjuris/docketsync/internal/queue"
	"github.com/openjuris/docketsync/internal/status"
	"github.com/openjuris/docketsync/internal/storage/postgres"
	"github.com/openjuris/docketsync/internal/syncer"
	"github.com/openjuris/docketsync/internal/trigger"
	"github.com/openjuris/docketsync/middleware"
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

	aggregator := status.NewAggregator(jobRepo, logRepo, status.Thresholds{
		CriticalRate:    cfg.HealthCriticalRate,
		WarningRate:     cfg.HealthWarningRate,
		CautionRate:     cfg.HealthCautionRate,
		CriticalBacklog: cfg.HealthCriticalBacklog,
		WarningBacklog:  cfg.HealthWarningBacklog,
		CautionBacklog:  cfg.HealthCautionBacklog,
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.ErrorHandler())
	trigger.NewHandler(manager, aggregator).RegisterRoutes(r, cfg)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}

	go func() {
		logrus.WithField("addr", cfg.ListenAddr).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("shutdown error: %v", err)
	}
	logrus.Info("api stopped")
}

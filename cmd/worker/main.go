// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/leadmasterhq/leadmaster-backend/internal/config"
	"github.com/leadmasterhq/leadmaster-backend/internal/db"
	"github.com/leadmasterhq/leadmaster-backend/internal/logger"
	"github.com/leadmasterhq/leadmaster-backend/internal/repository"
	"github.com/leadmasterhq/leadmaster-backend/internal/service"
	"github.com/leadmasterhq/leadmaster-backend/internal/smtp"
	"github.com/leadmasterhq/leadmaster-backend/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// OS environment variables may carry everything.
	}

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat).WithComponent("worker")

	// A partially configured worker must never reach the polling loop.
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration invalid, refusing to start")
	}

	database, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}
	defer database.Close()

	hostname, _ := os.Hostname()
	workerID := fmt.Sprintf("%s-%s", hostname, uuid.New().String()[:8])

	delivery := &service.DeliveryService{
		LeadRepo:  &repository.LeadRepository{DB: database},
		Gateway:   smtp.NewGateway(cfg.SMTP),
		Throttler: worker.NewThrottler(cfg.Worker.ThrottleMin, cfg.Worker.ThrottleMax),
		SMTP:      cfg.SMTP,
		Worker:    cfg.Worker,
		WorkerID:  workerID,
		Log:       log,
	}

	poller := &worker.Poller{
		Interval: cfg.Worker.PollInterval,
		Delivery: delivery,
		Log:      log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("worker_id", workerID).
		Dur("poll_interval", cfg.Worker.PollInterval).
		Int("batch_size", cfg.Worker.BatchSize).
		Int("max_attempts", cfg.Worker.MaxAttempts).
		Msg("worker running")

	poller.Run(ctx)

	log.Info().Msg("worker shut down")
}

package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"presensi/internal/attendance"
	"presensi/internal/config"
	"presensi/internal/jobs"
	"presensi/internal/logging"
	"presensi/internal/queue"
	"presensi/internal/school"
	"presensi/internal/store"
	"presensi/internal/tally"
)

// The worker labels accepted check-ins against the school's entry deadline,
// keeps the daily tallies warm, and sweeps ended days for missing check-outs.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, store.Key("scans"))
	}

	attRepo := attendance.NewRepository(db.Client)
	schoolRepo := school.NewRepository(db.Client)
	tallies := tally.New(redisClient.Client)
	labeler := jobs.NewLabeler(attRepo, schoolRepo, tallies, cfg.DefaultTimezone, log)

	scheduler := cron.New()
	if err := jobs.ScheduleCloseOut(scheduler, cfg.CloseOutSpec, schoolRepo, attRepo, cfg.DefaultTimezone, log); err != nil {
		log.Fatalf("close-out schedule invalid: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Info("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "scan" {
			continue
		}

		var scan attendance.ScanMessage
		if err := json.Unmarshal(msg.Body, &scan); err != nil {
			log.WithError(err).Warn("bad scan message, skipping")
			continue
		}

		if err := labeler.HandleScan(ctx, scan); err != nil {
			log.WithError(err).WithField("record", scan.RecordID).Warn("scan processing failed")
		}
	}

	log.Info("worker stopped")
}

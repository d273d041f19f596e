package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"classtrack/internal/attendance"
	"classtrack/internal/cache"
	"classtrack/internal/config"
	"classtrack/internal/logger"
	"classtrack/internal/queue"
	"classtrack/internal/roster"
	"classtrack/internal/store"
	"classtrack/internal/task"
)

// Worker consumes record-change events and refreshes the cached
// per-student summary view the admin dashboard reads.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

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
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	attRepo := attendance.NewRepository(db.Client)
	taskRepo := task.NewRepository(db.Client)
	rosterRepo := roster.NewRepository(db.Client)

	eval := attendance.WindowEvaluator{FixedDuration: cfg.FixedWindow}
	if cfg.WindowPolicy == "fixed" {
		eval.Policy = attendance.PolicyFixedDuration
	}
	svc := attendance.NewService(attRepo, taskRepo, rosterRepo, eval, log)
	summaries := cache.NewSummaryCache(redisClient.Client, cfg.SummaryTTL)

	events, err := q.Consume(ctx)
	if err != nil {
		log.Fatal("queue consume init failed", zap.Error(err))
	}

	log.Info("worker started, waiting for events")
	for evt := range events {
		switch evt.Type {
		case queue.TypeAttendanceChanged, queue.TypeTaskChanged, queue.TypeTaskDeleted:
		default:
			continue
		}

		refreshed, err := svc.Summaries(ctx)
		if err != nil {
			log.Warn("summary rebuild failed", zap.String("event", evt.Type), zap.Error(err))
			continue
		}
		if err := summaries.Put(ctx, refreshed); err != nil {
			log.Warn("summary cache write failed", zap.Error(err))
			continue
		}
		log.Info("summaries refreshed",
			zap.String("event", evt.Type),
			zap.Int("students", len(refreshed)))
	}

	log.Info("worker stopped")
}

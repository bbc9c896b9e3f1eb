package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/internal/config"
	pgInfra "github.com/tickdone/backend/internal/infrastructure/postgres"
	redisInfra "github.com/tickdone/backend/internal/infrastructure/redis"
	"github.com/tickdone/backend/internal/reminder"
	"github.com/tickdone/backend/pkg/logger"
	"github.com/tickdone/backend/repository/postgres"
	redisRepo "github.com/tickdone/backend/repository/redis"
)

// The sweeper performs one global reminder sweep and exits. An external
// scheduler (cron, systemd timer) invokes it on a fixed period. It connects
// with elevated store credentials so it can observe every owner's todos.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbCfg := cfg.Database
	if cfg.Sweep.DatabaseURL != "" {
		dbCfg.URL = cfg.Sweep.DatabaseURL
	}

	pool, err := pgInfra.NewPool(ctx, dbCfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pool.Close()

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()

	todoRepo := postgres.NewTodoRepository(pool)
	deviceRepo := redisRepo.NewDeviceRepository(redisClient)
	journal := postgres.NewDeliveryLogRepository(pool)

	notifier := reminder.NewPushNotifier(deviceRepo, &fasthttp.Client{}, reminder.PushConfig{
		Endpoint:    cfg.Push.Endpoint,
		ServerKey:   cfg.Push.ServerKey,
		Icon:        cfg.Push.Icon,
		ClickAction: cfg.Push.ClickAction,
		Timeout:     cfg.Push.Timeout,
	}, zapLogger)

	agent := reminder.NewAgent(todoRepo, notifier, journal, zapLogger, reminder.Config{
		Name:      domain.AgentSweep,
		BatchSize: cfg.Sweep.BatchSize,
	})

	processed, err := agent.RunCycle(ctx)
	if err != nil {
		zapLogger.Error("sweep aborted", zap.Error(err))
		os.Exit(1)
	}

	zapLogger.Info("sweep complete", zap.Int("processed", processed))
}

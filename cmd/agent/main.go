package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/internal/config"
	pgInfra "github.com/tickdone/backend/internal/infrastructure/postgres"
	"github.com/tickdone/backend/internal/reminder"
	"github.com/tickdone/backend/pkg/logger"
	"github.com/tickdone/backend/repository/postgres"
)

// The agent is the foreground poller: it watches one signed-in user's
// reminders on a fixed interval and raises local notifications with an
// audible cue. Completed todos never notify here; that is this agent's
// policy, not a store rule. Stops on SIGINT/SIGTERM; an in-flight cycle
// finishes first.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.Reminder.UserID == "" {
		log.Fatal("REMINDER_USER_ID is required")
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pool.Close()

	todoRepo := postgres.NewTodoRepository(pool)
	journal := postgres.NewDeliveryLogRepository(pool)

	notifier := reminder.NewLocalNotifier(nil, func(title, body string) error {
		_, err := fmt.Fprintf(os.Stdout, "%s: %s\n", title, body)
		return err
	}, nil, zapLogger)

	agent := reminder.NewAgent(todoRepo, notifier, journal, zapLogger, reminder.Config{
		Name:             domain.AgentForeground,
		UserID:           cfg.Reminder.UserID,
		ExcludeCompleted: true,
		Interval:         cfg.Reminder.Interval,
		BatchSize:        cfg.Reminder.BatchSize,
	})

	agent.Run(ctx)
}

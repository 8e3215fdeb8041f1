package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docsmait/docsmait/internal/app/config"
	appservices "github.com/docsmait/docsmait/internal/app/services"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/pkg/logger"
)

// The worker periodically nudges reviewers who have sat on a pending
// assignment for longer than the configured reminder window.
func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	sm, err := appservices.NewServiceManager(cfg, db)
	if err != nil {
		log.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer sm.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("review reminder worker started",
		"poll_interval", cfg.Review.PollInterval.String(),
		"reminder_after", cfg.Review.ReminderAfter.String(),
	)

	ticker := time.NewTicker(cfg.Review.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopped")
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, cfg.Review.PollInterval)
			sent, err := sm.Reviews.RemindStalledReviews(runCtx, cfg.Review.ReminderAfter)
			cancel()
			if err != nil {
				log.Error("reminder scan failed", "error", err)
				continue
			}
			if sent > 0 {
				log.Info("review reminders sent", "count", sent)
			}
		}
	}
}

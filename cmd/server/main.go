package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docsmait/docsmait/internal/app/config"
	"github.com/docsmait/docsmait/internal/app/server"
	appservices "github.com/docsmait/docsmait/internal/app/services"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/pkg/logger"
)

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

	srv := server.New(cfg, log, sm)

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

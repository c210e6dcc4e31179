package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/launchpad-ai/launchpad-backend/config"
	"github.com/launchpad-ai/launchpad-backend/internal/bootstrap"
	"github.com/launchpad-ai/launchpad-backend/internal/dispatch"
	"github.com/launchpad-ai/launchpad-backend/internal/logging"
	"github.com/launchpad-ai/launchpad-backend/internal/profiles"
	"github.com/launchpad-ai/launchpad-backend/internal/projects"
	"github.com/launchpad-ai/launchpad-backend/internal/synthesis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.L().WithError(err).Fatal("failed to load configuration")
	}

	logging.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logging.L()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
	if err != nil {
		log.WithError(err).Fatal("failed to open postgres pool")
	}
	defer db.Close()

	sqlDB, err := bootstrap.OpenSQLDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
	if err != nil {
		log.WithError(err).Fatal("failed to open sql database")
	}
	defer sqlDB.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer rdb.Close()

	engine := synthesis.NewEngine(
		synthesis.NewProxyClient(cfg.Synthesis),
		synthesis.NewMemoryRepo(sqlDB),
		cfg.Synthesis,
	)

	vault := projects.NewGateway(projects.NewRepo(db))
	profileRepo := profiles.NewRepo(db)
	queue := dispatch.NewQueue(rdb)
	processor := dispatch.NewProcessor(engine, vault, profileRepo)

	pool := dispatch.NewPool(queue, processor, cfg.Dispatch.Workers)
	pool.Start(context.Background())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker pool")
	pool.Stop()
	log.Info("worker stopped")
}

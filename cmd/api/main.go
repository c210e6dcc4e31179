package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/launchpad-ai/launchpad-backend/config"
	"github.com/launchpad-ai/launchpad-backend/internal/auth"
	"github.com/launchpad-ai/launchpad-backend/internal/bootstrap"
	"github.com/launchpad-ai/launchpad-backend/internal/dispatch"
	"github.com/launchpad-ai/launchpad-backend/internal/entitle"
	"github.com/launchpad-ai/launchpad-backend/internal/logging"
	"github.com/launchpad-ai/launchpad-backend/internal/metrics"
	"github.com/launchpad-ai/launchpad-backend/internal/profiles"
	"github.com/launchpad-ai/launchpad-backend/internal/projects"
	"github.com/launchpad-ai/launchpad-backend/internal/session"
	"github.com/launchpad-ai/launchpad-backend/internal/stats"
	"github.com/launchpad-ai/launchpad-backend/internal/synthesis"
	"github.com/launchpad-ai/launchpad-backend/internal/workflow"
)

const serviceName = "launchpad-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.L().WithError(err).Fatal("failed to load configuration")
	}

	logging.Init(cfg.App.LogLevel, cfg.App.Environment)
	bootstrap.SetGinMode(cfg.App.Environment)
	log := logging.L()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
	if err != nil {
		log.WithError(err).Fatal("failed to open postgres pool")
	}
	defer db.Close()

	if err := bootstrap.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to apply database schema")
	}

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

	var authClient *fbauth.Client
	if cfg.Firebase.CredentialsPath != "" {
		authClient, err = auth.InitializeFirebase(&cfg.Firebase)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize firebase auth")
		}
	} else {
		log.Warn("firebase credentials not configured, using header-based dev auth")
	}

	registry := metrics.NewRegistry()
	sessions := session.NewStore(rdb)
	profileRepo := profiles.NewRepo(db)
	projectRepo := projects.NewRepo(db)
	vault := projects.NewGateway(projectRepo)

	engine := synthesis.NewEngine(
		synthesis.NewProxyClient(cfg.Synthesis),
		synthesis.NewMemoryRepo(sqlDB),
		cfg.Synthesis,
	)

	gate := entitle.NewGate(profileRepo, sessions, cfg.Gate)
	queue := dispatch.NewQueue(rdb)

	var dispatcher workflow.Dispatcher
	if cfg.Dispatch.URL != "" {
		dispatcher = dispatch.NewClient(cfg.Dispatch.URL)
	} else {
		dispatcher = dispatch.NewQueueDispatcher(queue)
	}

	manager := workflow.NewManager(workflow.Deps{
		Vault:      vault,
		Engine:     engine,
		Gate:       gate,
		Dispatcher: dispatcher,
		Counter:    profileRepo,
		Cache:      sessions,
		Recorder:   registry,
	}, workflow.Timings{
		ComplexityPrompt: cfg.App.ComplexityPrompt,
		ReadyToastTTL:    cfg.Poller.ReadyToastTTL,
		PollInterval:     cfg.Poller.Interval,
	})
	defer manager.Shutdown()

	statsService := stats.NewService(projectRepo, projectRepo, rdb)
	scheduler := stats.NewScheduler(statsService, cfg.App.StatsRefresh)
	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}
	defer scheduler.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Cfg:         cfg,
		DB:          db,
		SQLDB:       sqlDB,
		RDB:         rdb,
		AuthClient:  authClient,
		Manager:     manager,
		Queue:       queue,
		Stats:       statsService,
		Registry:    registry,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("api server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	log.Info("server stopped")
}

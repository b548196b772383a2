package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/config"
	"github.com/delphienergy/sunshare/internal/database"
	"github.com/delphienergy/sunshare/internal/events"
	"github.com/delphienergy/sunshare/internal/modules/optimizer"
	"github.com/delphienergy/sunshare/internal/modules/portfolio"
	"github.com/delphienergy/sunshare/internal/modules/projects"
	"github.com/delphienergy/sunshare/internal/scheduler"
	"github.com/delphienergy/sunshare/internal/server"
	"github.com/delphienergy/sunshare/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting SunShare")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Create tables
	if err := optimizer.InitSchema(db.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize optimizer schema")
	}
	if err := portfolio.InitSchema(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize portfolio schema")
	}

	// Initialize event manager
	eventManager := events.NewManager(log)

	// Load the project catalog
	catalog := projects.NewCatalog(cfg.ProjectsDir(), cfg.ProductionDir(), log)
	if err := catalog.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load project catalog")
	}

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	// Register background jobs
	if err := registerJobs(sched, catalog, eventManager, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		DB:      db,
		Config:  cfg,
		Events:  eventManager,
		Catalog: catalog,
		DevMode: cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(sched *scheduler.Scheduler, catalog *projects.Catalog, eventManager *events.Manager, log zerolog.Logger) error {
	// Hourly catalog reload picks up new projects and updated curves
	refresh := scheduler.NewCatalogRefreshJob(catalog, eventManager, log)
	return sched.AddJob("@hourly", refresh)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/streamwise/streamwise/internal/api"
	"github.com/streamwise/streamwise/internal/config"
	"github.com/streamwise/streamwise/internal/database"
	"github.com/streamwise/streamwise/internal/logger"
	"github.com/streamwise/streamwise/internal/scheduler"
	"github.com/streamwise/streamwise/internal/scheduler/tasks"
	"github.com/streamwise/streamwise/internal/startup"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Optional; real deployments use environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})
	defer log.Close()

	log.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("database", cfg.Database.Path).
		Msg("starting StreamWise")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	server := api.NewServer(db.Conn(), cfg, log.Logger)

	// Verify metadata connectivity up front so a bad API key surfaces
	// in the log at startup instead of on the first user request.
	if cfg.Metadata.TMDB.APIKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := startup.WithRetry(ctx, "tmdb-connectivity", startup.DefaultRetryConfig(), func(ctx context.Context) error {
			return server.MetadataService().Test(ctx)
		}, log.Logger)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("metadata provider unreachable, continuing degraded")
		}
	} else {
		log.Warn().Msg("no TMDB API key configured, metadata lookups disabled")
	}

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	if err := tasks.RegisterCacheWarmTask(sched, server.Queries(), server.RecommendService()); err != nil {
		log.Error().Err(err).Msg("failed to register cache warm task")
	}
	if err := tasks.RegisterMetadataCacheFlushTask(sched, server.MetadataService()); err != nil {
		log.Error().Err(err).Msg("failed to register metadata cache flush task")
	}

	if err := sched.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start scheduler")
	}
	defer func() { _ = sched.Stop() }()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		if err := server.Start(address); err != nil {
			log.Info().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

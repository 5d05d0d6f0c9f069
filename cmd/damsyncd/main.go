package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-dam-sync/internal/config"
	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/internal/service"
	"github.com/MKhiriev/go-dam-sync/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetConfig()
	if err != nil {
		logger.NewLogger("damsyncd").Fatal().Err(err).Msg("error getting configs")
	}

	var log *logger.Logger
	if cfg.Log.FilePath != "" {
		log = logger.NewFileLogger("damsyncd", cfg.Log.FilePath)
	} else {
		log = logger.NewLogger("damsyncd")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services := service.NewServices(storages, cfg, log)

	log.Info().
		Str("version", cfg.App.Version).
		Dur("sync_interval", cfg.Scheduler.SyncInterval).
		Dur("job_poll_interval", cfg.Scheduler.JobPollInterval).
		Msg("daemon started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return services.JobPoller.Run(gctx)
	})
	g.Go(func() error {
		return services.Scheduler.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("daemon stopped with error")
	}
	log.Info().Msg("daemon stopped")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

package service

import (
	"github.com/MKhiriev/go-dam-sync/internal/adapter"
	"github.com/MKhiriev/go-dam-sync/internal/config"
	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/internal/store"
	"github.com/MKhiriev/go-dam-sync/internal/transfer"
)

// Services bundles the long-running daemon components.
type Services struct {
	Scheduler *Scheduler
	JobPoller *JobPoller
}

func NewServices(storages *store.Storages, cfg *config.StructuredConfig, log *logger.Logger) *Services {
	clients := NewClientFactory(cfg.DAM, log)
	coordinator := transfer.NewCoordinator(cfg.Transfer, log)
	uploader := adapter.NewUploader(0, log)

	factory := NewExecutorFactory(ExecutorDeps{
		Jobs:     storages.Jobs,
		Folders:  storages.Folders,
		Files:    storages.Files,
		Transfer: coordinator,
		Uploader: uploader,
		PageSize: cfg.DAM.PageSize,
		Logger:   log,
	})

	return &Services{
		Scheduler: NewScheduler(storages.Tenants, storages.Jobs, factory, clients, cfg.Scheduler, log),
		JobPoller: NewJobPoller(storages.Tenants, storages.Jobs, clients, cfg.Scheduler.JobPollInterval, log),
	}
}

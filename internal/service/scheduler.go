// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/MKhiriev/go-dam-sync/internal/adapter"
	"github.com/MKhiriev/go-dam-sync/internal/config"
	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/internal/store"
	"github.com/MKhiriev/go-dam-sync/models"
)

const (
	defaultSyncInterval      = 30 * time.Second
	defaultMaxConcurrentJobs = 4
)

// ExecutorSelector resolves the executor for a job direction. Implemented by
// [ExecutorFactory].
type ExecutorSelector interface {
	ForDirection(direction models.SyncDirection) (Executor, error)
}

// ClientProvider hands out a DAM client for a tenant. Implemented by
// [ClientFactory].
type ClientProvider interface {
	ClientFor(tenant models.Tenant) (adapter.DamAPI, error)
}

// Scheduler drives the periodic sync passes. Every tick mints one sync
// epoch, fans out the active jobs to their executors under a concurrency
// gate, and waits for all of them before the next tick fires.
type Scheduler struct {
	tenants store.TenantRepository
	jobs    store.JobRepository
	factory ExecutorSelector
	clients ClientProvider

	interval time.Duration
	sem      *semaphore.Weighted
	logger   *logger.Logger
}

func NewScheduler(tenants store.TenantRepository, jobs store.JobRepository, factory ExecutorSelector, clients ClientProvider, cfg config.Scheduler, log *logger.Logger) *Scheduler {
	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	maxJobs := cfg.MaxConcurrentJobs
	if maxJobs <= 0 {
		maxJobs = defaultMaxConcurrentJobs
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Scheduler{
		tenants:  tenants,
		jobs:     jobs,
		factory:  factory,
		clients:  clients,
		interval: interval,
		sem:      semaphore.NewWeighted(int64(maxJobs)),
		logger:   log,
	}
}

// Run blocks until ctx is cancelled, executing one pass immediately and then
// one per interval.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunPass(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunPass(ctx)
		}
	}
}

// RunPass executes one full sync pass over all active jobs and waits for the
// last job to finish. Job failures and panics are contained per job.
func (s *Scheduler) RunPass(ctx context.Context) {
	syncID := uuid.NewString()
	log := s.logger.With().Str("sync_id", syncID).Logger()

	jobs, err := s.jobs.GetActiveJobs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list active jobs, skipping pass")
		return
	}
	if len(jobs) == 0 {
		return
	}

	tenants := make(map[string]models.Tenant)

	var wg sync.WaitGroup
	for _, job := range jobs {
		tenant, ok := tenants[job.TenantID]
		if !ok {
			tenant, err = s.tenants.GetTenant(ctx, job.TenantID)
			if err != nil {
				log.Error().Err(err).
					Str("job_id", job.JobID).
					Str("tenant_id", job.TenantID).
					Msg("failed to resolve job tenant, skipping job")
				continue
			}
			tenants[job.TenantID] = tenant
		}

		executor, err := s.factory.ForDirection(job.Direction)
		if err != nil {
			log.Error().Err(err).Str("job_id", job.JobID).Msg("skipping job")
			continue
		}
		api, err := s.clients.ClientFor(tenant)
		if err != nil {
			log.Error().Err(err).Str("job_id", job.JobID).Msg("skipping job")
			continue
		}

		if err := s.sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(tenant models.Tenant, job models.SyncJob) {
			defer wg.Done()
			defer s.sem.Release(1)

			jobLog := logger.Logger{Logger: log.With().
				Str("job_id", job.JobID).
				Str("tenant_id", tenant.TenantID).
				Logger()}
			jobCtx := jobLog.WithContext(ctx)

			defer func() {
				if r := recover(); r != nil {
					jobLog.Error().Interface("panic", r).Msg("job executor panicked")
				}
			}()

			if err := executor.Execute(jobCtx, api, tenant, job, syncID); err != nil {
				if jobCtx.Err() != nil {
					return
				}
				jobLog.Error().Err(err).Msg("job pass failed")
				return
			}
			jobLog.Info().Str("direction", string(job.Direction)).Msg("job pass finished")
		}(tenant, job)
	}

	wg.Wait()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/internal/store"
	"github.com/MKhiriev/go-dam-sync/models"
)

const defaultJobPollInterval = 5 * time.Minute

// JobPoller keeps the local job definitions in step with the store. Per
// tenant it fetches the configured jobs and upserts them; the executors'
// cursor columns are never touched by the upsert.
type JobPoller struct {
	tenants  store.TenantRepository
	jobs     store.JobRepository
	clients  ClientProvider
	interval time.Duration
	logger   *logger.Logger
}

func NewJobPoller(tenants store.TenantRepository, jobs store.JobRepository, clients ClientProvider, interval time.Duration, log *logger.Logger) *JobPoller {
	if interval <= 0 {
		interval = defaultJobPollInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &JobPoller{
		tenants:  tenants,
		jobs:     jobs,
		clients:  clients,
		interval: interval,
		logger:   log,
	}
}

// Run blocks until ctx is cancelled, polling once immediately and then once
// per interval.
func (p *JobPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.PollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce refreshes the job definitions of every active tenant. Tenants are
// polled concurrently; one tenant's failure does not affect the others.
func (p *JobPoller) PollOnce(ctx context.Context) {
	tenants, err := p.tenants.GetActiveTenants(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to list active tenants, skipping poll")
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, tenant := range tenants {
		g.Go(func() error {
			if err := p.pollTenant(gctx, tenant); err != nil && gctx.Err() == nil {
				p.logger.Error().Err(err).
					Str("tenant_id", tenant.TenantID).
					Msg("job definition poll failed")
			}
			return nil
		})
	}
	g.Wait()
}

func (p *JobPoller) pollTenant(ctx context.Context, tenant models.Tenant) error {
	api, err := p.clients.ClientFor(tenant)
	if err != nil {
		return err
	}

	defs, err := api.GetJobList(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			continue
		}
		// a store occasionally repeats a definition within one response
		if _, dup := seen[def.ID]; dup {
			continue
		}
		seen[def.ID] = struct{}{}

		job := models.SyncJob{
			JobID:                   def.ID,
			TenantID:                tenant.TenantID,
			JobName:                 def.Name,
			DestinationPath:         def.DestinationPath,
			VolumeID:                def.VolumeID,
			VolumeName:              def.VolumeName,
			VolumePath:              def.VolumePath,
			Direction:               models.SyncDirection(def.Direction),
			IsActive:                def.IsActive,
			FileDeletionPolicy:      deletionPolicyOrDefault(def.FileDeletionPolicy),
			DirectoryDeletionPolicy: deletionPolicyOrDefault(def.DirectoryDeletionPolicy),
		}
		if err := p.jobs.UpsertJob(ctx, job); err != nil {
			p.logger.Error().Err(err).
				Str("tenant_id", tenant.TenantID).
				Str("job_id", def.ID).
				Msg("failed to upsert job definition")
		}
	}

	p.logger.Debug().
		Str("tenant_id", tenant.TenantID).
		Int("jobs", len(seen)).
		Msg("job definitions refreshed")
	return nil
}

func deletionPolicyOrDefault(policy string) models.DeletionPolicy {
	switch models.DeletionPolicy(policy) {
	case models.SoftDeleteOnly, models.RemoveTrackingOnly, models.DeleteFromRemote, models.IgnoreDeletions:
		return models.DeletionPolicy(policy)
	default:
		return models.SoftDeleteOnly
	}
}

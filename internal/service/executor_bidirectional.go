// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-dam-sync/internal/adapter"
	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/internal/pathutil"
	"github.com/MKhiriev/go-dam-sync/models"
)

// bidirectionalExecutor reconciles both sides of a job in four sequential
// phases: remote folders, remote file metadata, local scan, deletion sweep.
// The remote pull completes fully before the local scan starts, so a file
// observed on both sides within one pass is stamped exactly once.
type bidirectionalExecutor struct {
	*executorBase
}

func newBidirectionalExecutor(base *executorBase) Executor {
	return &bidirectionalExecutor{executorBase: base}
}

func (e *bidirectionalExecutor) Execute(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID string) error {
	log := logger.FromContext(ctx)

	if err := e.trackRemoteFolders(ctx, api, tenant, job, syncID, true); err != nil {
		return err
	}
	if err := e.deactivateMissingFolders(ctx, job, syncID); err != nil {
		return err
	}

	if err := e.pullRemoteFileMetadata(ctx, api, tenant, job, syncID); err != nil {
		return err
	}

	if err := e.pushLocalState(ctx, api, tenant, job, syncID); err != nil {
		return err
	}

	if err := e.sweep(ctx, api, job, syncID); err != nil {
		return err
	}

	log.Debug().Msg("bidirectional pass complete")
	return nil
}

// pullRemoteFileMetadata consumes the modified-items stream and records each
// item's remote linkage. The locally computed checksum, size and timestamp
// are left alone; the local scan owns them.
func (e *bidirectionalExecutor) pullRemoteFileMetadata(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID string) error {
	log := logger.FromContext(ctx)

	return e.streamModified(ctx, api, job, true, func(item adapter.RemoteItem) error {
		rel := remoteRelative(job.VolumePath, item.FolderPath)

		entity := models.FileEntity{
			ItemID:         item.ID,
			TenantID:       tenant.TenantID,
			JobID:          job.JobID,
			DirectoryID:    item.FolderID,
			FolderPath:     rel,
			FileName:       item.FileName,
			FilePath:       item.FilePath,
			FileID:         item.FileID,
			LastSeenSyncID: syncID,
		}
		if err := e.files.UpsertFileRemoteLinkage(ctx, entity); err != nil {
			log.Error().Err(err).
				Str("item_id", item.ID).
				Str("file_name", item.FileName).
				Msg("failed to record remote item, skipping")
		}
		return nil
	})
}

// pushLocalState walks the job root, directories before files, and brings
// the store in line with the local disk. Item-level failures are logged and
// skipped so one broken file cannot stall the job.
func (e *bidirectionalExecutor) pushLocalState(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID string) error {
	log := logger.FromContext(ctx)

	dirs, files, err := collectLocal(job.DestinationPath)
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := pathutil.Standardize(job.DestinationPath, dir)
		if err := e.ensureDirTracked(ctx, api, tenant, job, syncID, rel); err != nil {
			log.Error().Err(err).Str("path", rel).Msg("failed to sync local directory, skipping")
		}
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.syncLocalFile(ctx, api, tenant, job, syncID, file); err != nil {
			log.Error().Err(err).Str("path", file).Msg("failed to sync local file, skipping")
		}
	}

	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/MKhiriev/go-dam-sync/internal/adapter"
	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/internal/pathutil"
	"github.com/MKhiriev/go-dam-sync/internal/store"
	"github.com/MKhiriev/go-dam-sync/models"
)

// uploadExecutor pushes the local directory tree into the remote volume.
// With clean set, a file is removed from the local disk once the store has
// confirmed it, turning the job into a drop-box.
type uploadExecutor struct {
	*executorBase
	clean bool
}

func newUploadExecutor(base *executorBase, clean bool) Executor {
	return &uploadExecutor{executorBase: base, clean: clean}
}

func (e *uploadExecutor) Execute(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID string) error {
	log := logger.FromContext(ctx)

	// refresh folder tracking without touching the local disk
	if err := e.trackRemoteFolders(ctx, api, tenant, job, syncID, false); err != nil {
		return err
	}

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
		if err := e.pushFile(ctx, api, tenant, job, syncID, file); err != nil {
			log.Error().Err(err).Str("path", file).Msg("failed to upload local file, skipping")
		}
	}

	if err := e.sweep(ctx, api, job, syncID); err != nil {
		return err
	}

	log.Debug().Msg("upload pass complete")
	return nil
}

func (e *uploadExecutor) pushFile(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID, absPath string) error {
	if err := e.syncLocalFile(ctx, api, tenant, job, syncID, absPath); err != nil {
		return err
	}

	if e.clean {
		rel := pathutil.Standardize(job.DestinationPath, absPath)
		tracked, err := e.files.GetFileByPath(ctx, job.JobID, pathutil.Parent(rel), pathutil.Base(rel))
		if err != nil {
			// the file never made it into tracking, keep it on disk
			if errors.Is(err, store.ErrFileNotFound) {
				return nil
			}
			return err
		}
		if tracked.LastSeenSyncID != syncID {
			return nil
		}

		if err := os.Remove(absPath); err != nil {
			return err
		}
		pruneEmptyDirs(job.DestinationPath, filepath.Dir(absPath))
	}

	return nil
}

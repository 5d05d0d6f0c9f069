// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MKhiriev/go-dam-sync/internal/adapter"
	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/internal/pathutil"
	"github.com/MKhiriev/go-dam-sync/internal/store"
	"github.com/MKhiriev/go-dam-sync/internal/transfer"
	"github.com/MKhiriev/go-dam-sync/models"
)

// downloadExecutor mirrors the remote volume onto the local disk. With clean
// set, every successfully downloaded item is afterwards removed from the
// store and its tracking dropped.
type downloadExecutor struct {
	*executorBase
	clean bool
}

func newDownloadExecutor(base *executorBase, clean bool) Executor {
	return &downloadExecutor{executorBase: base, clean: clean}
}

func (e *downloadExecutor) Execute(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID string) error {
	log := logger.FromContext(ctx)

	if err := e.trackRemoteFolders(ctx, api, tenant, job, syncID, true); err != nil {
		return err
	}
	if err := e.deactivateMissingFolders(ctx, job, syncID); err != nil {
		return err
	}

	if err := e.pullActiveItems(ctx, api, tenant, job, syncID); err != nil {
		return err
	}
	if err := e.removeInactiveItems(ctx, api, job); err != nil {
		return err
	}

	// in drain mode the local tree is the product, not a mirror
	if !e.clean {
		if err := e.sweepOrphans(ctx, job); err != nil {
			return err
		}
	}

	log.Debug().Msg("download pass complete")
	return nil
}

// pullActiveItems consumes the active change stream and materialises every
// item on the local disk, applying the decision engine against the tracked
// location first.
func (e *downloadExecutor) pullActiveItems(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID string) error {
	log := logger.FromContext(ctx)

	return e.streamModified(ctx, api, job, true, func(item adapter.RemoteItem) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.pullItem(ctx, api, tenant, job, syncID, item); err != nil {
			log.Error().Err(err).
				Str("item_id", item.ID).
				Str("file_name", item.FileName).
				Msg("failed to download item, skipping")
		}
		return nil
	})
}

func (e *downloadExecutor) pullItem(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID string, item adapter.RemoteItem) error {
	rel := remoteRelative(job.VolumePath, item.FolderPath)
	expectedRel := pathutil.Join(rel, item.FileName)
	expectedAbs := pathutil.Absolute(job.DestinationPath, expectedRel)

	// where tracking last saw the file, defaulting to the expected location
	actualRel := expectedRel
	tracked, err := e.files.GetFileByItemID(ctx, job.JobID, item.ID)
	if err == nil {
		actualRel = pathutil.Join(tracked.FolderPath, tracked.FileName)
	} else if !errors.Is(err, store.ErrFileNotFound) {
		return err
	}
	actualAbs := pathutil.Absolute(job.DestinationPath, actualRel)

	_, statErr := os.Stat(actualAbs)
	exists := statErr == nil

	decision := Decide(expectedRel, actualRel, exists)

	switch decision.Action {
	case models.Rename, models.Move:
		if err := os.MkdirAll(filepath.Dir(expectedAbs), 0o755); err != nil {
			return fmt.Errorf("preparing destination directory: %w", err)
		}
		if err := os.Rename(actualAbs, expectedAbs); err != nil {
			return fmt.Errorf("relocating %s (%s): %w", actualRel, decision.Reason, err)
		}
		pruneEmptyDirs(job.DestinationPath, filepath.Dir(actualAbs))
	case models.Redownload:
		if err := e.download(ctx, api, item, expectedAbs); err != nil {
			return err
		}
	case models.NoOp:
		if !exists {
			if err := e.download(ctx, api, item, expectedAbs); err != nil {
				return err
			}
		}
	}

	checksum, err := transfer.ChecksumFile(expectedAbs)
	if err != nil {
		return err
	}
	stat, err := os.Stat(expectedAbs)
	if err != nil {
		return err
	}

	entity := models.FileEntity{
		ItemID:         item.ID,
		TenantID:       tenant.TenantID,
		JobID:          job.JobID,
		DirectoryID:    item.FolderID,
		FolderPath:     rel,
		FileName:       item.FileName,
		FilePath:       item.FilePath,
		FileID:         item.FileID,
		ChecksumHash:   checksum,
		SizeInBytes:    stat.Size(),
		LastSeenSyncID: syncID,
		LastModifiedAt: stat.ModTime(),
	}
	if err := e.files.UpsertFile(ctx, entity); err != nil {
		return err
	}

	if e.clean {
		if err := api.DeleteItem(ctx, item.ID); err != nil {
			return fmt.Errorf("removing downloaded item from store: %w", err)
		}
		if err := e.files.DeleteFile(ctx, job.JobID, item.ID); err != nil {
			return err
		}
	}

	return nil
}

func (e *downloadExecutor) download(ctx context.Context, api adapter.DamAPI, item adapter.RemoteItem, dst string) error {
	open := func(ctx context.Context) (io.ReadCloser, int64, error) {
		return api.DownloadAsset(ctx, item.FilePath)
	}
	return e.transfer.Download(ctx, dst, open, transferProgress(ctx, "download", item.FileName))
}

// removeInactiveItems consumes the deactivated change stream and removes the
// matching local files, soft-deleting their tracking rows and pruning
// now-empty directories.
func (e *downloadExecutor) removeInactiveItems(ctx context.Context, api adapter.DamAPI, job models.SyncJob) error {
	log := logger.FromContext(ctx)

	// the inactive stream never advances the job cursor
	inactiveJob := job
	inactiveJob.LastItemID = ""

	return e.streamModified(ctx, api, inactiveJob, false, func(item adapter.RemoteItem) error {
		tracked, err := e.files.GetFileByItemID(ctx, job.JobID, item.ID)
		if errors.Is(err, store.ErrFileNotFound) {
			return nil
		}
		if err != nil {
			log.Error().Err(err).Str("item_id", item.ID).Msg("failed to resolve deactivated item, skipping")
			return nil
		}
		if tracked.IsDeleted {
			return nil
		}

		abs := pathutil.Absolute(job.DestinationPath, pathutil.Join(tracked.FolderPath, tracked.FileName))
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			log.Error().Err(err).Str("path", abs).Msg("failed to remove local file, skipping")
			return nil
		}
		if err := e.files.SoftDeleteFile(ctx, job.JobID, item.ID); err != nil {
			log.Error().Err(err).Str("item_id", item.ID).Msg("failed to soft-delete file tracking")
			return nil
		}

		pruneEmptyDirs(job.DestinationPath, filepath.Dir(abs))
		return nil
	})
}

// sweepOrphans deletes local files that tracking does not know about and
// prunes the directories they leave empty.
func (e *downloadExecutor) sweepOrphans(ctx context.Context, job models.SyncJob) error {
	log := logger.FromContext(ctx)

	_, files, err := collectLocal(job.DestinationPath)
	if err != nil {
		return err
	}

	for _, abs := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := pathutil.Standardize(job.DestinationPath, abs)
		_, err := e.files.GetFileByPath(ctx, job.JobID, pathutil.Parent(rel), pathutil.Base(rel))
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrFileNotFound) {
			log.Error().Err(err).Str("path", rel).Msg("failed to resolve local file, skipping")
			continue
		}

		if err := os.Remove(abs); err != nil {
			log.Error().Err(err).Str("path", abs).Msg("failed to remove orphaned file")
			continue
		}
		log.Debug().Str("path", rel).Msg("removed orphaned local file")
		pruneEmptyDirs(job.DestinationPath, filepath.Dir(abs))
	}

	return nil
}

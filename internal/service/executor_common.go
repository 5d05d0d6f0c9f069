// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/MKhiriev/go-dam-sync/internal/adapter"
	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/internal/pathutil"
	"github.com/MKhiriev/go-dam-sync/internal/store"
	"github.com/MKhiriev/go-dam-sync/internal/transfer"
	"github.com/MKhiriev/go-dam-sync/models"
)

// AssetUploader streams a local file to the object storage named in an
// upload ticket. Satisfied by [adapter.Uploader].
type AssetUploader interface {
	Upload(ctx context.Context, ticket adapter.UploadTicket, info adapter.S3Info, filePath string, progress adapter.ProgressFunc) error
}

// Executor runs one sync pass of a single job. syncID is the epoch stamp of
// the pass; every tracking row the executor observes gets stamped with it,
// and the final sweep treats unstamped rows as deletion candidates.
type Executor interface {
	Execute(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID string) error
}

// ExecutorDeps carries everything the executors share.
type ExecutorDeps struct {
	Jobs     store.JobRepository
	Folders  store.FolderRepository
	Files    store.FileRepository
	Transfer *transfer.Coordinator
	Uploader AssetUploader
	PageSize int
	Logger   *logger.Logger
}

type executorBase struct {
	jobs     store.JobRepository
	folders  store.FolderRepository
	files    store.FileRepository
	transfer *transfer.Coordinator
	uploader AssetUploader
	pageSize int
	logger   *logger.Logger
}

func newExecutorBase(deps ExecutorDeps) *executorBase {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &executorBase{
		jobs:     deps.Jobs,
		folders:  deps.Folders,
		files:    deps.Files,
		transfer: deps.Transfer,
		uploader: deps.Uploader,
		pageSize: deps.PageSize,
		logger:   log,
	}
}

// remoteRelative normalizes a store-reported folder path to the canonical
// "/"-rooted form, stripping the job's volume prefix when present.
func remoteRelative(volumePath, full string) string {
	full = strings.ReplaceAll(full, "\\", "/")
	vol := strings.TrimSuffix(strings.ReplaceAll(volumePath, "\\", "/"), "/")

	if vol != "" && len(full) >= len(vol) && strings.EqualFold(full[:len(vol)], vol) {
		full = full[len(vol):]
	}
	if !strings.HasPrefix(full, "/") {
		full = "/" + full
	}

	return path.Clean(full)
}

// isTransferArtifact reports whether name is an in-progress file the
// coordinator owns.
func isTransferArtifact(name string) bool {
	return strings.HasSuffix(name, transfer.TmpSuffix) || strings.HasSuffix(name, transfer.BackupSuffix)
}

// collectLocal walks the job root and returns the absolute paths of all
// directories (excluding the root, parents before children) and all regular
// files, skipping transfer artifacts.
func collectLocal(root string) (dirs, files []string, err error) {
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root {
				dirs = append(dirs, p)
			}
			return nil
		}
		if !d.Type().IsRegular() || isTransferArtifact(d.Name()) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("scanning local root %s: %w", root, walkErr)
	}
	return dirs, files, nil
}

// pruneEmptyDirs removes now-empty directories from dir upward, stopping at
// the job root or at the first non-empty directory.
func pruneEmptyDirs(root, dir string) {
	root = filepath.Clean(root)
	for {
		dir = filepath.Clean(dir)
		if dir == root || !strings.HasPrefix(strings.ToLower(dir), strings.ToLower(root)) {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// directoryID resolves a tracked folder's remote id by standardized path.
// Returns "" when the directory is untracked.
func (e *executorBase) directoryID(ctx context.Context, jobID, rel string) string {
	if rel == "/" {
		return ""
	}
	folder, err := e.folders.GetFolderByPath(ctx, jobID, rel)
	if err != nil {
		return ""
	}
	return folder.FolderID
}

// trackRemoteFolders upserts a tracking row for every folder of the job's
// volume, stamped with the current epoch. When makeLocal is set the matching
// local directory is created under the job root.
func (e *executorBase) trackRemoteFolders(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID string, makeLocal bool) error {
	log := logger.FromContext(ctx)

	remote, err := api.ListFolders(ctx, job.VolumeID)
	if err != nil {
		return fmt.Errorf("listing remote folders: %w", err)
	}

	for _, rf := range remote {
		rel := remoteRelative(job.VolumePath, rf.Path)

		folder := models.Folder{
			FolderID:       rf.ID,
			ParentID:       rf.ParentID,
			TenantID:       tenant.TenantID,
			JobID:          job.JobID,
			Label:          rf.Label,
			Path:           rel,
			IsActive:       true,
			LastSeenSyncID: syncID,
		}
		if err := e.folders.UpsertFolder(ctx, folder); err != nil {
			log.Error().Err(err).
				Str("folder_id", rf.ID).
				Str("path", rel).
				Msg("failed to track remote folder, skipping")
			continue
		}

		if makeLocal {
			if err := os.MkdirAll(pathutil.Absolute(job.DestinationPath, rel), 0o755); err != nil {
				log.Error().Err(err).
					Str("path", rel).
					Msg("failed to create local directory, skipping")
			}
		}
	}

	return nil
}

// deactivateMissingFolders flips is_active off on folders that were active
// before this pass but absent from the remote listing. They are not deleted;
// the sweep decides their fate by policy.
func (e *executorBase) deactivateMissingFolders(ctx context.Context, job models.SyncJob, syncID string) error {
	log := logger.FromContext(ctx)

	stale, err := e.folders.ListFolders(ctx, store.FolderFilter{
		JobID:       job.JobID,
		ActiveOnly:  true,
		NotDeleted:  true,
		StaleSyncID: syncID,
	})
	if err != nil {
		return fmt.Errorf("listing unobserved folders: %w", err)
	}

	for _, folder := range stale {
		if err := e.folders.DeactivateFolder(ctx, job.JobID, folder.FolderID); err != nil {
			log.Error().Err(err).
				Str("folder_id", folder.FolderID).
				Msg("failed to deactivate folder")
		}
	}

	return nil
}

// streamModified drains the job's modified-items listing from the persisted
// cursor and persists the advanced cursor and watermark together, but only
// after the whole stream has been consumed without error. An empty stream
// leaves the cursor untouched.
func (e *executorBase) streamModified(ctx context.Context, api adapter.DamAPI, job models.SyncJob, active bool, fn func(adapter.RemoteItem) error) error {
	q := adapter.ModifiedItemsQuery{
		VolumeID:      job.VolumeID,
		Active:        active,
		LastItemID:    job.LastItemID,
		PageSize:      e.pageSize,
		ModifiedAfter: job.LastRunTime,
	}

	state, err := adapter.StreamModifiedItems(ctx, api, q, fn)
	if err != nil {
		return fmt.Errorf("consuming modified-items stream: %w", err)
	}

	if active && state.Count > 0 {
		if err := e.jobs.UpdateCursor(ctx, job.JobID, state.Cursor, state.Watermark); err != nil {
			return fmt.Errorf("persisting stream cursor: %w", err)
		}
	}

	return nil
}

// ensureDirTracked makes sure the local directory at rel is tracked and
// stamped. An untracked directory is attached to its remote counterpart when
// one exists, otherwise the remote folder is created first. Walk order
// guarantees the parent is tracked before the child.
func (e *executorBase) ensureDirTracked(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID, rel string) error {
	if rel == "/" {
		return nil
	}

	tracked, err := e.folders.GetFolderByPath(ctx, job.JobID, rel)
	switch {
	case err == nil:
		if tracked.LastSeenSyncID == syncID {
			return nil
		}
		return e.folders.StampFolder(ctx, job.JobID, tracked.FolderID, syncID)
	case !errors.Is(err, store.ErrFolderNotFound):
		return err
	}

	remote, err := api.CheckFolderExists(ctx, job.VolumeID, rel)
	if err != nil {
		return fmt.Errorf("checking remote folder %s: %w", rel, err)
	}
	if remote == nil {
		parentID := e.directoryID(ctx, job.JobID, pathutil.Parent(rel))
		created, err := api.CreateFolder(ctx, job.VolumeID, parentID, pathutil.Base(rel))
		if err != nil {
			return fmt.Errorf("creating remote folder %s: %w", rel, err)
		}
		remote = &created
	}

	return e.folders.UpsertFolder(ctx, models.Folder{
		FolderID:       remote.ID,
		ParentID:       remote.ParentID,
		TenantID:       tenant.TenantID,
		JobID:          job.JobID,
		Label:          pathutil.Base(rel),
		Path:           rel,
		IsActive:       true,
		LastSeenSyncID: syncID,
	})
}

// syncLocalFile pushes one local file to the store: new files are uploaded
// (or attached when the store already has them), unchanged files are
// stamped, changed files are replaced. A file counts as changed when either
// the checksum or the modification time disagrees with the tracking row.
func (e *executorBase) syncLocalFile(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID, absPath string) error {
	rel := pathutil.Standardize(job.DestinationPath, absPath)
	relDir := pathutil.Parent(rel)
	name := pathutil.Base(rel)

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat local file: %w", err)
	}
	checksum, err := transfer.ChecksumFile(absPath)
	if err != nil {
		return err
	}

	tracked, err := e.files.GetFileByPath(ctx, job.JobID, relDir, name)
	switch {
	case errors.Is(err, store.ErrFileNotFound):
		return e.uploadNew(ctx, api, tenant, job, syncID, relDir, name, absPath, checksum, info.Size())
	case err != nil:
		return err
	}

	if tracked.LastSeenSyncID == syncID {
		return nil
	}
	if tracked.ChecksumHash == checksum && tracked.LastModifiedAt.Equal(info.ModTime()) {
		return e.files.StampFile(ctx, job.JobID, tracked.ItemID, syncID)
	}

	if err := e.replaceExisting(ctx, api, tracked.ItemID, absPath, info.Size()); err != nil {
		return err
	}
	if err := e.files.UpdateContent(ctx, job.JobID, tracked.ItemID, checksum, info.Size(), info.ModTime()); err != nil {
		return err
	}
	return e.files.StampFile(ctx, job.JobID, tracked.ItemID, syncID)
}

func (e *executorBase) uploadNew(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID, relDir, name, absPath, checksum string, size int64) error {
	folderID := e.directoryID(ctx, job.JobID, relDir)

	existing, err := api.CheckFileExists(ctx, folderID, name)
	if err != nil {
		return fmt.Errorf("checking remote file %s: %w", name, err)
	}

	var item adapter.RemoteItem
	if existing != nil {
		item = *existing
	} else {
		ticket, err := api.GetUploadDetails(ctx, folderID, name, size)
		if err != nil {
			return fmt.Errorf("requesting upload ticket: %w", err)
		}
		s3, err := api.GetS3Info(ctx)
		if err != nil {
			return fmt.Errorf("resolving object storage: %w", err)
		}

		err = e.transfer.Slot(ctx, func(ctx context.Context) error {
			return e.uploader.Upload(ctx, ticket, s3, absPath, transferProgress(ctx, "upload", name))
		})
		if err != nil {
			return fmt.Errorf("uploading %s: %w", name, err)
		}

		item, err = api.CreateItem(ctx, ticket, adapter.ItemMeta{
			FolderID: folderID,
			FileName: name,
			Checksum: checksum,
			Size:     size,
		})
		if err != nil {
			return fmt.Errorf("finalising upload of %s: %w", name, err)
		}
	}

	stat, _ := os.Stat(absPath)
	entity := models.FileEntity{
		ItemID:         item.ID,
		TenantID:       tenant.TenantID,
		JobID:          job.JobID,
		DirectoryID:    folderID,
		FolderPath:     relDir,
		FileName:       name,
		FilePath:       item.FilePath,
		FileID:         item.FileID,
		ChecksumHash:   checksum,
		SizeInBytes:    size,
		LastSeenSyncID: syncID,
	}
	if stat != nil {
		entity.LastModifiedAt = stat.ModTime()
	}
	return e.files.UpsertFile(ctx, entity)
}

func (e *executorBase) replaceExisting(ctx context.Context, api adapter.DamAPI, itemID, absPath string, size int64) error {
	ticket, err := api.GetUploadDetailsForReplacement(ctx, itemID, size)
	if err != nil {
		return fmt.Errorf("requesting replacement ticket: %w", err)
	}
	s3, err := api.GetS3Info(ctx)
	if err != nil {
		return fmt.Errorf("resolving object storage: %w", err)
	}

	err = e.transfer.Slot(ctx, func(ctx context.Context) error {
		return e.uploader.Upload(ctx, ticket, s3, absPath, transferProgress(ctx, "replace", filepath.Base(absPath)))
	})
	if err != nil {
		return fmt.Errorf("uploading replacement content: %w", err)
	}

	if err := api.ReplaceAsset(ctx, itemID, ticket); err != nil {
		return fmt.Errorf("finalising replacement: %w", err)
	}
	return nil
}

// transferProgress returns a callback that logs whole-percent advances of a
// running transfer at debug level.
func transferProgress(ctx context.Context, op, name string) func(percent int) {
	log := logger.FromContext(ctx)
	return func(percent int) {
		log.Debug().
			Str("op", op).
			Str("file", name).
			Int("percent", percent).
			Msg("transfer progress")
	}
}

// sweep applies the job's deletion policies to every tracking row the pass
// did not stamp. A failed remote delete degrades to a soft delete so the row
// is retried on a later pass.
func (e *executorBase) sweep(ctx context.Context, api adapter.DamAPI, job models.SyncJob, syncID string) error {
	log := logger.FromContext(ctx)

	staleFiles, err := e.files.ListFiles(ctx, store.FileFilter{
		JobID:       job.JobID,
		NotDeleted:  true,
		StaleSyncID: syncID,
	})
	if err != nil {
		return fmt.Errorf("listing unobserved files: %w", err)
	}
	var sweptFiles int
	for _, file := range staleFiles {
		abs := pathutil.Absolute(job.DestinationPath, pathutil.Join(file.FolderPath, file.FileName))
		if _, statErr := os.Stat(abs); statErr == nil {
			// still on disk, the scan skipped it this pass; retry later
			continue
		}
		e.applyFilePolicy(ctx, api, job, file)
		sweptFiles++
	}

	staleFolders, err := e.folders.ListFolders(ctx, store.FolderFilter{
		JobID:       job.JobID,
		NotDeleted:  true,
		StaleSyncID: syncID,
	})
	if err != nil {
		return fmt.Errorf("listing unobserved folders: %w", err)
	}
	var sweptFolders int
	for _, folder := range staleFolders {
		if info, statErr := os.Stat(pathutil.Absolute(job.DestinationPath, folder.Path)); statErr == nil && info.IsDir() {
			continue
		}
		e.applyFolderPolicy(ctx, api, job, folder)
		sweptFolders++
	}

	if sweptFiles > 0 || sweptFolders > 0 {
		log.Info().
			Int("files", sweptFiles).
			Int("folders", sweptFolders).
			Str("file_policy", string(job.FileDeletionPolicy)).
			Str("directory_policy", string(job.DirectoryDeletionPolicy)).
			Msg("deletion sweep applied")
	}

	return nil
}

func (e *executorBase) applyFilePolicy(ctx context.Context, api adapter.DamAPI, job models.SyncJob, file models.FileEntity) {
	log := logger.FromContext(ctx)

	switch job.FileDeletionPolicy {
	case models.IgnoreDeletions:
		return

	case models.RemoveTrackingOnly:
		if err := e.files.DeleteFile(ctx, job.JobID, file.ItemID); err != nil {
			log.Error().Err(err).Str("item_id", file.ItemID).Msg("failed to drop file tracking")
		}

	case models.DeleteFromRemote:
		if err := api.DeleteItem(ctx, file.ItemID); err != nil {
			log.Warn().Err(err).
				Str("item_id", file.ItemID).
				Msg("remote delete failed, falling back to soft delete")
			if err := e.files.SoftDeleteFile(ctx, job.JobID, file.ItemID); err != nil {
				log.Error().Err(err).Str("item_id", file.ItemID).Msg("failed to soft-delete file")
			}
			return
		}
		if err := e.files.DeleteFile(ctx, job.JobID, file.ItemID); err != nil {
			log.Error().Err(err).Str("item_id", file.ItemID).Msg("failed to drop file tracking")
		}

	default: // SoftDeleteOnly
		if err := e.files.SoftDeleteFile(ctx, job.JobID, file.ItemID); err != nil {
			log.Error().Err(err).Str("item_id", file.ItemID).Msg("failed to soft-delete file")
		}
	}
}

func (e *executorBase) applyFolderPolicy(ctx context.Context, api adapter.DamAPI, job models.SyncJob, folder models.Folder) {
	log := logger.FromContext(ctx)

	switch job.DirectoryDeletionPolicy {
	case models.IgnoreDeletions:
		return

	case models.RemoveTrackingOnly:
		if err := e.folders.DeleteFolder(ctx, job.JobID, folder.FolderID); err != nil {
			log.Error().Err(err).Str("folder_id", folder.FolderID).Msg("failed to drop folder tracking")
		}

	case models.DeleteFromRemote:
		if err := api.DeleteFolder(ctx, folder.FolderID); err != nil {
			log.Warn().Err(err).
				Str("folder_id", folder.FolderID).
				Msg("remote folder delete failed, falling back to soft delete")
			if err := e.folders.SoftDeleteFolder(ctx, job.JobID, folder.FolderID); err != nil {
				log.Error().Err(err).Str("folder_id", folder.FolderID).Msg("failed to soft-delete folder")
			}
			return
		}
		if err := e.folders.DeleteFolder(ctx, job.JobID, folder.FolderID); err != nil {
			log.Error().Err(err).Str("folder_id", folder.FolderID).Msg("failed to drop folder tracking")
		}

	default: // SoftDeleteOnly
		if err := e.folders.SoftDeleteFolder(ctx, job.JobID, folder.FolderID); err != nil {
			log.Error().Err(err).Str("folder_id", folder.FolderID).Msg("failed to soft-delete folder")
		}
	}
}

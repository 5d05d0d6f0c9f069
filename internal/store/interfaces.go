// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store implements the local sync-state database: tenants, job
// definitions, and the folder/file tracking rows the reconciler marks and
// sweeps. The same repositories run on SQLite (the default single-node
// deployment) or PostgreSQL, selected by the DSN.
package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-dam-sync/models"
)

// TenantRepository persists the tenants the daemon syncs for.
type TenantRepository interface {
	UpsertTenant(ctx context.Context, tenant models.Tenant) error
	GetTenant(ctx context.Context, tenantID string) (models.Tenant, error)
	GetActiveTenants(ctx context.Context) ([]models.Tenant, error)
}

// JobRepository persists sync job definitions and their durable cursor.
type JobRepository interface {
	// UpsertJob inserts or refreshes a job definition. The cursor columns
	// (last_item_id, last_run_time) are never touched by an upsert.
	UpsertJob(ctx context.Context, job models.SyncJob) error
	GetJob(ctx context.Context, jobID string) (models.SyncJob, error)
	GetActiveJobs(ctx context.Context) ([]models.SyncJob, error)
	// UpdateCursor persists the paging cursor and the stream watermark in
	// one statement.
	UpdateCursor(ctx context.Context, jobID, lastItemID string, lastRunTime int64) error
}

// FolderFilter narrows a folder listing. Zero values mean "no constraint".
type FolderFilter struct {
	JobID string
	// ActiveOnly keeps rows with is_active = TRUE.
	ActiveOnly bool
	// NotDeleted keeps rows with is_deleted = FALSE.
	NotDeleted bool
	// StaleSyncID keeps rows whose last_seen_sync_id differs from the given
	// epoch: the deletion candidates of a mark-and-sweep pass.
	StaleSyncID string
}

// FolderRepository persists tracked directories.
type FolderRepository interface {
	UpsertFolder(ctx context.Context, folder models.Folder) error
	GetFolderByID(ctx context.Context, jobID, folderID string) (models.Folder, error)
	// GetFolderByPath resolves a folder by its standardized path,
	// case-insensitively, skipping soft-deleted rows.
	GetFolderByPath(ctx context.Context, jobID, path string) (models.Folder, error)
	ListFolders(ctx context.Context, filter FolderFilter) ([]models.Folder, error)
	// StampFolder marks the folder as observed in the given sync epoch.
	StampFolder(ctx context.Context, jobID, folderID, syncID string) error
	DeactivateFolder(ctx context.Context, jobID, folderID string) error
	SoftDeleteFolder(ctx context.Context, jobID, folderID string) error
	DeleteFolder(ctx context.Context, jobID, folderID string) error
}

// FileFilter narrows a file listing. Zero values mean "no constraint".
type FileFilter struct {
	JobID string
	// NotDeleted keeps rows with is_deleted = FALSE.
	NotDeleted bool
	// StaleSyncID keeps rows whose last_seen_sync_id differs from the given
	// epoch.
	StaleSyncID string
	// FolderPath keeps rows under the given standardized directory path,
	// compared case-insensitively.
	FolderPath string
}

// FileRepository persists tracked files.
type FileRepository interface {
	UpsertFile(ctx context.Context, file models.FileEntity) error
	// UpsertFileRemoteLinkage inserts or refreshes only the remote-linkage
	// columns of a tracking row; the locally computed checksum, size and
	// timestamp are preserved.
	UpsertFileRemoteLinkage(ctx context.Context, file models.FileEntity) error
	GetFileByItemID(ctx context.Context, jobID, itemID string) (models.FileEntity, error)
	// GetFileByPath resolves a file by standardized directory path and file
	// name, case-insensitively, skipping soft-deleted rows.
	GetFileByPath(ctx context.Context, jobID, folderPath, fileName string) (models.FileEntity, error)
	ListFiles(ctx context.Context, filter FileFilter) ([]models.FileEntity, error)
	// StampFile marks the file as observed in the given sync epoch.
	StampFile(ctx context.Context, jobID, itemID, syncID string) error
	// UpdateContent records the locally computed checksum, size and
	// modification time.
	UpdateContent(ctx context.Context, jobID, itemID, checksum string, size int64, modifiedAt time.Time) error
	SoftDeleteFile(ctx context.Context, jobID, itemID string) error
	DeleteFile(ctx context.Context, jobID, itemID string) error
}

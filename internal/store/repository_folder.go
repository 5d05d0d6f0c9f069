package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/models"
)

type folderRepository struct {
	*DB
	logger *logger.Logger
}

func NewFolderRepository(db *DB, logger *logger.Logger) FolderRepository {
	return &folderRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *folderRepository) UpsertFolder(ctx context.Context, folder models.Folder) error {
	log := logger.FromContext(ctx)

	now := time.Now()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	if folder.ModifiedAt.IsZero() {
		folder.ModifiedAt = now
	}

	_, err := r.DB.execWithRetry(ctx, upsertFolder,
		folder.FolderID,
		folder.ParentID,
		folder.TenantID,
		folder.JobID,
		folder.Label,
		folder.Path,
		folder.IsActive,
		folder.IsDeleted,
		folder.LastSeenSyncID,
		folder.CreatedAt,
		folder.ModifiedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "folderRepository.UpsertFolder").
			Str("job_id", folder.JobID).
			Str("folder_id", folder.FolderID).
			Str("path", folder.Path).
			Msg("failed to execute upsert for folder")
		return fmt.Errorf("failed to upsert folder (folder_id=%s): %w", folder.FolderID, err)
	}

	return nil
}

func (r *folderRepository) GetFolderByID(ctx context.Context, jobID, folderID string) (models.Folder, error) {
	return r.getFolder(ctx, getFolderByID, jobID, folderID)
}

func (r *folderRepository) GetFolderByPath(ctx context.Context, jobID, path string) (models.Folder, error) {
	return r.getFolder(ctx, getFolderByPath, jobID, path)
}

func (r *folderRepository) getFolder(ctx context.Context, query string, args ...any) (models.Folder, error) {
	log := logger.FromContext(ctx)

	var folder models.Folder
	row := r.DB.QueryRowContext(ctx, query, args...)

	scanErr := row.Scan(
		&folder.FolderID,
		&folder.ParentID,
		&folder.TenantID,
		&folder.JobID,
		&folder.Label,
		&folder.Path,
		&folder.IsActive,
		&folder.IsDeleted,
		&folder.LastSeenSyncID,
		&folder.CreatedAt,
		&folder.ModifiedAt,
	)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return models.Folder{}, ErrFolderNotFound
	}
	if scanErr != nil {
		log.Err(scanErr).
			Str("func", "folderRepository.getFolder").
			Msg("failed to scan folder row")
		return models.Folder{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return folder, nil
}

func (r *folderRepository) ListFolders(ctx context.Context, filter FolderFilter) ([]models.Folder, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select(
		"folder_id", "parent_id", "tenant_id", "job_id", "label", "path",
		"is_active", "is_deleted", "last_seen_sync_id", "created_at", "modified_at",
	).
		From("folders").
		PlaceholderFormat(sq.Dollar).
		OrderBy("path")

	if filter.JobID != "" {
		builder = builder.Where(sq.Eq{"job_id": filter.JobID})
	}
	if filter.ActiveOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}
	if filter.NotDeleted {
		builder = builder.Where(sq.Eq{"is_deleted": false})
	}
	if filter.StaleSyncID != "" {
		builder = builder.Where(sq.NotEq{"last_seen_sync_id": filter.StaleSyncID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "folderRepository.ListFolders").
			Str("job_id", filter.JobID).
			Msg("failed to execute folder listing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var folders []models.Folder

	for rows.Next() {
		var folder models.Folder

		scanErr := rows.Scan(
			&folder.FolderID,
			&folder.ParentID,
			&folder.TenantID,
			&folder.JobID,
			&folder.Label,
			&folder.Path,
			&folder.IsActive,
			&folder.IsDeleted,
			&folder.LastSeenSyncID,
			&folder.CreatedAt,
			&folder.ModifiedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "folderRepository.ListFolders").
				Msg("failed to scan folder row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		folders = append(folders, folder)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "folderRepository.ListFolders").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating folder rows: %w", rowsErr)
	}

	return folders, nil
}

func (r *folderRepository) StampFolder(ctx context.Context, jobID, folderID, syncID string) error {
	return r.execFolderUpdate(ctx, "StampFolder", stampFolder, syncID, time.Now(), jobID, folderID)
}

func (r *folderRepository) DeactivateFolder(ctx context.Context, jobID, folderID string) error {
	return r.execFolderUpdate(ctx, "DeactivateFolder", deactivateFolder, time.Now(), jobID, folderID)
}

func (r *folderRepository) SoftDeleteFolder(ctx context.Context, jobID, folderID string) error {
	return r.execFolderUpdate(ctx, "SoftDeleteFolder", softDeleteFolder, time.Now(), jobID, folderID)
}

func (r *folderRepository) DeleteFolder(ctx context.Context, jobID, folderID string) error {
	return r.execFolderUpdate(ctx, "DeleteFolder", deleteFolder, jobID, folderID)
}

func (r *folderRepository) execFolderUpdate(ctx context.Context, op, query string, args ...any) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.execWithRetry(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "folderRepository."+op).
			Msg("failed to execute folder statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrFolderNotFound
	}

	return nil
}

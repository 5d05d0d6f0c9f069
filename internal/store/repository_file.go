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

type fileRepository struct {
	*DB
	logger *logger.Logger
}

func NewFileRepository(db *DB, logger *logger.Logger) FileRepository {
	return &fileRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *fileRepository) UpsertFile(ctx context.Context, file models.FileEntity) error {
	log := logger.FromContext(ctx)

	now := time.Now()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	if file.LastModifiedAt.IsZero() {
		file.LastModifiedAt = now
	}

	_, err := r.DB.execWithRetry(ctx, upsertFile,
		file.ItemID,
		file.TenantID,
		file.JobID,
		file.DirectoryID,
		file.FolderPath,
		file.FileName,
		file.FilePath,
		file.FileID,
		file.ChecksumHash,
		file.SizeInBytes,
		file.IsDeleted,
		file.LastSeenSyncID,
		file.CreatedAt,
		file.LastModifiedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "fileRepository.UpsertFile").
			Str("job_id", file.JobID).
			Str("item_id", file.ItemID).
			Str("file_name", file.FileName).
			Msg("failed to execute upsert for file")
		return fmt.Errorf("failed to upsert file (item_id=%s): %w", file.ItemID, err)
	}

	return nil
}

// UpsertFileRemoteLinkage records a change-stream observation of the item
// without touching the locally computed checksum, size and timestamp.
func (r *fileRepository) UpsertFileRemoteLinkage(ctx context.Context, file models.FileEntity) error {
	log := logger.FromContext(ctx)

	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}

	_, err := r.DB.execWithRetry(ctx, upsertFileRemoteLinkage,
		file.ItemID,
		file.TenantID,
		file.JobID,
		file.DirectoryID,
		file.FolderPath,
		file.FileName,
		file.FilePath,
		file.FileID,
		file.LastSeenSyncID,
		file.CreatedAt,
		file.LastModifiedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "fileRepository.UpsertFileRemoteLinkage").
			Str("job_id", file.JobID).
			Str("item_id", file.ItemID).
			Msg("failed to execute linkage upsert for file")
		return fmt.Errorf("failed to upsert file linkage (item_id=%s): %w", file.ItemID, err)
	}

	return nil
}

func (r *fileRepository) GetFileByItemID(ctx context.Context, jobID, itemID string) (models.FileEntity, error) {
	return r.getFile(ctx, getFileByItemID, jobID, itemID)
}

func (r *fileRepository) GetFileByPath(ctx context.Context, jobID, folderPath, fileName string) (models.FileEntity, error) {
	return r.getFile(ctx, getFileByPath, jobID, folderPath, fileName)
}

func (r *fileRepository) getFile(ctx context.Context, query string, args ...any) (models.FileEntity, error) {
	log := logger.FromContext(ctx)

	var file models.FileEntity
	row := r.DB.QueryRowContext(ctx, query, args...)

	scanErr := row.Scan(
		&file.ItemID,
		&file.TenantID,
		&file.JobID,
		&file.DirectoryID,
		&file.FolderPath,
		&file.FileName,
		&file.FilePath,
		&file.FileID,
		&file.ChecksumHash,
		&file.SizeInBytes,
		&file.IsDeleted,
		&file.LastSeenSyncID,
		&file.CreatedAt,
		&file.LastModifiedAt,
	)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return models.FileEntity{}, ErrFileNotFound
	}
	if scanErr != nil {
		log.Err(scanErr).
			Str("func", "fileRepository.getFile").
			Msg("failed to scan file row")
		return models.FileEntity{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return file, nil
}

func (r *fileRepository) ListFiles(ctx context.Context, filter FileFilter) ([]models.FileEntity, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select(
		"item_id", "tenant_id", "job_id", "directory_id", "folder_path", "file_name",
		"file_path", "file_id", "checksum_hash", "size_in_bytes",
		"is_deleted", "last_seen_sync_id", "created_at", "last_modified_at",
	).
		From("file_entities").
		PlaceholderFormat(sq.Dollar).
		OrderBy("folder_path", "file_name")

	if filter.JobID != "" {
		builder = builder.Where(sq.Eq{"job_id": filter.JobID})
	}
	if filter.NotDeleted {
		builder = builder.Where(sq.Eq{"is_deleted": false})
	}
	if filter.StaleSyncID != "" {
		builder = builder.Where(sq.NotEq{"last_seen_sync_id": filter.StaleSyncID})
	}
	if filter.FolderPath != "" {
		builder = builder.Where(sq.Expr("LOWER(folder_path) = LOWER(?)", filter.FolderPath))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "fileRepository.ListFiles").
			Str("job_id", filter.JobID).
			Msg("failed to execute file listing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var files []models.FileEntity

	for rows.Next() {
		var file models.FileEntity

		scanErr := rows.Scan(
			&file.ItemID,
			&file.TenantID,
			&file.JobID,
			&file.DirectoryID,
			&file.FolderPath,
			&file.FileName,
			&file.FilePath,
			&file.FileID,
			&file.ChecksumHash,
			&file.SizeInBytes,
			&file.IsDeleted,
			&file.LastSeenSyncID,
			&file.CreatedAt,
			&file.LastModifiedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "fileRepository.ListFiles").
				Msg("failed to scan file row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		files = append(files, file)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "fileRepository.ListFiles").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating file rows: %w", rowsErr)
	}

	return files, nil
}

func (r *fileRepository) StampFile(ctx context.Context, jobID, itemID, syncID string) error {
	return r.execFileUpdate(ctx, "StampFile", stampFile, syncID, jobID, itemID)
}

func (r *fileRepository) UpdateContent(ctx context.Context, jobID, itemID, checksum string, size int64, modifiedAt time.Time) error {
	return r.execFileUpdate(ctx, "UpdateContent", updateFileContent, checksum, size, modifiedAt, jobID, itemID)
}

func (r *fileRepository) SoftDeleteFile(ctx context.Context, jobID, itemID string) error {
	return r.execFileUpdate(ctx, "SoftDeleteFile", softDeleteFile, jobID, itemID)
}

func (r *fileRepository) DeleteFile(ctx context.Context, jobID, itemID string) error {
	return r.execFileUpdate(ctx, "DeleteFile", deleteFile, jobID, itemID)
}

func (r *fileRepository) execFileUpdate(ctx context.Context, op, query string, args ...any) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.execWithRetry(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "fileRepository."+op).
			Msg("failed to execute file statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrFileNotFound
	}

	return nil
}

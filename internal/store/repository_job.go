package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/models"
)

type jobRepository struct {
	*DB
	logger *logger.Logger
}

func NewJobRepository(db *DB, logger *logger.Logger) JobRepository {
	return &jobRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *jobRepository) UpsertJob(ctx context.Context, job models.SyncJob) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.execWithRetry(ctx, upsertJob,
		job.JobID,
		job.TenantID,
		job.JobName,
		job.DestinationPath,
		job.VolumeID,
		job.VolumeName,
		job.VolumePath,
		job.Direction,
		job.IsActive,
		job.LastItemID,
		job.LastRunTime,
		job.FileDeletionPolicy,
		job.DirectoryDeletionPolicy,
	)
	if err != nil {
		log.Err(err).
			Str("func", "jobRepository.UpsertJob").
			Str("job_id", job.JobID).
			Str("tenant_id", job.TenantID).
			Msg("failed to execute upsert for sync job")
		return fmt.Errorf("failed to upsert sync job (job_id=%s): %w", job.JobID, err)
	}

	return nil
}

func (r *jobRepository) GetJob(ctx context.Context, jobID string) (models.SyncJob, error) {
	log := logger.FromContext(ctx)

	var job models.SyncJob
	row := r.DB.QueryRowContext(ctx, getJob, jobID)

	scanErr := row.Scan(
		&job.JobID,
		&job.TenantID,
		&job.JobName,
		&job.DestinationPath,
		&job.VolumeID,
		&job.VolumeName,
		&job.VolumePath,
		&job.Direction,
		&job.IsActive,
		&job.LastItemID,
		&job.LastRunTime,
		&job.FileDeletionPolicy,
		&job.DirectoryDeletionPolicy,
	)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return models.SyncJob{}, ErrJobNotFound
	}
	if scanErr != nil {
		log.Err(scanErr).
			Str("func", "jobRepository.GetJob").
			Str("job_id", jobID).
			Msg("failed to scan sync job row")
		return models.SyncJob{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return job, nil
}

func (r *jobRepository) GetActiveJobs(ctx context.Context) ([]models.SyncJob, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, getActiveJobs)
	if err != nil {
		log.Err(err).
			Str("func", "jobRepository.GetActiveJobs").
			Msg("failed to execute query for active sync jobs")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var jobs []models.SyncJob

	for rows.Next() {
		var job models.SyncJob

		scanErr := rows.Scan(
			&job.JobID,
			&job.TenantID,
			&job.JobName,
			&job.DestinationPath,
			&job.VolumeID,
			&job.VolumeName,
			&job.VolumePath,
			&job.Direction,
			&job.IsActive,
			&job.LastItemID,
			&job.LastRunTime,
			&job.FileDeletionPolicy,
			&job.DirectoryDeletionPolicy,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "jobRepository.GetActiveJobs").
				Msg("failed to scan sync job row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		jobs = append(jobs, job)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "jobRepository.GetActiveJobs").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating sync job rows: %w", rowsErr)
	}

	return jobs, nil
}

func (r *jobRepository) UpdateCursor(ctx context.Context, jobID, lastItemID string, lastRunTime int64) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.execWithRetry(ctx, updateJobCursor, lastItemID, lastRunTime, jobID)
	if err != nil {
		log.Err(err).
			Str("func", "jobRepository.UpdateCursor").
			Str("job_id", jobID).
			Msg("failed to persist job cursor")
		return fmt.Errorf("failed to persist cursor (job_id=%s): %w", jobID, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrJobNotFound
	}

	return nil
}

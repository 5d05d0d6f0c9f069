package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/models"
)

type tenantRepository struct {
	*DB
	logger *logger.Logger
}

func NewTenantRepository(db *DB, logger *logger.Logger) TenantRepository {
	return &tenantRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *tenantRepository) UpsertTenant(ctx context.Context, tenant models.Tenant) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.execWithRetry(ctx, upsertTenant,
		tenant.TenantID,
		tenant.Domain,
		tenant.BaseURL,
		tenant.APIKey,
		tenant.IsActive,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "tenantRepository.UpsertTenant").
			Str("tenant_id", tenant.TenantID).
			Msg("failed to execute upsert for tenant")
		return fmt.Errorf("failed to upsert tenant (tenant_id=%s): %w", tenant.TenantID, err)
	}

	return nil
}

func (r *tenantRepository) GetTenant(ctx context.Context, tenantID string) (models.Tenant, error) {
	log := logger.FromContext(ctx)

	var tenant models.Tenant
	row := r.DB.QueryRowContext(ctx, getTenant, tenantID)

	scanErr := row.Scan(
		&tenant.TenantID,
		&tenant.Domain,
		&tenant.BaseURL,
		&tenant.APIKey,
		&tenant.IsActive,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return models.Tenant{}, ErrTenantNotFound
	}
	if scanErr != nil {
		log.Err(scanErr).
			Str("func", "tenantRepository.GetTenant").
			Str("tenant_id", tenantID).
			Msg("failed to scan tenant row")
		return models.Tenant{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return tenant, nil
}

func (r *tenantRepository) GetActiveTenants(ctx context.Context) ([]models.Tenant, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, getActiveTenants)
	if err != nil {
		log.Err(err).
			Str("func", "tenantRepository.GetActiveTenants").
			Msg("failed to execute query for active tenants")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var tenants []models.Tenant

	for rows.Next() {
		var tenant models.Tenant

		scanErr := rows.Scan(
			&tenant.TenantID,
			&tenant.Domain,
			&tenant.BaseURL,
			&tenant.APIKey,
			&tenant.IsActive,
			&tenant.CreatedAt,
			&tenant.UpdatedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "tenantRepository.GetActiveTenants").
				Msg("failed to scan tenant row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		tenants = append(tenants, tenant)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "tenantRepository.GetActiveTenants").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating tenant rows: %w", rowsErr)
	}

	return tenants, nil
}

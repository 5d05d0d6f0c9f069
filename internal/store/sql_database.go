package store

import (
	"context"
	"database/sql"

	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/migrations"
)

// DB wraps the sql connection pool together with the driver name it was
// opened with, so that migrations can pick the matching goose dialect.
type DB struct {
	*sql.DB
	driver string
	logger *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}

// execWithRetry executes a statement and retries it once when the error is
// classified as transient (connection loss, deadlock rollback).
func (db *DB) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil && ClassifyError(err) == Retryable {
		db.logger.Warn().Err(err).Msg("retrying transient database error")
		return db.ExecContext(ctx, query, args...)
	}
	return res, err
}

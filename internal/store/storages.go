package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-dam-sync/internal/config"
	"github.com/MKhiriev/go-dam-sync/internal/logger"
)

// Storages bundles every repository over a single migrated connection.
type Storages struct {
	Tenants TenantRepository
	Jobs    JobRepository
	Folders FolderRepository
	Files   FileRepository

	db *DB
}

// NewStorages opens the sync-state database, runs the migrations and wires
// the repositories. A postgres:// or postgresql:// DSN selects PostgreSQL,
// anything else is treated as a SQLite file path.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	var (
		db  *DB
		err error
	)

	if isPostgresDSN(cfg.DB.DSN) {
		db, err = NewConnectPostgres(ctx, cfg.DB, log)
	} else {
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
	}
	if err != nil {
		return nil, fmt.Errorf("error connecting to sync-state database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating sync-state database: %w", err)
	}

	return &Storages{
		Tenants: NewTenantRepository(db, log),
		Jobs:    NewJobRepository(db, log),
		Folders: NewFolderRepository(db, log),
		Files:   NewFileRepository(db, log),
		db:      db,
	}, nil
}

func (s *Storages) Close() error {
	return s.db.Close()
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

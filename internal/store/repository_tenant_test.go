package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/models"
)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	l := logger.NewLogger("test")
	return &DB{DB: db, driver: "pgx", logger: l}, mock, db
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func tenantColumns() []string {
	return []string{"tenant_id", "domain", "base_url", "api_key", "is_active", "created_at", "updated_at"}
}

func TestUpsertTenant_Success(t *testing.T) {
	wrapped, mock, db := newTestDB(t)
	defer db.Close()

	repo := NewTenantRepository(wrapped, wrapped.logger)

	tenant := models.Tenant{
		TenantID: "t-1",
		Domain:   "acme.example.com",
		BaseURL:  "https://dam.acme.example.com",
		APIKey:   "secret",
		IsActive: true,
	}

	mock.ExpectExec("INSERT INTO tenants").
		WithArgs(tenant.TenantID, tenant.Domain, tenant.BaseURL, tenant.APIKey, tenant.IsActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpsertTenant(context.Background(), tenant); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpsertTenant_RetriesTransientError(t *testing.T) {
	wrapped, mock, db := newTestDB(t)
	defer db.Close()

	repo := NewTenantRepository(wrapped, wrapped.logger)

	mock.ExpectExec("INSERT INTO tenants").
		WillReturnError(pgError(pgerrcode.DeadlockDetected))
	mock.ExpectExec("INSERT INTO tenants").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpsertTenant(context.Background(), models.Tenant{TenantID: "t-1"}); err != nil {
		t.Fatalf("expected retry to succeed, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpsertTenant_NonRetryableError(t *testing.T) {
	wrapped, mock, db := newTestDB(t)
	defer db.Close()

	repo := NewTenantRepository(wrapped, wrapped.logger)

	mock.ExpectExec("INSERT INTO tenants").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	err := repo.UpsertTenant(context.Background(), models.Tenant{TenantID: "t-1"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	// a non-retryable failure must not trigger a second exec
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetTenant_Success(t *testing.T) {
	wrapped, mock, db := newTestDB(t)
	defer db.Close()

	repo := NewTenantRepository(wrapped, wrapped.logger)
	now := time.Now()

	rows := sqlmock.NewRows(tenantColumns()).
		AddRow("t-1", "acme.example.com", "https://dam.acme.example.com", "secret", true, now, now)

	mock.ExpectQuery("SELECT (.+) FROM tenants").
		WithArgs("t-1").
		WillReturnRows(rows)

	tenant, err := repo.GetTenant(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tenant.TenantID != "t-1" {
		t.Errorf("expected tenant_id t-1, got %s", tenant.TenantID)
	}
	if tenant.Domain != "acme.example.com" {
		t.Errorf("expected domain acme.example.com, got %s", tenant.Domain)
	}
}

func TestGetTenant_NotFound(t *testing.T) {
	wrapped, mock, db := newTestDB(t)
	defer db.Close()

	repo := NewTenantRepository(wrapped, wrapped.logger)

	mock.ExpectQuery("SELECT (.+) FROM tenants").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetTenant(context.Background(), "missing")
	if !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestGetActiveTenants_Success(t *testing.T) {
	wrapped, mock, db := newTestDB(t)
	defer db.Close()

	repo := NewTenantRepository(wrapped, wrapped.logger)
	now := time.Now()

	rows := sqlmock.NewRows(tenantColumns()).
		AddRow("t-1", "a.example.com", "https://a", "k1", true, now, now).
		AddRow("t-2", "b.example.com", "https://b", "k2", true, now, now)

	mock.ExpectQuery("SELECT (.+) FROM tenants").
		WillReturnRows(rows)

	tenants, err := repo.GetActiveTenants(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tenants) != 2 {
		t.Fatalf("expected 2 tenants, got %d", len(tenants))
	}
	if tenants[1].TenantID != "t-2" {
		t.Errorf("expected second tenant t-2, got %s", tenants[1].TenantID)
	}
}

func TestGetActiveTenants_QueryError(t *testing.T) {
	wrapped, mock, db := newTestDB(t)
	defer db.Close()

	repo := NewTenantRepository(wrapped, wrapped.logger)

	mock.ExpectQuery("SELECT (.+) FROM tenants").
		WillReturnError(errors.New("db network error"))

	_, err := repo.GetActiveTenants(context.Background())
	if !errors.Is(err, ErrExecutingQuery) {
		t.Fatalf("expected ErrExecutingQuery, got %v", err)
	}
}

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrTenantNotFound is returned when a query targets a tenant that does
	// not exist in the database.
	ErrTenantNotFound = errors.New("tenant was not found")

	// ErrJobNotFound is returned when a query targets a sync job that does
	// not exist in the database.
	ErrJobNotFound = errors.New("sync job was not found")

	// ErrFolderNotFound is returned when a query targets a tracked folder
	// (identified by job_id and folder_id, or by path) that does not exist.
	ErrFolderNotFound = errors.New("tracked folder was not found")

	// ErrFileNotFound is returned when a query targets a tracked file
	// (identified by job_id and item_id, or by path) that does not exist.
	ErrFileNotFound = errors.New("tracked file was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)

package models

import "time"

// Folder mirrors one remote/local directory.
//
// Invariant: at most one non-deleted Folder exists per (tenant, path).
// LastSeenSyncID is the mark-and-sweep generation stamp; a folder whose
// stamp does not match the current sync epoch after a full pass is a
// deletion candidate.
type Folder struct {
	// FolderID is the stable, remote-assigned identifier.
	FolderID string `json:"id"`

	// ParentID is the remote id of the parent folder, empty at volume root.
	ParentID string `json:"parent_id"`

	TenantID string `json:"tenant_id"`

	// JobID scopes the tracking row to one sync job; mark-and-sweep always
	// runs within a single job.
	JobID string `json:"job_id"`

	// Label is the display name, the last path segment.
	Label string `json:"label"`

	// Path is the canonical root-relative path (forward slashes, no volume
	// prefix). See pathutil.Standardize.
	Path string `json:"path"`

	IsActive  bool `json:"is_active"`
	IsDeleted bool `json:"is_deleted"`

	LastSeenSyncID string    `json:"last_seen_sync_id"`
	CreatedAt      time.Time `json:"created_at"`
	ModifiedAt     time.Time `json:"modified_at"`
}

// TableName returns the name of the database table
// associated with the Folder model.
func (f Folder) TableName() string {
	return "folders"
}

package models

// SyncDirection selects which executor runs a job.
type SyncDirection string

const (
	UploadOnly       SyncDirection = "upload"
	DownloadOnly     SyncDirection = "download"
	BiDirectional    SyncDirection = "bidirectional"
	UploadAndClean   SyncDirection = "upload_and_clean"
	DownloadAndClean SyncDirection = "download_and_clean"
)

// DeletionPolicy controls what happens to a tracked item that a full
// reconciliation pass no longer observes.
type DeletionPolicy string

const (
	// SoftDeleteOnly flips the deleted flag on the tracking row and leaves
	// the remote item untouched. Safest option, the default.
	SoftDeleteOnly DeletionPolicy = "soft_delete_only"

	// RemoveTrackingOnly drops the tracking row entirely, remote untouched.
	RemoveTrackingOnly DeletionPolicy = "remove_tracking_only"

	// DeleteFromRemote deletes the item in the DAM and then drops tracking.
	// Falls back to SoftDeleteOnly when the remote delete fails.
	DeleteFromRemote DeletionPolicy = "delete_from_remote"

	// IgnoreDeletions takes no action at all.
	IgnoreDeletions DeletionPolicy = "ignore"
)

// SyncJob is one configured synchronization task: a local root, a remote
// volume, a direction and the per-job deletion policies.
//
// LastItemID and LastRunTime are the only durable cross-run state the
// reconciler depends on. They are persisted together, and only after a
// remote change stream has been fully consumed; losing them forces a
// full-history replay, which is safe because all tracking writes are
// idempotent upserts.
type SyncJob struct {
	JobID    string `json:"id"`
	TenantID string `json:"tenant_id"`
	JobName  string `json:"job_name"`

	// DestinationPath is the absolute local root directory of the job.
	DestinationPath string `json:"destination_path"`

	// VolumeID, VolumeName and VolumePath identify the remote volume and the
	// remote root under which this job operates.
	VolumeID   string `json:"volume_id"`
	VolumeName string `json:"volume_name"`
	VolumePath string `json:"volume_path"`

	Direction SyncDirection `json:"direction"`
	IsActive  bool          `json:"is_active"`

	// LastItemID is the paging cursor into the remote modified-items
	// listing. Empty or whitespace means "from the beginning".
	LastItemID string `json:"last_item_id"`

	// LastRunTime is the server-reported watermark (epoch seconds) of the
	// last fully processed change stream.
	LastRunTime int64 `json:"last_run_time"`

	FileDeletionPolicy      DeletionPolicy `json:"file_deletion_policy"`
	DirectoryDeletionPolicy DeletionPolicy `json:"directory_deletion_policy"`
}

// TableName returns the name of the database table
// associated with the SyncJob model.
func (j SyncJob) TableName() string {
	return "sync_jobs"
}

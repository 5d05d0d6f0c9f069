package models

import "time"

// FileEntity mirrors one remote/local file.
//
// ChecksumHash is the authoritative signal for "content changed";
// LastModifiedAt is the cheaper secondary signal. Either disagreeing with
// the on-disk state re-evaluates the file.
type FileEntity struct {
	// ItemID is the stable, remote-assigned item identifier.
	ItemID string `json:"id"`

	TenantID string `json:"tenant_id"`

	// JobID scopes the tracking row to one sync job; mark-and-sweep always
	// runs within a single job.
	JobID string `json:"job_id"`

	// DirectoryID links the file to its tracked Folder, empty when the
	// owning folder is not (yet) tracked.
	DirectoryID string `json:"directory_id"`

	// FolderPath is the canonical root-relative path of the owning
	// directory; FileName is the bare file name.
	FolderPath string `json:"folder_path"`
	FileName   string `json:"file_name"`

	// FilePath is the remote download address of the asset, as reported by
	// the modified-items stream.
	FilePath string `json:"file_path"`

	// FileID is the remote content identifier, distinct from ItemID.
	FileID string `json:"file_id"`

	// ChecksumHash is the SHA-256 of the local content, hex encoded.
	ChecksumHash string `json:"checksum_hash"`

	SizeInBytes int64 `json:"size_in_bytes"`

	IsDeleted bool `json:"is_deleted"`

	LastSeenSyncID string    `json:"last_seen_sync_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastModifiedAt time.Time `json:"last_modified_at"`
}

// TableName returns the name of the database table
// associated with the FileEntity model.
func (f FileEntity) TableName() string {
	return "file_entities"
}

package adapter

// JobDefinition is the store-side representation of a sync job.
type JobDefinition struct {
	ID                      string `json:"id"`
	TenantID                string `json:"tenant_id"`
	Name                    string `json:"name"`
	DestinationPath         string `json:"destination_path"`
	VolumeID                string `json:"volume_id"`
	VolumeName              string `json:"volume_name"`
	VolumePath              string `json:"volume_path"`
	Direction               string `json:"direction"`
	IsActive                bool   `json:"is_active"`
	LastItemID              string `json:"last_item_id"`
	LastRunTime             int64  `json:"last_run_time"`
	FileDeletionPolicy      string `json:"file_deletion_policy"`
	DirectoryDeletionPolicy string `json:"directory_deletion_policy"`
}

// RemoteFolder is a folder as reported by the store.
type RemoteFolder struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
	Label    string `json:"label"`
	Path     string `json:"path"`
}

// RemoteItem is a file item as reported by the store. FilePath is the
// address from which the asset content can be downloaded; FileID identifies
// the content object, distinct from the item ID.
type RemoteItem struct {
	ID         string `json:"id"`
	FolderID   string `json:"folder_id"`
	FolderPath string `json:"folder_path"`
	FileName   string `json:"file_name"`
	FilePath   string `json:"file_path"`
	FileID     string `json:"file_id"`
	Checksum   string `json:"checksum"`
	Size       int64  `json:"size"`
	ModifiedAt int64  `json:"modified_at"`
	IsActive   bool   `json:"is_active"`
}

// ModifiedItemsQuery identifies one page of the modified-items listing.
// LastItemID is the opaque continuation cursor; empty or whitespace means
// the listing starts from the beginning. Active selects between the active
// and the deactivated item streams.
type ModifiedItemsQuery struct {
	VolumeID      string
	Active        bool
	LastItemID    string
	PageSize      int
	ModifiedAfter int64
}

// ModifiedItemsPage is one page of the modified-items listing. LastRunTime
// is the store's change watermark at the time the listing was opened; it is
// meaningful on the first page of a stream.
type ModifiedItemsPage struct {
	Items       []RemoteItem `json:"items"`
	LastItemID  string       `json:"last_item_id"`
	LastRunTime int64        `json:"last_run_time"`
}

// UploadTicket authorises one object-storage upload. Key is the storage
// object key the content must be written to; UploadURL is the pre-resolved
// endpoint address.
type UploadTicket struct {
	TicketID  string `json:"ticket_id"`
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
}

// ItemMeta carries the metadata attached when a ticket is finalised into an
// item.
type ItemMeta struct {
	FolderID string `json:"folder_id"`
	FileName string `json:"file_name"`
	Checksum string `json:"checksum"`
	Size     int64  `json:"size"`
}

// S3Info holds the object-storage endpoint credentials for this tenant.
type S3Info struct {
	ID     string `json:"id"`
	Bucket string `json:"bucket"`
	Region string `json:"region"`
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

package store

// Placeholders are numbered in order of first appearance: PostgreSQL treats
// $N as positional, but go-sqlite3 assigns ordinals by occurrence and binds
// arguments positionally, so SET clauses must come before WHERE in the
// argument list.
const (
	upsertTenant = `INSERT INTO tenants (tenant_id, domain, base_url, api_key, is_active, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    ON CONFLICT (tenant_id) DO UPDATE SET
        domain = excluded.domain,
        base_url = excluded.base_url,
        api_key = excluded.api_key,
        is_active = excluded.is_active,
        updated_at = excluded.updated_at;`

	getTenant = `SELECT tenant_id, domain, base_url, api_key, is_active, created_at, updated_at
    FROM tenants
    WHERE tenant_id = $1;`

	getActiveTenants = `SELECT tenant_id, domain, base_url, api_key, is_active, created_at, updated_at
    FROM tenants
    WHERE is_active = TRUE
    ORDER BY tenant_id;`

	// job upsert deliberately leaves last_item_id and last_run_time alone:
	// the cursor belongs to the executors, not to the definition poller.
	upsertJob = `INSERT INTO sync_jobs (
        job_id, tenant_id, job_name, destination_path,
        volume_id, volume_name, volume_path,
        direction, is_active, last_item_id, last_run_time,
        file_deletion_policy, directory_deletion_policy
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    ON CONFLICT (job_id) DO UPDATE SET
        tenant_id = excluded.tenant_id,
        job_name = excluded.job_name,
        destination_path = excluded.destination_path,
        volume_id = excluded.volume_id,
        volume_name = excluded.volume_name,
        volume_path = excluded.volume_path,
        direction = excluded.direction,
        is_active = excluded.is_active,
        file_deletion_policy = excluded.file_deletion_policy,
        directory_deletion_policy = excluded.directory_deletion_policy;`

	getJob = `SELECT job_id, tenant_id, job_name, destination_path,
        volume_id, volume_name, volume_path,
        direction, is_active, last_item_id, last_run_time,
        file_deletion_policy, directory_deletion_policy
    FROM sync_jobs
    WHERE job_id = $1;`

	getActiveJobs = `SELECT job_id, tenant_id, job_name, destination_path,
        volume_id, volume_name, volume_path,
        direction, is_active, last_item_id, last_run_time,
        file_deletion_policy, directory_deletion_policy
    FROM sync_jobs
    WHERE is_active = TRUE
    ORDER BY job_id;`

	updateJobCursor = `UPDATE sync_jobs
    SET last_item_id = $1, last_run_time = $2
    WHERE job_id = $3;`

	upsertFolder = `INSERT INTO folders (
        folder_id, parent_id, tenant_id, job_id, label, path,
        is_active, is_deleted, last_seen_sync_id, created_at, modified_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    ON CONFLICT (job_id, folder_id) DO UPDATE SET
        parent_id = excluded.parent_id,
        label = excluded.label,
        path = excluded.path,
        is_active = excluded.is_active,
        is_deleted = excluded.is_deleted,
        last_seen_sync_id = excluded.last_seen_sync_id,
        modified_at = excluded.modified_at;`

	getFolderByID = `SELECT folder_id, parent_id, tenant_id, job_id, label, path,
        is_active, is_deleted, last_seen_sync_id, created_at, modified_at
    FROM folders
    WHERE job_id = $1 AND folder_id = $2;`

	getFolderByPath = `SELECT folder_id, parent_id, tenant_id, job_id, label, path,
        is_active, is_deleted, last_seen_sync_id, created_at, modified_at
    FROM folders
    WHERE job_id = $1 AND LOWER(path) = LOWER($2) AND is_deleted = FALSE;`

	stampFolder = `UPDATE folders
    SET last_seen_sync_id = $1, modified_at = $2
    WHERE job_id = $3 AND folder_id = $4;`

	deactivateFolder = `UPDATE folders
    SET is_active = FALSE, modified_at = $1
    WHERE job_id = $2 AND folder_id = $3;`

	softDeleteFolder = `UPDATE folders
    SET is_deleted = TRUE, is_active = FALSE, modified_at = $1
    WHERE job_id = $2 AND folder_id = $3;`

	deleteFolder = `DELETE FROM folders
    WHERE job_id = $1 AND folder_id = $2;`

	upsertFile = `INSERT INTO file_entities (
        item_id, tenant_id, job_id, directory_id, folder_path, file_name,
        file_path, file_id, checksum_hash, size_in_bytes,
        is_deleted, last_seen_sync_id, created_at, last_modified_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    ON CONFLICT (job_id, item_id) DO UPDATE SET
        directory_id = excluded.directory_id,
        folder_path = excluded.folder_path,
        file_name = excluded.file_name,
        file_path = excluded.file_path,
        file_id = excluded.file_id,
        checksum_hash = excluded.checksum_hash,
        size_in_bytes = excluded.size_in_bytes,
        is_deleted = excluded.is_deleted,
        last_seen_sync_id = excluded.last_seen_sync_id,
        last_modified_at = excluded.last_modified_at;`

	// remote-linkage upsert: a change-stream observation must not clobber
	// the locally computed checksum, size and timestamp.
	upsertFileRemoteLinkage = `INSERT INTO file_entities (
        item_id, tenant_id, job_id, directory_id, folder_path, file_name,
        file_path, file_id, checksum_hash, size_in_bytes,
        is_deleted, last_seen_sync_id, created_at, last_modified_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '', 0, FALSE, $9, $10, $11)
    ON CONFLICT (job_id, item_id) DO UPDATE SET
        directory_id = excluded.directory_id,
        folder_path = excluded.folder_path,
        file_name = excluded.file_name,
        file_path = excluded.file_path,
        file_id = excluded.file_id,
        is_deleted = FALSE,
        last_seen_sync_id = excluded.last_seen_sync_id;`

	getFileByItemID = `SELECT item_id, tenant_id, job_id, directory_id, folder_path, file_name,
        file_path, file_id, checksum_hash, size_in_bytes,
        is_deleted, last_seen_sync_id, created_at, last_modified_at
    FROM file_entities
    WHERE job_id = $1 AND item_id = $2;`

	getFileByPath = `SELECT item_id, tenant_id, job_id, directory_id, folder_path, file_name,
        file_path, file_id, checksum_hash, size_in_bytes,
        is_deleted, last_seen_sync_id, created_at, last_modified_at
    FROM file_entities
    WHERE job_id = $1 AND LOWER(folder_path) = LOWER($2) AND LOWER(file_name) = LOWER($3) AND is_deleted = FALSE;`

	stampFile = `UPDATE file_entities
    SET last_seen_sync_id = $1
    WHERE job_id = $2 AND item_id = $3;`

	updateFileContent = `UPDATE file_entities
    SET checksum_hash = $1, size_in_bytes = $2, last_modified_at = $3
    WHERE job_id = $4 AND item_id = $5;`

	softDeleteFile = `UPDATE file_entities
    SET is_deleted = TRUE
    WHERE job_id = $1 AND item_id = $2;`

	deleteFile = `DELETE FROM file_entities
    WHERE job_id = $1 AND item_id = $2;`
)

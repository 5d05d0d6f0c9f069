package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-dam-sync/internal/adapter"
	"github.com/MKhiriev/go-dam-sync/internal/config"
	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/internal/store"
	"github.com/MKhiriev/go-dam-sync/internal/transfer"
	"github.com/MKhiriev/go-dam-sync/models"
)

// memStore is an in-memory stand-in for all four repositories, mirroring the
// SQL semantics the executors rely on: job upserts never touch the cursor,
// linkage upserts never touch the locally computed columns, path lookups are
// case-insensitive and skip soft-deleted rows.
type memStore struct {
	mu      sync.Mutex
	tenants map[string]models.Tenant
	jobs    map[string]models.SyncJob
	folders map[string]models.Folder
	files   map[string]models.FileEntity
}

func newMemStore() *memStore {
	return &memStore{
		tenants: make(map[string]models.Tenant),
		jobs:    make(map[string]models.SyncJob),
		folders: make(map[string]models.Folder),
		files:   make(map[string]models.FileEntity),
	}
}

func key(jobID, id string) string { return jobID + "|" + id }

func (m *memStore) UpsertTenant(ctx context.Context, tenant models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[tenant.TenantID] = tenant
	return nil
}

func (m *memStore) GetTenant(ctx context.Context, tenantID string) (models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tenant, ok := m.tenants[tenantID]
	if !ok {
		return models.Tenant{}, store.ErrTenantNotFound
	}
	return tenant, nil
}

func (m *memStore) GetActiveTenants(ctx context.Context) ([]models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Tenant
	for _, t := range m.tenants {
		if t.IsActive {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func (m *memStore) UpsertJob(ctx context.Context, job models.SyncJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.jobs[job.JobID]; ok {
		job.LastItemID = existing.LastItemID
		job.LastRunTime = existing.LastRunTime
	}
	m.jobs[job.JobID] = job
	return nil
}

func (m *memStore) GetJob(ctx context.Context, jobID string) (models.SyncJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return models.SyncJob{}, store.ErrJobNotFound
	}
	return job, nil
}

func (m *memStore) GetActiveJobs(ctx context.Context) ([]models.SyncJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SyncJob
	for _, j := range m.jobs {
		if j.IsActive {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobID < out[j].JobID })
	return out, nil
}

func (m *memStore) UpdateCursor(ctx context.Context, jobID, lastItemID string, lastRunTime int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return store.ErrJobNotFound
	}
	job.LastItemID = lastItemID
	job.LastRunTime = lastRunTime
	m.jobs[jobID] = job
	return nil
}

func (m *memStore) UpsertFolder(ctx context.Context, folder models.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[key(folder.JobID, folder.FolderID)] = folder
	return nil
}

func (m *memStore) GetFolderByID(ctx context.Context, jobID, folderID string) (models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	folder, ok := m.folders[key(jobID, folderID)]
	if !ok {
		return models.Folder{}, store.ErrFolderNotFound
	}
	return folder, nil
}

func (m *memStore) GetFolderByPath(ctx context.Context, jobID, path string) (models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, folder := range m.folders {
		if folder.JobID == jobID && !folder.IsDeleted && strings.EqualFold(folder.Path, path) {
			return folder, nil
		}
	}
	return models.Folder{}, store.ErrFolderNotFound
}

func (m *memStore) ListFolders(ctx context.Context, filter store.FolderFilter) ([]models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Folder
	for _, folder := range m.folders {
		if filter.JobID != "" && folder.JobID != filter.JobID {
			continue
		}
		if filter.ActiveOnly && !folder.IsActive {
			continue
		}
		if filter.NotDeleted && folder.IsDeleted {
			continue
		}
		if filter.StaleSyncID != "" && folder.LastSeenSyncID == filter.StaleSyncID {
			continue
		}
		out = append(out, folder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *memStore) StampFolder(ctx context.Context, jobID, folderID, syncID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	folder, ok := m.folders[key(jobID, folderID)]
	if !ok {
		return store.ErrFolderNotFound
	}
	folder.LastSeenSyncID = syncID
	m.folders[key(jobID, folderID)] = folder
	return nil
}

func (m *memStore) DeactivateFolder(ctx context.Context, jobID, folderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	folder, ok := m.folders[key(jobID, folderID)]
	if !ok {
		return store.ErrFolderNotFound
	}
	folder.IsActive = false
	m.folders[key(jobID, folderID)] = folder
	return nil
}

func (m *memStore) SoftDeleteFolder(ctx context.Context, jobID, folderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	folder, ok := m.folders[key(jobID, folderID)]
	if !ok {
		return store.ErrFolderNotFound
	}
	folder.IsDeleted = true
	folder.IsActive = false
	m.folders[key(jobID, folderID)] = folder
	return nil
}

func (m *memStore) DeleteFolder(ctx context.Context, jobID, folderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.folders[key(jobID, folderID)]; !ok {
		return store.ErrFolderNotFound
	}
	delete(m.folders, key(jobID, folderID))
	return nil
}

func (m *memStore) UpsertFile(ctx context.Context, file models.FileEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key(file.JobID, file.ItemID)] = file
	return nil
}

func (m *memStore) UpsertFileRemoteLinkage(ctx context.Context, file models.FileEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(file.JobID, file.ItemID)
	if existing, ok := m.files[k]; ok {
		existing.DirectoryID = file.DirectoryID
		existing.FolderPath = file.FolderPath
		existing.FileName = file.FileName
		existing.FilePath = file.FilePath
		existing.FileID = file.FileID
		existing.IsDeleted = false
		existing.LastSeenSyncID = file.LastSeenSyncID
		m.files[k] = existing
		return nil
	}
	file.ChecksumHash = ""
	file.SizeInBytes = 0
	m.files[k] = file
	return nil
}

func (m *memStore) GetFileByItemID(ctx context.Context, jobID, itemID string) (models.FileEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[key(jobID, itemID)]
	if !ok {
		return models.FileEntity{}, store.ErrFileNotFound
	}
	return file, nil
}

func (m *memStore) GetFileByPath(ctx context.Context, jobID, folderPath, fileName string) (models.FileEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, file := range m.files {
		if file.JobID == jobID && !file.IsDeleted &&
			strings.EqualFold(file.FolderPath, folderPath) && strings.EqualFold(file.FileName, fileName) {
			return file, nil
		}
	}
	return models.FileEntity{}, store.ErrFileNotFound
}

func (m *memStore) ListFiles(ctx context.Context, filter store.FileFilter) ([]models.FileEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FileEntity
	for _, file := range m.files {
		if filter.JobID != "" && file.JobID != filter.JobID {
			continue
		}
		if filter.NotDeleted && file.IsDeleted {
			continue
		}
		if filter.StaleSyncID != "" && file.LastSeenSyncID == filter.StaleSyncID {
			continue
		}
		if filter.FolderPath != "" && !strings.EqualFold(file.FolderPath, filter.FolderPath) {
			continue
		}
		out = append(out, file)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (m *memStore) StampFile(ctx context.Context, jobID, itemID, syncID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[key(jobID, itemID)]
	if !ok {
		return store.ErrFileNotFound
	}
	file.LastSeenSyncID = syncID
	m.files[key(jobID, itemID)] = file
	return nil
}

func (m *memStore) UpdateContent(ctx context.Context, jobID, itemID, checksum string, size int64, modifiedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[key(jobID, itemID)]
	if !ok {
		return store.ErrFileNotFound
	}
	file.ChecksumHash = checksum
	file.SizeInBytes = size
	file.LastModifiedAt = modifiedAt
	m.files[key(jobID, itemID)] = file
	return nil
}

func (m *memStore) SoftDeleteFile(ctx context.Context, jobID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[key(jobID, itemID)]
	if !ok {
		return store.ErrFileNotFound
	}
	file.IsDeleted = true
	m.files[key(jobID, itemID)] = file
	return nil
}

func (m *memStore) DeleteFile(ctx context.Context, jobID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[key(jobID, itemID)]; !ok {
		return store.ErrFileNotFound
	}
	delete(m.files, key(jobID, itemID))
	return nil
}

// fakeDam is a scriptable DamAPI. Item and folder fixtures are set by the
// test; calls that mutate the store are recorded.
type fakeDam struct {
	mu sync.Mutex

	folders       []adapter.RemoteFolder
	createRoot    string // volume path prefix for folders created via CreateFolder
	activeItems   []adapter.RemoteItem
	inactiveItems []adapter.RemoteItem
	watermark     int64
	content       map[string]string // download address -> content
	jobList       []adapter.JobDefinition

	existingFiles map[string]adapter.RemoteItem // folderID+"/"+name

	deleteItemErr   error
	deleteFolderErr error
	jobListErr      error

	createdFolders []string
	createdItems   []adapter.ItemMeta
	replacedItems  []string
	deletedItems   []string
	deletedFolders []string
}

func newFakeDam() *fakeDam {
	return &fakeDam{
		content:       make(map[string]string),
		existingFiles: make(map[string]adapter.RemoteItem),
	}
}

func (f *fakeDam) TestConnection(ctx context.Context) error { return nil }

func (f *fakeDam) GetJobList(ctx context.Context) ([]adapter.JobDefinition, error) {
	if f.jobListErr != nil {
		return nil, f.jobListErr
	}
	return f.jobList, nil
}

func (f *fakeDam) UpdateJob(ctx context.Context, job adapter.JobDefinition) error { return nil }

func (f *fakeDam) ListFolders(ctx context.Context, volumeID string) ([]adapter.RemoteFolder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]adapter.RemoteFolder(nil), f.folders...), nil
}

func (f *fakeDam) CheckFolderExists(ctx context.Context, volumeID, path string) (*adapter.RemoteFolder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, folder := range f.folders {
		rel := strings.TrimPrefix(folder.Path, f.createRoot)
		if strings.EqualFold(rel, path) {
			return &folder, nil
		}
	}
	return nil, nil
}

func (f *fakeDam) CreateFolder(ctx context.Context, volumeID, parentID, label string) (adapter.RemoteFolder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	base := f.createRoot
	for _, existing := range f.folders {
		if existing.ID == parentID {
			base = existing.Path
			break
		}
	}
	folder := adapter.RemoteFolder{
		ID:       "created-" + label,
		ParentID: parentID,
		Label:    label,
		Path:     base + "/" + label,
	}
	f.folders = append(f.folders, folder)
	f.createdFolders = append(f.createdFolders, label)
	return folder, nil
}

func (f *fakeDam) RenameFolder(ctx context.Context, folderID, label string) error { return nil }

func (f *fakeDam) MoveFolder(ctx context.Context, folderID, newParentID string) error { return nil }

func (f *fakeDam) DeleteFolder(ctx context.Context, folderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteFolderErr != nil {
		return f.deleteFolderErr
	}
	f.deletedFolders = append(f.deletedFolders, folderID)
	return nil
}

func (f *fakeDam) CheckFileExists(ctx context.Context, folderID, fileName string) (*adapter.RemoteItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.existingFiles[folderID+"/"+fileName]; ok {
		return &item, nil
	}
	return nil, nil
}

func (f *fakeDam) GetModifiedItems(ctx context.Context, q adapter.ModifiedItemsQuery) (adapter.ModifiedItemsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.activeItems
	if !q.Active {
		items = f.inactiveItems
	}
	// one full page, then the terminating empty page
	if strings.TrimSpace(q.LastItemID) == "page-end" || len(items) == 0 {
		return adapter.ModifiedItemsPage{LastRunTime: f.watermark}, nil
	}
	return adapter.ModifiedItemsPage{
		Items:       append([]adapter.RemoteItem(nil), items...),
		LastItemID:  "page-end",
		LastRunTime: f.watermark,
	}, nil
}

func (f *fakeDam) GetUploadDetails(ctx context.Context, folderID, fileName string, size int64) (adapter.UploadTicket, error) {
	return adapter.UploadTicket{TicketID: "tk-" + fileName, UploadURL: "http://storage/" + fileName, Key: fileName}, nil
}

func (f *fakeDam) GetUploadDetailsForReplacement(ctx context.Context, itemID string, size int64) (adapter.UploadTicket, error) {
	return adapter.UploadTicket{TicketID: "tk-replace-" + itemID, UploadURL: "http://storage/replace/" + itemID}, nil
}

func (f *fakeDam) CreateItem(ctx context.Context, ticket adapter.UploadTicket, meta adapter.ItemMeta) (adapter.RemoteItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdItems = append(f.createdItems, meta)
	return adapter.RemoteItem{
		ID:       "itm-" + meta.FileName,
		FolderID: meta.FolderID,
		FileName: meta.FileName,
		Checksum: meta.Checksum,
		Size:     meta.Size,
	}, nil
}

func (f *fakeDam) ReplaceAsset(ctx context.Context, itemID string, ticket adapter.UploadTicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replacedItems = append(f.replacedItems, itemID)
	return nil
}

func (f *fakeDam) DeleteItem(ctx context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteItemErr != nil {
		return f.deleteItemErr
	}
	f.deletedItems = append(f.deletedItems, itemID)
	return nil
}

func (f *fakeDam) GetS3Info(ctx context.Context) (adapter.S3Info, error) {
	return adapter.S3Info{Bucket: "assets", Region: "eu-1"}, nil
}

func (f *fakeDam) DownloadAsset(ctx context.Context, downloadURL string) (io.ReadCloser, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.content[downloadURL]
	if !ok {
		return nil, 0, errors.New("no content registered for " + downloadURL)
	}
	return io.NopCloser(strings.NewReader(content)), int64(len(content)), nil
}

// fakeUploader records upload calls without any I/O.
type fakeUploader struct {
	mu         sync.Mutex
	uploads    []string
	err        error
	progressed bool
}

func (u *fakeUploader) Upload(ctx context.Context, ticket adapter.UploadTicket, info adapter.S3Info, filePath string, progress adapter.ProgressFunc) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return u.err
	}
	if progress != nil {
		u.progressed = true
		progress(100)
	}
	u.uploads = append(u.uploads, filePath)
	return nil
}

func (u *fakeUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.uploads)
}

// testEnv wires a full executor stack against the in-memory fakes, with a
// temp directory as the job root.
type testEnv struct {
	store   *memStore
	dam     *fakeDam
	up      *fakeUploader
	factory *ExecutorFactory
	tenant  models.Tenant
	job     models.SyncJob
}

func newTestEnv(t *testing.T, direction models.SyncDirection) *testEnv {
	t.Helper()

	ms := newMemStore()
	dam := newFakeDam()
	dam.createRoot = "/volumes/marketing"
	up := &fakeUploader{}

	factory := NewExecutorFactory(ExecutorDeps{
		Jobs:     ms,
		Folders:  ms,
		Files:    ms,
		Transfer: transfer.NewCoordinator(config.Transfer{RetryBaseDelay: time.Millisecond}, logger.Nop()),
		Uploader: up,
		PageSize: 100,
		Logger:   logger.Nop(),
	})

	env := &testEnv{
		store:   ms,
		dam:     dam,
		up:      up,
		factory: factory,
		tenant: models.Tenant{
			TenantID: "t-1",
			Domain:   "acme",
			BaseURL:  "https://acme.dam.example",
			IsActive: true,
		},
		job: models.SyncJob{
			JobID:                   "job-1",
			TenantID:                "t-1",
			JobName:                 "marketing assets",
			DestinationPath:         t.TempDir(),
			VolumeID:                "vol-1",
			VolumeName:              "marketing",
			VolumePath:              "/volumes/marketing",
			Direction:               direction,
			IsActive:                true,
			FileDeletionPolicy:      models.SoftDeleteOnly,
			DirectoryDeletionPolicy: models.SoftDeleteOnly,
		},
	}

	ctx := context.Background()
	if err := ms.UpsertTenant(ctx, env.tenant); err != nil {
		t.Fatal(err)
	}
	if err := ms.UpsertJob(ctx, env.job); err != nil {
		t.Fatal(err)
	}
	return env
}

// run executes one sync pass with the given epoch, re-reading the job so
// the persisted cursor carries over between passes.
func (e *testEnv) run(t *testing.T, syncID string) error {
	t.Helper()

	ctx := context.Background()
	job, err := e.store.GetJob(ctx, e.job.JobID)
	if err != nil {
		t.Fatal(err)
	}
	executor, err := e.factory.ForDirection(job.Direction)
	if err != nil {
		t.Fatal(err)
	}
	return executor.Execute(ctx, e.dam, e.tenant, job, syncID)
}

// writeLocal creates a file under the job root, making parent directories
// as needed. rel uses forward slashes.
func (e *testEnv) writeLocal(t *testing.T, rel, content string) string {
	t.Helper()

	abs := filepath.Join(e.job.DestinationPath, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return abs
}

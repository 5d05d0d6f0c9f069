// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-dam-sync/internal/adapter"
	"github.com/MKhiriev/go-dam-sync/internal/config"
	"github.com/MKhiriev/go-dam-sync/models"
)

// recordingExecutor notes each job it ran with the epoch it got.
type recordingExecutor struct {
	mu      sync.Mutex
	calls   map[string]string // job id -> sync id
	err     error
	panicOn string
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{calls: make(map[string]string)}
}

func (r *recordingExecutor) Execute(ctx context.Context, api adapter.DamAPI, tenant models.Tenant, job models.SyncJob, syncID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.JobID == r.panicOn {
		panic("executor blew up")
	}
	r.calls[job.JobID] = syncID
	return r.err
}

type staticSelector struct {
	executor Executor
}

func (s staticSelector) ForDirection(direction models.SyncDirection) (Executor, error) {
	if direction == "sideways" {
		return nil, ErrUnknownDirection
	}
	return s.executor, nil
}

type staticClients struct {
	api adapter.DamAPI
	err error
}

func (s staticClients) ClientFor(tenant models.Tenant) (adapter.DamAPI, error) {
	return s.api, s.err
}

func newSchedulerFixture(t *testing.T, executor Executor) (*Scheduler, *memStore) {
	t.Helper()

	ms := newMemStore()
	ctx := context.Background()
	require.NoError(t, ms.UpsertTenant(ctx, models.Tenant{TenantID: "t-1", IsActive: true}))

	scheduler := NewScheduler(ms, ms, staticSelector{executor: executor}, staticClients{api: newFakeDam()}, config.Scheduler{
		SyncInterval:      time.Hour,
		MaxConcurrentJobs: 2,
	}, nil)
	return scheduler, ms
}

func addJob(t *testing.T, ms *memStore, id string, direction models.SyncDirection) {
	t.Helper()
	require.NoError(t, ms.UpsertJob(context.Background(), models.SyncJob{
		JobID:     id,
		TenantID:  "t-1",
		Direction: direction,
		IsActive:  true,
	}))
}

func TestScheduler_RunPassExecutesActiveJobsWithSharedEpoch(t *testing.T) {
	executor := newRecordingExecutor()
	scheduler, ms := newSchedulerFixture(t, executor)
	addJob(t, ms, "job-1", models.UploadOnly)
	addJob(t, ms, "job-2", models.DownloadOnly)

	scheduler.RunPass(context.Background())

	require.Len(t, executor.calls, 2)
	assert.NotEmpty(t, executor.calls["job-1"])
	assert.Equal(t, executor.calls["job-1"], executor.calls["job-2"],
		"all jobs of one pass share the sync epoch")
}

func TestScheduler_EachPassMintsFreshEpoch(t *testing.T) {
	executor := newRecordingExecutor()
	scheduler, ms := newSchedulerFixture(t, executor)
	addJob(t, ms, "job-1", models.UploadOnly)

	scheduler.RunPass(context.Background())
	first := executor.calls["job-1"]
	scheduler.RunPass(context.Background())

	assert.NotEqual(t, first, executor.calls["job-1"])
}

func TestScheduler_SkipsInactiveJobs(t *testing.T) {
	executor := newRecordingExecutor()
	scheduler, ms := newSchedulerFixture(t, executor)
	addJob(t, ms, "job-1", models.UploadOnly)
	require.NoError(t, ms.UpsertJob(context.Background(), models.SyncJob{
		JobID:     "job-paused",
		TenantID:  "t-1",
		Direction: models.UploadOnly,
	}))

	scheduler.RunPass(context.Background())

	assert.Len(t, executor.calls, 1)
	assert.NotContains(t, executor.calls, "job-paused")
}

func TestScheduler_UnknownDirectionSkipsOnlyThatJob(t *testing.T) {
	executor := newRecordingExecutor()
	scheduler, ms := newSchedulerFixture(t, executor)
	addJob(t, ms, "job-1", models.UploadOnly)
	addJob(t, ms, "job-odd", "sideways")

	scheduler.RunPass(context.Background())

	assert.Len(t, executor.calls, 1)
	assert.Contains(t, executor.calls, "job-1")
}

func TestScheduler_JobPanicIsContained(t *testing.T) {
	executor := newRecordingExecutor()
	executor.panicOn = "job-boom"
	scheduler, ms := newSchedulerFixture(t, executor)
	addJob(t, ms, "job-1", models.UploadOnly)
	addJob(t, ms, "job-boom", models.UploadOnly)

	assert.NotPanics(t, func() {
		scheduler.RunPass(context.Background())
	})
	assert.Contains(t, executor.calls, "job-1")
}

func TestScheduler_JobErrorDoesNotStopOthers(t *testing.T) {
	executor := newRecordingExecutor()
	executor.err = errors.New("volume offline")
	scheduler, ms := newSchedulerFixture(t, executor)
	addJob(t, ms, "job-1", models.UploadOnly)
	addJob(t, ms, "job-2", models.DownloadOnly)

	scheduler.RunPass(context.Background())

	assert.Len(t, executor.calls, 2)
}

func TestScheduler_UnknownTenantSkipsJob(t *testing.T) {
	executor := newRecordingExecutor()
	scheduler, ms := newSchedulerFixture(t, executor)
	addJob(t, ms, "job-1", models.UploadOnly)
	require.NoError(t, ms.UpsertJob(context.Background(), models.SyncJob{
		JobID:     "job-stray",
		TenantID:  "t-missing",
		Direction: models.UploadOnly,
		IsActive:  true,
	}))

	scheduler.RunPass(context.Background())

	assert.Len(t, executor.calls, 1)
	assert.Contains(t, executor.calls, "job-1")
}

func TestScheduler_RunStopsOnContextCancel(t *testing.T) {
	executor := newRecordingExecutor()
	scheduler, ms := newSchedulerFixture(t, executor)
	addJob(t, ms, "job-1", models.UploadOnly)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
}

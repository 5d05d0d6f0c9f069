// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package transfer moves file content between the DAM and the local disk.
// The coordinator bounds concurrency across all jobs, deduplicates writers
// targeting the same destination, and commits every download atomically so
// a crash never leaves a half-written file under a job root.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/MKhiriev/go-dam-sync/internal/config"
	"github.com/MKhiriev/go-dam-sync/internal/logger"
)

const (
	defaultMaxConcurrent  = 4
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second

	// TmpSuffix and BackupSuffix mark in-progress transfer artifacts; local
	// scanners must skip files carrying them.
	TmpSuffix    = ".damsync-tmp"
	BackupSuffix = ".bak"
)

// ErrTransferInFlight is returned when another goroutine is already writing
// the same destination. The caller should skip the file and let the next
// sync pass pick it up.
var ErrTransferInFlight = errors.New("transfer already in flight for destination")

// SourceFunc opens the content stream for one attempt and reports the total
// size in bytes, or a non-positive size when unknown. It is called once per
// attempt, so implementations must restart the stream rather than resume it.
type SourceFunc func(ctx context.Context) (io.ReadCloser, int64, error)

// ProgressFunc receives transfer progress as a percentage in [0, 100].
type ProgressFunc func(percent int)

// Coordinator serializes conflicting transfers and bounds concurrency with a
// weighted semaphore shared by every executor.
type Coordinator struct {
	sem       *semaphore.Weighted
	inFlight  *inFlightSet
	attempts  int
	baseDelay time.Duration
	logger    *logger.Logger
}

func NewCoordinator(cfg config.Transfer, log *logger.Logger) *Coordinator {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultRetryBaseDelay
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Coordinator{
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
		inFlight:  newInFlightSet(),
		attempts:  attempts,
		baseDelay: baseDelay,
		logger:    log,
	}
}

// Download streams the content opened by open to dst, reporting percentage
// progress when progress is non-nil. The file appears at dst only after the
// full content has been written and synced; an existing file at dst survives
// any failure. Transient failures are retried with exponential backoff,
// cancellation is surfaced immediately.
func (c *Coordinator) Download(ctx context.Context, dst string, open SourceFunc, progress ProgressFunc) error {
	log := logger.FromContext(ctx)

	if !c.inFlight.add(dst) {
		return fmt.Errorf("%w: %s", ErrTransferInFlight, dst)
	}
	defer c.inFlight.remove(dst)

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for transfer slot: %w", err)
	}
	defer c.sem.Release(1)

	var lastErr error
	delay := c.baseDelay

	for attempt := 1; attempt <= c.attempts; attempt++ {
		lastErr = c.downloadOnce(ctx, dst, open, progress)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}

		if attempt < c.attempts {
			log.Warn().
				Err(lastErr).
				Str("func", "Coordinator.Download").
				Str("destination", dst).
				Int("attempt", attempt).
				Msg("transfer attempt failed, retrying")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("transfer failed after %d attempts: %w", c.attempts, lastErr)
}

// Slot runs fn under the shared concurrency limit without any file
// bookkeeping. Uploads use it: the remote side commits atomically on its
// own, only the bandwidth cap applies here.
func (c *Coordinator) Slot(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for transfer slot: %w", err)
	}
	defer c.sem.Release(1)

	return fn(ctx)
}

func (c *Coordinator) downloadOnce(ctx context.Context, dst string, open SourceFunc, progress ProgressFunc) error {
	body, total, err := open(ctx)
	if err != nil {
		return fmt.Errorf("opening content stream: %w", err)
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	tmp := dst + TmpSuffix

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	pw := &progressWriter{w: f, total: total, lastPct: -1, progress: progress}
	if _, err := io.Copy(pw, body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing content: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := commit(tmp, dst); err != nil {
		return err
	}

	if progress != nil && pw.lastPct < 100 {
		progress(100)
	}
	return nil
}

// progressWriter reports percentage progress as content flows through. When
// the total size is unknown it stays silent; the caller gets a single 100%
// event after the commit.
type progressWriter struct {
	w        io.Writer
	total    int64
	written  int64
	lastPct  int
	progress ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.progress != nil && p.total > 0 {
		pct := int(p.written * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.lastPct {
			p.lastPct = pct
			p.progress(pct)
		}
	}
	return n, err
}

// commit moves tmp into place. The previous content is parked at a backup
// path for the duration of the rename and restored if the rename fails.
func commit(tmp, dst string) error {
	backup := dst + BackupSuffix
	hadPrevious := false

	if _, err := os.Stat(dst); err == nil {
		if err := os.Rename(dst, backup); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("parking previous file: %w", err)
		}
		hadPrevious = true
	}

	if err := os.Rename(tmp, dst); err != nil {
		if hadPrevious {
			os.Rename(backup, dst)
		}
		os.Remove(tmp)
		return fmt.Errorf("publishing file: %w", err)
	}

	if hadPrevious {
		os.Remove(backup)
	}

	return nil
}

// inFlightSet tracks destinations currently being written.
type inFlightSet struct {
	mu  sync.Mutex
	set map[string]struct{}
}

func newInFlightSet() *inFlightSet {
	return &inFlightSet{set: make(map[string]struct{})}
}

func (s *inFlightSet) add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.set[key]; exists {
		return false
	}
	s.set[key] = struct{}{}
	return true
}

func (s *inFlightSet) remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.set, key)
}

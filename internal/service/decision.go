// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service contains the synchronization core: the per-direction
// executors, the decision engine that maps tracked state against the local
// disk, the scheduler driving periodic passes, and the poller that keeps
// job definitions fresh.
package service

import (
	"fmt"

	"github.com/MKhiriev/go-dam-sync/internal/pathutil"
	"github.com/MKhiriev/go-dam-sync/models"
)

// Decide compares the tracked location of a file against where it was
// actually found. expectedPath is where tracking says the file belongs,
// actualPath is where the local scan found it (equal to expectedPath when
// the file sits in place), exists reports whether actualPath is present on
// disk. Paths are compared case-insensitively after cleaning.
//
// A file found at its tracked location is always redownloaded; content
// comparison is the executor's job, not the decision engine's.
func Decide(expectedPath, actualPath string, exists bool) models.SyncDecision {
	samePath := pathutil.Equal(expectedPath, actualPath)

	switch {
	case samePath && exists:
		return models.SyncDecision{
			Action: models.Redownload,
			Reason: "file present at tracked location",
		}
	case samePath && !exists:
		return models.SyncDecision{
			Action: models.NoOp,
			Reason: "file missing from tracked location",
		}
	case !exists:
		return models.SyncDecision{
			Action: models.NoOp,
			Reason: "file not found anywhere on disk",
		}
	case pathutil.Equal(pathutil.Parent(expectedPath), pathutil.Parent(actualPath)):
		return models.SyncDecision{
			Action: models.Rename,
			Reason: fmt.Sprintf("file found in expected directory as %q", pathutil.Base(actualPath)),
		}
	default:
		return models.SyncDecision{
			Action: models.Move,
			Reason: fmt.Sprintf("file found under %q", pathutil.Parent(actualPath)),
		}
	}
}

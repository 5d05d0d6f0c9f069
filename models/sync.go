package models

// SyncAction is the outcome class of comparing a tracked file location
// against the local disk.
type SyncAction string

const (
	// Redownload means the file sits at its tracked location and its
	// content should be fetched again.
	Redownload SyncAction = "redownload"

	// Rename means the file exists in the expected directory under a
	// different name and should be renamed in place.
	Rename SyncAction = "rename"

	// Move means the file exists in a different directory and should be
	// moved to the tracked location.
	Move SyncAction = "move"

	// NoOp means nothing needs to happen for this file.
	NoOp SyncAction = "noop"
)

// SyncDecision pairs an action with a human-readable reason for logs.
type SyncDecision struct {
	Action SyncAction
	Reason string
}

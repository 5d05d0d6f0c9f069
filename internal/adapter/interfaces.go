// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating
// with the remote asset store.
//
// The primary abstraction is [DamAPI], which decouples the service layer
// from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPDamClient]) plus an object-storage uploader
// ([NewUploader]) that consumes the upload tickets issued by the store.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrNotFound] for 404, [ErrUnauthorized] for 401).
package adapter

import (
	"context"
	"io"
)

// DamAPI defines transport-agnostic communication with the remote asset
// store for a single tenant. Implementations are responsible for
// serialisation, authentication header management, retry of transient
// failures, and mapping transport-level errors to the sentinel values
// defined in this package.
type DamAPI interface {
	// TestConnection verifies that the store is reachable and the tenant
	// credentials are accepted.
	TestConnection(ctx context.Context) error

	// GetJobList fetches all sync job definitions configured on the store
	// for this tenant.
	GetJobList(ctx context.Context) ([]JobDefinition, error)

	// UpdateJob pushes updated job bookkeeping fields (cursor, watermark)
	// back to the store.
	UpdateJob(ctx context.Context, job JobDefinition) error

	// ListFolders returns every folder of the given volume.
	ListFolders(ctx context.Context, volumeID string) ([]RemoteFolder, error)

	// CheckFolderExists looks up a folder by its volume-relative path.
	// Returns nil without error when no such folder exists.
	CheckFolderExists(ctx context.Context, volumeID string, path string) (*RemoteFolder, error)

	// CreateFolder creates a folder with the given label under parentID.
	CreateFolder(ctx context.Context, volumeID, parentID string, label string) (RemoteFolder, error)

	// RenameFolder changes a folder's label in place.
	RenameFolder(ctx context.Context, folderID string, label string) error

	// MoveFolder reparents a folder under newParentID.
	MoveFolder(ctx context.Context, folderID, newParentID string) error

	// DeleteFolder removes a folder from the store.
	DeleteFolder(ctx context.Context, folderID string) error

	// CheckFileExists looks up an item by name within a folder.
	// Returns nil without error when no such item exists.
	CheckFileExists(ctx context.Context, folderID string, fileName string) (*RemoteItem, error)

	// GetModifiedItems fetches one page of items changed since the query's
	// cursor position. See [ModifiedItemsQuery] for paging semantics.
	GetModifiedItems(ctx context.Context, q ModifiedItemsQuery) (ModifiedItemsPage, error)

	// GetUploadDetails requests an upload ticket for a new item.
	GetUploadDetails(ctx context.Context, folderID string, fileName string, size int64) (UploadTicket, error)

	// GetUploadDetailsForReplacement requests an upload ticket that replaces
	// the content of an existing item.
	GetUploadDetailsForReplacement(ctx context.Context, itemID string, size int64) (UploadTicket, error)

	// CreateItem finalises an uploaded ticket into a store item.
	CreateItem(ctx context.Context, ticket UploadTicket, meta ItemMeta) (RemoteItem, error)

	// ReplaceAsset finalises a replacement ticket onto an existing item.
	ReplaceAsset(ctx context.Context, itemID string, ticket UploadTicket) error

	// DeleteItem removes an item from the store.
	DeleteItem(ctx context.Context, itemID string) error

	// GetS3Info returns the object-storage endpoint credentials used by the
	// uploader.
	GetS3Info(ctx context.Context) (S3Info, error)

	// DownloadAsset opens a streamed download of the given asset address.
	// The returned size is -1 when the server does not report a content
	// length. The caller owns the ReadCloser.
	DownloadAsset(ctx context.Context, downloadURL string) (io.ReadCloser, int64, error)
}

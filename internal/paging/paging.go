// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package paging implements a generic cursor-based pager over remote APIs
// that return opaque continuation cursors.
//
// The pager is deliberately pure: it fetches pages and yields items, and any
// per-stream metadata (such as the change watermark reported on the first
// page) is surfaced through the OnFirstPage hook rather than being persisted
// by the pager itself. Callers decide what to do with the metadata and when.
package paging

import (
	"context"
	"errors"
	"iter"
)

// MaxPages bounds a single stream. A well-behaved remote never comes close;
// hitting the bound means the cursor chain is broken or cyclic in a way the
// seen-set did not catch.
const MaxPages = 10000

// ErrPageLimit is returned when a stream exceeds MaxPages pages.
var ErrPageLimit = errors.New("paging: page limit exceeded")

// Page is a single fetched page. NextCursor is the opaque continuation
// token; an empty NextCursor ends the stream. Watermark carries the remote
// change watermark reported alongside the page, meaningful on the first
// page of a change stream and zero elsewhere.
type Page[T any] struct {
	Items      []T
	NextCursor string
	Watermark  int64
}

// FetchFunc fetches the page identified by cursor. The initial call uses the
// caller-supplied start cursor.
type FetchFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// Stream iterates every item reachable from startCursor, fetching pages
// lazily as the consumer advances. The stream terminates cleanly when a page
// comes back empty, when NextCursor is empty, or when NextCursor repeats a
// previously seen cursor (including the immediate predecessor). A fetch
// error, context cancellation, or exceeding MaxPages is yielded as a final
// (zero value, error) pair and ends the stream.
//
// onFirstPage, if non-nil, is invoked with the first fetched page before any
// of its items are yielded, whether or not the page is empty. Callers use it
// to capture the stream watermark.
func Stream[T any](ctx context.Context, startCursor string, fetch FetchFunc[T], onFirstPage func(Page[T])) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		seen := map[string]struct{}{startCursor: {}}
		cursor := startCursor

		for pageNum := 0; ; pageNum++ {
			if pageNum >= MaxPages {
				yield(zero, ErrPageLimit)
				return
			}
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			page, err := fetch(ctx, cursor)
			if err != nil {
				yield(zero, err)
				return
			}
			if pageNum == 0 && onFirstPage != nil {
				onFirstPage(page)
			}
			if len(page.Items) == 0 {
				return
			}
			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}

			next := page.NextCursor
			if next == "" {
				return
			}
			if _, dup := seen[next]; dup {
				return
			}
			seen[next] = struct{}{}
			cursor = next
		}
	}
}

// Collect drains a stream into a slice, stopping at the first error.
func Collect[T any](ctx context.Context, startCursor string, fetch FetchFunc[T], onFirstPage func(Page[T])) ([]T, error) {
	var items []T
	for item, err := range Stream(ctx, startCursor, fetch, onFirstPage) {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

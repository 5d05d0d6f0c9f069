package adapter

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-dam-sync/internal/paging"
)

// StreamState is the position of a consumed change stream. Cursor is the
// last continuation token the store handed out (the starting cursor when
// the stream produced nothing); Watermark is the store's change watermark
// reported on the first page. Count is the number of items delivered, so
// callers can skip persisting state for an empty stream.
type StreamState struct {
	Cursor    string
	Watermark int64
	Count     int
}

// ModifiedItemsLister is the slice of [DamAPI] the change stream consumes.
type ModifiedItemsLister interface {
	GetModifiedItems(ctx context.Context, q ModifiedItemsQuery) (ModifiedItemsPage, error)
}

// StreamModifiedItems drains the modified-items listing described by q,
// invoking fn for every item in page order. q.LastItemID is the starting
// cursor; empty or whitespace starts from the beginning.
//
// The returned state carries the final cursor and the first-page watermark
// together so the caller can persist both in one step after the stream has
// been fully consumed. An error from fn or from the store aborts the stream
// and is returned alongside the state reached so far.
func StreamModifiedItems(ctx context.Context, api ModifiedItemsLister, q ModifiedItemsQuery, fn func(RemoteItem) error) (StreamState, error) {
	state := StreamState{Cursor: strings.TrimSpace(q.LastItemID)}

	fetch := func(ctx context.Context, cursor string) (paging.Page[RemoteItem], error) {
		page, err := api.GetModifiedItems(ctx, ModifiedItemsQuery{
			VolumeID:      q.VolumeID,
			Active:        q.Active,
			LastItemID:    cursor,
			PageSize:      q.PageSize,
			ModifiedAfter: q.ModifiedAfter,
		})
		if err != nil {
			return paging.Page[RemoteItem]{}, err
		}
		if len(page.Items) > 0 && page.LastItemID != "" {
			state.Cursor = page.LastItemID
		}
		return paging.Page[RemoteItem]{
			Items:      page.Items,
			NextCursor: page.LastItemID,
			Watermark:  page.LastRunTime,
		}, nil
	}

	onFirstPage := func(p paging.Page[RemoteItem]) {
		state.Watermark = p.Watermark
	}

	for item, err := range paging.Stream(ctx, state.Cursor, fetch, onFirstPage) {
		if err != nil {
			return state, err
		}
		if err := fn(item); err != nil {
			return state, err
		}
		state.Count++
	}

	return state, nil
}

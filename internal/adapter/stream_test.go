package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLister serves modified-item pages from a fixed cursor map.
type fakeLister struct {
	pages   map[string]ModifiedItemsPage
	queries []ModifiedItemsQuery
	err     error
}

func (f *fakeLister) GetModifiedItems(_ context.Context, q ModifiedItemsQuery) (ModifiedItemsPage, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return ModifiedItemsPage{}, f.err
	}
	return f.pages[q.LastItemID], nil
}

func TestStreamModifiedItems_DrainsAllPages(t *testing.T) {
	lister := &fakeLister{pages: map[string]ModifiedItemsPage{
		"": {
			Items:       []RemoteItem{{ID: "1"}, {ID: "2"}},
			LastItemID:  "c2",
			LastRunTime: 1700000500,
		},
		"c2": {
			Items:      []RemoteItem{{ID: "3"}},
			LastItemID: "c3",
		},
		"c3": {},
	}}

	var ids []string
	state, err := StreamModifiedItems(context.Background(), lister, ModifiedItemsQuery{VolumeID: "5", Active: true, PageSize: 2}, func(item RemoteItem) error {
		ids = append(ids, item.ID)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.Equal(t, 3, state.Count)
	assert.Equal(t, "c3", state.Cursor)
	assert.Equal(t, int64(1700000500), state.Watermark, "watermark comes from the first page only")
}

func TestStreamModifiedItems_WhitespaceCursorStartsFromBeginning(t *testing.T) {
	lister := &fakeLister{pages: map[string]ModifiedItemsPage{
		"": {Items: []RemoteItem{{ID: "1"}}},
	}}

	state, err := StreamModifiedItems(context.Background(), lister, ModifiedItemsQuery{LastItemID: "   "}, func(RemoteItem) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, state.Count)
	require.NotEmpty(t, lister.queries)
	assert.Equal(t, "", lister.queries[0].LastItemID)
}

func TestStreamModifiedItems_EmptyStreamKeepsStartCursor(t *testing.T) {
	lister := &fakeLister{pages: map[string]ModifiedItemsPage{
		"c9": {LastRunTime: 42},
	}}

	state, err := StreamModifiedItems(context.Background(), lister, ModifiedItemsQuery{LastItemID: "c9"}, func(RemoteItem) error { return nil })
	require.NoError(t, err)
	assert.Zero(t, state.Count)
	assert.Equal(t, "c9", state.Cursor)
	assert.Equal(t, int64(42), state.Watermark)
}

func TestStreamModifiedItems_ConsumerErrorAborts(t *testing.T) {
	boom := errors.New("row write failed")
	lister := &fakeLister{pages: map[string]ModifiedItemsPage{
		"": {Items: []RemoteItem{{ID: "1"}, {ID: "2"}}, LastItemID: "c2"},
	}}

	var seen int
	_, err := StreamModifiedItems(context.Background(), lister, ModifiedItemsQuery{}, func(RemoteItem) error {
		seen++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, seen)
}

func TestStreamModifiedItems_FetchErrorPropagates(t *testing.T) {
	lister := &fakeLister{err: errors.New("store down")}

	state, err := StreamModifiedItems(context.Background(), lister, ModifiedItemsQuery{LastItemID: "c1"}, func(RemoteItem) error { return nil })
	require.Error(t, err)
	assert.Equal(t, "c1", state.Cursor)
	assert.Zero(t, state.Count)
}

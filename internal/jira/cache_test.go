package jira

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/praxis/pkg/types"
)

type fakeSearcher struct {
	issues []*types.Issue
	err    error
	calls  int
}

func (f *fakeSearcher) SearchIssues(ctx context.Context) ([]*types.Issue, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.issues, nil
}

func TestCacheNeedsSyncWhenNeverSynced(t *testing.T) {
	cache := NewCache(&fakeSearcher{}, zap.NewNop())
	assert.True(t, cache.NeedsSync())
}

func TestCacheSyncReplacesSnapshot(t *testing.T) {
	searcher := &fakeSearcher{issues: []*types.Issue{
		{Key: "PRX-2", Summary: "newer"},
		{Key: "PRX-1", Summary: "older"},
	}}
	cache := NewCache(searcher, zap.NewNop())

	require.NoError(t, cache.Sync(context.Background()))
	assert.False(t, cache.NeedsSync())

	items := cache.AllItems()
	require.Len(t, items, 2)
	assert.Equal(t, "PRX-2", items[0].Key)
}

func TestCacheSyncIdempotent(t *testing.T) {
	searcher := &fakeSearcher{issues: []*types.Issue{
		{Key: "PRX-2"},
		{Key: "PRX-1"},
	}}
	cache := NewCache(searcher, zap.NewNop())

	require.NoError(t, cache.Sync(context.Background()))
	first := cache.AllItems()
	require.NoError(t, cache.Sync(context.Background()))
	second := cache.AllItems()

	assert.Equal(t, first, second)
	assert.Equal(t, 2, searcher.calls)
}

func TestCacheSyncFailureKeepsSnapshot(t *testing.T) {
	searcher := &fakeSearcher{issues: []*types.Issue{{Key: "PRX-1"}}}
	cache := NewCache(searcher, zap.NewNop())
	require.NoError(t, cache.Sync(context.Background()))

	searcher.err = errors.New("jira down")
	err := cache.Sync(context.Background())
	require.Error(t, err)

	items := cache.AllItems()
	require.Len(t, items, 1)
	assert.Equal(t, "PRX-1", items[0].Key)
}

func TestCacheInsertCreatedPrepends(t *testing.T) {
	searcher := &fakeSearcher{issues: []*types.Issue{{Key: "PRX-1"}}}
	cache := NewCache(searcher, zap.NewNop())
	require.NoError(t, cache.Sync(context.Background()))

	syncedAt := cache.LastSync()
	cache.InsertCreated(&types.Issue{Key: "PRX-9"})

	items := cache.AllItems()
	require.Len(t, items, 2)
	assert.Equal(t, "PRX-9", items[0].Key)
	assert.Equal(t, "PRX-1", items[1].Key)
	// Local inserts do not count as a sync.
	assert.Equal(t, syncedAt, cache.LastSync())
}

func TestCacheAllItemsIsACopy(t *testing.T) {
	searcher := &fakeSearcher{issues: []*types.Issue{{Key: "PRX-1"}, {Key: "PRX-2"}}}
	cache := NewCache(searcher, zap.NewNop())
	require.NoError(t, cache.Sync(context.Background()))

	items := cache.AllItems()
	items[0] = &types.Issue{Key: "MUTATED"}

	assert.Equal(t, "PRX-1", cache.AllItems()[0].Key)
}

func TestCacheStalenessWindow(t *testing.T) {
	cache := NewCache(&fakeSearcher{}, zap.NewNop())

	cache.mu.Lock()
	cache.lastSync = time.Now().Add(-4 * time.Minute)
	cache.mu.Unlock()
	assert.False(t, cache.NeedsSync())

	cache.mu.Lock()
	cache.lastSync = time.Now().Add(-6 * time.Minute)
	cache.mu.Unlock()
	assert.True(t, cache.NeedsSync())
}

package jira

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/praxis/pkg/types"
)

// staleAfter is how old a sync may get before the cache must refresh.
const staleAfter = 5 * time.Minute

// IssueSearcher lists all issues in the configured project.
type IssueSearcher interface {
	SearchIssues(ctx context.Context) ([]*types.Issue, error)
}

// Cache holds an in-memory snapshot of the project's issues. The snapshot is
// only ever replaced wholesale by Sync or prepended to by InsertCreated; a
// process restart loses it.
type Cache struct {
	searcher IssueSearcher
	logger   *zap.Logger

	mu       sync.RWMutex
	issues   []*types.Issue
	lastSync time.Time
}

// NewCache creates an empty cache backed by the given searcher
func NewCache(searcher IssueSearcher, logger *zap.Logger) *Cache {
	return &Cache{
		searcher: searcher,
		logger:   logger,
	}
}

// Sync replaces the cached issues with a fresh fetch and stamps the sync time.
// A fetch failure leaves the previous snapshot in place.
func (c *Cache) Sync(ctx context.Context) error {
	issues, err := c.searcher.SearchIssues(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync issues: %w", err)
	}

	c.mu.Lock()
	c.issues = issues
	c.lastSync = time.Now()
	c.mu.Unlock()

	c.logger.Info("synced jira issues", zap.Int("count", len(issues)))

	return nil
}

// NeedsSync reports whether the cache has never synced or has gone stale
func (c *Cache) NeedsSync() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.lastSync.IsZero() {
		return true
	}
	return time.Since(c.lastSync) > staleAfter
}

// InsertCreated prepends a freshly created issue so it is visible to scoring
// before the next full sync. The sync timestamp is untouched.
func (c *Cache) InsertCreated(issue *types.Issue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.issues = append([]*types.Issue{issue}, c.issues...)
}

// AllItems returns a copy of the current snapshot
func (c *Cache) AllItems() []*types.Issue {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]*types.Issue, len(c.issues))
	copy(items, c.issues)
	return items
}

// LastSync returns when the cache last completed a full sync, zero if never
func (c *Cache) LastSync() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSync
}

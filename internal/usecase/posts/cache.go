package posts

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"leafline-site/internal/domain/entity"
	"leafline-site/internal/observability/metrics"

	"golang.org/x/sync/singleflight"
)

// refreshTimeout bounds a shared upstream fetch once it is detached from the
// caller that started it.
const refreshTimeout = 30 * time.Second

type cacheEntry struct {
	posts     []entity.PostSummary
	expiresAt time.Time
}

// CachedService decorates a Fetcher with a time-bounded cache keyed by
// (accountHandle, maxPosts). Concurrent misses for the same key share one
// upstream fetch. Failures are never cached.
type CachedService struct {
	next Fetcher
	ttl  time.Duration
	now  func() time.Time

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCachedService wraps next with a cache of the given TTL.
// Callers that want fresh data on every render should not wrap at all.
func NewCachedService(next Fetcher, ttl time.Duration) *CachedService {
	return newCachedService(next, ttl, time.Now)
}

func newCachedService(next Fetcher, ttl time.Duration, now func() time.Time) *CachedService {
	return &CachedService{
		next:    next,
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(accountHandle string, maxPosts int) (string, error) {
	handle, err := NormalizeHandle(accountHandle)
	if err != nil {
		return "", err
	}
	if maxPosts <= 0 {
		maxPosts = DefaultMaxPosts
	}
	return fmt.Sprintf("%s|%d", handle, maxPosts), nil
}

// FetchPosts serves from cache while the entry is fresh and fetches otherwise.
// The returned slice is a copy the caller may modify.
func (c *CachedService) FetchPosts(ctx context.Context, accountHandle string, maxPosts int) ([]entity.PostSummary, error) {
	key, err := cacheKey(accountHandle, maxPosts)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expiresAt) {
		metrics.RecordPostsCache("hit")
		return clonePosts(entry.posts), nil
	}
	metrics.RecordPostsCache("miss")

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.refresh(ctx, key, accountHandle, maxPosts)
	})
	if err != nil {
		return nil, err
	}
	return clonePosts(v.([]entity.PostSummary)), nil
}

// Warm fetches the given key upstream regardless of freshness and stores the
// result. It is intended to be run on a schedule so renders rarely wait on
// the network.
func (c *CachedService) Warm(ctx context.Context, accountHandle string, maxPosts int) error {
	key, err := cacheKey(accountHandle, maxPosts)
	if err != nil {
		return err
	}
	_, err, _ = c.group.Do(key, func() (interface{}, error) {
		return c.refresh(ctx, key, accountHandle, maxPosts)
	})
	if err != nil {
		slog.Warn("posts cache warm failed",
			slog.String("key", key),
			slog.Any("error", err))
		return err
	}
	return nil
}

// refresh runs inside a singleflight call whose result is shared by every
// waiter, so it must not inherit the first caller's cancellation.
func (c *CachedService) refresh(ctx context.Context, key, accountHandle string, maxPosts int) ([]entity.PostSummary, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
	defer cancel()

	posts, err := c.next.FetchPosts(ctx, accountHandle, maxPosts)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{posts: posts, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return posts, nil
}

// clonePosts copies the slice and each summary's Categories so callers cannot
// write through to a cached entry.
func clonePosts(in []entity.PostSummary) []entity.PostSummary {
	out := slices.Clone(in)
	for i := range out {
		out[i].Categories = slices.Clone(out[i].Categories)
	}
	return out
}

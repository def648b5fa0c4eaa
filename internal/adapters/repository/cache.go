package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/stufe/pkg/metrics"
)

// CachedStore wraps a Store with a TTL read cache for the hot read paths
// used by the difference and similarity engines: latest snapshots, latest
// requirements and per-identity histories. Writes go straight through and
// invalidate the affected entries, so readers observe at most ttl of
// staleness and never observe their own writes stale.
type CachedStore struct {
	inner Store

	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	latSnaps *cacheEntry[[]Snapshot]
	latReqs  *cacheEntry[[]Requirement]
	snapHist map[string]*cacheEntry[[]Snapshot]
	reqHist  map[string]*cacheEntry[[]Requirement]
}

type cacheEntry[T any] struct {
	value    T
	storedAt time.Time
}

// NewCachedStore wraps inner with a read cache. The default TTL is 30s.
func NewCachedStore(inner Store, opts ...CacheOption) *CachedStore {
	c := &CachedStore{
		inner:    inner,
		ttl:      30 * time.Second,
		now:      time.Now,
		snapHist: make(map[string]*cacheEntry[[]Snapshot]),
		reqHist:  make(map[string]*cacheEntry[[]Requirement]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedStore) fresh(storedAt time.Time) bool {
	return c.now().Sub(storedAt) < c.ttl
}

func (c *CachedStore) PutSnapshot(ctx context.Context, snap Snapshot) (bool, error) {
	created, err := c.inner.PutSnapshot(ctx, snap)
	if err != nil {
		return created, err
	}
	c.mu.Lock()
	c.latSnaps = nil
	delete(c.snapHist, snap.Profile)
	c.mu.Unlock()
	return created, nil
}

func (c *CachedStore) PutRequirement(ctx context.Context, req Requirement) (bool, error) {
	created, err := c.inner.PutRequirement(ctx, req)
	if err != nil {
		return created, err
	}
	c.mu.Lock()
	c.latReqs = nil
	delete(c.reqHist, req.Role)
	c.mu.Unlock()
	return created, nil
}

// Point lookups are not cached; they are only used on write-adjacent paths.
func (c *CachedStore) SnapshotAt(ctx context.Context, profile string, at time.Time) (Snapshot, error) {
	return c.inner.SnapshotAt(ctx, profile, at)
}

func (c *CachedStore) RequirementAt(ctx context.Context, role string, at time.Time) (Requirement, error) {
	return c.inner.RequirementAt(ctx, role, at)
}

func (c *CachedStore) SnapshotHistory(ctx context.Context, profile string) ([]Snapshot, error) {
	c.mu.RLock()
	entry, ok := c.snapHist[profile]
	c.mu.RUnlock()
	if ok && c.fresh(entry.storedAt) {
		metrics.RecordCacheHit()
		return entry.value, nil
	}
	metrics.RecordCacheMiss()

	start := time.Now()
	hist, err := c.inner.SnapshotHistory(ctx, profile)
	metrics.RecordStoreRead(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.snapHist[profile] = &cacheEntry[[]Snapshot]{value: hist, storedAt: c.now()}
	c.mu.Unlock()
	return hist, nil
}

func (c *CachedStore) RequirementHistory(ctx context.Context, role string) ([]Requirement, error) {
	c.mu.RLock()
	entry, ok := c.reqHist[role]
	c.mu.RUnlock()
	if ok && c.fresh(entry.storedAt) {
		metrics.RecordCacheHit()
		return entry.value, nil
	}
	metrics.RecordCacheMiss()

	start := time.Now()
	hist, err := c.inner.RequirementHistory(ctx, role)
	metrics.RecordStoreRead(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.reqHist[role] = &cacheEntry[[]Requirement]{value: hist, storedAt: c.now()}
	c.mu.Unlock()
	return hist, nil
}

func (c *CachedStore) LatestSnapshots(ctx context.Context) ([]Snapshot, error) {
	c.mu.RLock()
	entry := c.latSnaps
	c.mu.RUnlock()
	if entry != nil && c.fresh(entry.storedAt) {
		metrics.RecordCacheHit()
		return entry.value, nil
	}
	metrics.RecordCacheMiss()

	start := time.Now()
	snaps, err := c.inner.LatestSnapshots(ctx)
	metrics.RecordStoreRead(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.latSnaps = &cacheEntry[[]Snapshot]{value: snaps, storedAt: c.now()}
	c.mu.Unlock()
	return snaps, nil
}

func (c *CachedStore) LatestRequirements(ctx context.Context) ([]Requirement, error) {
	c.mu.RLock()
	entry := c.latReqs
	c.mu.RUnlock()
	if entry != nil && c.fresh(entry.storedAt) {
		metrics.RecordCacheHit()
		return entry.value, nil
	}
	metrics.RecordCacheMiss()

	start := time.Now()
	reqs, err := c.inner.LatestRequirements(ctx)
	metrics.RecordStoreRead(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.latReqs = &cacheEntry[[]Requirement]{value: reqs, storedAt: c.now()}
	c.mu.Unlock()
	return reqs, nil
}

func (c *CachedStore) Profiles(ctx context.Context) ([]string, error) {
	return c.inner.Profiles(ctx)
}

func (c *CachedStore) Roles(ctx context.Context) ([]string, error) {
	return c.inner.Roles(ctx)
}

func (c *CachedStore) Count(ctx context.Context) int {
	return c.inner.Count(ctx)
}

// Close closes the wrapped store if it holds external resources.
func (c *CachedStore) Close() error {
	if closer, ok := c.inner.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

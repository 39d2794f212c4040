package segment

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"

	"github.com/vortex-db/vortex/buffer"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/internal/metrics"
)

// Cache stores resolved segment bytes keyed by ID, so a second scan (or a
// second split within the same scan requesting an already-coalesced
// range) never re-reads a segment (§5 "a segment, once produced, is
// immutable", §6.3 segment_cache option).
type Cache interface {
	Get(ctx context.Context, id ID) (*buffer.Buffer, bool)
	Put(ctx context.Context, id ID, buf *buffer.Buffer)
}

// InMemoryLRU is a ristretto-backed segment cache (§6.3
// "segment_cache: InMemoryLRU(max_bytes)"), sized by total buffer bytes
// rather than item count.
type InMemoryLRU struct {
	cache *ristretto.Cache
}

// NewInMemoryLRU constructs an InMemoryLRU bounded at roughly maxBytes of
// cached segment data, following ristretto's num-counters-as-10x-capacity
// sizing convention.
func NewInMemoryLRU(maxBytes int64) (*InMemoryLRU, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxBytes / 64 * 10,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, verrors.Wrap(err, verrors.ErrorTypeIO, "RISTRETTO_INIT", "failed to construct segment cache")
	}
	return &InMemoryLRU{cache: c}, nil
}

func (c *InMemoryLRU) Get(ctx context.Context, id ID) (*buffer.Buffer, bool) {
	v, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	buf, ok := v.(*buffer.Buffer)
	return buf, ok
}

func (c *InMemoryLRU) Put(ctx context.Context, id ID, buf *buffer.Buffer) {
	c.cache.Set(id, buf, int64(buf.Len()))
}

// RedisCache stores segment bytes in Redis (github.com/redis/go-redis/v9),
// for sharing a resolved segment across process boundaries (e.g. a fleet
// of scan workers reading the same file).
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps an already-configured Redis client; prefix
// namespaces keys (typically the file's content hash) so segment IDs from
// different files never collide.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(id ID) string { return fmt.Sprintf("%s:seg:%d", c.prefix, id) }

func (c *RedisCache) Get(ctx context.Context, id ID) (*buffer.Buffer, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return nil, false
	}
	return buffer.Wrap(raw, 1), true
}

func (c *RedisCache) Put(ctx context.Context, id ID, buf *buffer.Buffer) {
	_ = c.client.Set(ctx, c.key(id), buf.Bytes(), 0).Err()
}

// CachedSource wraps a Source with a Cache, serving resolved segments
// from cache before falling through to the underlying source.
type CachedSource struct {
	inner Source
	cache Cache
}

// NewCachedSource constructs a CachedSource.
func NewCachedSource(inner Source, cache Cache) *CachedSource {
	return &CachedSource{inner: inner, cache: cache}
}

func (s *CachedSource) Descriptor(id ID) (Descriptor, error) { return s.inner.Descriptor(id) }

func (s *CachedSource) Request(ctx context.Context, id ID, priority Priority) *Future {
	if buf, ok := s.cache.Get(ctx, id); ok {
		metrics.SegmentCacheHits.Inc()
		metrics.SegmentBytesRead.Add(float64(buf.Len()))
		f := NewFuture()
		f.Resolve(buf, nil)
		return f
	}
	metrics.SegmentCacheMisses.Inc()
	inner := s.inner.Request(ctx, id, priority)
	f := NewFuture()
	go func() {
		buf, err := inner.Wait(ctx)
		if err == nil {
			metrics.SegmentBytesRead.Add(float64(buf.Len()))
			s.cache.Put(ctx, id, buf)
		}
		f.Resolve(buf, err)
	}()
	return f
}

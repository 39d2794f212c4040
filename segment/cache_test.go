package segment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/buffer"
)

func TestInMemoryLRUPutThenGet(t *testing.T) {
	c, err := NewInMemoryLRU(1 << 20)
	require.NoError(t, err)

	ctx := context.Background()
	buf := buffer.Wrap([]byte("segment bytes"), 1)
	c.Put(ctx, ID(7), buf)

	require.Eventually(t, func() bool {
		got, ok := c.Get(ctx, ID(7))
		return ok && string(got.Bytes()) == "segment bytes"
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryLRUMissReturnsFalse(t *testing.T) {
	c, err := NewInMemoryLRU(1 << 20)
	require.NoError(t, err)

	_, ok := c.Get(context.Background(), ID(42))
	assert.False(t, ok)
}

type fakeCache struct {
	entries map[ID]*buffer.Buffer
}

func newFakeCache() *fakeCache { return &fakeCache{entries: make(map[ID]*buffer.Buffer)} }

func (f *fakeCache) Get(ctx context.Context, id ID) (*buffer.Buffer, bool) {
	b, ok := f.entries[id]
	return b, ok
}

func (f *fakeCache) Put(ctx context.Context, id ID, buf *buffer.Buffer) {
	f.entries[id] = buf
}

func TestCachedSourceServesFromCacheWithoutCallingInner(t *testing.T) {
	cache := newFakeCache()
	cache.Put(context.Background(), 3, buffer.Wrap([]byte("cached"), 1))

	calls := 0
	inner := &countingSource{onRequest: func() { calls++ }}
	src := NewCachedSource(inner, cache)

	buf, err := src.Request(context.Background(), 3, PriorityNormal).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", string(buf.Bytes()))
	assert.Equal(t, 0, calls)
}

func TestCachedSourcePopulatesCacheOnMiss(t *testing.T) {
	cache := newFakeCache()
	data := buffer.Wrap([]byte{1, 2, 3}, 1)
	segs := NewStaticMap([]Descriptor{{Offset: 0, Length: 3}})
	inner := NewInMemorySource(data, segs)
	src := NewCachedSource(inner, cache)

	buf, err := src.Request(context.Background(), 0, PriorityNormal).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, buf.Bytes())

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), 0)
		return ok
	}, time.Second, 5*time.Millisecond)
}

type countingSource struct {
	onRequest func()
}

func (s *countingSource) Descriptor(id ID) (Descriptor, error) { return Descriptor{}, nil }

func (s *countingSource) Request(ctx context.Context, id ID, priority Priority) *Future {
	s.onRequest()
	f := NewFuture()
	f.Resolve(buffer.Wrap([]byte("should not be used"), 1), nil)
	return f
}

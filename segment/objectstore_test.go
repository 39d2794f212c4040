package segment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/internal/storage"
)

func TestObjectStoreSourceFetchesWholeObjectOnceAndSlices(t *testing.T) {
	ctx := context.Background()
	backend := storage.Local(t.TempDir())
	require.NoError(t, backend.Put(ctx, "file.vtx", []byte("0123456789")))

	segs := NewStaticMap([]Descriptor{
		{Offset: 0, Length: 4},
		{Offset: 4, Length: 6},
	})
	src := NewObjectStoreSource(backend, "file.vtx", segs)

	buf0, err := src.Request(ctx, 0, PriorityNormal).Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(buf0.Bytes()))

	buf1, err := src.Request(ctx, 1, PriorityNormal).Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "456789", string(buf1.Bytes()))

	assert.True(t, src.fetched)
}

func TestObjectStoreSourceMissingKeyResolvesWithError(t *testing.T) {
	ctx := context.Background()
	backend := storage.Local(t.TempDir())
	segs := NewStaticMap([]Descriptor{{Offset: 0, Length: 1}})
	src := NewObjectStoreSource(backend, "missing.vtx", segs)

	_, err := src.Request(ctx, 0, PriorityNormal).Wait(ctx)
	assert.Error(t, err)
}

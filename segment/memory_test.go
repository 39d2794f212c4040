package segment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/buffer"
)

func TestInMemorySourceRequestResolvesImmediately(t *testing.T) {
	data := buffer.Wrap([]byte{0, 1, 2, 3, 4, 5, 6, 7}, 1)
	segs := NewStaticMap([]Descriptor{{Offset: 2, Length: 3}})
	src := NewInMemorySource(data, segs)

	f := src.Request(context.Background(), 0, PriorityNormal)
	buf, ready, err := f.Poll()
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Equal(t, []byte{2, 3, 4}, buf.Bytes())
}

func TestInMemorySourceUnknownIDResolvesWithError(t *testing.T) {
	data := buffer.Wrap([]byte{0, 1, 2}, 1)
	src := NewInMemorySource(data, NewStaticMap(nil))

	f := src.Request(context.Background(), 0, PriorityNormal)
	_, err := f.Wait(context.Background())
	assert.Error(t, err)
}

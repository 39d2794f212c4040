package segment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/buffer"
)

func TestDescriptorAlignment(t *testing.T) {
	d := Descriptor{Offset: 0, Length: 8, AlignmentExponent: 3}
	assert.Equal(t, 8, d.Alignment())
}

func TestFuturePollBeforeAndAfterResolve(t *testing.T) {
	f := NewFuture()
	_, ready, err := f.Poll()
	require.NoError(t, err)
	assert.False(t, ready)

	buf := buffer.Wrap([]byte{1, 2, 3}, 1)
	f.Resolve(buf, nil)

	got, ready, err := f.Poll()
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Equal(t, buf.Bytes(), got.Bytes())
}

func TestFutureResolveIsIdempotent(t *testing.T) {
	f := NewFuture()
	f.Resolve(buffer.Wrap([]byte{1}, 1), nil)
	f.Resolve(buffer.Wrap([]byte{2}, 1), nil)

	got, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, got.Bytes())
}

func TestFutureWaitRespectsContextCancellation(t *testing.T) {
	f := NewFuture()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStaticMapAppendAndDescriptor(t *testing.T) {
	m := NewStaticMap(nil)
	id := m.Append(Descriptor{Offset: 0, Length: 16, AlignmentExponent: 0})
	assert.Equal(t, ID(0), id)

	d, err := m.Descriptor(id)
	require.NoError(t, err)
	assert.Equal(t, int64(16), d.Length)
	assert.Equal(t, 1, m.Len())
}

func TestStaticMapDescriptorOutOfBounds(t *testing.T) {
	m := NewStaticMap(nil)
	_, err := m.Descriptor(0)
	assert.Error(t, err)
}

func TestStaticMapEntriesIsASnapshot(t *testing.T) {
	m := NewStaticMap([]Descriptor{{Offset: 0, Length: 4}})
	entries := m.Entries()
	entries[0].Length = 999

	d, err := m.Descriptor(0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.Length)
}

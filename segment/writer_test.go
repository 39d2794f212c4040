package segment

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/buffer"
)

func TestWriteSegmentPadsToAlignment(t *testing.T) {
	var sink bytes.Buffer
	w := NewWriter(&sink, 0)

	b1 := buffer.Wrap([]byte{1, 2, 3}, 1)
	id1, err := w.WriteSegment([]*buffer.Buffer{b1}, 1)
	require.NoError(t, err)
	assert.Equal(t, ID(0), id1)

	b2 := buffer.Wrap([]byte{9, 9, 9, 9}, 1)
	id2, err := w.WriteSegment([]*buffer.Buffer{b2}, 8)
	require.NoError(t, err)
	assert.Equal(t, ID(1), id2)

	d2, err := w.SegmentMap().Descriptor(id2)
	require.NoError(t, err)
	assert.Equal(t, int64(8), d2.Offset)
	assert.Equal(t, int64(4), d2.Length)
	assert.Equal(t, 8, d2.Alignment())
	assert.Equal(t, int64(12), w.Offset())
	assert.Len(t, sink.Bytes(), 12)
}

func TestWriteSegmentConcatenatesMultipleBuffers(t *testing.T) {
	var sink bytes.Buffer
	w := NewWriter(&sink, 0)

	bufs := []*buffer.Buffer{
		buffer.Wrap([]byte{1, 2}, 1),
		buffer.Wrap([]byte{3, 4, 5}, 1),
	}
	id, err := w.WriteSegment(bufs, 1)
	require.NoError(t, err)

	d, err := w.SegmentMap().Descriptor(id)
	require.NoError(t, err)
	assert.Equal(t, int64(5), d.Length)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, sink.Bytes())
}

func TestWriteSegmentRejectsNonPowerOfTwoAlignment(t *testing.T) {
	var sink bytes.Buffer
	w := NewWriter(&sink, 0)
	_, err := w.WriteSegment([]*buffer.Buffer{buffer.Wrap([]byte{1}, 1)}, 3)
	assert.Error(t, err)
}

func TestAlignmentPaddingIsZeroWhenAlreadyAligned(t *testing.T) {
	assert.Equal(t, int64(0), alignmentPadding(16, 8))
	assert.Equal(t, int64(5), alignmentPadding(11, 16))
}

func TestWriteSegmentWithCodecCompressesAndRoundTrips(t *testing.T) {
	var sink bytes.Buffer
	w := NewWriter(&sink, 0, WithCodec(CodecZstd))

	raw := bytes.Repeat([]byte{7}, 4096)
	id, err := w.WriteSegment([]*buffer.Buffer{buffer.Wrap(raw, 1)}, 1)
	require.NoError(t, err)

	d, err := w.SegmentMap().Descriptor(id)
	require.NoError(t, err)
	assert.True(t, d.Compressed)
	assert.Less(t, int(d.Length), len(raw))

	onDisk := sink.Bytes()[d.Offset : d.Offset+d.Length]
	buf, err := decompressSegment(d, onDisk)
	require.NoError(t, err)
	assert.Equal(t, raw, buf.Bytes())
}

func TestWriteSegmentWithCodecFallsBackWhenNotSmaller(t *testing.T) {
	var sink bytes.Buffer
	w := NewWriter(&sink, 0, WithCodec(CodecZstd))

	// Random-looking bytes too small to amortize a zstd frame header.
	raw := []byte{1, 2, 3}
	id, err := w.WriteSegment([]*buffer.Buffer{buffer.Wrap(raw, 1)}, 1)
	require.NoError(t, err)

	d, err := w.SegmentMap().Descriptor(id)
	require.NoError(t, err)
	assert.False(t, d.Compressed)
	assert.Equal(t, raw, sink.Bytes())
}

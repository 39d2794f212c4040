package layout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
)

func buildChunkedInt32(t *testing.T) (*ChunkedLayout, []int64) {
	t.Helper()
	chunks := [][]int64{{1, 2, 3}, {4, 5}, {6, 7, 8, 9}}
	flats, src := writeFlatInt32Chunks(t, chunks)
	children := make([]Layout, len(flats))
	for i, f := range flats {
		children[i] = f
	}
	cl, err := NewChunkedLayout(flats[0].DType(), children)
	require.NoError(t, err)
	_ = src
	var flat []int64
	for _, c := range chunks {
		flat = append(flat, c...)
	}
	return cl, flat
}

func TestChunkedLayoutAsRowOffsets(t *testing.T) {
	cl, _ := buildChunkedInt32(t)
	assert.Equal(t, []int{0, 3, 5, 9}, cl.AsRowOffsets())
	assert.Equal(t, 9, cl.RowCount())
}

func TestChunkedLayoutFindChunk(t *testing.T) {
	cl, _ := buildChunkedInt32(t)

	idx, within, err := cl.FindChunk(0)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0, within)

	idx, within, err = cl.FindChunk(4)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, within)

	idx, within, err = cl.FindChunk(8)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	assert.Equal(t, 3, within)

	_, _, err = cl.FindChunk(9)
	assert.Error(t, err)
}

func TestChunkedLayoutSplitsUnionsChunkBoundaries(t *testing.T) {
	cl, _ := buildChunkedInt32(t)
	out := NewSplitSet()
	cl.Splits(AllFields(), 0, out)
	assert.Equal(t, []int{0, 3, 5, 9}, out.Sorted())
}

func TestChunkedLayoutReadSpansMultipleChunks(t *testing.T) {
	chunks := [][]int64{{1, 2, 3}, {4, 5}, {6, 7, 8, 9}}
	flats, src := writeFlatInt32Chunks(t, chunks)
	children := make([]Layout, len(flats))
	for i, f := range flats {
		children[i] = f
	}
	cl, err := NewChunkedLayout(flats[0].DType(), children)
	require.NoError(t, err)

	ctx := array.DefaultContext()
	reader, err := cl.Reader(src, ctx)
	require.NoError(t, err)

	a, err := reader.Read(context.Background(), 2, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, a.Len())

	want := []int64{3, 4, 5, 6, 7}
	for i := 0; i < a.Len(); i++ {
		v, err := array.CanonicalTake(ctx, a, []int{i})
		require.NoError(t, err)
		assert.Equal(t, want[i], array.Int64ValueAt(v, 0))
	}
}

func TestChunkedLayoutReadWithinSingleChunkReturnsPlainSlice(t *testing.T) {
	chunks := [][]int64{{1, 2, 3}, {4, 5}}
	flats, src := writeFlatInt32Chunks(t, chunks)
	children := make([]Layout, len(flats))
	for i, f := range flats {
		children[i] = f
	}
	cl, err := NewChunkedLayout(flats[0].DType(), children)
	require.NoError(t, err)

	ctx := array.DefaultContext()
	reader, err := cl.Reader(src, ctx)
	require.NoError(t, err)

	a, err := reader.Read(context.Background(), 0, 3)
	require.NoError(t, err)
	assert.Equal(t, array.EncodingPrimitive, a.Encoding())
}

func TestChunkedLayoutRequiredSegmentsOnlyOverlappingChunks(t *testing.T) {
	chunks := [][]int64{{1, 2, 3}, {4, 5}, {6, 7, 8, 9}}
	flats, src := writeFlatInt32Chunks(t, chunks)
	children := make([]Layout, len(flats))
	for i, f := range flats {
		children[i] = f
	}
	cl, err := NewChunkedLayout(flats[0].DType(), children)
	require.NoError(t, err)

	ctx := array.DefaultContext()
	reader, err := cl.Reader(src, ctx)
	require.NoError(t, err)

	ids := reader.RequiredSegments(0, 3)
	assert.Equal(t, flats[0].SegmentIDs(), ids)
}

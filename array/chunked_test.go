package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/validity"
)

// TestFindChunkSkipsEmptyChunks covers §8 scenario 4: scalar_at must land
// in the right chunk even when empty chunks precede or follow it.
func TestFindChunkSkipsEmptyChunks(t *testing.T) {
	dt := dtype.Primitive(dtype.I32, false)
	empty, err := NewPrimitive(dtype.I32, 0, EncodeInt64s(dtype.I32, nil), validity.AllValid(0))
	require.NoError(t, err)
	mid, err := NewPrimitive(dtype.I32, 3, EncodeInt64s(dtype.I32, []int64{7, 8, 9}), validity.AllValid(3))
	require.NoError(t, err)
	trailing, err := NewPrimitive(dtype.I32, 0, EncodeInt64s(dtype.I32, nil), validity.AllValid(0))
	require.NoError(t, err)

	chunked, err := NewChunked(dt, []*Array{empty, mid, trailing}, validity.AllValid(3))
	require.NoError(t, err)

	idx, row, err := FindChunk(chunked, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, row)
}

func TestFindChunkAcrossMultipleNonEmptyChunks(t *testing.T) {
	a, err := NewPrimitive(dtype.I32, 2, EncodeInt64s(dtype.I32, []int64{1, 2}), validity.AllValid(2))
	require.NoError(t, err)
	b, err := NewPrimitive(dtype.I32, 3, EncodeInt64s(dtype.I32, []int64{3, 4, 5}), validity.AllValid(3))
	require.NoError(t, err)

	chunked, err := NewChunked(dtype.Primitive(dtype.I32, false), []*Array{a, b}, validity.AllValid(5))
	require.NoError(t, err)

	idx, row, err := FindChunk(chunked, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0, row)

	idx, row, err = FindChunk(chunked, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 0, row)

	idx, row, err = FindChunk(chunked, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, row)
}

func TestFindChunkOutOfBounds(t *testing.T) {
	a, _ := NewPrimitive(dtype.I32, 1, EncodeInt64s(dtype.I32, []int64{1}), validity.AllValid(1))
	chunked, err := NewChunked(dtype.Primitive(dtype.I32, false), []*Array{a}, validity.AllValid(1))
	require.NoError(t, err)
	_, _, err = FindChunk(chunked, 5)
	assert.Error(t, err)
}

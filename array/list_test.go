package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/validity"
)

func TestListBoundsAtMatchesOffsets(t *testing.T) {
	elems, err := NewPrimitive(dtype.I32, 5, EncodeInt64s(dtype.I32, []int64{10, 20, 30, 40, 50}), validity.AllValid(5))
	require.NoError(t, err)

	dt := dtype.List(dtype.Primitive(dtype.I32, false), false)
	l, err := NewList(dt, []uint32{0, 2, 2, 5}, elems, validity.AllValid(3))
	require.NoError(t, err)

	start, stop := ListBoundsAt(l, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, stop)

	start, stop = ListBoundsAt(l, 1)
	assert.Equal(t, 2, start)
	assert.Equal(t, 2, stop) // empty list entry

	start, stop = ListBoundsAt(l, 2)
	assert.Equal(t, 2, start)
	assert.Equal(t, 5, stop)
}

func TestListRejectsFinalOffsetMismatch(t *testing.T) {
	elems, _ := NewPrimitive(dtype.I32, 2, EncodeInt64s(dtype.I32, []int64{1, 2}), validity.AllValid(2))
	dt := dtype.List(dtype.Primitive(dtype.I32, false), false)
	_, err := NewList(dt, []uint32{0, 5}, elems, validity.AllValid(1))
	assert.Error(t, err)
}

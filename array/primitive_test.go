package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/validity"
)

func TestPrimitiveRoundTripsInt64(t *testing.T) {
	a, err := NewPrimitive(dtype.I64, 3, EncodeInt64s(dtype.I64, []int64{-1, 0, 42}), validity.AllValid(3))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), Int64ValueAt(a, 0))
	assert.Equal(t, int64(42), Int64ValueAt(a, 2))
}

func TestPrimitiveFromPartsRejectsBadBufferLength(t *testing.T) {
	dt := dtype.Primitive(dtype.I64, false)
	_, err := primitiveEncoding{}.FromParts(DefaultContext(), dt, 3, nil, nil, nil, validity.AllValid(3))
	assert.Error(t, err)
}

func TestPrimitiveRoundTripsFloat64(t *testing.T) {
	a, err := NewPrimitive(dtype.F64, 2, EncodeFloat64s(dtype.F64, []float64{1.5, -2.25}), validity.AllValid(2))
	require.NoError(t, err)
	assert.Equal(t, 1.5, Float64ValueAt(a, 0))
	assert.Equal(t, -2.25, Float64ValueAt(a, 1))
}

func TestPrimitiveRoundTripsUint64(t *testing.T) {
	a, err := NewPrimitive(dtype.U32, 2, EncodeUint64s(dtype.U32, []uint64{7, 4294967295}), validity.AllValid(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), Uint64ValueAt(a, 0))
	assert.Equal(t, uint64(4294967295), Uint64ValueAt(a, 1))
}

package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/validity"
)

// TestDictCanonicalizesToPrimitive covers §8 scenario 2: a Dict-encoded
// primitive array's canonical form matches plain gather-by-code.
func TestDictCanonicalizesToPrimitive(t *testing.T) {
	values, err := NewPrimitive(dtype.I32, 3, EncodeInt64s(dtype.I32, []int64{10, 20, 30}), validity.AllValid(3))
	require.NoError(t, err)
	codes, err := NewPrimitive(dtype.U8, 5, EncodeUint64s(dtype.U8, []uint64{0, 1, 1, 2, 0}), validity.AllValid(5))
	require.NoError(t, err)

	d, err := NewDict(codes, values, validity.AllValid(5))
	require.NoError(t, err)
	assert.Equal(t, EncodingDict, d.Encoding())
	assert.Equal(t, 5, d.Len())

	canon, err := Canonicalize(DefaultContext(), d)
	require.NoError(t, err)
	assert.Equal(t, EncodingPrimitive, canon.Encoding())
	want := []int64{10, 20, 20, 30, 10}
	for i, w := range want {
		assert.Equal(t, w, Int64ValueAt(canon, i))
	}
}

func TestDictPreservesOwnValidityOverGatheredValues(t *testing.T) {
	values, err := NewPrimitive(dtype.I32, 2, EncodeInt64s(dtype.I32, []int64{1, 2}), validity.AllValid(2))
	require.NoError(t, err)
	codes, err := NewPrimitive(dtype.U8, 2, EncodeUint64s(dtype.U8, []uint64{0, 1}), validity.AllValid(2))
	require.NoError(t, err)

	d, err := NewDict(codes, values, validity.FromBits([]bool{true, false}))
	require.NoError(t, err)

	canon, err := Canonicalize(DefaultContext(), d)
	require.NoError(t, err)
	assert.True(t, canon.IsValid(0))
	assert.False(t, canon.IsValid(1))
}

func TestDictRejectsSignedCodes(t *testing.T) {
	values, _ := NewPrimitive(dtype.I32, 1, EncodeInt64s(dtype.I32, []int64{1}), validity.AllValid(1))
	codes, _ := NewPrimitive(dtype.I8, 1, EncodeInt64s(dtype.I8, []int64{0}), validity.AllValid(1))
	_, err := NewDict(codes, values, validity.AllValid(1))
	assert.Error(t, err)
}

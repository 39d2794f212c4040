package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/validity"
)

// TestRunEndCanonicalizeExpandsRuns covers §8 scenario 6: comparing a
// RunEnd array against a constant must match comparing its expansion.
func TestRunEndCanonicalizeExpandsRuns(t *testing.T) {
	values, err := NewPrimitive(dtype.I32, 3, EncodeInt64s(dtype.I32, []int64{1, 1, 2}), validity.AllValid(3))
	require.NoError(t, err)
	ends, err := NewPrimitive(dtype.U32, 3, EncodeUint64s(dtype.U32, []uint64{2, 5, 7}), validity.AllValid(3))
	require.NoError(t, err)

	re, err := NewRunEnd(ends, values, 7, validity.AllValid(7))
	require.NoError(t, err)
	assert.Equal(t, 7, re.Len())

	canon, err := Canonicalize(DefaultContext(), re)
	require.NoError(t, err)
	assert.Equal(t, EncodingPrimitive, canon.Encoding())

	want := []int64{1, 1, 1, 1, 1, 2, 2}
	got := make([]bool, 7)
	for i := range got {
		got[i] = Int64ValueAt(canon, i) == 1
	}
	for i, w := range want {
		assert.Equal(t, w == 1, got[i], "position %d", i)
	}
}

func TestRunEndRejectsFinalEndMismatch(t *testing.T) {
	values, _ := NewPrimitive(dtype.I32, 1, EncodeInt64s(dtype.I32, []int64{1}), validity.AllValid(1))
	ends, _ := NewPrimitive(dtype.U32, 1, EncodeUint64s(dtype.U32, []uint64{3}), validity.AllValid(1))
	_, err := NewRunEnd(ends, values, 10, validity.AllValid(10))
	assert.Error(t, err)
}

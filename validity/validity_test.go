package validity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidAcrossKinds(t *testing.T) {
	assert.True(t, NonNullable(3).IsValid(1))
	assert.True(t, AllValid(3).IsValid(1))
	assert.False(t, AllInvalid(3).IsValid(1))

	arr := FromBits([]bool{true, false, true})
	assert.False(t, arr.IsValid(1))
}

func TestNullCount(t *testing.T) {
	arr := FromBits([]bool{true, false, false, true})
	assert.Equal(t, 2, arr.NullCount())
	assert.Equal(t, 0, NonNullable(5).NullCount())
	assert.Equal(t, 5, AllInvalid(5).NullCount())
}

func TestSlicePreservesKind(t *testing.T) {
	v := AllValid(10)
	s, err := v.Slice(2, 5)
	require.NoError(t, err)
	assert.Equal(t, KindAllValid, s.Kind())
	assert.Equal(t, 3, s.Len())
}

func TestTakeOutOfBounds(t *testing.T) {
	arr := FromBits([]bool{true, false})
	_, err := arr.Take([]int{0, 5})
	assert.Error(t, err)
}

func TestAndNeverDropsRows(t *testing.T) {
	v := AllValid(4)
	masked, err := v.And([]bool{true, false, true, false})
	require.NoError(t, err)
	assert.Equal(t, 4, masked.Len())
	assert.True(t, masked.IsValid(0))
	assert.False(t, masked.IsValid(1))
}

func TestFilterAllInvalidKeepsKind(t *testing.T) {
	v := AllInvalid(5)
	f, err := v.Filter([]bool{true, false, true, false, true})
	require.NoError(t, err)
	assert.Equal(t, KindAllInvalid, f.Kind())
	assert.Equal(t, 3, f.Len())
}

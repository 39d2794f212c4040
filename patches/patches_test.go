package patches

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/validity"
)

func indicesArray(t *testing.T, idx []uint64) *array.Array {
	t.Helper()
	a, err := array.NewPrimitive(dtype.U32, len(idx), array.EncodeUint64s(dtype.U32, idx), validity.AllValid(len(idx)))
	require.NoError(t, err)
	return a
}

func valuesArray(t *testing.T, vals []int64) *array.Array {
	t.Helper()
	a, err := array.NewPrimitive(dtype.I32, len(vals), array.EncodeInt64s(dtype.I32, vals), validity.AllValid(len(vals)))
	require.NoError(t, err)
	return a
}

func TestNewRejectsUnsortedIndices(t *testing.T) {
	ctx := array.DefaultContext()
	idx := indicesArray(t, []uint64{3, 1})
	vals := valuesArray(t, []int64{10, 20})
	_, err := New(ctx, 10, 0, idx, vals)
	assert.Error(t, err)
}

func TestGetPatchedFindsOverride(t *testing.T) {
	ctx := array.DefaultContext()
	idx := indicesArray(t, []uint64{2, 5, 9})
	vals := valuesArray(t, []int64{100, 200, 300})
	p, err := New(ctx, 10, 0, idx, vals)
	require.NoError(t, err)

	v, ok, err := p.GetPatched(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(200), v.AsInt64())

	_, ok, err = p.GetPatched(ctx, 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSliceRebasesIndices(t *testing.T) {
	ctx := array.DefaultContext()
	idx := indicesArray(t, []uint64{2, 5, 9})
	vals := valuesArray(t, []int64{100, 200, 300})
	p, err := New(ctx, 10, 0, idx, vals)
	require.NoError(t, err)

	sliced, err := p.Slice(ctx, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 7, sliced.Length())

	v, ok, err := sliced.GetPatched(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(200), v.AsInt64())
}

func TestTakeReindexesSurvivors(t *testing.T) {
	ctx := array.DefaultContext()
	idx := indicesArray(t, []uint64{2, 5, 9})
	vals := valuesArray(t, []int64{100, 200, 300})
	p, err := New(ctx, 10, 0, idx, vals)
	require.NoError(t, err)

	taken, err := p.Take(ctx, []int{0, 5, 9, 3})
	require.NoError(t, err)

	v, ok, err := taken.GetPatched(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(200), v.AsInt64())

	_, ok, err = taken.GetPatched(ctx, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilterDropsMaskedOutOverrides(t *testing.T) {
	ctx := array.DefaultContext()
	idx := indicesArray(t, []uint64{1, 3})
	vals := valuesArray(t, []int64{11, 33})
	p, err := New(ctx, 4, 0, idx, vals)
	require.NoError(t, err)

	filtered, err := p.Filter(ctx, []bool{true, false, true, true})
	require.NoError(t, err)
	assert.Equal(t, 3, filtered.Length())

	v, ok, err := filtered.GetPatched(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(33), v.AsInt64())
}

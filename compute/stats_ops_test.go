package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/validity"
)

func int32Array(t *testing.T, values []int64) *array.Array {
	t.Helper()
	a, err := array.NewPrimitive(dtype.I32, len(values), array.EncodeInt64s(dtype.I32, values), validity.AllValid(len(values)))
	require.NoError(t, err)
	return a
}

func TestSearchSortedConstantArray(t *testing.T) {
	ctx := array.DefaultContext()
	v, err := scalar.NewPrimitive(dtype.I32, int64(42), false)
	require.NoError(t, err)
	a := array.NewConstant(v, 5000)

	cases := []struct {
		name  string
		value int64
		side  Side
		want  SearchResult
	}{
		{"below, left", 33, Left, SearchResult{Found: false, Index: 0}},
		{"above, left", 55, Left, SearchResult{Found: false, Index: 5000}},
		{"equal, left", 42, Left, SearchResult{Found: true, Index: 0}},
		{"equal, right", 42, Right, SearchResult{Found: true, Index: 5000}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			val, err := scalar.NewPrimitive(dtype.I32, c.value, false)
			require.NoError(t, err)
			got, err := SearchSorted(ctx, a, val, c.side)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestSearchSortedCanonicalLeftRight(t *testing.T) {
	ctx := array.DefaultContext()
	a := int32Array(t, []int64{1, 3, 3, 3, 7, 9})

	v3, err := scalar.NewPrimitive(dtype.I32, int64(3), false)
	require.NoError(t, err)
	left, err := SearchSorted(ctx, a, v3, Left)
	require.NoError(t, err)
	assert.Equal(t, SearchResult{Found: true, Index: 1}, left)

	right, err := SearchSorted(ctx, a, v3, Right)
	require.NoError(t, err)
	assert.Equal(t, SearchResult{Found: true, Index: 4}, right)

	v5, err := scalar.NewPrimitive(dtype.I32, int64(5), false)
	require.NoError(t, err)
	notFound, err := SearchSorted(ctx, a, v5, Left)
	require.NoError(t, err)
	assert.Equal(t, SearchResult{Found: false, Index: 4}, notFound)
}

func TestIsSortedAndIsStrictSorted(t *testing.T) {
	ctx := array.DefaultContext()
	nonStrict := int32Array(t, []int64{1, 1, 2, 3})
	sorted, err := IsSorted(ctx, nonStrict)
	require.NoError(t, err)
	assert.True(t, sorted)
	strict, err := IsStrictSorted(ctx, nonStrict)
	require.NoError(t, err)
	assert.False(t, strict)

	strictArr := int32Array(t, []int64{1, 2, 3})
	strict, err = IsStrictSorted(ctx, strictArr)
	require.NoError(t, err)
	assert.True(t, strict)
}

func TestMinMaxAndSum(t *testing.T) {
	ctx := array.DefaultContext()
	a := int32Array(t, []int64{5, -3, 10, 2})
	min, max, err := MinMax(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), min.AsInt64())
	assert.Equal(t, int64(10), max.AsInt64())

	sum, err := Sum(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(14), sum.AsInt64())
}

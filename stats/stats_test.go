package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/validity"
)

func i32Array(t *testing.T, values []int64, valid []bool) *array.Array {
	t.Helper()
	var v validity.Validity
	if valid == nil {
		v = validity.AllValid(len(values))
	} else {
		v = validity.FromBits(valid)
	}
	a, err := array.NewPrimitive(dtype.I32, len(values), array.EncodeInt64s(dtype.I32, values), v)
	require.NoError(t, err)
	return a
}

func TestComputeMinMaxSum(t *testing.T) {
	ctx := array.DefaultContext()
	a := i32Array(t, []int64{5, 1, 9, 3}, nil)
	set, err := Compute(ctx, a, nil)
	require.NoError(t, err)

	min, ok := set.Get(Min)
	require.True(t, ok)
	assert.Equal(t, int64(1), min.Scalar.AsInt64())

	max, ok := set.Get(Max)
	require.True(t, ok)
	assert.Equal(t, int64(9), max.Scalar.AsInt64())

	sum, ok := set.Get(Sum)
	require.True(t, ok)
	assert.Equal(t, int64(18), sum.Scalar.AsInt64())
}

func TestComputeNullCountAndIsConstant(t *testing.T) {
	ctx := array.DefaultContext()
	a := i32Array(t, []int64{7, 7, 0, 7}, []bool{true, true, false, true})
	set, err := Compute(ctx, a, nil)
	require.NoError(t, err)

	nc, ok := set.Get(NullCount)
	require.True(t, ok)
	assert.Equal(t, int64(1), nc.Int)

	ic, ok := set.Get(IsConstant)
	require.True(t, ok)
	assert.True(t, ic.Bool)
}

func TestComputeRunCount(t *testing.T) {
	ctx := array.DefaultContext()
	a := i32Array(t, []int64{1, 1, 2, 2, 2, 3}, nil)
	set, err := Compute(ctx, a, nil)
	require.NoError(t, err)

	rc, ok := set.Get(RunCount)
	require.True(t, ok)
	assert.Equal(t, int64(3), rc.Int)
}

func TestAccumulatorPushTwiceWidensMinMax(t *testing.T) {
	ctx := array.DefaultContext()
	acc := NewAccumulator(dtype.Primitive(dtype.I32, false))
	require.NoError(t, acc.Push(ctx, i32Array(t, []int64{10, 20}, nil)))
	require.NoError(t, acc.Push(ctx, i32Array(t, []int64{-5, 3}, nil)))
	set := acc.Finalize()

	min, ok := set.Get(Min)
	require.True(t, ok)
	assert.Equal(t, int64(-5), min.Scalar.AsInt64())

	max, ok := set.Get(Max)
	require.True(t, ok)
	assert.Equal(t, int64(20), max.Scalar.AsInt64())

	nc, ok := set.Get(NullCount)
	require.True(t, ok)
	assert.Equal(t, int64(0), nc.Int)
}

func TestMergeSumsCountsAndWidensMinMax(t *testing.T) {
	min5, err := scalar.NewPrimitive(dtype.I32, int64(5), false)
	require.NoError(t, err)
	max9, err := scalar.NewPrimitive(dtype.I32, int64(9), false)
	require.NoError(t, err)
	min1, err := scalar.NewPrimitive(dtype.I32, int64(1), false)
	require.NoError(t, err)
	max20, err := scalar.NewPrimitive(dtype.I32, int64(20), false)
	require.NoError(t, err)

	into := NewSet()
	into.Set(NullCount, Value{Precision: Exact, Int: 2})
	into.Set(Min, Value{Precision: Exact, Scalar: min5})
	into.Set(Max, Value{Precision: Exact, Scalar: max9})

	other := NewSet()
	other.Set(NullCount, Value{Precision: Exact, Int: 3})
	other.Set(Min, Value{Precision: Exact, Scalar: min1})
	other.Set(Max, Value{Precision: Exact, Scalar: max20})

	Merge(into, other)

	nc, ok := into.Get(NullCount)
	require.True(t, ok)
	assert.Equal(t, int64(5), nc.Int)

	min, ok := into.Get(Min)
	require.True(t, ok)
	assert.Equal(t, int64(1), min.Scalar.AsInt64())

	max, ok := into.Get(Max)
	require.True(t, ok)
	assert.Equal(t, int64(20), max.Scalar.AsInt64())
}

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/validity"
)

func i32Col(t *testing.T, values []int64) *array.Array {
	t.Helper()
	a, err := array.NewPrimitive(dtype.I32, len(values), array.EncodeInt64s(dtype.I32, values), validity.AllValid(len(values)))
	require.NoError(t, err)
	return a
}

func rowBatch(t *testing.T, names []string, cols []*array.Array) *array.Array {
	t.Helper()
	fields := make([]dtype.Field, len(names))
	for i, n := range names {
		fields[i] = dtype.Field{Name: n, Type: cols[i].DType()}
	}
	dt, err := dtype.Struct(fields, false)
	require.NoError(t, err)
	a, err := array.NewStruct(dt, cols, validity.AllValid(cols[0].Len()))
	require.NoError(t, err)
	return a
}

func TestEvaluateColumnAndArithmetic(t *testing.T) {
	ctx := array.DefaultContext()
	scope := rowBatch(t, []string{"a", "b"}, []*array.Array{i32Col(t, []int64{1, 2, 3}), i32Col(t, []int64{10, 20, 30})})

	e := &BinaryNumeric{Op: Add, Left: &Column{Name: "a"}, Right: &Column{Name: "b"}}
	out, err := Evaluate(ctx, scope, e)
	require.NoError(t, err)
	assert.Equal(t, int64(11), array.Int64ValueAt(out, 0))
	assert.Equal(t, int64(22), array.Int64ValueAt(out, 1))
	assert.Equal(t, int64(33), array.Int64ValueAt(out, 2))
}

func TestEvaluateComparison(t *testing.T) {
	ctx := array.DefaultContext()
	scope := rowBatch(t, []string{"a"}, []*array.Array{i32Col(t, []int64{1, 5, 9})})

	lit, err := scalar.NewPrimitive(dtype.I32, int64(5), false)
	require.NoError(t, err)
	e := &Comparison{Op: compute.Ge, Left: &Column{Name: "a"}, Right: &Literal{Value: lit}}
	out, err := Evaluate(ctx, scope, e)
	require.NoError(t, err)
	assert.False(t, array.BoolValueAt(out, 0))
	assert.True(t, array.BoolValueAt(out, 1))
	assert.True(t, array.BoolValueAt(out, 2))
}

func TestEvaluateBetween(t *testing.T) {
	ctx := array.DefaultContext()
	scope := rowBatch(t, []string{"a"}, []*array.Array{i32Col(t, []int64{1, 5, 9, 10})})

	lo, err := scalar.NewPrimitive(dtype.I32, int64(5), false)
	require.NoError(t, err)
	hi, err := scalar.NewPrimitive(dtype.I32, int64(9), false)
	require.NoError(t, err)
	e := &Between{
		Child: &Column{Name: "a"}, Lower: &Literal{Value: lo}, Upper: &Literal{Value: hi},
		LowerInclusive: true, UpperInclusive: true,
	}
	out, err := Evaluate(ctx, scope, e)
	require.NoError(t, err)
	assert.False(t, array.BoolValueAt(out, 0))
	assert.True(t, array.BoolValueAt(out, 1))
	assert.True(t, array.BoolValueAt(out, 2))
	assert.False(t, array.BoolValueAt(out, 3))
}

func TestEvaluateRowFilterShortCircuits(t *testing.T) {
	ctx := array.DefaultContext()
	scope := rowBatch(t, []string{"a"}, []*array.Array{i32Col(t, []int64{1, 2, 3})})

	litFalse := scalar.NewBool(false, false)
	litTrue := scalar.NewBool(true, false)
	e := &RowFilter{Children: []Expr{&Literal{Value: litFalse}, &Literal{Value: litTrue}}}
	out, err := Evaluate(ctx, scope, e)
	require.NoError(t, err)
	for i := 0; i < out.Len(); i++ {
		assert.False(t, array.BoolValueAt(out, i))
	}
}

func TestEvaluateSelectSimplifiesToPack(t *testing.T) {
	ctx := array.DefaultContext()
	scope := rowBatch(t, []string{"a", "b"}, []*array.Array{i32Col(t, []int64{1, 2}), i32Col(t, []int64{10, 20})})

	e := &Select{Fields: []string{"b"}, Child: &Identity{}}
	out, err := Evaluate(ctx, scope, e)
	require.NoError(t, err)
	require.Equal(t, dtype.KindStruct, out.DType().Kind())
	require.Len(t, out.DType().Fields(), 1)
	assert.Equal(t, "b", out.DType().Fields()[0].Name)
	assert.Equal(t, int64(10), array.Int64ValueAt(array.FieldAt(out, 0), 0))
}

func TestKleeneAndFalseDominatesNull(t *testing.T) {
	n := 1
	falseArr, err := array.NewBool(n, array.PackBools([]bool{false}), validity.AllValid(n))
	require.NoError(t, err)
	nullArr, err := array.NewBool(n, array.PackBools([]bool{false}), validity.AllInvalid(n))
	require.NoError(t, err)
	out, err := kleeneAnd(falseArr, nullArr)
	require.NoError(t, err)
	assert.True(t, out.IsValid(0))
	assert.False(t, array.BoolValueAt(out, 0))
}

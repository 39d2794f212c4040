package compute

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/validity"
)

func TestToArrowPrimitive(t *testing.T) {
	ctx := array.DefaultContext()
	a := int32Array(t, []int64{1, 2, 3})
	out, err := ToArrow(ctx, a, arrow.PrimitiveTypes.Int32)
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, arrow.INT32, out.DataType().ID())
}

func TestToArrowBoolWithNulls(t *testing.T) {
	ctx := array.DefaultContext()
	bits := []bool{true, false, true}
	valid := []bool{true, false, true}
	a, err := array.NewBool(3, array.PackBools(bits), validity.FromBits(valid))
	require.NoError(t, err)
	out, err := ToArrow(ctx, a, arrow.FixedWidthTypes.Boolean)
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())
	assert.True(t, out.IsNull(1))
}

func TestToArrowUtf8(t *testing.T) {
	ctx := array.DefaultContext()
	a := utf8Array(t, []string{"a", "bb"}, []bool{true, true})
	out, err := ToArrow(ctx, a, arrow.BinaryTypes.String)
	require.NoError(t, err)
	assert.Equal(t, dtype.Utf8(false).Kind(), a.DType().Kind())
	assert.Equal(t, 2, out.Len())
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/scalar"
)

func TestParseComparisonNumeric(t *testing.T) {
	fields := []dtype.Field{{Name: "x", Type: dtype.Primitive(dtype.I64, true)}}
	structDT, err := dtype.Struct(fields, false)
	require.NoError(t, err)

	e, err := parseComparison("x>=10", structDT)
	require.NoError(t, err)
	cmp, ok := e.(*expr.Comparison)
	require.True(t, ok)
	assert.Equal(t, compute.Ge, cmp.Op)
	col, ok := cmp.Left.(*expr.Column)
	require.True(t, ok)
	assert.Equal(t, "x", col.Name)
	lit, ok := cmp.Right.(*expr.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(10), lit.Value.AsInt64())
}

func TestParseComparisonUnknownField(t *testing.T) {
	fields := []dtype.Field{{Name: "x", Type: dtype.Primitive(dtype.I64, true)}}
	structDT, err := dtype.Struct(fields, false)
	require.NoError(t, err)

	_, err = parseComparison("y==1", structDT)
	assert.Error(t, err)
}

func TestParseComparisonNoOperator(t *testing.T) {
	_, err := parseComparison("nonsense", dtype.Primitive(dtype.I64, false))
	assert.Error(t, err)
}

func TestFormatScalarPrimitiveAndNull(t *testing.T) {
	s, err := scalar.NewPrimitive(dtype.I64, int64(42), false)
	require.NoError(t, err)
	assert.Equal(t, "42", formatScalar(s))
	assert.Equal(t, "null", formatScalar(scalar.Null(dtype.Primitive(dtype.I64, true))))
}

package scalar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/dtype"
)

func TestCompareNullSortsFirst(t *testing.T) {
	n := Null(dtype.Primitive(dtype.I32, true))
	v, err := NewPrimitive(dtype.I32, int64(5), true)
	require.NoError(t, err)

	c, err := Compare(n, v)
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestCompareFloatNaNIsGreatest(t *testing.T) {
	a, _ := NewPrimitive(dtype.F64, math.NaN(), false)
	b, _ := NewPrimitive(dtype.F64, 1e300, false)
	c, err := Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}

func TestCompareMismatchedKinds(t *testing.T) {
	a := NewUtf8("x", false)
	b, _ := NewPrimitive(dtype.I32, int64(1), false)
	_, err := Compare(a, b)
	assert.Error(t, err)
}

func TestCompareBytesLexicographic(t *testing.T) {
	a := NewBinary([]byte("ab"), false)
	b := NewBinary([]byte("abc"), false)
	c, err := Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

package dtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructRejectsDuplicateFieldNames(t *testing.T) {
	_, err := Struct([]Field{
		{Name: "a", Type: Primitive(I32, false)},
		{Name: "a", Type: Bool(true)},
	}, false)
	assert.Error(t, err)
}

func TestDecimalBoundsChecked(t *testing.T) {
	_, err := Decimal(77, 0, false)
	assert.Error(t, err)
	_, err = Decimal(10, 77, false)
	assert.Error(t, err)
	d, err := Decimal(38, 2, true)
	require.NoError(t, err)
	assert.Equal(t, uint8(38), d.DecimalPrecision())
}

func TestExtensionRejectsExtensionStorage(t *testing.T) {
	inner, _ := Extension("inner", nil, Primitive(I64, false))
	_, err := Extension("outer", nil, inner)
	assert.Error(t, err)
}

func TestEqualConsidersFieldOrderAndNullability(t *testing.T) {
	a, _ := Struct([]Field{{Name: "x", Type: Primitive(I32, false)}}, false)
	b, _ := Struct([]Field{{Name: "x", Type: Primitive(I32, true)}}, false)
	assert.False(t, a.Equal(b))

	c, _ := Struct([]Field{{Name: "x", Type: Primitive(I32, false)}}, false)
	assert.True(t, a.Equal(c))
}

func TestListElementRoundTrips(t *testing.T) {
	l := List(Utf8(true), false)
	assert.Equal(t, KindList, l.Kind())
	assert.True(t, l.Element().Equal(Utf8(true)))
}

func TestStringRendersNullability(t *testing.T) {
	assert.Equal(t, "i32", Primitive(I32, false).String())
	assert.Equal(t, "i32?", Primitive(I32, true).String())
}

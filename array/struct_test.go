package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/validity"
)

func TestStructFieldAtReturnsChild(t *testing.T) {
	ids, err := NewPrimitive(dtype.I32, 2, EncodeInt64s(dtype.I32, []int64{1, 2}), validity.AllValid(2))
	require.NoError(t, err)
	names, err := NewVarBin(true, []uint32{0, 3, 6}, []byte("abcxyz"), validity.AllValid(2))
	require.NoError(t, err)

	dt, err := dtype.Struct([]dtype.Field{
		{Name: "id", Type: dtype.Primitive(dtype.I32, false)},
		{Name: "name", Type: dtype.Utf8(false)},
	}, false)
	require.NoError(t, err)

	s, err := NewStruct(dt, []*Array{ids, names}, validity.AllValid(2))
	require.NoError(t, err)
	assert.Same(t, ids, FieldAt(s, 0))
	assert.Same(t, names, FieldAt(s, 1))
}

func TestStructRejectsFieldCountMismatch(t *testing.T) {
	dt, _ := dtype.Struct([]dtype.Field{{Name: "id", Type: dtype.Primitive(dtype.I32, false)}}, false)
	_, err := NewStruct(dt, nil, validity.AllValid(0))
	assert.Error(t, err)
}

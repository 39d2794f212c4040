package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/scalar"
)

// TestConstantCanonicalizesToUniformPrimitive covers §8 scenario 3: a
// Constant array of length n canonicalizes, in O(n), to a Primitive array
// where every element equals the constant.
func TestConstantCanonicalizesToUniformPrimitive(t *testing.T) {
	v, err := scalar.NewPrimitive(dtype.I32, int64(42), false)
	require.NoError(t, err)
	c := NewConstant(v, 5)
	assert.Equal(t, EncodingConstant, c.Encoding())
	assert.Equal(t, 5, c.Len())

	canon, err := Canonicalize(DefaultContext(), c)
	require.NoError(t, err)
	assert.Equal(t, EncodingPrimitive, canon.Encoding())
	for i := 0; i < 5; i++ {
		assert.Equal(t, int64(42), Int64ValueAt(canon, i))
	}
}

func TestConstantNullCanonicalizesToAllInvalid(t *testing.T) {
	c := NewConstant(scalar.Null(dtype.Primitive(dtype.I32, true)), 3)
	canon, err := Canonicalize(DefaultContext(), c)
	require.NoError(t, err)
	assert.Equal(t, 3, canon.NullCount())
}

func TestConstantMetadataRoundTrips(t *testing.T) {
	v, err := scalar.NewPrimitive(dtype.F64, 3.5, false)
	require.NoError(t, err)
	meta := EncodeConstantMetadata(v)
	decoded, err := DecodeConstantMetadata(v.DType(), meta)
	require.NoError(t, err)
	assert.Equal(t, 3.5, decoded.AsFloat64())
}

func TestConstantUtf8Canonicalizes(t *testing.T) {
	v := scalar.NewUtf8("hi", false)
	c := NewConstant(v, 3)
	canon, err := Canonicalize(DefaultContext(), c)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, []byte("hi"), BytesAt(canon, i))
	}
}

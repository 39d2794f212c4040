package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/validity"
)

func TestExtensionCanonicalizesToStorage(t *testing.T) {
	storage, err := NewPrimitive(dtype.I64, 3, EncodeInt64s(dtype.I64, []int64{1, 2, 3}), validity.AllValid(3))
	require.NoError(t, err)

	dt, err := dtype.Extension("vortex.timestamp", []byte("ns"), dtype.Primitive(dtype.I64, false))
	require.NoError(t, err)

	ext := NewExtension(dt, storage)
	assert.Same(t, storage, StorageOf(ext))

	canon, err := Canonicalize(DefaultContext(), ext)
	require.NoError(t, err)
	assert.Equal(t, EncodingPrimitive, canon.Encoding())
}

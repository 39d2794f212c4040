package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlignedRejectsBadAlignment(t *testing.T) {
	_, err := NewAligned([]byte{1, 2, 3}, 3)
	assert.Error(t, err)
}

func TestSliceSharesStorage(t *testing.T) {
	b, err := NewAligned([]byte("helloworld"), 1)
	require.NoError(t, err)

	s, err := b.Slice(2, 7)
	require.NoError(t, err)
	assert.Equal(t, "llowo", string(s.Bytes()))
}

func TestSliceOutOfBounds(t *testing.T) {
	b, err := NewAligned([]byte("hello"), 1)
	require.NoError(t, err)
	_, err = b.Slice(0, 10)
	assert.Error(t, err)
}

func TestMutableExtendBeyondCapacity(t *testing.T) {
	m, err := NewMutable(2, 8)
	require.NoError(t, err)
	require.NoError(t, m.Extend([]byte("ab")))
	require.NoError(t, m.Extend([]byte("cdefgh")))
	assert.Equal(t, 8, m.Len())

	frozen, err := m.Freeze()
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", string(frozen.Bytes()))

	_, err = m.Freeze()
	assert.Error(t, err, "freezing twice must fail")
}

func TestAsTypedRejectsMisalignedLength(t *testing.T) {
	b, err := NewAligned([]byte{1, 2, 3}, 1)
	require.NoError(t, err)
	assert.Error(t, b.AsTyped(4, 4))
}

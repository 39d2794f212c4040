package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/validity"
)

func utf8Array(t *testing.T, values []string, valid []bool) *array.Array {
	t.Helper()
	offsets := make([]uint32, len(values)+1)
	var data []byte
	for i, v := range values {
		data = append(data, v...)
		offsets[i+1] = uint32(len(data))
	}
	a, err := array.NewVarBin(true, offsets, data, validity.FromBits(valid))
	require.NoError(t, err)
	return a
}

func TestLikeMatchesWildcards(t *testing.T) {
	ctx := array.DefaultContext()
	values := []string{"hello", "help", "world", "HELLO"}
	a := utf8Array(t, values, []bool{true, true, true, true})

	out, err := Like(ctx, a, "hel%", LikeOptions{})
	require.NoError(t, err)
	assert.True(t, array.BoolValueAt(out, 0))
	assert.True(t, array.BoolValueAt(out, 1))
	assert.False(t, array.BoolValueAt(out, 2))
	assert.False(t, array.BoolValueAt(out, 3))
}

func TestLikeUnderscoreMatchesSingleChar(t *testing.T) {
	ctx := array.DefaultContext()
	a := utf8Array(t, []string{"cat", "car", "cart"}, []bool{true, true, true})
	out, err := Like(ctx, a, "ca_", LikeOptions{})
	require.NoError(t, err)
	assert.True(t, array.BoolValueAt(out, 0))
	assert.True(t, array.BoolValueAt(out, 1))
	assert.False(t, array.BoolValueAt(out, 2))
}

func TestLikeCaseInsensitiveAndNegated(t *testing.T) {
	ctx := array.DefaultContext()
	a := utf8Array(t, []string{"HELLO", "world"}, []bool{true, true})
	out, err := Like(ctx, a, "hello", LikeOptions{CaseInsensitive: true, Negated: true})
	require.NoError(t, err)
	assert.False(t, array.BoolValueAt(out, 0))
	assert.True(t, array.BoolValueAt(out, 1))
}

func TestLikeNullPropagates(t *testing.T) {
	ctx := array.DefaultContext()
	a := utf8Array(t, []string{"", "abc"}, []bool{false, true})
	out, err := Like(ctx, a, "a%", LikeOptions{})
	require.NoError(t, err)
	assert.False(t, out.IsValid(0))
	assert.True(t, out.IsValid(1))
}

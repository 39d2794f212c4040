package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
)

func drain(t *testing.T, st *Stream) []*array.Array {
	t.Helper()
	var out []*array.Array
	for {
		a, done, err := st.Next(context.Background())
		require.NoError(t, err)
		if done {
			return out
		}
		out = append(out, a)
	}
}

func TestStreamOrderedEmitsSplitsInOrder(t *testing.T) {
	root, src, _ := twoFieldStruct(t)
	ctx := array.DefaultContext()
	s, err := NewScanner(ctx, src, root, Options{})
	require.NoError(t, err)

	st := NewStream(context.Background(), s, StreamOptions{Concurrency: 4, Ordered: true})
	defer st.Close()

	arrays := drain(t, st)
	require.Len(t, arrays, 2)
	assert.Equal(t, 3, arrays[0].Len())
	assert.Equal(t, 2, arrays[1].Len())

	fieldA0 := array.FieldAt(arrays[0], 0)
	assert.Equal(t, int64(1), array.Int64ValueAt(fieldA0, 0))
	fieldA1 := array.FieldAt(arrays[1], 0)
	assert.Equal(t, int64(10), array.Int64ValueAt(fieldA1, 0))
}

func TestStreamUnorderedEmitsEverySplitExactlyOnce(t *testing.T) {
	root, src, _ := twoFieldStruct(t)
	ctx := array.DefaultContext()
	s, err := NewScanner(ctx, src, root, Options{})
	require.NoError(t, err)

	st := NewStream(context.Background(), s, StreamOptions{Concurrency: 4, Ordered: false})
	defer st.Close()

	arrays := drain(t, st)
	require.Len(t, arrays, 2)
	total := 0
	for _, a := range arrays {
		total += a.Len()
	}
	assert.Equal(t, 5, total)
}

func TestStreamCloseCancelsContext(t *testing.T) {
	root, src, _ := twoFieldStruct(t)
	ctx := array.DefaultContext()
	s, err := NewScanner(ctx, src, root, Options{})
	require.NoError(t, err)

	st := NewStream(context.Background(), s, StreamOptions{})
	st.Close()
	// Closing twice must not panic.
	st.Close()
}

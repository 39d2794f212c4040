package layout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
)

func TestFlatLayoutReadsFullRange(t *testing.T) {
	fl, src := writeFlatInt32(t, []int64{1, 2, 3, 4, 5})
	ctx := array.DefaultContext()

	reader, err := fl.Reader(src, ctx)
	require.NoError(t, err)

	a, err := reader.Read(context.Background(), 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, a.Len())
	for i, want := range []int64{1, 2, 3, 4, 5} {
		assert.Equal(t, want, array.Int64ValueAt(a, i))
	}
}

func TestFlatLayoutReadsPartialRange(t *testing.T) {
	fl, src := writeFlatInt32(t, []int64{10, 20, 30, 40, 50})
	ctx := array.DefaultContext()

	reader, err := fl.Reader(src, ctx)
	require.NoError(t, err)

	a, err := reader.Read(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, int64(20), array.Int64ValueAt(a, 0))
	assert.Equal(t, int64(30), array.Int64ValueAt(a, 1))
}

func TestFlatLayoutSplitsExposeOnlyFullRange(t *testing.T) {
	fl, _ := writeFlatInt32(t, []int64{1, 2, 3})
	out := NewSplitSet()
	fl.Splits(AllFields(), 7, out)
	assert.Equal(t, []int{7, 10}, out.Sorted())
}

func TestFlatLayoutRequiredSegmentsMatchSegmentIDs(t *testing.T) {
	fl, src := writeFlatInt32(t, []int64{1, 2, 3})
	ctx := array.DefaultContext()
	reader, err := fl.Reader(src, ctx)
	require.NoError(t, err)

	ids := reader.RequiredSegments(0, 3)
	assert.Equal(t, fl.SegmentIDs(), ids)
}

func TestFlatLayoutReadOutOfBoundsErrors(t *testing.T) {
	fl, src := writeFlatInt32(t, []int64{1, 2, 3})
	ctx := array.DefaultContext()
	reader, err := fl.Reader(src, ctx)
	require.NoError(t, err)

	_, err = reader.Read(context.Background(), 0, 10)
	assert.Error(t, err)
}

package scan

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/layout"
	"github.com/vortex-db/vortex/segment"
	"github.com/vortex-db/vortex/stats"
	"github.com/vortex-db/vortex/validity"
)

// buildChunkedInt32Column writes each chunk of values as its own segment
// in w and returns a ChunkedLayout over int32 FlatLayout children sharing
// w's segment map.
func buildChunkedInt32Column(t *testing.T, w *segment.Writer, chunks [][]int64) *layout.ChunkedLayout {
	t.Helper()
	i32 := dtype.Primitive(dtype.I32, false)
	children := make([]layout.Layout, len(chunks))
	for i, values := range chunks {
		id, err := w.WriteSegment([]*buffer.Buffer{array.EncodeInt64s(dtype.I32, values)}, 1)
		require.NoError(t, err)
		children[i] = layout.NewFlatLayout(i32, len(values), array.EncodingPrimitive, nil,
			[]layout.BufferRef{{Segment: id, Alignment: 1}}, nil,
			layout.ValidityDescriptor{Kind: validity.KindNonNullable})
	}
	cl, err := layout.NewChunkedLayout(i32, children)
	require.NoError(t, err)
	return cl
}

func buildStatsLayoutFor(t *testing.T, cl *layout.ChunkedLayout, chunks [][]int64) *layout.StatsLayout {
	t.Helper()
	ctx := array.DefaultContext()
	perChunk := make([]*stats.Set, len(chunks))
	for i, values := range chunks {
		data := array.EncodeInt64s(dtype.I32, values)
		a, err := array.NewPrimitive(dtype.I32, len(values), data, validity.NonNullable(len(values)))
		require.NoError(t, err)
		s, err := stats.Compute(ctx, a, nil)
		require.NoError(t, err)
		perChunk[i] = s
	}
	sl, err := layout.NewStatsLayout(cl, []stats.Kind{stats.Min, stats.Max}, perChunk)
	require.NoError(t, err)
	return sl
}

// twoFieldStruct builds a 5-row struct layout with two int32 columns, "a"
// and "b", each chunked the same way, sharing one in-memory segment
// source, plus a StatsLayout for "a" usable for pruning.
func twoFieldStruct(t *testing.T) (*layout.StructLayout, segment.Source, *layout.StatsLayout) {
	t.Helper()
	aChunks := [][]int64{{1, 2, 3}, {10, 20}}
	bChunks := [][]int64{{100, 200, 300}, {400, 500}}

	var sink bytes.Buffer
	w := segment.NewWriter(&sink, 0)

	aLayout := buildChunkedInt32Column(t, w, aChunks)
	bLayout := buildChunkedInt32Column(t, w, bChunks)
	aStats := buildStatsLayoutFor(t, aLayout, aChunks)

	i32 := dtype.Primitive(dtype.I32, false)
	st, err := dtype.Struct([]dtype.Field{{Name: "a", Type: i32}, {Name: "b", Type: i32}}, false)
	require.NoError(t, err)

	sl, err := layout.NewStructLayout(st, []layout.Layout{aLayout, bLayout}, nil)
	require.NoError(t, err)

	src := segment.NewInMemorySource(buffer.Wrap(sink.Bytes(), 1), w.SegmentMap())
	return sl, src, aStats
}

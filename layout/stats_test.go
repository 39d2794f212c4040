package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/stats"
	"github.com/vortex-db/vortex/validity"
)

func buildStatsLayout(t *testing.T) (*StatsLayout, [][]int64) {
	t.Helper()
	chunks := [][]int64{{1, 2, 3}, {10, 20}}
	flats, _ := writeFlatInt32Chunks(t, chunks)
	children := make([]Layout, len(flats))
	for i, f := range flats {
		children[i] = f
	}
	cl, err := NewChunkedLayout(flats[0].DType(), children)
	require.NoError(t, err)

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

	sl, err := NewStatsLayout(cl, []stats.Kind{stats.Min, stats.Max, stats.Sum}, perChunk)
	require.NoError(t, err)
	return sl, chunks
}

func TestStatsLayoutChunkStatsAndRowRange(t *testing.T) {
	sl, _ := buildStatsLayout(t)

	assert.Equal(t, 2, sl.NumChunks())
	start, end := sl.ChunkRowRange(1)
	assert.Equal(t, 3, start)
	assert.Equal(t, 5, end)

	s := sl.ChunkStats(0)
	mn, ok := s.Get(stats.Min)
	require.True(t, ok)
	assert.Equal(t, int64(1), mn.Scalar.AsInt64())

	mx, ok := s.Get(stats.Max)
	require.True(t, ok)
	assert.Equal(t, int64(3), mx.Scalar.AsInt64())
}

func TestStatsLayoutRowCountDelegatesToInner(t *testing.T) {
	sl, _ := buildStatsLayout(t)
	assert.Equal(t, 5, sl.RowCount())
}

func TestAggregateFileStatsMergesAcrossChunks(t *testing.T) {
	sl, _ := buildStatsLayout(t)
	agg := AggregateFileStats(map[string]*StatsLayout{"col": sl})

	merged := agg["col"]
	mx, ok := merged.Get(stats.Max)
	require.True(t, ok)
	assert.Equal(t, int64(20), mx.Scalar.AsInt64())

	mn, ok := merged.Get(stats.Min)
	require.True(t, ok)
	assert.Equal(t, int64(1), mn.Scalar.AsInt64())
}

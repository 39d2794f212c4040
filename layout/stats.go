package layout

import (
	"context"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/segment"
	"github.com/vortex-db/vortex/stats"
)

// StatsLayout wraps a ChunkedLayout and records one stats.Set per chunk
// (§4.5 Stats), consulted for pruning before any chunk's data segments are
// requested. The stats sets themselves live in memory here; their on-disk
// encoding as a sibling flatbuffer table (§6.1 "file statistics") is a
// vfile concern — this type is what a vfile reader populates at open time
// and what a vfile writer fills in as chunks are pushed.
type StatsLayout struct {
	inner      *ChunkedLayout
	kinds      []stats.Kind
	perChunk   []*stats.Set
}

// NewStatsLayout wraps inner with one stats.Set per chunk, recording the
// kinds present in every set.
func NewStatsLayout(inner *ChunkedLayout, kinds []stats.Kind, perChunk []*stats.Set) (*StatsLayout, error) {
	if len(perChunk) != len(inner.chunks) {
		return nil, verrors.InvalidArgument("layout.stats.new", "one stats set is required per chunk")
	}
	return &StatsLayout{inner: inner, kinds: kinds, perChunk: perChunk}, nil
}

func (l *StatsLayout) RowCount() int            { return l.inner.RowCount() }
func (l *StatsLayout) DType() dtype.DType       { return l.inner.DType() }
func (l *StatsLayout) SegmentIDs() []segment.ID { return nil }
func (l *StatsLayout) Children() []Layout       { return []Layout{l.inner} }

func (l *StatsLayout) Splits(mask FieldMask, offset int, out *SplitSet) {
	l.inner.Splits(mask, offset, out)
}

// NumChunks reports the wrapped chunked layout's chunk count.
func (l *StatsLayout) NumChunks() int { return len(l.inner.chunks) }

// Inner returns the wrapped chunked layout, for a vfile writer to encode
// alongside the per-chunk stats sets.
func (l *StatsLayout) Inner() *ChunkedLayout { return l.inner }

// ChunkStats returns the recorded stats.Set for chunk i.
func (l *StatsLayout) ChunkStats(i int) *stats.Set { return l.perChunk[i] }

// ChunkRowRange returns the [start, end) row range of chunk i, via the
// wrapped layout's derived offsets.
func (l *StatsLayout) ChunkRowRange(i int) (int, int) {
	return l.inner.offsets[i], l.inner.offsets[i+1]
}

// Kinds reports which statistic kinds every chunk's set records.
func (l *StatsLayout) Kinds() []stats.Kind { return l.kinds }

// ChunkForRow returns the index of the chunk covering row, for callers
// (the scan engine's pruning pass) that need a chunk's stats before
// deciding whether its data is worth reading at all.
func (l *StatsLayout) ChunkForRow(row int) (int, error) {
	idx, _, err := l.inner.FindChunk(row)
	return idx, err
}

func (l *StatsLayout) Reader(src segment.Source, ctx *array.Context) (Reader, error) {
	inner, err := l.inner.Reader(src, ctx)
	if err != nil {
		return nil, err
	}
	return &statsReader{layout: l, inner: inner, ctx: ctx}, nil
}

// statsReader delegates every read straight to the wrapped chunked
// reader: pruning decisions are made by the scan engine (which has the
// filter expression and pulls chunk stats via StatsLayout.ChunkStats)
// before a read is ever issued, so the reader itself needs no pruning
// logic of its own.
type statsReader struct {
	layout *StatsLayout
	inner  Reader
	ctx    *array.Context
}

func (r *statsReader) RequiredSegments(rowStart, rowEnd int) []segment.ID {
	return r.inner.RequiredSegments(rowStart, rowEnd)
}

func (r *statsReader) Read(ctx context.Context, rowStart, rowEnd int) (*array.Array, error) {
	return r.inner.Read(ctx, rowStart, rowEnd)
}

func (r *statsReader) Evaluate(ctx context.Context, rowStart, rowEnd int, e expr.Expr) (*array.Array, error) {
	return evaluate(ctx, r, r.ctx, rowStart, rowEnd, e)
}

// AggregateFileStats folds each named field's per-chunk stats into one
// file-level stats.Set per field (§4.5 "File-level stats"), the shape
// recorded in a file's footer. A field with no StatsLayout is omitted:
// the writer only produces file-level stats for fields it chose to
// wrap in a Stats strategy (§6.4).
func AggregateFileStats(fields map[string]*StatsLayout) map[string]*stats.Set {
	out := make(map[string]*stats.Set, len(fields))
	for name, sl := range fields {
		merged := stats.NewSet()
		for i := 0; i < sl.NumChunks(); i++ {
			stats.Merge(merged, sl.ChunkStats(i))
		}
		out[name] = merged
	}
	return out
}

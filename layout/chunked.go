package layout

import (
	"context"
	"sort"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/segment"
	"github.com/vortex-db/vortex/validity"
)

// ChunkedLayout is an ordered sequence of identically-dtyped child
// layouts (§4.5 Chunked). Row offsets are derived from the children's own
// row counts rather than persisted as a redundant sibling segment: the
// invariant offsets[0] = 0, offsets[n] = row_count holds by construction,
// and a vfile writer recomputes the identical offsets on open without
// needing a separate on-disk array for it.
type ChunkedLayout struct {
	dt       dtype.DType
	rowCount int
	chunks   []Layout
	offsets  []int
}

// NewChunkedLayout constructs a ChunkedLayout from an ordered, non-empty
// sequence of same-dtype child layouts.
func NewChunkedLayout(dt dtype.DType, chunks []Layout) (*ChunkedLayout, error) {
	if len(chunks) == 0 {
		return nil, verrors.InvalidArgument("layout.chunked.new", "chunked layout requires at least one chunk")
	}
	offsets := make([]int, len(chunks)+1)
	for i, c := range chunks {
		if !c.DType().Equal(dt) {
			return nil, verrors.MismatchedTypes("layout.chunked.new", dt.String(), c.DType().String())
		}
		offsets[i+1] = offsets[i] + c.RowCount()
	}
	return &ChunkedLayout{dt: dt, rowCount: offsets[len(offsets)-1], chunks: chunks, offsets: offsets}, nil
}

func (l *ChunkedLayout) RowCount() int          { return l.rowCount }
func (l *ChunkedLayout) DType() dtype.DType     { return l.dt }
func (l *ChunkedLayout) SegmentIDs() []segment.ID { return nil }

func (l *ChunkedLayout) Children() []Layout { return l.chunks }

// AsRowOffsets exposes the chunk row-offset array directly, letting
// external callers binary-search split points without walking the layout
// tree themselves.
func (l *ChunkedLayout) AsRowOffsets() []int {
	out := make([]int, len(l.offsets))
	copy(out, l.offsets)
	return out
}

// FindChunk binary-searches the offsets for the chunk containing row.
func (l *ChunkedLayout) FindChunk(row int) (chunkIdx, rowInChunk int, err error) {
	if row < 0 || row >= l.rowCount {
		return 0, 0, verrors.OutOfBounds("layout.chunked.find_chunk", row, 0, l.rowCount)
	}
	idx := sort.Search(len(l.offsets), func(i int) bool { return l.offsets[i] > row }) - 1
	return idx, row - l.offsets[idx], nil
}

func (l *ChunkedLayout) Splits(mask FieldMask, offset int, out *SplitSet) {
	for i, c := range l.chunks {
		out.Insert(offset + l.offsets[i])
		c.Splits(mask, offset+l.offsets[i], out)
	}
	out.Insert(offset + l.rowCount)
}

func (l *ChunkedLayout) Reader(src segment.Source, ctx *array.Context) (Reader, error) {
	children := make([]Reader, len(l.chunks))
	for i, c := range l.chunks {
		cr, err := c.Reader(src, ctx)
		if err != nil {
			return nil, err
		}
		children[i] = cr
	}
	return &chunkedReader{layout: l, children: children, ctx: ctx}, nil
}

type chunkedReader struct {
	layout   *ChunkedLayout
	children []Reader
	ctx      *array.Context
}

// overlapping returns the indices of chunks intersecting [rowStart, rowEnd)
// and, for each, the local row range within that chunk.
func (r *chunkedReader) overlapping(rowStart, rowEnd int) []struct {
	idx, start, end int
} {
	offsets := r.layout.offsets
	var out []struct{ idx, start, end int }
	for i := 0; i+1 < len(offsets); i++ {
		chunkStart, chunkEnd := offsets[i], offsets[i+1]
		if chunkEnd <= rowStart || chunkStart >= rowEnd {
			continue
		}
		lo := max(rowStart, chunkStart) - chunkStart
		hi := min(rowEnd, chunkEnd) - chunkStart
		out = append(out, struct{ idx, start, end int }{i, lo, hi})
	}
	return out
}

func (r *chunkedReader) RequiredSegments(rowStart, rowEnd int) []segment.ID {
	var ids []segment.ID
	for _, o := range r.overlapping(rowStart, rowEnd) {
		ids = append(ids, r.children[o.idx].RequiredSegments(o.start, o.end)...)
	}
	return ids
}

func (r *chunkedReader) Read(ctx context.Context, rowStart, rowEnd int) (*array.Array, error) {
	if rowStart < 0 || rowEnd < rowStart || rowEnd > r.layout.rowCount {
		return nil, verrors.OutOfBounds("layout.chunked.read", rowEnd, rowStart, r.layout.rowCount)
	}
	overlaps := r.overlapping(rowStart, rowEnd)
	parts := make([]*array.Array, len(overlaps))
	for i, o := range overlaps {
		a, err := r.children[o.idx].Read(ctx, o.start, o.end)
		if err != nil {
			return nil, err
		}
		parts[i] = a
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return array.NewChunked(r.layout.dt, parts, validity.AllValid(rowEnd-rowStart))
}

func (r *chunkedReader) Evaluate(ctx context.Context, rowStart, rowEnd int, e expr.Expr) (*array.Array, error) {
	return evaluate(ctx, r, r.ctx, rowStart, rowEnd, e)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

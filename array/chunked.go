package array

import (
	"sort"

	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/validity"
)

type chunkedEncoding struct{}

func (chunkedEncoding) ID() EncodingID { return EncodingChunked }
func (chunkedEncoding) Name() string   { return "chunked" }

func (e chunkedEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if len(children) == 0 {
		return nil, verrors.InvalidArgument("array.chunked.from_parts", "chunked array requires at least one chunk")
	}
	chunks := children
	total := 0
	for _, c := range chunks {
		total += c.Len()
	}
	if total != length {
		return nil, verrors.InvalidArgument("array.chunked.from_parts", "sum of chunk lengths does not match declared length")
	}
	return New(dt, length, EncodingChunked, nil, nil, chunks, valid), nil
}

func (e chunkedEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	canon := make([]*Array, len(a.children))
	for i, c := range a.children {
		cc, err := Canonicalize(ctx, c)
		if err != nil {
			return nil, err
		}
		canon[i] = cc
	}
	return New(a.dt, a.length, EncodingChunked, nil, nil, canon, a.valid), nil
}

// NewChunked constructs a Chunked array from an ordered sequence of
// identically-dtyped chunks, zero or more of which may be empty (§8
// scenario 4).
func NewChunked(dt dtype.DType, chunks []*Array, valid validity.Validity) (*Array, error) {
	if len(chunks) == 0 {
		return nil, verrors.InvalidArgument("array.chunked.new", "chunked array requires at least one chunk")
	}
	total := 0
	for _, c := range chunks {
		if !c.DType().Equal(dt) {
			return nil, verrors.MismatchedTypes("array.chunked.new", dt.String(), c.DType().String())
		}
		total += c.Len()
	}
	return New(dt, total, EncodingChunked, nil, nil, chunks, valid), nil
}

// Chunks returns the chunked array's child chunks.
func Chunks(a *Array) []*Array { return a.children }

// ChunkOffsets returns the cumulative row offsets: length len(chunks)+1,
// offsets[0] == 0, offsets[n] == total row count.
func ChunkOffsets(a *Array) []int {
	offsets := make([]int, len(a.children)+1)
	for i, c := range a.children {
		offsets[i+1] = offsets[i] + c.Len()
	}
	return offsets
}

// FindChunk binary-searches a chunked array's offsets for the chunk
// containing logical row, returning (chunkIndex, rowWithinChunk). Empty
// chunks are skipped naturally: row never falls within a zero-width range.
func FindChunk(a *Array, row int) (int, int, error) {
	if row < 0 || row >= a.length {
		return 0, 0, verrors.OutOfBounds("array.chunked.find_chunk", row, 0, a.length)
	}
	offsets := ChunkOffsets(a)
	// offsets[i] <= row < offsets[i+1]; search for rightmost offset <= row.
	idx := sort.Search(len(offsets), func(i int) bool { return offsets[i] > row }) - 1
	return idx, row - offsets[idx], nil
}

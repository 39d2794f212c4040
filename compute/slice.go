package compute

import (
	"github.com/vortex-db/vortex/array"
	verrors "github.com/vortex-db/vortex/internal/errors"
)

// Slice returns the logical sub-range [start, stop) of a (§4.3 slice).
// Constant and Chunked answer without materializing their children; every
// other encoding falls back to a gather over the range, since only the
// canonical encodings expose buffer-level slicing cheaply and this
// implementation does not special-case each compressed encoding's buffer
// layout individually (documented simplification, see DESIGN.md).
func Slice(ctx *array.Context, a *array.Array, start, stop int) (*array.Array, error) {
	if start < 0 || stop < start || stop > a.Len() {
		return nil, verrors.OutOfBounds("compute.slice", stop, start, a.Len())
	}
	switch a.Encoding() {
	case array.EncodingConstant:
		v := array.ConstantValue(a)
		return array.NewConstant(v, stop-start), nil
	case array.EncodingChunked:
		return sliceChunked(ctx, a, start, stop)
	}
	indices := make([]int, stop-start)
	for i := range indices {
		indices[i] = start + i
	}
	return array.CanonicalTake(ctx, a, indices)
}

func sliceChunked(ctx *array.Context, a *array.Array, start, stop int) (*array.Array, error) {
	if start == stop {
		return Slice(ctx, array.Chunks(a)[0], 0, 0)
	}
	startChunk, startRow, err := array.FindChunk(a, start)
	if err != nil {
		return nil, err
	}
	endChunk, endRow, err := array.FindChunk(a, stop-1)
	if err != nil {
		return nil, err
	}
	chunks := array.Chunks(a)
	out := make([]*array.Array, 0, endChunk-startChunk+1)
	for ci := startChunk; ci <= endChunk; ci++ {
		lo, hi := 0, chunks[ci].Len()
		if ci == startChunk {
			lo = startRow
		}
		if ci == endChunk {
			hi = endRow + 1
		}
		s, err := Slice(ctx, chunks[ci], lo, hi)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	valid, err := a.Validity().Slice(start, stop)
	if err != nil {
		return nil, err
	}
	return array.NewChunked(a.DType(), out, valid)
}

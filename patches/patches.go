// Package patches implements Vortex's sparse-override side channel (§4.4):
// a base array's exceptions, recorded as (sorted indices, values) pairs
// rather than inline, used by lossy/approximate encodings (ALP, BitPacked,
// lossy Dict) to carry the handful of values their physical representation
// cannot encode directly.
package patches

import (
	"sort"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/scalar"
)

// Patches is (length, offset, indices, values): indices is a sorted
// Primitive array with values in [0, length), and values carries one
// override per index, in the parent array's dtype. offset records where
// the patched range starts within the original base array: Slice rebases
// indices to its new start and adds that start to offset.
type Patches struct {
	length  int
	offset  int
	indices *array.Array
	values  *array.Array
}

// New constructs a Patches structure. indices must be a strictly increasing
// unsigned Primitive array with every value in [0, length); values must
// have the same length as indices.
func New(ctx *array.Context, length, offset int, indices, values *array.Array) (*Patches, error) {
	if indices.Len() != values.Len() {
		return nil, verrors.InvalidArgument("patches.new", "indices and values must have equal length")
	}
	prev := -1
	for i := 0; i < indices.Len(); i++ {
		v := int(array.Uint64ValueAt(indices, i))
		if v <= prev {
			return nil, verrors.InvalidArgument("patches.new", "indices must be strictly increasing")
		}
		if v < 0 || v >= length {
			return nil, verrors.OutOfBounds("patches.new", v, 0, length)
		}
		prev = v
	}
	return &Patches{length: length, offset: offset, indices: indices, values: values}, nil
}

// Length returns the logical length of the base array the patches apply to.
func (p *Patches) Length() int { return p.length }

// Offset returns the patches' row offset relative to the base array.
func (p *Patches) Offset() int { return p.offset }

// Indices returns the sorted index array.
func (p *Patches) Indices() *array.Array { return p.indices }

// Values returns the override values, one per index.
func (p *Patches) Values() *array.Array { return p.values }

// positionOf binary-searches for i within the sorted indices array,
// returning its position and whether it was found.
func (p *Patches) positionOf(i int) (int, bool) {
	n := p.indices.Len()
	pos := sort.Search(n, func(j int) bool { return int(array.Uint64ValueAt(p.indices, j)) >= i })
	if pos < n && int(array.Uint64ValueAt(p.indices, pos)) == i {
		return pos, true
	}
	return pos, false
}

// GetPatched returns the override at logical index i, if one exists.
func (p *Patches) GetPatched(ctx *array.Context, i int) (scalar.Scalar, bool, error) {
	pos, ok := p.positionOf(i)
	if !ok {
		return scalar.Scalar{}, false, nil
	}
	v, err := arrayScalarAt(ctx, p.values, pos)
	if err != nil {
		return scalar.Scalar{}, false, err
	}
	return v, true, nil
}

// Slice restricts the patches to the base array's [start, stop) range,
// rebasing indices to be relative to the new start.
func (p *Patches) Slice(ctx *array.Context, start, stop int) (*Patches, error) {
	if start < 0 || stop < start || stop > p.length {
		return nil, verrors.OutOfBounds("patches.slice", stop, start, p.length)
	}
	lo, _ := p.positionOf(start)
	hi, _ := p.positionOf(stop)
	within := make([]int, hi-lo)
	for j := range within {
		within[j] = lo + j
	}
	indices, err := array.CanonicalTake(ctx, p.indices, within)
	if err != nil {
		return nil, err
	}
	rebased, err := rebase(indices, -start)
	if err != nil {
		return nil, err
	}
	values, err := array.CanonicalTake(ctx, p.values, within)
	if err != nil {
		return nil, err
	}
	return &Patches{length: stop - start, offset: p.offset + start, indices: rebased, values: values}, nil
}

// Take gathers the patches applying to the given logical indices (used
// when the base array itself is taken), re-keying surviving overrides to
// their new position.
func (p *Patches) Take(ctx *array.Context, takeIndices []int) (*Patches, error) {
	var newIdx []int
	var positions []int
	for outPos, baseIdx := range takeIndices {
		if pos, ok := p.positionOf(baseIdx); ok {
			newIdx = append(newIdx, outPos)
			positions = append(positions, pos)
		}
	}
	return p.buildFromPositions(ctx, newIdx, positions, len(takeIndices))
}

// Filter keeps only the overrides surviving a boolean mask, re-keying them
// to their post-filter position.
func (p *Patches) Filter(ctx *array.Context, mask []bool) (*Patches, error) {
	if len(mask) != p.length {
		return nil, verrors.InvalidArgument("patches.filter", "mask length must equal patches length")
	}
	var newIdx []int
	var positions []int
	out := 0
	for i, keep := range mask {
		if pos, ok := p.positionOf(i); ok && keep {
			newIdx = append(newIdx, out)
			positions = append(positions, pos)
		}
		if keep {
			out++
		}
	}
	return p.buildFromPositions(ctx, newIdx, positions, out)
}

func (p *Patches) buildFromPositions(ctx *array.Context, newIdx, positions []int, newLength int) (*Patches, error) {
	if len(positions) == 0 {
		return &Patches{length: newLength, offset: p.offset}, nil
	}
	indices, err := array.CanonicalTake(ctx, p.indices, positions)
	if err != nil {
		return nil, err
	}
	rebuilt := array.EncodeUint64s(indices.DType().PType(), intsToUint64(newIdx))
	reindexed, err := array.NewPrimitive(indices.DType().PType(), len(newIdx), rebuilt, indices.Validity())
	if err != nil {
		return nil, err
	}
	values, err := array.CanonicalTake(ctx, p.values, positions)
	if err != nil {
		return nil, err
	}
	return &Patches{length: newLength, offset: p.offset, indices: reindexed, values: values}, nil
}

func rebase(indices *array.Array, delta int) (*array.Array, error) {
	vals := make([]uint64, indices.Len())
	for i := range vals {
		vals[i] = uint64(int(array.Uint64ValueAt(indices, i)) + delta)
	}
	buf := array.EncodeUint64s(indices.DType().PType(), vals)
	return array.NewPrimitive(indices.DType().PType(), indices.Len(), buf, indices.Validity())
}

func intsToUint64(xs []int) []uint64 {
	out := make([]uint64, len(xs))
	for i, x := range xs {
		out[i] = uint64(x)
	}
	return out
}

// arrayScalarAt reads a scalar out of an already-canonical array without
// importing the compute package (which itself may want to import patches
// in the future for compressed-encoding kernels); it handles only the
// cases patches values realistically take: primitive, and utf8/binary,
// both of which come back as Binary scalars.
func arrayScalarAt(ctx *array.Context, a *array.Array, i int) (scalar.Scalar, error) {
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return scalar.Scalar{}, err
	}
	if !canon.IsValid(i) {
		return scalar.Null(canon.DType()), nil
	}
	dt := canon.DType()
	switch dt.Kind() {
	case dtype.KindPrimitive:
		pt := dt.PType()
		switch {
		case pt.IsFloat():
			return scalar.NewPrimitive(pt, array.Float64ValueAt(canon, i), dt.Nullable())
		case pt.IsSigned():
			return scalar.NewPrimitive(pt, array.Int64ValueAt(canon, i), dt.Nullable())
		default:
			return scalar.NewPrimitive(pt, array.Uint64ValueAt(canon, i), dt.Nullable())
		}
	default:
		return scalar.NewBinary(array.BytesAt(canon, i), dt.Nullable()), nil
	}
}

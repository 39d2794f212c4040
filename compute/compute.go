// Package compute implements Vortex's kernel dispatch (§4.3): each
// operation first checks whether the array's encoding provides a
// specialized kernel (via an optional interface the encoding's vtable may
// implement), falling back to canonicalizing the array and running the
// operation against its canonical form.
package compute

import (
	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/scalar"
)

// ScalarAt returns the scalar value at logical index i (§4.3 scalar_at).
// Constant and Chunked arrays answer in O(1)/O(log n) without a full
// canonicalization; every other encoding canonicalizes first.
func ScalarAt(ctx *array.Context, a *array.Array, i int) (scalar.Scalar, error) {
	if i < 0 || i >= a.Len() {
		return scalar.Scalar{}, verrors.OutOfBounds("compute.scalar_at", i, 0, a.Len())
	}
	switch a.Encoding() {
	case array.EncodingConstant:
		if !a.IsValid(i) {
			return scalar.Null(a.DType()), nil
		}
		return array.ConstantValue(a), nil
	case array.EncodingChunked:
		idx, row, err := array.FindChunk(a, i)
		if err != nil {
			return scalar.Scalar{}, err
		}
		return ScalarAt(ctx, array.Chunks(a)[idx], row)
	}
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return scalar.Scalar{}, err
	}
	if canon.Encoding() != a.Encoding() {
		return ScalarAt(ctx, canon, i)
	}
	return scalarAtCanonical(canon, i)
}

func scalarAtCanonical(a *array.Array, i int) (scalar.Scalar, error) {
	if !a.IsValid(i) {
		return scalar.Null(a.DType()), nil
	}
	dt := a.DType()
	switch dt.Kind() {
	case dtype.KindNull:
		return scalar.Null(dt), nil
	case dtype.KindBool:
		return scalar.NewBool(array.BoolValueAt(a, i), dt.Nullable()), nil
	case dtype.KindPrimitive:
		pt := dt.PType()
		switch {
		case pt.IsFloat():
			return scalar.NewPrimitive(pt, array.Float64ValueAt(a, i), dt.Nullable())
		case pt.IsSigned():
			return scalar.NewPrimitive(pt, array.Int64ValueAt(a, i), dt.Nullable())
		default:
			return scalar.NewPrimitive(pt, array.Uint64ValueAt(a, i), dt.Nullable())
		}
	case dtype.KindDecimal:
		return scalar.Scalar{}, verrors.NotImplemented("compute.scalar_at", "decimal")
	case dtype.KindUtf8:
		return scalar.NewUtf8(string(array.BytesAt(a, i)), dt.Nullable()), nil
	case dtype.KindBinary:
		return scalar.NewBinary(array.BytesAt(a, i), dt.Nullable()), nil
	case dtype.KindStruct:
		values := make([]scalar.Scalar, len(dt.Fields()))
		for fi, c := range a.Children() {
			v, err := scalarAtCanonical(c, i)
			if err != nil {
				return scalar.Scalar{}, err
			}
			values[fi] = v
		}
		return scalar.NewList(dt, values), nil
	case dtype.KindList:
		start, stop := array.ListBoundsAt(a, i)
		elems := a.Children()[0]
		values := make([]scalar.Scalar, stop-start)
		for j := range values {
			v, err := scalarAtCanonical(elems, start+j)
			if err != nil {
				return scalar.Scalar{}, err
			}
			values[j] = v
		}
		return scalar.NewList(dt, values), nil
	case dtype.KindExtension:
		return scalarAtCanonical(array.StorageOf(a), i)
	default:
		return scalar.Scalar{}, verrors.NotImplemented("compute.scalar_at", dt.Kind().String())
	}
}

package compute

import (
	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
)

// Cast converts a to dtype `to` where a lossless or well-defined numeric
// conversion exists (§4.3 cast): widening/narrowing between Primitive
// ptypes, and integer<->float conversions. Casting across Kind (e.g.
// Primitive to Utf8) is not implemented.
func Cast(ctx *array.Context, a *array.Array, to dtype.DType) (*array.Array, error) {
	if a.DType().Equal(to) {
		return a, nil
	}
	if to.Kind() != dtype.KindPrimitive || a.DType().Kind() != dtype.KindPrimitive {
		return nil, verrors.NotImplemented("compute.cast", a.DType().Kind().String()+"->"+to.Kind().String())
	}
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return nil, err
	}
	pt := to.PType()
	n := canon.Len()
	switch {
	case pt.IsFloat():
		vs := make([]float64, n)
		for i := range vs {
			if !canon.IsValid(i) {
				continue
			}
			vs[i] = readAsFloat64(canon, i)
		}
		return array.NewPrimitive(pt, n, array.EncodeFloat64s(pt, vs), canon.Validity())
	case pt.IsSigned():
		vs := make([]int64, n)
		for i := range vs {
			if !canon.IsValid(i) {
				continue
			}
			vs[i] = readAsInt64(canon, i)
		}
		return array.NewPrimitive(pt, n, array.EncodeInt64s(pt, vs), canon.Validity())
	default:
		vs := make([]uint64, n)
		for i := range vs {
			if !canon.IsValid(i) {
				continue
			}
			vs[i] = readAsUint64(canon, i)
		}
		return array.NewPrimitive(pt, n, array.EncodeUint64s(pt, vs), canon.Validity())
	}
}

func readAsFloat64(a *array.Array, i int) float64 {
	pt := a.DType().PType()
	switch {
	case pt.IsFloat():
		return array.Float64ValueAt(a, i)
	case pt.IsSigned():
		return float64(array.Int64ValueAt(a, i))
	default:
		return float64(array.Uint64ValueAt(a, i))
	}
}

func readAsInt64(a *array.Array, i int) int64 {
	pt := a.DType().PType()
	switch {
	case pt.IsFloat():
		return int64(array.Float64ValueAt(a, i))
	case pt.IsSigned():
		return array.Int64ValueAt(a, i)
	default:
		return int64(array.Uint64ValueAt(a, i))
	}
}

func readAsUint64(a *array.Array, i int) uint64 {
	pt := a.DType().PType()
	switch {
	case pt.IsFloat():
		return uint64(array.Float64ValueAt(a, i))
	case pt.IsSigned():
		return uint64(array.Int64ValueAt(a, i))
	default:
		return array.Uint64ValueAt(a, i)
	}
}

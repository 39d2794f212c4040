package compute

import (
	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/scalar"
)

// applyScalarOverrides rebuilds a canonical array, substituting the scalar
// values named in replacement at their indices and keeping every other
// element's value as a (the array's own validity is left untouched by the
// caller, which has already set it to reflect the override). Shared by
// FillNull and FillForward.
func applyScalarOverrides(a *array.Array, replacement map[int]scalar.Scalar) (*array.Array, error) {
	dt := a.DType()
	n := a.Len()
	valueAt := func(i int) (scalar.Scalar, error) {
		if v, ok := replacement[i]; ok {
			return v, nil
		}
		if !a.IsValid(i) {
			return scalar.Null(dt), nil
		}
		return scalarAtCanonical(a, i)
	}
	switch dt.Kind() {
	case dtype.KindBool:
		bits := make([]bool, n)
		for i := range bits {
			v, err := valueAt(i)
			if err != nil {
				return nil, err
			}
			if v.IsValid() {
				bits[i] = v.AsBool()
			}
		}
		return array.NewBool(n, array.PackBools(bits), a.Validity())
	case dtype.KindPrimitive:
		pt := dt.PType()
		switch {
		case pt.IsFloat():
			vs := make([]float64, n)
			for i := range vs {
				v, err := valueAt(i)
				if err != nil {
					return nil, err
				}
				if v.IsValid() {
					vs[i] = v.AsFloat64()
				}
			}
			return array.NewPrimitive(pt, n, array.EncodeFloat64s(pt, vs), a.Validity())
		case pt.IsSigned():
			vs := make([]int64, n)
			for i := range vs {
				v, err := valueAt(i)
				if err != nil {
					return nil, err
				}
				if v.IsValid() {
					vs[i] = v.AsInt64()
				}
			}
			return array.NewPrimitive(pt, n, array.EncodeInt64s(pt, vs), a.Validity())
		default:
			vs := make([]uint64, n)
			for i := range vs {
				v, err := valueAt(i)
				if err != nil {
					return nil, err
				}
				if v.IsValid() {
					vs[i] = v.AsUint64()
				}
			}
			return array.NewPrimitive(pt, n, array.EncodeUint64s(pt, vs), a.Validity())
		}
	case dtype.KindUtf8, dtype.KindBinary:
		offsets := make([]uint32, n+1)
		var data []byte
		for i := 0; i < n; i++ {
			v, err := valueAt(i)
			if err != nil {
				return nil, err
			}
			if v.IsValid() {
				if dt.Kind() == dtype.KindUtf8 {
					data = append(data, []byte(v.AsString())...)
				} else {
					data = append(data, v.AsBytes()...)
				}
			}
			offsets[i+1] = uint32(len(data))
		}
		return array.NewVarBin(dt.Kind() == dtype.KindUtf8, offsets, data, a.Validity())
	default:
		return nil, verrors.NotImplemented("compute.fill", dt.Kind().String())
	}
}

package compute

import (
	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/validity"
)

// FillNull replaces every null element of a with value, producing a
// non-nullable array (§4.3 fill_null).
func FillNull(ctx *array.Context, a *array.Array, value scalar.Scalar) (*array.Array, error) {
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return nil, err
	}
	if canon.NullCount() == 0 {
		return asNonNullable(canon), nil
	}
	return overwriteNulls(ctx, canon, value)
}

// FillForward replaces each null element with the most recent preceding
// valid value (last-observation-carried-forward); leading nulls remain
// null (§4.3 fill_forward).
func FillForward(ctx *array.Context, a *array.Array) (*array.Array, error) {
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return nil, err
	}
	var last *scalar.Scalar
	replacement := make(map[int]scalar.Scalar)
	for i := 0; i < canon.Len(); i++ {
		if canon.IsValid(i) {
			v, err := scalarAtCanonical(canon, i)
			if err != nil {
				return nil, err
			}
			last = &v
			continue
		}
		if last != nil {
			replacement[i] = *last
		}
	}
	if len(replacement) == 0 {
		return canon, nil
	}
	return overwriteAt(ctx, canon, replacement)
}

func overwriteNulls(ctx *array.Context, a *array.Array, value scalar.Scalar) (*array.Array, error) {
	replacement := make(map[int]scalar.Scalar)
	for i := 0; i < a.Len(); i++ {
		if !a.IsValid(i) {
			replacement[i] = value
		}
	}
	return applyScalarOverrides(asNonNullable(a), replacement)
}

// asNonNullable re-tags a with a non-nullable dtype and validity, keeping
// its encoding, buffers and children.
func asNonNullable(a *array.Array) *array.Array {
	return array.New(a.DType().AsNonNullable(), a.Len(), a.Encoding(), a.Metadata(), a.Buffers(), a.Children(), validity.NonNullable(a.Len()))
}

// overwriteAt rebuilds a canonical array with the given index->value
// overrides applied, all other positions left unchanged. Used by both
// fill kernels, which share the same "rebuild element-wise" shape.
func overwriteAt(ctx *array.Context, a *array.Array, replacement map[int]scalar.Scalar) (*array.Array, error) {
	n := a.Len()
	validBits := make([]bool, n)
	for i := 0; i < n; i++ {
		if _, ok := replacement[i]; ok {
			validBits[i] = true
			continue
		}
		validBits[i] = a.IsValid(i)
	}
	out := array.New(a.DType(), n, a.Encoding(), a.Metadata(), a.Buffers(), a.Children(), validity.FromBits(validBits))
	return applyScalarOverrides(out, replacement)
}

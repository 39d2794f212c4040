package compute

import (
	"github.com/vortex-db/vortex/array"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/validity"
)

// Invert negates a Bool array element-wise, preserving nulls (§4.3 invert).
func Invert(ctx *array.Context, a *array.Array) (*array.Array, error) {
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return nil, err
	}
	if canon.Encoding() != array.EncodingBool {
		return nil, verrors.MismatchedTypes("compute.invert", "bool", canon.DType().String())
	}
	bits := make([]bool, canon.Len())
	for i := range bits {
		bits[i] = !array.BoolValueAt(canon, i)
	}
	return array.NewBool(canon.Len(), array.PackBools(bits), canon.Validity())
}

// Mask narrows a's validity by ANDing it with an external boolean mask,
// never dropping rows — only converting some previously-valid rows to
// null (§4.3 mask).
func Mask(a *array.Array, mask []bool) (*array.Array, error) {
	newValid, err := a.Validity().And(mask)
	if err != nil {
		return nil, err
	}
	return array.New(a.DType(), a.Len(), a.Encoding(), a.Metadata(), a.Buffers(), a.Children(), newValid), nil
}

// Between evaluates lower <op_lo> a[i] <op_hi> upper for every i (§4.3
// between), with inclusive/exclusive bounds chosen independently per side.
func Between(ctx *array.Context, a *array.Array, lower, upper scalar.Scalar, lowerInclusive, upperInclusive bool) (*array.Array, error) {
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return nil, err
	}
	bits := make([]bool, canon.Len())
	valid := make([]bool, canon.Len())
	for i := 0; i < canon.Len(); i++ {
		if !canon.IsValid(i) {
			continue
		}
		v, err := scalarAtCanonical(canon, i)
		if err != nil {
			return nil, err
		}
		lc, err := scalar.Compare(lower, v)
		if err != nil {
			return nil, err
		}
		uc, err := scalar.Compare(v, upper)
		if err != nil {
			return nil, err
		}
		loOK := lc < 0 || (lowerInclusive && lc == 0)
		hiOK := uc < 0 || (upperInclusive && uc == 0)
		valid[i] = true
		bits[i] = loOK && hiOK
	}
	return array.NewBool(canon.Len(), array.PackBools(bits), validity.FromBits(valid))
}

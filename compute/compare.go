package compute

import (
	"github.com/vortex-db/vortex/array"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/validity"
)

// CompareOp names a comparison operator (§4.3 compare).
type CompareOp uint8

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Compare evaluates a[i] <op> rhs for every i, producing a nullable Bool
// array. A null element (on either side) produces a null result (Kleene
// semantics): RunEnd arrays answer over their run values directly rather
// than expanding first (§8 scenario 6 is exercised at the array layer by
// array.Canonicalize; this kernel still benefits by comparing once per run).
func Compare(ctx *array.Context, a *array.Array, rhs scalar.Scalar, op CompareOp) (*array.Array, error) {
	if a.Encoding() == array.EncodingRunEnd {
		return compareRunEnd(ctx, a, rhs, op)
	}
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return nil, err
	}
	bits := make([]bool, canon.Len())
	valid := make([]bool, canon.Len())
	for i := 0; i < canon.Len(); i++ {
		if !canon.IsValid(i) || rhs.IsNull() {
			valid[i] = false
			continue
		}
		valid[i] = true
		lhs, err := scalarAtCanonical(canon, i)
		if err != nil {
			return nil, err
		}
		ok, err := evalOp(lhs, rhs, op)
		if err != nil {
			return nil, err
		}
		bits[i] = ok
	}
	return array.NewBool(canon.Len(), array.PackBools(bits), validity.FromBits(valid))
}

func compareRunEnd(ctx *array.Context, a *array.Array, rhs scalar.Scalar, op CompareOp) (*array.Array, error) {
	values := array.RunValues(a)
	canonValues, err := array.Canonicalize(ctx, values)
	if err != nil {
		return nil, err
	}
	runResults := make([]bool, canonValues.Len())
	runValid := make([]bool, canonValues.Len())
	for i := 0; i < canonValues.Len(); i++ {
		if !canonValues.IsValid(i) || rhs.IsNull() {
			continue
		}
		lhs, err := scalarAtCanonical(canonValues, i)
		if err != nil {
			return nil, err
		}
		ok, err := evalOp(lhs, rhs, op)
		if err != nil {
			return nil, err
		}
		runResults[i] = ok
		runValid[i] = true
	}
	ends := array.RunEnds(a)
	bits := make([]bool, a.Len())
	valid := make([]bool, a.Len())
	run := 0
	for i := 0; i < a.Len(); i++ {
		for int(array.Uint64ValueAt(ends, run)) <= i {
			run++
		}
		bits[i] = runResults[run]
		valid[i] = runValid[run] && a.IsValid(i)
	}
	return array.NewBool(a.Len(), array.PackBools(bits), validity.FromBits(valid))
}

func evalOp(lhs, rhs scalar.Scalar, op CompareOp) (bool, error) {
	c, err := scalar.Compare(lhs, rhs)
	if err != nil {
		return false, err
	}
	switch op {
	case Eq:
		return c == 0, nil
	case Ne:
		return c != 0, nil
	case Lt:
		return c < 0, nil
	case Le:
		return c <= 0, nil
	case Gt:
		return c > 0, nil
	case Ge:
		return c >= 0, nil
	default:
		return false, verrors.InvalidArgument("compute.compare", "unknown comparison operator")
	}
}

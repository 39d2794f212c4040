package compute

import (
	"sort"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/scalar"
)

// MinMax returns the minimum and maximum valid values of a (§4.3
// min_max). An all-null or zero-length array returns (Null, Null).
// Constant arrays answer in O(1).
func MinMax(ctx *array.Context, a *array.Array) (scalar.Scalar, scalar.Scalar, error) {
	if a.Encoding() == array.EncodingConstant {
		v := array.ConstantValue(a)
		return v, v, nil
	}
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return scalar.Scalar{}, scalar.Scalar{}, err
	}
	var min, max scalar.Scalar
	have := false
	for i := 0; i < canon.Len(); i++ {
		if !canon.IsValid(i) {
			continue
		}
		v, err := scalarAtCanonical(canon, i)
		if err != nil {
			return scalar.Scalar{}, scalar.Scalar{}, err
		}
		if !have {
			min, max = v, v
			have = true
			continue
		}
		if c, err := scalar.Compare(v, min); err == nil && c < 0 {
			min = v
		}
		if c, err := scalar.Compare(v, max); err == nil && c > 0 {
			max = v
		}
	}
	if !have {
		return scalar.Null(a.DType()), scalar.Null(a.DType()), nil
	}
	return min, max, nil
}

// Sum accumulates every valid element of a Primitive array (§4.3 sum).
// Integers accumulate in int64/uint64; floats in float64. Overflow of a
// signed/unsigned integer accumulator is reported as an Overflow error
// rather than silently wrapping.
func Sum(ctx *array.Context, a *array.Array) (scalar.Scalar, error) {
	if a.DType().Kind() != dtype.KindPrimitive {
		return scalar.Scalar{}, verrors.NotImplemented("compute.sum", a.DType().Kind().String())
	}
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return scalar.Scalar{}, err
	}
	pt := canon.DType().PType()
	switch {
	case pt.IsFloat():
		var total float64
		for i := 0; i < canon.Len(); i++ {
			if canon.IsValid(i) {
				total += array.Float64ValueAt(canon, i)
			}
		}
		return scalar.NewPrimitive(dtype.F64, total, false)
	case pt.IsSigned():
		var total int64
		for i := 0; i < canon.Len(); i++ {
			if !canon.IsValid(i) {
				continue
			}
			v := array.Int64ValueAt(canon, i)
			next := total + v
			if (v > 0 && next < total) || (v < 0 && next > total) {
				return scalar.Scalar{}, verrors.Overflow("compute.sum")
			}
			total = next
		}
		return scalar.NewPrimitive(dtype.I64, total, false)
	default:
		var total uint64
		for i := 0; i < canon.Len(); i++ {
			if !canon.IsValid(i) {
				continue
			}
			v := array.Uint64ValueAt(canon, i)
			next := total + v
			if next < total {
				return scalar.Scalar{}, verrors.Overflow("compute.sum")
			}
			total = next
		}
		return scalar.NewPrimitive(dtype.U64, total, false)
	}
}

// IsConstant reports whether every valid element of a compares equal, and
// whether a carries any nulls alongside valid elements (which disqualifies
// it, since Constant's own contract requires uniform validity too).
// Constant-encoded arrays answer in O(1); Null arrays are trivially
// constant.
func IsConstant(ctx *array.Context, a *array.Array) (bool, error) {
	switch a.Encoding() {
	case array.EncodingConstant, array.EncodingNull:
		return true, nil
	}
	if a.Len() <= 1 {
		return true, nil
	}
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return false, err
	}
	firstValid := canon.IsValid(0)
	var first scalar.Scalar
	if firstValid {
		first, err = scalarAtCanonical(canon, 0)
		if err != nil {
			return false, err
		}
	}
	for i := 1; i < canon.Len(); i++ {
		if canon.IsValid(i) != firstValid {
			return false, nil
		}
		if !firstValid {
			continue
		}
		v, err := scalarAtCanonical(canon, i)
		if err != nil {
			return false, err
		}
		c, err := scalar.Compare(v, first)
		if err != nil {
			return false, err
		}
		if c != 0 {
			return false, nil
		}
	}
	return true, nil
}

// IsSorted reports whether a's valid elements are non-decreasing, nulls
// sorting before any valid value, consistent with scalar.Compare (§4.3
// is_sorted).
func IsSorted(ctx *array.Context, a *array.Array) (bool, error) { return checkSorted(ctx, a, false) }

// IsStrictSorted reports whether a's valid elements are strictly
// increasing, with at most a single run of leading nulls (§4.3
// is_strict_sorted).
func IsStrictSorted(ctx *array.Context, a *array.Array) (bool, error) { return checkSorted(ctx, a, true) }

func checkSorted(ctx *array.Context, a *array.Array, strict bool) (bool, error) {
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return false, err
	}
	var prev *scalar.Scalar
	for i := 0; i < canon.Len(); i++ {
		v, err := scalarAtCanonical(canon, i)
		if err != nil {
			return false, err
		}
		if prev != nil {
			c, err := scalar.Compare(*prev, v)
			if err != nil {
				return false, err
			}
			if strict && c >= 0 && !(prev.IsNull() && v.IsNull()) {
				return false, nil
			}
			if !strict && c > 0 {
				return false, nil
			}
		}
		prev = &v
	}
	return true, nil
}

// Side selects which end of a run of equal elements SearchSorted returns
// (§4.3 search_sorted).
type Side uint8

const (
	Left Side = iota
	Right
)

// SearchResult is SearchSorted's Found(i)/NotFound(i) outcome: Found means
// value occurs at Index (the first such position for Left, one past the
// last for Right); NotFound means Index is where value would need to be
// inserted to keep a sorted.
type SearchResult struct {
	Found bool
	Index int
}

// SearchSorted locates value within a's sorted valid elements (§4.3
// search_sorted), honoring side: Left returns the first position an equal
// element is found, Right the position just past the last. Constant
// arrays answer in O(1) regardless of length (§8 scenario 3).
func SearchSorted(ctx *array.Context, a *array.Array, value scalar.Scalar, side Side) (SearchResult, error) {
	if a.Encoding() == array.EncodingConstant {
		c, err := scalar.Compare(value, array.ConstantValue(a))
		if err != nil {
			return SearchResult{}, err
		}
		switch {
		case c == 0 && side == Left:
			return SearchResult{Found: true, Index: 0}, nil
		case c == 0 && side == Right:
			return SearchResult{Found: true, Index: a.Len()}, nil
		case c < 0:
			return SearchResult{Found: false, Index: 0}, nil
		default:
			return SearchResult{Found: false, Index: a.Len()}, nil
		}
	}
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return SearchResult{}, err
	}
	var compareErr error
	cmp := func(i int) int {
		v, err := scalarAtCanonical(canon, i)
		if err != nil {
			compareErr = err
			return 0
		}
		c, err := scalar.Compare(v, value)
		if err != nil {
			compareErr = err
			return 0
		}
		return c
	}
	var idx int
	if side == Left {
		idx = sort.Search(canon.Len(), func(i int) bool { return cmp(i) >= 0 })
	} else {
		idx = sort.Search(canon.Len(), func(i int) bool { return cmp(i) > 0 })
	}
	if compareErr != nil {
		return SearchResult{}, compareErr
	}
	found := idx < canon.Len() && cmp(minInt(idx, canon.Len()-1)) == 0
	if side == Right {
		found = idx > 0 && cmp(idx-1) == 0
	}
	return SearchResult{Found: found, Index: idx}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

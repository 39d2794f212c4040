// Package scalar implements Vortex's scalar value type (§3): a single
// (dtype, value) pair used as the result of scalar_at and as a kernel
// argument (fill, compare-against-constant, between bounds, ...).
package scalar

import (
	"fmt"
	"math"

	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
)

// Scalar pairs a dtype with a value. A nil value with valid=false
// represents the null value of that dtype.
type Scalar struct {
	dt    dtype.DType
	valid bool
	value interface{} // bool, uint64, int64, float64, string, []byte, []Scalar
}

// Null constructs the null scalar of dt.
func Null(dt dtype.DType) Scalar { return Scalar{dt: dt, valid: false} }

// NewBool constructs a valid Bool scalar.
func NewBool(v bool, nullable bool) Scalar {
	return Scalar{dt: dtype.Bool(nullable), valid: true, value: v}
}

// NewPrimitive constructs a valid Primitive scalar. v is stored using the
// widest representation for its signedness/floatness; ByteWidth truncation
// happens at the encoding boundary, not here.
func NewPrimitive(ptype dtype.PType, v interface{}, nullable bool) (Scalar, error) {
	dt := dtype.Primitive(ptype, nullable)
	switch ptype {
	case dtype.F16, dtype.F32, dtype.F64:
		f, err := toFloat64(v)
		if err != nil {
			return Scalar{}, err
		}
		return Scalar{dt: dt, valid: true, value: f}, nil
	case dtype.I8, dtype.I16, dtype.I32, dtype.I64:
		i, err := toInt64(v)
		if err != nil {
			return Scalar{}, err
		}
		return Scalar{dt: dt, valid: true, value: i}, nil
	default:
		u, err := toUint64(v)
		if err != nil {
			return Scalar{}, err
		}
		return Scalar{dt: dt, valid: true, value: u}, nil
	}
}

// NewUtf8 constructs a valid Utf8 scalar.
func NewUtf8(v string, nullable bool) Scalar {
	return Scalar{dt: dtype.Utf8(nullable), valid: true, value: v}
}

// NewBinary constructs a valid Binary scalar.
func NewBinary(v []byte, nullable bool) Scalar {
	return Scalar{dt: dtype.Binary(nullable), valid: true, value: v}
}

// NewList constructs a valid List/Struct scalar from ordered child values.
func NewList(dt dtype.DType, values []Scalar) Scalar {
	return Scalar{dt: dt, valid: true, value: values}
}

// DType returns the scalar's logical type.
func (s Scalar) DType() dtype.DType { return s.dt }

// IsValid reports whether the scalar carries a present value.
func (s Scalar) IsValid() bool { return s.valid }

// IsNull is the complement of IsValid.
func (s Scalar) IsNull() bool { return !s.valid }

// AsBool returns the scalar's bool value; only meaningful when valid and
// dt.Kind() == KindBool.
func (s Scalar) AsBool() bool { return s.value.(bool) }

// AsInt64 returns the scalar's signed integer value.
func (s Scalar) AsInt64() int64 { return s.value.(int64) }

// AsUint64 returns the scalar's unsigned integer value.
func (s Scalar) AsUint64() uint64 { return s.value.(uint64) }

// AsFloat64 returns the scalar's floating-point value.
func (s Scalar) AsFloat64() float64 { return s.value.(float64) }

// AsString returns the scalar's Utf8 value.
func (s Scalar) AsString() string { return s.value.(string) }

// AsBytes returns the scalar's Binary value.
func (s Scalar) AsBytes() []byte { return s.value.([]byte) }

// AsList returns the scalar's ordered child values.
func (s Scalar) AsList() []Scalar { return s.value.([]Scalar) }

// Compare performs a total order comparison between two scalars of
// compatible dtype, per §3: floating types compare NaN-aware so min/max
// remain well-defined. Returns -1, 0, 1. Null sorts before any valid value.
func Compare(a, b Scalar) (int, error) {
	if a.dt.Kind() != b.dt.Kind() {
		return 0, verrors.MismatchedTypes("scalar.compare", a.dt.String(), b.dt.String())
	}
	if !a.valid && !b.valid {
		return 0, nil
	}
	if !a.valid {
		return -1, nil
	}
	if !b.valid {
		return 1, nil
	}
	switch a.dt.Kind() {
	case dtype.KindBool:
		av, bv := a.AsBool(), b.AsBool()
		if av == bv {
			return 0, nil
		}
		if !av {
			return -1, nil
		}
		return 1, nil
	case dtype.KindPrimitive:
		if a.dt.PType().IsFloat() {
			return totalCompareFloat(a.AsFloat64(), b.AsFloat64()), nil
		}
		if a.dt.PType().IsSigned() {
			return compareInt64(a.AsInt64(), b.AsInt64()), nil
		}
		return compareUint64(a.AsUint64(), b.AsUint64()), nil
	case dtype.KindUtf8:
		return compareString(a.AsString(), b.AsString()), nil
	case dtype.KindBinary:
		return compareBytes(a.AsBytes(), b.AsBytes()), nil
	default:
		return 0, verrors.NotImplemented("scalar.compare", a.dt.Kind().String())
	}
}

// totalCompareFloat orders NaN as greater than +Inf, per the IEEE-754
// totalOrder-ish convention Vortex uses for float min/max and sort.
func totalCompareFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	if an && bn {
		return 0
	}
	if an {
		return 1
	}
	if bn {
		return -1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return compareInt64(int64(len(a)), int64(len(b)))
}

func toInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	default:
		return 0, verrors.InvalidArgument("scalar.new_primitive", fmt.Sprintf("cannot convert %T to int64", v))
	}
}

func toUint64(v interface{}) (uint64, error) {
	switch x := v.(type) {
	case uint64:
		return x, nil
	case uint:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case int:
		if x < 0 {
			return 0, verrors.InvalidArgument("scalar.new_primitive", "negative value for unsigned ptype")
		}
		return uint64(x), nil
	default:
		return 0, verrors.InvalidArgument("scalar.new_primitive", fmt.Sprintf("cannot convert %T to uint64", v))
	}
}

func toFloat64(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	default:
		return 0, verrors.InvalidArgument("scalar.new_primitive", fmt.Sprintf("cannot convert %T to float64", v))
	}
}

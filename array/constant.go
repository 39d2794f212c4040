package array

import (
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/scalar"
	"github.com/vortex-db/vortex/validity"
)

type constantEncoding struct{}

func (constantEncoding) ID() EncodingID { return EncodingConstant }
func (constantEncoding) Name() string   { return "constant" }

func (e constantEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 0, children, 0); err != nil {
		return nil, err
	}
	s, err := DecodeConstantMetadata(dt, metadata)
	if err != nil {
		return nil, err
	}
	a := New(dt, length, EncodingConstant, metadata, nil, nil, valid)
	a.constVal = &s
	return a, nil
}

// EncodeConstantMetadata serializes a constant's scalar value into the
// opaque metadata byte string the file writer persists (§6.2). Byte 0 is
// 1 if the value is null, 0 otherwise; the remaining bytes are
// dtype-specific.
func EncodeConstantMetadata(value scalar.Scalar) []byte {
	if value.IsNull() {
		return []byte{1}
	}
	out := []byte{0}
	switch value.DType().Kind() {
	case dtype.KindBool:
		if value.AsBool() {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	case dtype.KindPrimitive:
		pt := value.DType().PType()
		switch {
		case pt.IsFloat():
			out = append(out, EncodeFloat64s(pt, []float64{value.AsFloat64()}).Bytes()...)
		case pt.IsSigned():
			out = append(out, EncodeInt64s(pt, []int64{value.AsInt64()}).Bytes()...)
		default:
			out = append(out, EncodeUint64s(pt, []uint64{value.AsUint64()}).Bytes()...)
		}
	case dtype.KindUtf8:
		out = append(out, []byte(value.AsString())...)
	case dtype.KindBinary:
		out = append(out, value.AsBytes()...)
	}
	return out
}

// DecodeConstantMetadata is the inverse of EncodeConstantMetadata.
func DecodeConstantMetadata(dt dtype.DType, metadata []byte) (scalar.Scalar, error) {
	if len(metadata) == 0 {
		return scalar.Scalar{}, verrors.Serialization("array.constant", "empty constant metadata")
	}
	if metadata[0] == 1 {
		return scalar.Null(dt), nil
	}
	body := metadata[1:]
	switch dt.Kind() {
	case dtype.KindBool:
		return scalar.NewBool(body[0] != 0, dt.Nullable()), nil
	case dtype.KindPrimitive:
		pt := dt.PType()
		a, err := NewPrimitive(pt, 1, buffer.Wrap(body, 1), validity.AllValid(1))
		if err != nil {
			return scalar.Scalar{}, err
		}
		switch {
		case pt.IsFloat():
			return scalar.NewPrimitive(pt, Float64ValueAt(a, 0), dt.Nullable())
		case pt.IsSigned():
			return scalar.NewPrimitive(pt, Int64ValueAt(a, 0), dt.Nullable())
		default:
			return scalar.NewPrimitive(pt, Uint64ValueAt(a, 0), dt.Nullable())
		}
	case dtype.KindUtf8:
		return scalar.NewUtf8(string(body), dt.Nullable()), nil
	case dtype.KindBinary:
		return scalar.NewBinary(body, dt.Nullable()), nil
	default:
		return scalar.Scalar{}, verrors.NotImplemented("array.constant.decode_metadata", dt.Kind().String())
	}
}

func (e constantEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	return canonicalizeConstant(*a.constVal, a.length)
}

// NewConstant constructs a Constant array: every element equal to value,
// replicated length times. Search-sorted and scalar_at over a Constant
// array are O(1) regardless of length (§8 scenario 3).
func NewConstant(value scalar.Scalar, length int) *Array {
	validKind := validity.AllValid(length)
	if value.IsNull() {
		validKind = validity.AllInvalid(length)
	}
	a := New(value.DType(), length, EncodingConstant, nil, nil, nil, validKind)
	a.constVal = &value
	return a
}

// ConstantValue returns the repeated scalar value of a Constant array.
func ConstantValue(a *Array) scalar.Scalar { return *a.constVal }

func canonicalizeConstant(value scalar.Scalar, length int) (*Array, error) {
	dt := value.DType()
	switch dt.Kind() {
	case dtype.KindBool:
		if value.IsNull() {
			bits := PackBools(make([]bool, length))
			return NewBool(length, bits, validity.AllInvalid(length))
		}
		bits := make([]bool, length)
		for i := range bits {
			bits[i] = value.AsBool()
		}
		return NewBool(length, PackBools(bits), validity.AllValid(length))
	case dtype.KindPrimitive:
		return canonicalizeConstantPrimitive(value, dt, length)
	case dtype.KindUtf8, dtype.KindBinary:
		if value.IsNull() {
			return NewVarBin(dt.Kind() == dtype.KindUtf8, make([]uint32, length+1), nil, validity.AllInvalid(length))
		}
		var raw []byte
		if dt.Kind() == dtype.KindUtf8 {
			raw = []byte(value.AsString())
		} else {
			raw = value.AsBytes()
		}
		offsets := make([]uint32, length+1)
		data := make([]byte, 0, len(raw)*length)
		for i := 0; i < length; i++ {
			data = append(data, raw...)
			offsets[i+1] = uint32(len(data))
		}
		return NewVarBin(dt.Kind() == dtype.KindUtf8, offsets, data, validity.AllValid(length))
	default:
		return nil, verrors.NotImplemented("canonicalize", "constant("+dt.Kind().String()+")")
	}
}

func canonicalizeConstantPrimitive(value scalar.Scalar, dt dtype.DType, length int) (*Array, error) {
	pt := dt.PType()
	if value.IsNull() {
		zero := make([]byte, length*pt.ByteWidth())
		return NewPrimitive(pt, length, buffer.Wrap(zero, pt.ByteWidth()), validity.AllInvalid(length))
	}
	switch {
	case pt.IsFloat():
		values := make([]float64, length)
		for i := range values {
			values[i] = value.AsFloat64()
		}
		return NewPrimitive(pt, length, EncodeFloat64s(pt, values), validity.AllValid(length))
	case pt.IsSigned():
		values := make([]int64, length)
		for i := range values {
			values[i] = value.AsInt64()
		}
		return NewPrimitive(pt, length, EncodeInt64s(pt, values), validity.AllValid(length))
	default:
		values := make([]uint64, length)
		for i := range values {
			values[i] = value.AsUint64()
		}
		return NewPrimitive(pt, length, EncodeUint64s(pt, values), validity.AllValid(length))
	}
}

package array

import (
	"encoding/binary"
	"math"

	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/validity"
)

type primitiveEncoding struct{}

func (primitiveEncoding) ID() EncodingID { return EncodingPrimitive }
func (primitiveEncoding) Name() string   { return "primitive" }

func (e primitiveEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 1, children, 0); err != nil {
		return nil, err
	}
	width := dt.PType().ByteWidth()
	if buffers[0].Len() != length*width {
		return nil, verrors.InvalidArgument("array.primitive.from_parts", "data buffer length does not match len * byte_width")
	}
	return New(dt, length, EncodingPrimitive, metadata, buffers, nil, valid), nil
}

func (e primitiveEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	return a, nil
}

// NewPrimitive constructs a Primitive array over a densely-packed,
// little-endian data buffer.
func NewPrimitive(ptype dtype.PType, length int, data *buffer.Buffer, valid validity.Validity) (*Array, error) {
	width := ptype.ByteWidth()
	if data.Len() != length*width {
		return nil, verrors.InvalidArgument("array.primitive.new", "data buffer length does not match len * byte_width")
	}
	return New(dtype.Primitive(ptype, valid.Kind() != validity.KindNonNullable), length, EncodingPrimitive, nil, []*buffer.Buffer{data}, nil, valid), nil
}

// Int64ValueAt reads element i as an int64, widening from the array's
// native ptype. Panics if the array is not a signed integer Primitive
// array; callers should check DType first.
func Int64ValueAt(a *Array, i int) int64 {
	b := a.buffers[0].Bytes()
	pt := a.dt.PType()
	off := i * pt.ByteWidth()
	switch pt {
	case dtype.I8:
		return int64(int8(b[off]))
	case dtype.I16:
		return int64(int16(binary.LittleEndian.Uint16(b[off:])))
	case dtype.I32:
		return int64(int32(binary.LittleEndian.Uint32(b[off:])))
	case dtype.I64:
		return int64(binary.LittleEndian.Uint64(b[off:]))
	default:
		panic("Int64ValueAt called on non-signed-integer array")
	}
}

// Uint64ValueAt reads element i as a uint64.
func Uint64ValueAt(a *Array, i int) uint64 {
	b := a.buffers[0].Bytes()
	pt := a.dt.PType()
	off := i * pt.ByteWidth()
	switch pt {
	case dtype.U8:
		return uint64(b[off])
	case dtype.U16:
		return uint64(binary.LittleEndian.Uint16(b[off:]))
	case dtype.U32:
		return uint64(binary.LittleEndian.Uint32(b[off:]))
	case dtype.U64:
		return binary.LittleEndian.Uint64(b[off:])
	default:
		panic("Uint64ValueAt called on non-unsigned-integer array")
	}
}

// Float64ValueAt reads element i as a float64.
func Float64ValueAt(a *Array, i int) float64 {
	b := a.buffers[0].Bytes()
	pt := a.dt.PType()
	off := i * pt.ByteWidth()
	switch pt {
	case dtype.F32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[off:])))
	case dtype.F64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))
	default:
		panic("Float64ValueAt called on non-float array")
	}
}

// EncodeInt64s packs signed 64-bit values into a ptype-width little-endian
// buffer, truncating to the target width.
func EncodeInt64s(ptype dtype.PType, values []int64) *buffer.Buffer {
	out := make([]byte, len(values)*ptype.ByteWidth())
	for i, v := range values {
		off := i * ptype.ByteWidth()
		switch ptype {
		case dtype.I8:
			out[off] = byte(v)
		case dtype.I16:
			binary.LittleEndian.PutUint16(out[off:], uint16(v))
		case dtype.I32:
			binary.LittleEndian.PutUint32(out[off:], uint32(v))
		case dtype.I64:
			binary.LittleEndian.PutUint64(out[off:], uint64(v))
		}
	}
	return buffer.Wrap(out, ptype.ByteWidth())
}

// EncodeUint64s packs unsigned 64-bit values into a ptype-width
// little-endian buffer, truncating to the target width.
func EncodeUint64s(ptype dtype.PType, values []uint64) *buffer.Buffer {
	out := make([]byte, len(values)*ptype.ByteWidth())
	for i, v := range values {
		off := i * ptype.ByteWidth()
		switch ptype {
		case dtype.U8:
			out[off] = byte(v)
		case dtype.U16:
			binary.LittleEndian.PutUint16(out[off:], uint16(v))
		case dtype.U32:
			binary.LittleEndian.PutUint32(out[off:], uint32(v))
		case dtype.U64:
			binary.LittleEndian.PutUint64(out[off:], v)
		}
	}
	return buffer.Wrap(out, ptype.ByteWidth())
}

// EncodeFloat64s packs float64 values into a ptype-width little-endian
// buffer (F32 or F64).
func EncodeFloat64s(ptype dtype.PType, values []float64) *buffer.Buffer {
	out := make([]byte, len(values)*ptype.ByteWidth())
	for i, v := range values {
		off := i * ptype.ByteWidth()
		switch ptype {
		case dtype.F32:
			binary.LittleEndian.PutUint32(out[off:], math.Float32bits(float32(v)))
		case dtype.F64:
			binary.LittleEndian.PutUint64(out[off:], math.Float64bits(v))
		}
	}
	return buffer.Wrap(out, ptype.ByteWidth())
}

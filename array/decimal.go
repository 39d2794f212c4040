package array

import (
	"math/big"

	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/validity"
)

// decimalWidth is the fixed-width backing Decimal values are stored as: a
// two's-complement i128, little-endian. Precision up to 38 fits i128;
// higher precisions (up to the spec's 76) would require i256 storage,
// which this implementation does not provide (see DESIGN.md).
const decimalWidth = 16

type decimalEncoding struct{}

func (decimalEncoding) ID() EncodingID { return EncodingDecimal }
func (decimalEncoding) Name() string   { return "decimal" }

func (e decimalEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 1, children, 0); err != nil {
		return nil, err
	}
	if buffers[0].Len() != length*decimalWidth {
		return nil, verrors.InvalidArgument("array.decimal.from_parts", "data buffer length does not match len * 16")
	}
	if dt.DecimalPrecision() > 38 {
		return nil, verrors.NotImplemented("array.decimal.from_parts", "i256 decimal (precision > 38)")
	}
	return New(dt, length, EncodingDecimal, metadata, buffers, nil, valid), nil
}

func (e decimalEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	return a, nil
}

// NewDecimal constructs a Decimal array from []*big.Int unscaled values.
func NewDecimal(precision, scale uint8, values []*big.Int, valid validity.Validity) (*Array, error) {
	if precision > 38 {
		return nil, verrors.NotImplemented("array.decimal.new", "i256 decimal (precision > 38)")
	}
	dt, err := dtype.Decimal(precision, scale, valid.Kind() != validity.KindNonNullable)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(values)*decimalWidth)
	for i, v := range values {
		putI128(out[i*decimalWidth:], v)
	}
	return New(dt, len(values), EncodingDecimal, nil, []*buffer.Buffer{buffer.Wrap(out, decimalWidth)}, nil, valid), nil
}

// DecimalValueAt returns element i's unscaled value as a big.Int.
func DecimalValueAt(a *Array, i int) *big.Int {
	return getI128(a.buffers[0].Bytes()[i*decimalWidth:])
}

func putI128(dst []byte, v *big.Int) {
	neg := v.Sign() < 0
	mag := new(big.Int).Abs(v)
	b := mag.Bytes() // big-endian
	if neg {
		// two's complement: invert and add one, within 16 bytes
		full := make([]byte, decimalWidth)
		copy(full[decimalWidth-len(b):], b)
		for i := range full {
			full[i] = ^full[i]
		}
		carry := byte(1)
		for i := decimalWidth - 1; i >= 0 && carry > 0; i-- {
			sum := uint16(full[i]) + uint16(carry)
			full[i] = byte(sum)
			carry = byte(sum >> 8)
		}
		for i, j := 0, decimalWidth-1; i < j; i, j = i+1, j-1 {
			dst[i], dst[j] = full[j], full[i]
		}
		return
	}
	be := make([]byte, decimalWidth)
	copy(be[decimalWidth-len(b):], b)
	for i, j := 0, decimalWidth-1; i < j; i, j = i+1, j-1 {
		dst[i], dst[j] = be[j], be[i]
	}
}

func getI128(src []byte) *big.Int {
	le := src[:decimalWidth]
	be := make([]byte, decimalWidth)
	for i := 0; i < decimalWidth; i++ {
		be[i] = le[decimalWidth-1-i]
	}
	v := new(big.Int).SetBytes(be)
	if be[0]&0x80 != 0 {
		// negative: v - 2^128
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		v.Sub(v, mod)
	}
	return v
}

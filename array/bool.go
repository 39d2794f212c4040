package array

import (
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/validity"
)

type boolEncoding struct{}

func (boolEncoding) ID() EncodingID { return EncodingBool }
func (boolEncoding) Name() string   { return "bool" }

func (e boolEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 1, children, 0); err != nil {
		return nil, err
	}
	if want := (length + 7) / 8; buffers[0].Len() < want {
		return nil, verrors.InvalidArgument("array.bool.from_parts", "bitmap buffer shorter than ceil(len/8)")
	}
	return New(dt, length, EncodingBool, metadata, buffers, nil, valid), nil
}

func (e boolEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	return a, nil
}

// NewBool constructs a Bool array from a packed bitmap buffer (LSB-first
// within each byte) and a validity mask.
func NewBool(length int, bits *buffer.Buffer, valid validity.Validity) (*Array, error) {
	if want := (length + 7) / 8; bits.Len() < want {
		return nil, verrors.InvalidArgument("array.bool.new", "bitmap buffer shorter than ceil(len/8)")
	}
	return New(dtype.Bool(valid.Kind() != validity.KindNonNullable), length, EncodingBool, nil, []*buffer.Buffer{bits}, nil, valid), nil
}

// BoolValueAt reads bit i of a's packed bitmap buffer (the element's raw
// value, irrespective of validity).
func BoolValueAt(a *Array, i int) bool {
	b := a.buffers[0].Bytes()
	return b[i/8]&(1<<uint(i%8)) != 0
}

// PackBools packs a []bool into an LSB-first bitmap buffer.
func PackBools(bits []bool) *buffer.Buffer {
	packed := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	return buffer.Wrap(packed, 1)
}

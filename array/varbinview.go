package array

import (
	"encoding/binary"

	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/validity"
)

// varBinEncoding is a simple, non-canonical offsets+bytes representation
// of Utf8/Binary data: buffers are [offsets (U32, len+1 entries), bytes].
type varBinEncoding struct{}

func (varBinEncoding) ID() EncodingID { return EncodingVarBin }
func (varBinEncoding) Name() string   { return "varbin" }

func (e varBinEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 2, children, 0); err != nil {
		return nil, err
	}
	if buffers[0].Len() != (length+1)*4 {
		return nil, verrors.InvalidArgument("array.varbin.from_parts", "offsets buffer length must be 4*(len+1)")
	}
	return New(dt, length, EncodingVarBin, metadata, buffers, nil, valid), nil
}

func (e varBinEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	return New(a.dt, a.length, EncodingVarBinView, a.metadata, a.buffers, nil, a.valid), nil
}

// varBinViewEncoding is the canonical Utf8/Binary representation. This
// implementation backs it with the same offsets+bytes physical layout as
// VarBin rather than Arrow-style inlined-prefix views across multiple
// backing buffers: the spec's Non-goals exempt concrete compressed bit
// layouts, and the single-buffer form satisfies every contract
// (scalar_at, slice, canonicalization) the canonical kernels need.
type varBinViewEncoding struct{}

func (varBinViewEncoding) ID() EncodingID { return EncodingVarBinView }
func (varBinViewEncoding) Name() string   { return "varbinview" }

func (e varBinViewEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 2, children, 0); err != nil {
		return nil, err
	}
	if buffers[0].Len() != (length+1)*4 {
		return nil, verrors.InvalidArgument("array.varbinview.from_parts", "offsets buffer length must be 4*(len+1)")
	}
	return New(dt, length, EncodingVarBinView, metadata, buffers, nil, valid), nil
}

func (e varBinViewEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	return a, nil
}

// NewVarBin constructs a VarBin array over UTF-8 or arbitrary bytes.
// offsets must have length+1 entries, offsets[0] == 0, non-decreasing.
func NewVarBin(isUtf8 bool, offsets []uint32, data []byte, valid validity.Validity) (*Array, error) {
	if len(offsets) == 0 || offsets[0] != 0 {
		return nil, verrors.InvalidArgument("array.varbin.new", "offsets must start at 0")
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, verrors.InvalidArgument("array.varbin.new", "offsets must be non-decreasing")
		}
	}
	length := len(offsets) - 1
	offBuf := make([]byte, len(offsets)*4)
	for i, o := range offsets {
		binary.LittleEndian.PutUint32(offBuf[i*4:], o)
	}
	var dt dtype.DType
	if isUtf8 {
		dt = dtype.Utf8(valid.Kind() != validity.KindNonNullable)
	} else {
		dt = dtype.Binary(valid.Kind() != validity.KindNonNullable)
	}
	return New(dt, length, EncodingVarBin, nil, []*buffer.Buffer{buffer.Wrap(offBuf, 4), buffer.Wrap(data, 1)}, nil, valid), nil
}

// BytesAt returns the raw bytes of element i of a VarBin or VarBinView array.
func BytesAt(a *Array, i int) []byte {
	offsets := a.buffers[0].Bytes()
	start := binary.LittleEndian.Uint32(offsets[i*4:])
	stop := binary.LittleEndian.Uint32(offsets[(i+1)*4:])
	return a.buffers[1].Bytes()[start:stop]
}

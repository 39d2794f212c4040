package array

import (
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/validity"
)

type nullEncoding struct{}

func (nullEncoding) ID() EncodingID { return EncodingNull }
func (nullEncoding) Name() string   { return "null" }

func (e nullEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 0, children, 0); err != nil {
		return nil, err
	}
	return New(dt, length, EncodingNull, nil, nil, nil, validity.AllInvalid(length)), nil
}

func (e nullEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	return a, nil
}

// NewNull constructs a length-n array of the null dtype, every element
// invalid.
func NewNull(length int) *Array {
	return New(dtype.Null(), length, EncodingNull, nil, nil, nil, validity.AllInvalid(length))
}

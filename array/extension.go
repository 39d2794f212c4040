package array

import (
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/validity"
)

type extensionEncoding struct{}

func (extensionEncoding) ID() EncodingID { return EncodingExtension }
func (extensionEncoding) Name() string   { return "extension" }

func (e extensionEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 0, children, 1); err != nil {
		return nil, err
	}
	return New(dt, length, EncodingExtension, nil, nil, children, valid), nil
}

func (e extensionEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	return Canonicalize(ctx, a.children[0])
}

// NewExtension wraps a storage array with an extension dtype. dt's storage
// type must match storage's dtype; callers that built storage from
// dt.ExtensionStorage() satisfy this automatically.
func NewExtension(dt dtype.DType, storage *Array) *Array {
	return New(dt, storage.Len(), EncodingExtension, nil, nil, []*Array{storage}, storage.valid)
}

// StorageOf returns the extension array's underlying storage array.
func StorageOf(a *Array) *Array { return a.children[0] }

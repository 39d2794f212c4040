package array

import (
	"encoding/binary"

	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/validity"
)

type listEncoding struct{}

func (listEncoding) ID() EncodingID { return EncodingList }
func (listEncoding) Name() string   { return "list" }

func (e listEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 1, children, 1); err != nil {
		return nil, err
	}
	if buffers[0].Len() != (length+1)*4 {
		return nil, verrors.InvalidArgument("array.list.from_parts", "offsets buffer length must be 4*(len+1)")
	}
	return New(dt, length, EncodingList, nil, buffers, children, valid), nil
}

func (e listEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	elems, err := Canonicalize(ctx, a.children[0])
	if err != nil {
		return nil, err
	}
	return New(a.dt, a.length, EncodingList, nil, a.buffers, []*Array{elems}, a.valid), nil
}

// NewList constructs a List array: offsets (len+1 entries, non-decreasing,
// offsets[0]==0) over a single elements child array.
func NewList(dt dtype.DType, offsets []uint32, elements *Array, valid validity.Validity) (*Array, error) {
	if dt.Kind() != dtype.KindList {
		return nil, verrors.MismatchedTypes("array.list.new", "list", dt.String())
	}
	if len(offsets) == 0 || offsets[0] != 0 {
		return nil, verrors.InvalidArgument("array.list.new", "offsets must start at 0")
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, verrors.InvalidArgument("array.list.new", "offsets must be non-decreasing")
		}
	}
	if int(offsets[len(offsets)-1]) != elements.Len() {
		return nil, verrors.InvalidArgument("array.list.new", "final offset must equal elements length")
	}
	offBuf := make([]byte, len(offsets)*4)
	for i, o := range offsets {
		binary.LittleEndian.PutUint32(offBuf[i*4:], o)
	}
	return New(dt, len(offsets)-1, EncodingList, nil, []*buffer.Buffer{buffer.Wrap(offBuf, 4)}, []*Array{elements}, valid), nil
}

// ListBoundsAt returns the [start, stop) element range backing list entry i.
func ListBoundsAt(a *Array, i int) (int, int) {
	offsets := a.buffers[0].Bytes()
	start := binary.LittleEndian.Uint32(offsets[i*4:])
	stop := binary.LittleEndian.Uint32(offsets[(i+1)*4:])
	return int(start), int(stop)
}

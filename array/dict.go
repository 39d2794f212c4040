package array

import (
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/validity"
)

// dictEncoding is a non-canonical encoding: children are [codes, values].
// codes is an unsigned Primitive array of length equal to the dict array's
// length; values holds the distinct dictionary entries. Canonicalizing
// gathers values at each code (§8 scenario 2).
type dictEncoding struct{}

func (dictEncoding) ID() EncodingID { return EncodingDict }
func (dictEncoding) Name() string   { return "dict" }

func (e dictEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 0, children, 2); err != nil {
		return nil, err
	}
	codes, values := children[0], children[1]
	if codes.Encoding() != EncodingPrimitive || codes.DType().PType().IsSigned() {
		return nil, verrors.InvalidArgument("array.dict.from_parts", "dict codes must be an unsigned Primitive array")
	}
	if codes.Len() != length {
		return nil, verrors.InvalidArgument("array.dict.from_parts", "codes length must equal declared length")
	}
	if !values.DType().Equal(dt) {
		return nil, verrors.MismatchedTypes("array.dict.from_parts", dt.String(), values.DType().String())
	}
	return New(dt, length, EncodingDict, nil, nil, children, valid), nil
}

func (e dictEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	codes, values := a.children[0], a.children[1]
	indices := make([]int, codes.Len())
	for i := range indices {
		indices[i] = int(Uint64ValueAt(codes, i))
	}
	gathered, err := CanonicalTake(ctx, values, indices)
	if err != nil {
		return nil, err
	}
	// The dict array's own validity governs nulls (a code may point at a
	// valid dictionary entry yet still be logically null), overriding
	// whatever validity the gathered values carried.
	return New(gathered.dt, gathered.length, gathered.encoding, gathered.metadata, gathered.buffers, gathered.children, a.valid), nil
}

// NewDict constructs a Dict array: codes (an unsigned Primitive array)
// indexing into values (the distinct dictionary entries, of the array's
// logical dtype).
func NewDict(codes *Array, values *Array, valid validity.Validity) (*Array, error) {
	if codes.Encoding() != EncodingPrimitive || codes.DType().PType().IsSigned() {
		return nil, verrors.InvalidArgument("array.dict.new", "dict codes must be an unsigned Primitive array")
	}
	return New(values.DType(), codes.Len(), EncodingDict, nil, nil, []*Array{codes, values}, valid), nil
}

// DictCodes returns the dict array's codes child.
func DictCodes(a *Array) *Array { return a.children[0] }

// DictValues returns the dict array's distinct-values child.
func DictValues(a *Array) *Array { return a.children[1] }

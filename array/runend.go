package array

import (
	"sort"

	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/validity"
)

// runEndEncoding is a non-canonical run-length encoding: children are
// [ends, values]. ends is an unsigned Primitive array of cumulative,
// strictly increasing exclusive run boundaries; values holds one entry per
// run. Canonicalizing expands each run by repeating its value (§8
// scenario 6: compare against a constant over a RunEnd array must match
// the expanded boolean buffer).
type runEndEncoding struct{}

func (runEndEncoding) ID() EncodingID { return EncodingRunEnd }
func (runEndEncoding) Name() string   { return "runend" }

func (e runEndEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 0, children, 2); err != nil {
		return nil, err
	}
	ends, values := children[0], children[1]
	if ends.Encoding() != EncodingPrimitive || ends.DType().PType().IsSigned() {
		return nil, verrors.InvalidArgument("array.runend.from_parts", "runend ends must be an unsigned Primitive array")
	}
	if ends.Len() != values.Len() {
		return nil, verrors.InvalidArgument("array.runend.from_parts", "ends and values must have the same length")
	}
	if !values.DType().Equal(dt) {
		return nil, verrors.MismatchedTypes("array.runend.from_parts", dt.String(), values.DType().String())
	}
	if ends.Len() > 0 && int(Uint64ValueAt(ends, ends.Len()-1)) != length {
		return nil, verrors.InvalidArgument("array.runend.from_parts", "final run end must equal declared length")
	}
	return New(dt, length, EncodingRunEnd, nil, nil, children, valid), nil
}

func (e runEndEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	ends, values := a.children[0], a.children[1]
	endVals := make([]int, ends.Len())
	for i := range endVals {
		endVals[i] = int(Uint64ValueAt(ends, i))
	}
	indices := make([]int, a.length)
	for i := range indices {
		run := sort.Search(len(endVals), func(j int) bool { return endVals[j] > i })
		indices[i] = run
	}
	gathered, err := CanonicalTake(ctx, values, indices)
	if err != nil {
		return nil, err
	}
	return New(gathered.dt, gathered.length, gathered.encoding, gathered.metadata, gathered.buffers, gathered.children, a.valid), nil
}

// NewRunEnd constructs a RunEnd array: ends (an unsigned Primitive array of
// strictly increasing, cumulative run boundaries) paired with one values
// entry per run.
func NewRunEnd(ends *Array, values *Array, length int, valid validity.Validity) (*Array, error) {
	if ends.Encoding() != EncodingPrimitive || ends.DType().PType().IsSigned() {
		return nil, verrors.InvalidArgument("array.runend.new", "runend ends must be an unsigned Primitive array")
	}
	if ends.Len() != values.Len() {
		return nil, verrors.InvalidArgument("array.runend.new", "ends and values must have the same length")
	}
	if ends.Len() > 0 && int(Uint64ValueAt(ends, ends.Len()-1)) != length {
		return nil, verrors.InvalidArgument("array.runend.new", "final run end must equal declared length")
	}
	return New(values.DType(), length, EncodingRunEnd, nil, nil, []*Array{ends, values}, valid), nil
}

// RunEnds returns the runend array's cumulative run-boundary child.
func RunEnds(a *Array) *Array { return a.children[0] }

// RunValues returns the runend array's per-run values child.
func RunValues(a *Array) *Array { return a.children[1] }

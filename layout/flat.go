package layout

import (
	"context"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/segment"
	"github.com/vortex-db/vortex/validity"
)

// BufferRef points at one of an array's physical buffers, stored as a
// single segment.
type BufferRef struct {
	Segment   segment.ID
	Alignment int
}

// ValidityDescriptor records how a Flat array's validity is represented:
// one of the three uniform kinds recorded inline, or an explicit bitmap
// stored as a segment (one byte per element, nonzero meaning valid — a
// simplification over a packed bitmap, traded for decode simplicity since
// the wire-level bit-packing is a vfile concern, not a layout one).
type ValidityDescriptor struct {
	Kind    validity.Kind
	Segment segment.ID // meaningful only when Kind == validity.KindArray
}

// FlatLayout is a single canonical array serialized into one or more
// segments (§4.5 Flat): a buffer per physical buffer the array's encoding
// declares, nested FlatLayouts for any children, and a validity
// descriptor. It exposes no splits beyond its own full range.
type FlatLayout struct {
	dt       dtype.DType
	rowCount int
	encoding array.EncodingID
	metadata []byte
	buffers  []BufferRef
	children []*FlatLayout
	valid    ValidityDescriptor
}

// NewFlatLayout constructs a FlatLayout describing how to reconstruct one
// array of the given dtype/encoding from segment-resident buffers and
// children.
func NewFlatLayout(dt dtype.DType, rowCount int, encoding array.EncodingID, metadata []byte, buffers []BufferRef, children []*FlatLayout, valid ValidityDescriptor) *FlatLayout {
	return &FlatLayout{dt: dt, rowCount: rowCount, encoding: encoding, metadata: metadata, buffers: buffers, children: children, valid: valid}
}

func (l *FlatLayout) RowCount() int      { return l.rowCount }
func (l *FlatLayout) DType() dtype.DType { return l.dt }

// EncodingID reports the array encoding this node reconstructs on read, for
// a vfile writer to record in the layout's flatbuffer table.
func (l *FlatLayout) EncodingID() array.EncodingID { return l.encoding }

// Metadata returns the encoding-opaque metadata bytes to persist alongside
// the node.
func (l *FlatLayout) Metadata() []byte { return l.metadata }

// BufferRefs returns the node's own buffer references, in order, for a
// vfile writer to embed in the layout's flatbuffer table.
func (l *FlatLayout) BufferRefs() []BufferRef {
	out := make([]BufferRef, len(l.buffers))
	copy(out, l.buffers)
	return out
}

// ValidityDescriptor returns how this node's validity is represented.
func (l *FlatLayout) ValidityDescriptor() ValidityDescriptor { return l.valid }

func (l *FlatLayout) SegmentIDs() []segment.ID {
	ids := make([]segment.ID, 0, len(l.buffers)+1)
	for _, b := range l.buffers {
		ids = append(ids, b.Segment)
	}
	if l.valid.Kind == validity.KindArray {
		ids = append(ids, l.valid.Segment)
	}
	return ids
}

func (l *FlatLayout) Children() []Layout {
	out := make([]Layout, len(l.children))
	for i, c := range l.children {
		out[i] = c
	}
	return out
}

// Splits inserts only the node's own boundaries: a Flat layout cannot be
// split further without re-decoding its entire payload (§4.5 "exposes no
// splits beyond its full range").
func (l *FlatLayout) Splits(mask FieldMask, offset int, out *SplitSet) {
	out.Insert(offset)
	out.Insert(offset + l.rowCount)
}

func (l *FlatLayout) Reader(src segment.Source, ctx *array.Context) (Reader, error) {
	return &flatReader{layout: l, src: src, ctx: ctx}, nil
}

type flatReader struct {
	layout *FlatLayout
	src    segment.Source
	ctx    *array.Context
}

func (r *flatReader) RequiredSegments(rowStart, rowEnd int) []segment.ID {
	ids := append([]segment.ID(nil), r.layout.SegmentIDs()...)
	for _, c := range r.layout.children {
		cr := &flatReader{layout: c, src: r.src, ctx: r.ctx}
		ids = append(ids, cr.RequiredSegments(0, c.rowCount)...)
	}
	return ids
}

func (r *flatReader) Read(ctx context.Context, rowStart, rowEnd int) (*array.Array, error) {
	if rowStart < 0 || rowEnd < rowStart || rowEnd > r.layout.rowCount {
		return nil, verrors.OutOfBounds("layout.flat.read", rowEnd, rowStart, r.layout.rowCount)
	}
	full, err := r.materialize(ctx)
	if err != nil {
		return nil, err
	}
	if rowStart == 0 && rowEnd == r.layout.rowCount {
		return full, nil
	}
	return compute.Slice(r.ctx, full, rowStart, rowEnd)
}

func (r *flatReader) Evaluate(ctx context.Context, rowStart, rowEnd int, e expr.Expr) (*array.Array, error) {
	return evaluate(ctx, r, r.ctx, rowStart, rowEnd, e)
}

func (r *flatReader) materialize(ctx context.Context) (*array.Array, error) {
	l := r.layout
	buffers := make([]*buffer.Buffer, len(l.buffers))
	for i, ref := range l.buffers {
		buf, err := r.resolve(ctx, ref.Segment)
		if err != nil {
			return nil, err
		}
		buffers[i] = buf
	}

	children := make([]*array.Array, len(l.children))
	for i, c := range l.children {
		cr := &flatReader{layout: c, src: r.src, ctx: r.ctx}
		ca, err := cr.Read(ctx, 0, c.rowCount)
		if err != nil {
			return nil, err
		}
		children[i] = ca
	}

	valid, err := r.resolveValidity(ctx)
	if err != nil {
		return nil, err
	}

	enc := r.ctx.Lookup(l.encoding)
	return enc.FromParts(r.ctx, l.dt, l.rowCount, l.metadata, buffers, children, valid)
}

func (r *flatReader) resolve(ctx context.Context, id segment.ID) (*buffer.Buffer, error) {
	return r.src.Request(ctx, id, segment.PriorityNormal).Wait(ctx)
}

func (r *flatReader) resolveValidity(ctx context.Context) (validity.Validity, error) {
	v := r.layout.valid
	switch v.Kind {
	case validity.KindArray:
		buf, err := r.resolve(ctx, v.Segment)
		if err != nil {
			return validity.Validity{}, err
		}
		raw := buf.Bytes()
		bits := make([]bool, len(raw))
		for i, b := range raw {
			bits[i] = b != 0
		}
		return validity.FromBits(bits), nil
	case validity.KindNonNullable:
		return validity.NonNullable(r.layout.rowCount), nil
	case validity.KindAllInvalid:
		return validity.AllInvalid(r.layout.rowCount), nil
	default:
		return validity.AllValid(r.layout.rowCount), nil
	}
}

package layout

import (
	"context"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/expr"
	"github.com/vortex-db/vortex/segment"
	"github.com/vortex-db/vortex/validity"
)

// StructLayout is one child layout per field of a struct dtype, plus an
// optional validity child (§4.5 Struct). Field children share the
// struct's row count.
type StructLayout struct {
	dt       dtype.DType
	rowCount int
	fields   []Layout
	valid    Layout // nil when the struct itself is non-nullable
}

// NewStructLayout constructs a StructLayout. fields must match dt's field
// count and order; valid may be nil.
func NewStructLayout(dt dtype.DType, fields []Layout, valid Layout) (*StructLayout, error) {
	if dt.Kind() != dtype.KindStruct {
		return nil, verrors.MismatchedTypes("layout.struct.new", "struct", dt.String())
	}
	if len(fields) != len(dt.Fields()) {
		return nil, verrors.InvalidArgument("layout.struct.new", "field count mismatch")
	}
	rowCount := 0
	if len(fields) > 0 {
		rowCount = fields[0].RowCount()
	}
	for i, f := range fields {
		if f.RowCount() != rowCount {
			return nil, verrors.InvalidArgument("layout.struct.new",
				"field "+dt.Fields()[i].Name+" row count does not match struct row count")
		}
	}
	if valid != nil && valid.RowCount() != rowCount {
		return nil, verrors.InvalidArgument("layout.struct.new", "validity child row count mismatch")
	}
	return &StructLayout{dt: dt, rowCount: rowCount, fields: fields, valid: valid}, nil
}

func (l *StructLayout) RowCount() int            { return l.rowCount }
func (l *StructLayout) DType() dtype.DType       { return l.dt }
func (l *StructLayout) SegmentIDs() []segment.ID { return nil }

func (l *StructLayout) Children() []Layout {
	out := append([]Layout(nil), l.fields...)
	if l.valid != nil {
		out = append(out, l.valid)
	}
	return out
}

// FieldLayouts returns the per-field child layouts, in dtype field order,
// excluding the optional validity child.
func (l *StructLayout) FieldLayouts() []Layout { return append([]Layout(nil), l.fields...) }

// ValidityLayout returns the struct's validity child, or nil when the
// struct is non-nullable.
func (l *StructLayout) ValidityLayout() Layout { return l.valid }

func (l *StructLayout) Splits(mask FieldMask, offset int, out *SplitSet) {
	out.Insert(offset)
	out.Insert(offset + l.rowCount)
	fields := l.dt.Fields()
	for i, f := range l.fields {
		if !mask.Includes(fields[i].Name) {
			continue
		}
		f.Splits(mask, offset, out)
	}
}

func (l *StructLayout) Reader(src segment.Source, ctx *array.Context) (Reader, error) {
	fieldReaders := make([]Reader, len(l.fields))
	for i, f := range l.fields {
		fr, err := f.Reader(src, ctx)
		if err != nil {
			return nil, err
		}
		fieldReaders[i] = fr
	}
	var validReader Reader
	if l.valid != nil {
		vr, err := l.valid.Reader(src, ctx)
		if err != nil {
			return nil, err
		}
		validReader = vr
	}
	return &structReader{layout: l, fields: fieldReaders, valid: validReader, ctx: ctx}, nil
}

type structReader struct {
	layout *StructLayout
	fields []Reader
	valid  Reader
	ctx    *array.Context
}

func (r *structReader) RequiredSegments(rowStart, rowEnd int) []segment.ID {
	var ids []segment.ID
	for _, f := range r.fields {
		ids = append(ids, f.RequiredSegments(rowStart, rowEnd)...)
	}
	if r.valid != nil {
		ids = append(ids, r.valid.RequiredSegments(rowStart, rowEnd)...)
	}
	return ids
}

func (r *structReader) Read(ctx context.Context, rowStart, rowEnd int) (*array.Array, error) {
	if rowStart < 0 || rowEnd < rowStart || rowEnd > r.layout.rowCount {
		return nil, verrors.OutOfBounds("layout.struct.read", rowEnd, rowStart, r.layout.rowCount)
	}
	fields := make([]*array.Array, len(r.fields))
	for i, f := range r.fields {
		fa, err := f.Read(ctx, rowStart, rowEnd)
		if err != nil {
			return nil, err
		}
		fields[i] = fa
	}
	valid := validity.AllValid(rowEnd - rowStart)
	if r.valid != nil {
		va, err := r.valid.Read(ctx, rowStart, rowEnd)
		if err != nil {
			return nil, err
		}
		canonVa, err := array.Canonicalize(r.ctx, va)
		if err != nil {
			return nil, err
		}
		bits := make([]bool, canonVa.Len())
		for i := range bits {
			bits[i] = canonVa.IsValid(i) && array.BoolValueAt(canonVa, i)
		}
		valid = validity.FromBits(bits)
	}
	return array.NewStruct(r.layout.dt, fields, valid)
}

func (r *structReader) Evaluate(ctx context.Context, rowStart, rowEnd int, e expr.Expr) (*array.Array, error) {
	return evaluate(ctx, r, r.ctx, rowStart, rowEnd, e)
}

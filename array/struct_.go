package array

import (
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/validity"
)

type structEncoding struct{}

func (structEncoding) ID() EncodingID { return EncodingStruct }
func (structEncoding) Name() string   { return "struct" }

func (e structEncoding) FromParts(ctx *Context, dt dtype.DType, length int, metadata []byte, buffers []*buffer.Buffer, children []*Array, valid validity.Validity) (*Array, error) {
	if err := checkPartsShape(e.Name(), buffers, 0, children, len(dt.Fields())); err != nil {
		return nil, err
	}
	for i, c := range children {
		if c.Len() != length {
			return nil, verrors.InvalidArgument("array.struct.from_parts",
				"field "+dt.Fields()[i].Name+" row count does not match struct length")
		}
	}
	return New(dt, length, EncodingStruct, nil, nil, children, valid), nil
}

func (e structEncoding) Canonicalize(ctx *Context, a *Array) (*Array, error) {
	canon := make([]*Array, len(a.children))
	for i, c := range a.children {
		cc, err := Canonicalize(ctx, c)
		if err != nil {
			return nil, err
		}
		canon[i] = cc
	}
	return New(a.dt, a.length, EncodingStruct, nil, nil, canon, a.valid), nil
}

// NewStruct constructs a Struct array; one child per field, sharing the
// struct's row count, plus an optional validity mask over the struct
// itself (independent of per-field nullability).
func NewStruct(dt dtype.DType, fields []*Array, valid validity.Validity) (*Array, error) {
	if dt.Kind() != dtype.KindStruct {
		return nil, verrors.MismatchedTypes("array.struct.new", "struct", dt.String())
	}
	if len(fields) != len(dt.Fields()) {
		return nil, verrors.InvalidArgument("array.struct.new", "field count mismatch")
	}
	length := valid.Len()
	for i, f := range fields {
		if f.Len() != length {
			return nil, verrors.InvalidArgument("array.struct.new", "field "+dt.Fields()[i].Name+" row count mismatch")
		}
	}
	return New(dt, length, EncodingStruct, nil, nil, fields, valid), nil
}

// FieldAt returns the child array for field i.
func FieldAt(a *Array, i int) *Array { return a.children[i] }

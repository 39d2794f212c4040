package compute

import (
	arrowpkg "github.com/apache/arrow/go/v17/arrow"
	arrowarray "github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
)

// ToArrow converts a to an Arrow array (§4.3 to_arrow), the interchange boundary used by the DataFusion/DuckDB/
// Python integrations named in §1 as out-of-scope collaborators. This
// kernel always goes through canonicalization; it does not attempt the
// zero-copy path §4.3 allows for encodings whose buffer layout happens to
// already match Arrow's (none of this implementation's encodings do,
// since VarBinView here is not laid out as Arrow's inlined-view format —
// see DESIGN.md). The result's Arrow type follows a's own dtype; dt is not
// read, and no conversion to a different Arrow type takes place.
func ToArrow(ctx *array.Context, a *array.Array, dt arrowpkg.DataType) (arrowpkg.Array, error) {
	canon, err := array.Canonicalize(ctx, a)
	if err != nil {
		return nil, err
	}
	mem := memory.NewGoAllocator()
	switch canon.DType().Kind() {
	case dtype.KindBool:
		b := arrowarray.NewBooleanBuilder(mem)
		defer b.Release()
		for i := 0; i < canon.Len(); i++ {
			if !canon.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(array.BoolValueAt(canon, i))
		}
		return b.NewArray(), nil
	case dtype.KindPrimitive:
		return primitiveToArrow(mem, canon)
	case dtype.KindUtf8:
		b := arrowarray.NewStringBuilder(mem)
		defer b.Release()
		for i := 0; i < canon.Len(); i++ {
			if !canon.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(string(array.BytesAt(canon, i)))
		}
		return b.NewArray(), nil
	case dtype.KindBinary:
		b := arrowarray.NewBinaryBuilder(mem, arrowpkg.BinaryTypes.Binary)
		defer b.Release()
		for i := 0; i < canon.Len(); i++ {
			if !canon.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(array.BytesAt(canon, i))
		}
		return b.NewArray(), nil
	default:
		return nil, verrors.NotImplemented("compute.to_arrow", canon.DType().Kind().String())
	}
}

func primitiveToArrow(mem memory.Allocator, a *array.Array) (arrowpkg.Array, error) {
	pt := a.DType().PType()
	switch pt {
	case dtype.I8:
		b := arrowarray.NewInt8Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if !a.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(int8(array.Int64ValueAt(a, i)))
		}
		return b.NewArray(), nil
	case dtype.I16:
		b := arrowarray.NewInt16Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if !a.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(int16(array.Int64ValueAt(a, i)))
		}
		return b.NewArray(), nil
	case dtype.I32:
		b := arrowarray.NewInt32Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if !a.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(int32(array.Int64ValueAt(a, i)))
		}
		return b.NewArray(), nil
	case dtype.I64:
		b := arrowarray.NewInt64Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if !a.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(array.Int64ValueAt(a, i))
		}
		return b.NewArray(), nil
	case dtype.U8:
		b := arrowarray.NewUint8Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if !a.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(uint8(array.Uint64ValueAt(a, i)))
		}
		return b.NewArray(), nil
	case dtype.U16:
		b := arrowarray.NewUint16Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if !a.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(uint16(array.Uint64ValueAt(a, i)))
		}
		return b.NewArray(), nil
	case dtype.U32:
		b := arrowarray.NewUint32Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if !a.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(uint32(array.Uint64ValueAt(a, i)))
		}
		return b.NewArray(), nil
	case dtype.U64:
		b := arrowarray.NewUint64Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if !a.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(array.Uint64ValueAt(a, i))
		}
		return b.NewArray(), nil
	case dtype.F32:
		b := arrowarray.NewFloat32Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if !a.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(float32(array.Float64ValueAt(a, i)))
		}
		return b.NewArray(), nil
	case dtype.F64:
		b := arrowarray.NewFloat64Builder(mem)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			if !a.IsValid(i) {
				b.AppendNull()
				continue
			}
			b.Append(array.Float64ValueAt(a, i))
		}
		return b.NewArray(), nil
	default:
		return nil, verrors.NotImplemented("compute.to_arrow", pt.String())
	}
}

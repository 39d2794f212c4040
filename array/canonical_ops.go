package array

import (
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/validity"
)

// CanonicalTake gathers elements of a canonical array at the given
// indices, producing a new canonical array of the same dtype. It is the
// shared implementation behind compute.Take's canonical fallback and
// behind Dict/RunEnd's Canonicalize (which expand compressed
// representations by gathering their values child).
func CanonicalTake(ctx *Context, a *Array, indices []int) (*Array, error) {
	if !IsCanonical(a.Encoding()) {
		canon, err := Canonicalize(ctx, a)
		if err != nil {
			return nil, err
		}
		a = canon
	}
	newValid, err := a.valid.Take(indices)
	if err != nil {
		return nil, err
	}

	switch a.Encoding() {
	case EncodingNull:
		return NewNull(len(indices)), nil
	case EncodingBool:
		bits := make([]bool, len(indices))
		for i, idx := range indices {
			bits[i] = BoolValueAt(a, idx)
		}
		return NewBool(len(indices), PackBools(bits), newValid)
	case EncodingPrimitive:
		pt := a.DType().PType()
		switch {
		case pt.IsFloat():
			vs := make([]float64, len(indices))
			for i, idx := range indices {
				vs[i] = Float64ValueAt(a, idx)
			}
			return NewPrimitive(pt, len(indices), EncodeFloat64s(pt, vs), newValid)
		case pt.IsSigned():
			vs := make([]int64, len(indices))
			for i, idx := range indices {
				vs[i] = Int64ValueAt(a, idx)
			}
			return NewPrimitive(pt, len(indices), EncodeInt64s(pt, vs), newValid)
		default:
			vs := make([]uint64, len(indices))
			for i, idx := range indices {
				vs[i] = Uint64ValueAt(a, idx)
			}
			return NewPrimitive(pt, len(indices), EncodeUint64s(pt, vs), newValid)
		}
	case EncodingDecimal:
		out := make([]byte, len(indices)*decimalWidth)
		for i, idx := range indices {
			copy(out[i*decimalWidth:], a.buffers[0].Bytes()[idx*decimalWidth:(idx+1)*decimalWidth])
		}
		return New(a.DType(), len(indices), EncodingDecimal, nil, []*buffer.Buffer{buffer.Wrap(out, decimalWidth)}, nil, newValid), nil
	case EncodingVarBinView, EncodingVarBin:
		offsets := make([]uint32, len(indices)+1)
		var data []byte
		for i, idx := range indices {
			b := BytesAt(a, idx)
			data = append(data, b...)
			offsets[i+1] = uint32(len(data))
		}
		return NewVarBin(a.DType().Kind() == dtype.KindUtf8, offsets, data, newValid)
	case EncodingStruct:
		fields := make([]*Array, len(a.children))
		for i, c := range a.children {
			f, err := CanonicalTake(ctx, c, indices)
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		return NewStruct(a.DType(), fields, newValid)
	case EncodingList:
		elems := make([]*Array, len(indices))
		for i, idx := range indices {
			start, stop := ListBoundsAt(a, idx)
			within := make([]int, stop-start)
			for j := range within {
				within[j] = start + j
			}
			e, err := CanonicalTake(ctx, a.children[0], within)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		merged, offsets, err := concatCanonical(ctx, a.Element(), elems)
		if err != nil {
			return nil, err
		}
		return NewList(a.DType(), offsets, merged, newValid)
	case EncodingExtension:
		storage, err := CanonicalTake(ctx, a.children[0], indices)
		if err != nil {
			return nil, err
		}
		return NewExtension(a.DType(), storage), nil
	case EncodingConstant:
		return NewConstant(ConstantValue(a), len(indices)), nil
	case EncodingChunked:
		flat, err := flattenChunked(ctx, a)
		if err != nil {
			return nil, err
		}
		return CanonicalTake(ctx, flat, indices)
	default:
		return nil, verrors.NotImplemented("array.canonical_take", a.Encoding().String())
	}
}

// Element is a convenience accessor duplicated from dtype.DType.Element for
// List arrays, kept here to avoid importing dtype in call sites that only
// have an *Array.
func (a *Array) Element() dtype.DType { return a.dt.Element() }

// flattenChunked concatenates a Chunked array's canonicalized chunks into
// a single canonical array of the same dtype.
func flattenChunked(ctx *Context, a *Array) (*Array, error) {
	canonChunks := make([]*Array, len(a.children))
	for i, c := range a.children {
		cc, err := Canonicalize(ctx, c)
		if err != nil {
			return nil, err
		}
		canonChunks[i] = cc
	}
	merged, _, err := concatCanonical(ctx, a.DType(), canonChunks)
	return merged, err
}

// concatCanonical concatenates canonical arrays of identical dtype,
// returning the merged array and the cumulative row-offset vector
// (len(parts)+1 entries) useful for List's offsets.
func concatCanonical(ctx *Context, dt dtype.DType, parts []*Array) (*Array, []uint32, error) {
	offsets := make([]uint32, len(parts)+1)
	total := 0
	for i, p := range parts {
		total += p.Len()
		offsets[i+1] = uint32(total)
	}
	if len(parts) == 0 {
		return nil, offsets, verrors.InvalidArgument("array.concat", "no parts to concatenate")
	}
	switch dt.Kind() {
	case dtype.KindPrimitive:
		pt := dt.PType()
		switch {
		case pt.IsFloat():
			vs := make([]float64, 0, total)
			bits := make([]bool, 0, total)
			for _, p := range parts {
				for i := 0; i < p.Len(); i++ {
					vs = append(vs, Float64ValueAt(p, i))
					bits = append(bits, p.IsValid(i))
				}
			}
			arr, err := NewPrimitive(pt, total, EncodeFloat64s(pt, vs), validity.FromBits(bits))
			return arr, offsets, err
		case pt.IsSigned():
			vs := make([]int64, 0, total)
			bits := make([]bool, 0, total)
			for _, p := range parts {
				for i := 0; i < p.Len(); i++ {
					vs = append(vs, Int64ValueAt(p, i))
					bits = append(bits, p.IsValid(i))
				}
			}
			arr, err := NewPrimitive(pt, total, EncodeInt64s(pt, vs), validity.FromBits(bits))
			return arr, offsets, err
		default:
			vs := make([]uint64, 0, total)
			bits := make([]bool, 0, total)
			for _, p := range parts {
				for i := 0; i < p.Len(); i++ {
					vs = append(vs, Uint64ValueAt(p, i))
					bits = append(bits, p.IsValid(i))
				}
			}
			arr, err := NewPrimitive(pt, total, EncodeUint64s(pt, vs), validity.FromBits(bits))
			return arr, offsets, err
		}
	case dtype.KindBool:
		bits := make([]bool, 0, total)
		validBits := make([]bool, 0, total)
		for _, p := range parts {
			for i := 0; i < p.Len(); i++ {
				bits = append(bits, BoolValueAt(p, i))
				validBits = append(validBits, p.IsValid(i))
			}
		}
		arr, err := NewBool(total, PackBools(bits), validity.FromBits(validBits))
		return arr, offsets, err
	case dtype.KindUtf8, dtype.KindBinary:
		var data []byte
		off := make([]uint32, 0, total+1)
		off = append(off, 0)
		validBits := make([]bool, 0, total)
		for _, p := range parts {
			for i := 0; i < p.Len(); i++ {
				data = append(data, BytesAt(p, i)...)
				off = append(off, uint32(len(data)))
				validBits = append(validBits, p.IsValid(i))
			}
		}
		arr, err := NewVarBin(dt.Kind() == dtype.KindUtf8, off, data, validity.FromBits(validBits))
		return arr, offsets, err
	case dtype.KindStruct:
		fieldArrs := make([]*Array, len(dt.Fields()))
		validBits := make([]bool, 0, total)
		for fi := range dt.Fields() {
			fieldParts := make([]*Array, len(parts))
			for pi, p := range parts {
				fieldParts[pi] = p.children[fi]
			}
			merged, _, err := concatCanonical(ctx, dt.Fields()[fi].Type, fieldParts)
			if err != nil {
				return nil, nil, err
			}
			fieldArrs[fi] = merged
		}
		for _, p := range parts {
			for i := 0; i < p.Len(); i++ {
				validBits = append(validBits, p.IsValid(i))
			}
		}
		arr, err := NewStruct(dt, fieldArrs, validity.FromBits(validBits))
		return arr, offsets, err
	default:
		return nil, nil, verrors.NotImplemented("array.concat", dt.Kind().String())
	}
}

// Package vfile implements Vortex's on-disk file format (§6.1, §6.2): the
// postscript/file-layout/file-statistics/dtype footer tables, the segment
// payload region they describe, and the writer/reader pair that produces
// and consumes them.
//
// The footer tables are flatbuffers, built and read with the low-level
// Builder/Table primitives in github.com/google/flatbuffers rather than
// flatc-generated accessors: there is no .fbs schema compiler step in this
// module, so every table below hand-rolls the Start/Add/End builder calls
// and the Offset/Vector/ByteVector reader calls flatc would otherwise
// generate.
package vfile

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// vt computes a vtable field offset from a 0-based field index, matching
// the layout flatc emits: two header shorts (vtable size, object size)
// followed by one uint16 per field.
func vt(field int) flatbuffers.VOffsetT {
	return flatbuffers.VOffsetT(4 + 2*field)
}

// offsetVector writes a vector of table/string offsets, in the reverse
// order flatbuffers requires (vectors are built back-to-front).
func offsetVector(b *flatbuffers.Builder, offsets []flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	b.StartVector(4, len(offsets), 4)
	for i := len(offsets) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offsets[i])
	}
	return b.EndVector(len(offsets))
}

// int64Vector writes a vector of int64s.
func int64Vector(b *flatbuffers.Builder, vals []int64) flatbuffers.UOffsetT {
	b.StartVector(8, len(vals), 8)
	for i := len(vals) - 1; i >= 0; i-- {
		b.PrependInt64(vals[i])
	}
	return b.EndVector(len(vals))
}

// tableOffset reads field's table offset (0 if absent) and, if present,
// resolves the indirection to the table's own position.
func tableOffset(t *flatbuffers.Table, field int) flatbuffers.UOffsetT {
	o := t.Offset(vt(field))
	if o == 0 {
		return 0
	}
	return t.Indirect(o + t.Pos)
}

// vectorLen reports how many elements the vector at field holds (0 if the
// field is absent).
func vectorLen(t *flatbuffers.Table, field int) int {
	o := t.Offset(vt(field))
	if o == 0 {
		return 0
	}
	return t.VectorLen(o + t.Pos)
}

// vectorTableAt resolves element i of a vector-of-tables field.
func vectorTableAt(t *flatbuffers.Table, field, i int) flatbuffers.UOffsetT {
	o := t.Offset(vt(field))
	a := t.Vector(o + t.Pos)
	return t.Indirect(a + flatbuffers.UOffsetT(i)*4)
}

func byteVector(t *flatbuffers.Table, field int) []byte {
	o := t.Offset(vt(field))
	if o == 0 {
		return nil
	}
	return t.ByteVector(o + t.Pos)
}

func stringField(t *flatbuffers.Table, field int) string {
	o := t.Offset(vt(field))
	if o == 0 {
		return ""
	}
	return string(t.ByteVector(o + t.Pos))
}

func boolField(t *flatbuffers.Table, field int) bool {
	o := t.Offset(vt(field))
	if o == 0 {
		return false
	}
	return t.GetBool(o + t.Pos)
}

func uint8Field(t *flatbuffers.Table, field int) uint8 {
	o := t.Offset(vt(field))
	if o == 0 {
		return 0
	}
	return t.GetUint8(o + t.Pos)
}

func uint32Field(t *flatbuffers.Table, field int) uint32 {
	o := t.Offset(vt(field))
	if o == 0 {
		return 0
	}
	return t.GetUint32(o + t.Pos)
}

func uint64Field(t *flatbuffers.Table, field int) uint64 {
	o := t.Offset(vt(field))
	if o == 0 {
		return 0
	}
	return t.GetUint64(o + t.Pos)
}

func int64Field(t *flatbuffers.Table, field int) int64 {
	o := t.Offset(vt(field))
	if o == 0 {
		return 0
	}
	return t.GetInt64(o + t.Pos)
}

func int64VectorAt(t *flatbuffers.Table, field int) []int64 {
	o := t.Offset(vt(field))
	if o == 0 {
		return nil
	}
	a := t.Vector(o + t.Pos)
	n := t.VectorLen(o + t.Pos)
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = t.GetInt64(a + flatbuffers.UOffsetT(i)*8)
	}
	return out
}

func rootTable(buf []byte) *flatbuffers.Table {
	n := flatbuffers.GetUOffsetT(buf)
	return &flatbuffers.Table{Bytes: buf, Pos: n}
}

package vfile

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/vortex-db/vortex/array"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/layout"
	"github.com/vortex-db/vortex/segment"
	"github.com/vortex-db/vortex/stats"
	"github.com/vortex-db/vortex/validity"
)

// layoutKind tags which of the four layout.Layout implementations a Layout
// table encodes (§4.5); distinct from any of the package's own type
// switches, since only vfile needs a stable numeric tag for the wire.
type layoutKind uint8

const (
	layoutKindFlat layoutKind = iota
	layoutKindChunked
	layoutKindStruct
	layoutKindStats
)

// BufferRef table vtable slots.
const (
	bufRefVTSegment = iota
	bufRefVTAlignment
)

// Layout table vtable slots.
const (
	layoutVTKind = iota
	layoutVTDType
	layoutVTRowCount
	layoutVTChildren
	layoutVTHasStructValid
	layoutVTStructValid
	layoutVTEncodingID
	layoutVTMetadata
	layoutVTBuffers
	layoutVTValidKind
	layoutVTValidSegment
	layoutVTStatsKinds
	layoutVTStatsSets
)

func writeBufferRef(b *flatbuffers.Builder, ref layout.BufferRef) flatbuffers.UOffsetT {
	b.StartObject(2)
	b.PrependUint32Slot(bufRefVTSegment, uint32(ref.Segment), 0)
	b.PrependInt32Slot(bufRefVTAlignment, int32(ref.Alignment), 0)
	return b.EndObject()
}

func readBufferRef(t *flatbuffers.Table) layout.BufferRef {
	return layout.BufferRef{
		Segment:   segment.ID(uint32Field(t, bufRefVTSegment)),
		Alignment: int(int32(uint32Field(t, bufRefVTAlignment))),
	}
}

// writeLayout serializes l as a Layout table, recursing into children.
func writeLayout(b *flatbuffers.Builder, l layout.Layout) (flatbuffers.UOffsetT, error) {
	switch n := l.(type) {
	case *layout.FlatLayout:
		return writeFlatLayout(b, n)
	case *layout.ChunkedLayout:
		return writeChunkedLayout(b, n)
	case *layout.StructLayout:
		return writeStructLayout(b, n)
	case *layout.StatsLayout:
		return writeStatsLayout(b, n)
	default:
		return 0, verrors.NotImplemented("vfile.layout.write", "unknown layout implementation")
	}
}

func writeFlatLayout(b *flatbuffers.Builder, l *layout.FlatLayout) (flatbuffers.UOffsetT, error) {
	dtOff := writeDType(b, l.DType())

	bufferRefs := l.BufferRefs()
	bufOffs := make([]flatbuffers.UOffsetT, len(bufferRefs))
	for i, ref := range bufferRefs {
		bufOffs[i] = writeBufferRef(b, ref)
	}
	buffersOff := offsetVector(b, bufOffs)

	children := l.Children()
	childOffs := make([]flatbuffers.UOffsetT, len(children))
	for i, c := range children {
		off, err := writeLayout(b, c)
		if err != nil {
			return 0, err
		}
		childOffs[i] = off
	}
	var childrenOff flatbuffers.UOffsetT
	if len(childOffs) > 0 {
		childrenOff = offsetVector(b, childOffs)
	}

	var metaOff flatbuffers.UOffsetT
	if meta := l.Metadata(); len(meta) > 0 {
		metaOff = b.CreateByteVector(meta)
	}

	valid := l.ValidityDescriptor()

	b.StartObject(13)
	b.PrependByteSlot(layoutVTKind, byte(layoutKindFlat), 0)
	b.PrependUOffsetTSlot(layoutVTDType, dtOff, 0)
	b.PrependUint64Slot(layoutVTRowCount, uint64(l.RowCount()), 0)
	if childrenOff != 0 {
		b.PrependUOffsetTSlot(layoutVTChildren, childrenOff, 0)
	}
	b.PrependUint32Slot(layoutVTEncodingID, uint32(l.EncodingID()), 0)
	if metaOff != 0 {
		b.PrependUOffsetTSlot(layoutVTMetadata, metaOff, 0)
	}
	b.PrependUOffsetTSlot(layoutVTBuffers, buffersOff, 0)
	b.PrependByteSlot(layoutVTValidKind, byte(valid.Kind), 0)
	b.PrependUint32Slot(layoutVTValidSegment, uint32(valid.Segment), 0)
	return b.EndObject(), nil
}

func writeChunkedLayout(b *flatbuffers.Builder, l *layout.ChunkedLayout) (flatbuffers.UOffsetT, error) {
	dtOff := writeDType(b, l.DType())
	children := l.Children()
	childOffs := make([]flatbuffers.UOffsetT, len(children))
	for i, c := range children {
		off, err := writeLayout(b, c)
		if err != nil {
			return 0, err
		}
		childOffs[i] = off
	}
	childrenOff := offsetVector(b, childOffs)

	b.StartObject(13)
	b.PrependByteSlot(layoutVTKind, byte(layoutKindChunked), 0)
	b.PrependUOffsetTSlot(layoutVTDType, dtOff, 0)
	b.PrependUint64Slot(layoutVTRowCount, uint64(l.RowCount()), 0)
	b.PrependUOffsetTSlot(layoutVTChildren, childrenOff, 0)
	return b.EndObject(), nil
}

func writeStructLayout(b *flatbuffers.Builder, l *layout.StructLayout) (flatbuffers.UOffsetT, error) {
	dtOff := writeDType(b, l.DType())
	fields := l.FieldLayouts()
	fieldOffs := make([]flatbuffers.UOffsetT, len(fields))
	for i, f := range fields {
		off, err := writeLayout(b, f)
		if err != nil {
			return 0, err
		}
		fieldOffs[i] = off
	}
	childrenOff := offsetVector(b, fieldOffs)

	var validOff flatbuffers.UOffsetT
	hasValid := l.ValidityLayout() != nil
	if hasValid {
		off, err := writeLayout(b, l.ValidityLayout())
		if err != nil {
			return 0, err
		}
		validOff = off
	}

	b.StartObject(13)
	b.PrependByteSlot(layoutVTKind, byte(layoutKindStruct), 0)
	b.PrependUOffsetTSlot(layoutVTDType, dtOff, 0)
	b.PrependUint64Slot(layoutVTRowCount, uint64(l.RowCount()), 0)
	b.PrependUOffsetTSlot(layoutVTChildren, childrenOff, 0)
	b.PrependBoolSlot(layoutVTHasStructValid, hasValid, false)
	if validOff != 0 {
		b.PrependUOffsetTSlot(layoutVTStructValid, validOff, 0)
	}
	return b.EndObject(), nil
}

func writeStatsLayout(b *flatbuffers.Builder, l *layout.StatsLayout) (flatbuffers.UOffsetT, error) {
	inner := l.Inner()
	innerOff, err := writeChunkedLayout(b, inner)
	if err != nil {
		return 0, err
	}
	childrenOff := offsetVector(b, []flatbuffers.UOffsetT{innerOff})

	setOffs := make([]flatbuffers.UOffsetT, l.NumChunks())
	for i := 0; i < l.NumChunks(); i++ {
		off, err := EncodeStatsSet(b, l.DType(), l.ChunkStats(i))
		if err != nil {
			return 0, err
		}
		setOffs[i] = off
	}
	setsOff := offsetVector(b, setOffs)

	kinds := l.Kinds()
	kindBytes := make([]byte, len(kinds))
	for i, k := range kinds {
		kindBytes[i] = byte(k)
	}
	var kindsOff flatbuffers.UOffsetT
	if len(kindBytes) > 0 {
		kindsOff = b.CreateByteVector(kindBytes)
	}

	dtOff := writeDType(b, l.DType())

	b.StartObject(13)
	b.PrependByteSlot(layoutVTKind, byte(layoutKindStats), 0)
	b.PrependUOffsetTSlot(layoutVTDType, dtOff, 0)
	b.PrependUint64Slot(layoutVTRowCount, uint64(l.RowCount()), 0)
	b.PrependUOffsetTSlot(layoutVTChildren, childrenOff, 0)
	if kindsOff != 0 {
		b.PrependUOffsetTSlot(layoutVTStatsKinds, kindsOff, 0)
	}
	b.PrependUOffsetTSlot(layoutVTStatsSets, setsOff, 0)
	return b.EndObject(), nil
}

// readLayout reconstructs a layout.Layout from a Layout table.
func readLayout(t *flatbuffers.Table) (layout.Layout, error) {
	kind := layoutKind(uint8Field(t, layoutVTKind))
	dtOff := tableOffset(t, layoutVTDType)
	dt, err := readDType(&flatbuffers.Table{Bytes: t.Bytes, Pos: dtOff})
	if err != nil {
		return nil, err
	}

	switch kind {
	case layoutKindFlat:
		rowCount := int(uint64Field(t, layoutVTRowCount))
		encodingID := uint32Field(t, layoutVTEncodingID)
		metadata := byteVector(t, layoutVTMetadata)

		nBuf := vectorLen(t, layoutVTBuffers)
		buffers := make([]layout.BufferRef, nBuf)
		for i := 0; i < nBuf; i++ {
			off := vectorTableAt(t, layoutVTBuffers, i)
			buffers[i] = readBufferRef(&flatbuffers.Table{Bytes: t.Bytes, Pos: off})
		}

		nChild := vectorLen(t, layoutVTChildren)
		children := make([]*layout.FlatLayout, nChild)
		for i := 0; i < nChild; i++ {
			off := vectorTableAt(t, layoutVTChildren, i)
			child, err := readLayout(&flatbuffers.Table{Bytes: t.Bytes, Pos: off})
			if err != nil {
				return nil, err
			}
			fc, ok := child.(*layout.FlatLayout)
			if !ok {
				return nil, verrors.InvalidArgument("vfile.layout.read", "flat layout child must itself be flat")
			}
			children[i] = fc
		}

		valid := layout.ValidityDescriptor{
			Kind:    validity.Kind(uint8Field(t, layoutVTValidKind)),
			Segment: segment.ID(uint32Field(t, layoutVTValidSegment)),
		}
		return layout.NewFlatLayout(dt, rowCount, array.EncodingID(encodingID), metadata, buffers, children, valid), nil

	case layoutKindChunked:
		n := vectorLen(t, layoutVTChildren)
		chunks := make([]layout.Layout, n)
		for i := 0; i < n; i++ {
			off := vectorTableAt(t, layoutVTChildren, i)
			c, err := readLayout(&flatbuffers.Table{Bytes: t.Bytes, Pos: off})
			if err != nil {
				return nil, err
			}
			chunks[i] = c
		}
		return layout.NewChunkedLayout(dt, chunks)

	case layoutKindStruct:
		n := vectorLen(t, layoutVTChildren)
		fields := make([]layout.Layout, n)
		for i := 0; i < n; i++ {
			off := vectorTableAt(t, layoutVTChildren, i)
			f, err := readLayout(&flatbuffers.Table{Bytes: t.Bytes, Pos: off})
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		var validLayout layout.Layout
		if boolField(t, layoutVTHasStructValid) {
			off := tableOffset(t, layoutVTStructValid)
			vl, err := readLayout(&flatbuffers.Table{Bytes: t.Bytes, Pos: off})
			if err != nil {
				return nil, err
			}
			validLayout = vl
		}
		return layout.NewStructLayout(dt, fields, validLayout)

	case layoutKindStats:
		innerOff := vectorTableAt(t, layoutVTChildren, 0)
		innerL, err := readLayout(&flatbuffers.Table{Bytes: t.Bytes, Pos: innerOff})
		if err != nil {
			return nil, err
		}
		inner, ok := innerL.(*layout.ChunkedLayout)
		if !ok {
			return nil, verrors.InvalidArgument("vfile.layout.read", "stats layout must wrap a chunked layout")
		}

		kindBytes := byteVector(t, layoutVTStatsKinds)
		kinds := make([]stats.Kind, len(kindBytes))
		for i, kb := range kindBytes {
			kinds[i] = stats.Kind(kb)
		}

		nSets := vectorLen(t, layoutVTStatsSets)
		sets := make([]*stats.Set, nSets)
		for i := 0; i < nSets; i++ {
			off := vectorTableAt(t, layoutVTStatsSets, i)
			s, err := DecodeStatsSet(t, off, dt)
			if err != nil {
				return nil, err
			}
			sets[i] = s
		}
		return layout.NewStatsLayout(inner, kinds, sets)

	default:
		return nil, verrors.NotImplemented("vfile.layout.read", "unknown layout kind")
	}
}

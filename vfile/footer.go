package vfile

import (
	flatbuffers "github.com/google/flatbuffers/go"

	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/layout"
	"github.com/vortex-db/vortex/segment"
)

// Segment table vtable slots. Shared by the postscript's three pointers
// and the file layout's segment map (§6.1 point 3 and point 2 both use
// the same (offset, length, alignment_exponent) record shape).
const (
	segVTOffset = iota
	segVTLength
	segVTAlignmentExponent
	segVTCompressed
)

func writeSegmentRef(b *flatbuffers.Builder, d segment.Descriptor) flatbuffers.UOffsetT {
	b.StartObject(4)
	b.PrependUint64Slot(segVTOffset, uint64(d.Offset), 0)
	b.PrependUint64Slot(segVTLength, uint64(d.Length), 0)
	b.PrependByteSlot(segVTAlignmentExponent, d.AlignmentExponent, 0)
	b.PrependBoolSlot(segVTCompressed, d.Compressed, false)
	return b.EndObject()
}

func readSegmentRef(t *flatbuffers.Table) segment.Descriptor {
	return segment.Descriptor{
		Offset:            int64(uint64Field(t, segVTOffset)),
		Length:            int64(uint64Field(t, segVTLength)),
		AlignmentExponent: uint8Field(t, segVTAlignmentExponent),
		Compressed:        boolField(t, segVTCompressed),
	}
}

// FileLayout table vtable slots.
const (
	fileLayoutVTRoot = iota
	fileLayoutVTSegments
)

// EncodeFileLayout serializes root plus the writer's full segment map into
// a standalone FileLayout flatbuffer (§6.1 point 3).
func EncodeFileLayout(root layout.Layout, segments []segment.Descriptor) ([]byte, error) {
	b := flatbuffers.NewBuilder(1024)
	rootOff, err := writeLayout(b, root)
	if err != nil {
		return nil, err
	}
	segOffs := make([]flatbuffers.UOffsetT, len(segments))
	for i, d := range segments {
		segOffs[i] = writeSegmentRef(b, d)
	}
	segsOff := offsetVector(b, segOffs)

	b.StartObject(2)
	b.PrependUOffsetTSlot(fileLayoutVTRoot, rootOff, 0)
	b.PrependUOffsetTSlot(fileLayoutVTSegments, segsOff, 0)
	top := b.EndObject()
	b.Finish(top)
	return append([]byte(nil), b.FinishedBytes()...), nil
}

// DecodeFileLayout parses a FileLayout flatbuffer, returning the root
// layout tree and the segment map in ID order.
func DecodeFileLayout(buf []byte) (layout.Layout, []segment.Descriptor, error) {
	t := rootTable(buf)
	rootOff := tableOffset(t, fileLayoutVTRoot)
	root, err := readLayout(&flatbuffers.Table{Bytes: t.Bytes, Pos: rootOff})
	if err != nil {
		return nil, nil, err
	}
	n := vectorLen(t, fileLayoutVTSegments)
	segs := make([]segment.Descriptor, n)
	for i := 0; i < n; i++ {
		off := vectorTableAt(t, fileLayoutVTSegments, i)
		segs[i] = readSegmentRef(&flatbuffers.Table{Bytes: t.Bytes, Pos: off})
	}
	return root, segs, nil
}

// PostscriptSegment points at one of the footer's three trailing tables
// (§6.1 point 1-2): DType, file statistics and file layout. DType and
// statistics are optional; layout is mandatory.
type PostscriptSegment struct {
	Offset    int64
	Length    int64
	Alignment int
}

func (s PostscriptSegment) toDescriptor() segment.Descriptor {
	exp := uint8(0)
	for a := s.Alignment; a > 1; a >>= 1 {
		exp++
	}
	return segment.Descriptor{Offset: s.Offset, Length: s.Length, AlignmentExponent: exp}
}

func fromDescriptor(d segment.Descriptor) PostscriptSegment {
	return PostscriptSegment{Offset: d.Offset, Length: d.Length, Alignment: d.Alignment()}
}

// Postscript is the file's fixed-size-less-but-final table (§6.1 point 2):
// pointers to the three preceding footer tables.
type Postscript struct {
	DType      *PostscriptSegment
	Statistics *PostscriptSegment
	Layout     PostscriptSegment
}

// Postscript table vtable slots.
const (
	psVTHasDType = iota
	psVTDType
	psVTHasStats
	psVTStatistics
	psVTLayout
)

// EncodePostscript serializes ps as a standalone Postscript flatbuffer.
func EncodePostscript(ps Postscript) []byte {
	b := flatbuffers.NewBuilder(128)
	var dtOff, statsOff flatbuffers.UOffsetT
	if ps.DType != nil {
		dtOff = writeSegmentRef(b, ps.DType.toDescriptor())
	}
	if ps.Statistics != nil {
		statsOff = writeSegmentRef(b, ps.Statistics.toDescriptor())
	}
	layoutOff := writeSegmentRef(b, ps.Layout.toDescriptor())

	b.StartObject(5)
	b.PrependBoolSlot(psVTHasDType, ps.DType != nil, false)
	if dtOff != 0 {
		b.PrependUOffsetTSlot(psVTDType, dtOff, 0)
	}
	b.PrependBoolSlot(psVTHasStats, ps.Statistics != nil, false)
	if statsOff != 0 {
		b.PrependUOffsetTSlot(psVTStatistics, statsOff, 0)
	}
	b.PrependUOffsetTSlot(psVTLayout, layoutOff, 0)
	root := b.EndObject()
	b.Finish(root)
	return append([]byte(nil), b.FinishedBytes()...)
}

// DecodePostscript parses a Postscript flatbuffer.
func DecodePostscript(buf []byte) Postscript {
	t := rootTable(buf)
	var ps Postscript
	if boolField(t, psVTHasDType) {
		off := tableOffset(t, psVTDType)
		d := fromDescriptor(readSegmentRef(&flatbuffers.Table{Bytes: t.Bytes, Pos: off}))
		ps.DType = &d
	}
	if boolField(t, psVTHasStats) {
		off := tableOffset(t, psVTStatistics)
		d := fromDescriptor(readSegmentRef(&flatbuffers.Table{Bytes: t.Bytes, Pos: off}))
		ps.Statistics = &d
	}
	layoutOff := tableOffset(t, psVTLayout)
	ps.Layout = fromDescriptor(readSegmentRef(&flatbuffers.Table{Bytes: t.Bytes, Pos: layoutOff}))
	return ps
}

// magic identifies a Vortex file; version gates format evolution.
var magic = [2]byte{'V', 'X'}

const fileVersion uint16 = 1

// trailerSize is the fixed 8-byte trailer every file ends with (§6.1
// point 1): magic(2) + version(2) + postscript length(4).
const trailerSize = 8

// encodeTrailer writes the final 8 bytes: magic, version, and the
// postscript's byte length.
func encodeTrailer(postscriptLen uint32) []byte {
	out := make([]byte, trailerSize)
	out[0], out[1] = magic[0], magic[1]
	out[2] = byte(fileVersion)
	out[3] = byte(fileVersion >> 8)
	out[4] = byte(postscriptLen)
	out[5] = byte(postscriptLen >> 8)
	out[6] = byte(postscriptLen >> 16)
	out[7] = byte(postscriptLen >> 24)
	return out
}

// decodeTrailer validates magic and version before returning the
// postscript's byte length (§6.1 "version mismatch is a fatal read
// error").
func decodeTrailer(raw []byte) (postscriptLen uint32, err error) {
	if len(raw) != trailerSize {
		return 0, verrors.InvalidArgument("vfile.trailer.decode", "trailer must be 8 bytes")
	}
	if raw[0] != magic[0] || raw[1] != magic[1] {
		return 0, verrors.Serialization("vfile.trailer.decode", "bad magic bytes")
	}
	version := uint16(raw[2]) | uint16(raw[3])<<8
	if version != fileVersion {
		return 0, verrors.Serialization("vfile.trailer.decode", "unsupported file version")
	}
	return uint32(raw[4]) | uint32(raw[5])<<8 | uint32(raw[6])<<16 | uint32(raw[7])<<24, nil
}

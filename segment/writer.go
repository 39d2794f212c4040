package segment

import (
	"io"
	"math/bits"

	"github.com/vortex-db/vortex/buffer"
	verrors "github.com/vortex-db/vortex/internal/errors"
)

// Writer accepts one or more buffers per segment, concatenates them
// in-order at the file's current offset, pads to the requested alignment,
// and records the resulting (offset, length, alignment) in the segment
// map (§4.6). It writes directly to sink rather than buffering the whole
// file in memory, matching the teacher's streaming-write preference in
// internal/storage's PutReader paths over building a []byte in memory.
type Writer struct {
	sink   io.Writer
	offset int64
	segs   *StaticMap
	codec  Codec
}

// WriterOption configures optional Writer behavior.
type WriterOption func(*Writer)

// WithCodec compresses every segment this Writer writes with codec,
// skipping segments compression doesn't shrink (see compressSegment).
func WithCodec(codec Codec) WriterOption {
	return func(w *Writer) { w.codec = codec }
}

// NewWriter constructs a Writer appending to sink, whose current position
// must already be at startOffset (the payload region always begins at
// byte 0 of the file per §6.1).
func NewWriter(sink io.Writer, startOffset int64, opts ...WriterOption) *Writer {
	w := &Writer{sink: sink, offset: startOffset, segs: NewStaticMap(nil)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SegmentMap exposes the writer's running segment table, snapshotted at
// finish time into the file-layout flatbuffer.
func (w *Writer) SegmentMap() *StaticMap { return w.segs }

// WriteSegment concatenates bufs in order, pads the start to the
// requested alignment (a power of two; 1 means no padding), writes the
// padding and payload, and returns the new segment's ID.
func (w *Writer) WriteSegment(bufs []*buffer.Buffer, alignment int) (ID, error) {
	if alignment <= 0 || (alignment&(alignment-1)) != 0 {
		return 0, verrors.InvalidArgument("segment.writer.write_segment", "alignment must be a power of two")
	}
	pad := alignmentPadding(w.offset, alignment)
	if pad > 0 {
		if _, err := w.sink.Write(make([]byte, pad)); err != nil {
			return 0, verrors.IO("segment.writer.pad", err)
		}
		w.offset += pad
	}
	start := w.offset
	var total int64
	var compressed bool
	if w.codec != CodecNone {
		raw := concatBuffers(bufs)
		out, ok := compressSegment(w.codec, raw)
		n, err := w.sink.Write(out)
		if err != nil {
			return 0, verrors.IO("segment.writer.write", err)
		}
		total = int64(n)
		compressed = ok
	} else {
		for _, b := range bufs {
			n, err := w.sink.Write(b.Bytes())
			if err != nil {
				return 0, verrors.IO("segment.writer.write", err)
			}
			total += int64(n)
		}
	}
	w.offset += total
	id := w.segs.Append(Descriptor{
		Offset:            start,
		Length:            total,
		AlignmentExponent: uint8(bits.TrailingZeros(uint(alignment))),
		Compressed:        compressed,
	})
	return id, nil
}

// concatBuffers joins bufs into one contiguous slice, needed only on the
// compressing path since the uncompressed path streams each buffer to
// sink independently.
func concatBuffers(bufs []*buffer.Buffer) []byte {
	var n int
	for _, b := range bufs {
		n += b.Len()
	}
	out := make([]byte, 0, n)
	for _, b := range bufs {
		out = append(out, b.Bytes()...)
	}
	return out
}

// Offset returns the writer's current byte position, used to place the
// postscript's three trailing segments (dtype, file stats, file layout)
// after the payload region closes.
func (w *Writer) Offset() int64 { return w.offset }

func alignmentPadding(offset int64, alignment int) int64 {
	a := int64(alignment)
	rem := offset % a
	if rem == 0 {
		return 0
	}
	return a - rem
}

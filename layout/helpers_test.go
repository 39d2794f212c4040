package layout

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/dtype"
	"github.com/vortex-db/vortex/segment"
	"github.com/vortex-db/vortex/validity"
)

// writeFlatInt32 writes values as a single Primitive(I32) flat layout,
// returning the layout plus an in-memory segment source serving it, the
// same shape a vfile reader would hand a layout.Reader at open time.
func writeFlatInt32(t *testing.T, values []int64) (*FlatLayout, segment.Source) {
	t.Helper()
	data := array.EncodeInt64s(dtype.I32, values)

	var sink bytes.Buffer
	w := segment.NewWriter(&sink, 0)
	id, err := w.WriteSegment([]*buffer.Buffer{data}, 1)
	require.NoError(t, err)

	payload := buffer.Wrap(sink.Bytes(), 1)
	src := segment.NewInMemorySource(payload, w.SegmentMap())

	fl := NewFlatLayout(dtype.Primitive(dtype.I32, false), len(values), array.EncodingPrimitive, nil,
		[]BufferRef{{Segment: id, Alignment: 1}}, nil, ValidityDescriptor{Kind: validity.KindNonNullable})
	return fl, src
}

// writeFlatInt32Chunks writes each chunk of values as its own segment in a
// shared writer, returning one FlatLayout per chunk and a single segment
// source serving all of them (mirroring how a ChunkedLayout's children
// share one underlying file source).
func writeFlatInt32Chunks(t *testing.T, chunks [][]int64) ([]*FlatLayout, segment.Source) {
	t.Helper()
	var sink bytes.Buffer
	w := segment.NewWriter(&sink, 0)

	layouts := make([]*FlatLayout, len(chunks))
	for i, values := range chunks {
		data := array.EncodeInt64s(dtype.I32, values)
		id, err := w.WriteSegment([]*buffer.Buffer{data}, 1)
		require.NoError(t, err)
		layouts[i] = NewFlatLayout(dtype.Primitive(dtype.I32, false), len(values), array.EncodingPrimitive, nil,
			[]BufferRef{{Segment: id, Alignment: 1}}, nil, ValidityDescriptor{Kind: validity.KindNonNullable})
	}
	payload := buffer.Wrap(sink.Bytes(), 1)
	src := segment.NewInMemorySource(payload, w.SegmentMap())
	return layouts, src
}

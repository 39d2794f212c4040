package vfile

import (
	"io"

	"github.com/google/uuid"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/buffer"
	"github.com/vortex-db/vortex/compute"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/internal/logger"
	"github.com/vortex-db/vortex/layout"
	"github.com/vortex-db/vortex/segment"
	"github.com/vortex-db/vortex/stats"
	"github.com/vortex-db/vortex/validity"
)

// columnWriter accumulates pushes for one column (a whole file's root, or
// one struct field) and produces a single Layout describing everything it
// was given (§6.4).
type columnWriter interface {
	push(a *array.Array) error
	finish() (layout.Layout, error)
}

// writeValidity records v as a ValidityDescriptor, writing a one-byte-
// per-element segment only for the KindArray case (matching the decode
// side's resolveValidity in layout/flat.go).
func writeValidity(w *segment.Writer, v validity.Validity) (layout.ValidityDescriptor, error) {
	if v.Kind() != validity.KindArray {
		return layout.ValidityDescriptor{Kind: v.Kind()}, nil
	}
	bits := v.Bits()
	raw := make([]byte, len(bits))
	for i, ok := range bits {
		if ok {
			raw[i] = 1
		}
	}
	buf, err := buffer.NewAligned(raw, 1)
	if err != nil {
		return layout.ValidityDescriptor{}, err
	}
	id, err := w.WriteSegment([]*buffer.Buffer{buf}, 1)
	if err != nil {
		return layout.ValidityDescriptor{}, err
	}
	return layout.ValidityDescriptor{Kind: validity.KindArray, Segment: id}, nil
}

// writeArrayAsFlat writes a as one FlatLayout node: its own buffers as
// segments, its validity, and its children recursively as nested
// FlatLayouts. It never inspects the encoding beyond the generic
// Buffers/Children/Metadata accessors (§6.2 "encoding-opaque"), so it
// works for any registered encoding including ones this writer has never
// heard of.
func writeArrayAsFlat(w *segment.Writer, a *array.Array) (*layout.FlatLayout, error) {
	bufRefs := make([]layout.BufferRef, len(a.Buffers()))
	for i, buf := range a.Buffers() {
		id, err := w.WriteSegment([]*buffer.Buffer{buf}, buf.Alignment())
		if err != nil {
			return nil, err
		}
		bufRefs[i] = layout.BufferRef{Segment: id, Alignment: buf.Alignment()}
	}

	children := make([]*layout.FlatLayout, len(a.Children()))
	for i, c := range a.Children() {
		cl, err := writeArrayAsFlat(w, c)
		if err != nil {
			return nil, err
		}
		children[i] = cl
	}

	valid, err := writeValidity(w, a.Validity())
	if err != nil {
		return nil, err
	}

	return layout.NewFlatLayout(a.DType(), a.Len(), a.Encoding(), a.Metadata(), bufRefs, children, valid), nil
}

// flatColumnWriter implements the Flat strategy: each push becomes its
// own FlatLayout node. Finish wraps more than one push in a ChunkedLayout
// since a Layout tree always describes exactly one node's worth of rows
// per push otherwise.
type flatColumnWriter struct {
	dt     dtype.DType
	w      *segment.Writer
	chunks []layout.Layout
}

func newFlatColumnWriter(dt dtype.DType, w *segment.Writer) *flatColumnWriter {
	return &flatColumnWriter{dt: dt, w: w}
}

func (c *flatColumnWriter) push(a *array.Array) error {
	fl, err := writeArrayAsFlat(c.w, a)
	if err != nil {
		return err
	}
	c.chunks = append(c.chunks, fl)
	return nil
}

func (c *flatColumnWriter) finish() (layout.Layout, error) {
	if len(c.chunks) == 1 {
		return c.chunks[0], nil
	}
	if len(c.chunks) == 0 {
		return layout.NewFlatLayout(c.dt, 0, array.EncodingNull, nil, nil, nil, layout.ValidityDescriptor{Kind: validity.KindNonNullable}), nil
	}
	return layout.NewChunkedLayout(c.dt, c.chunks)
}

// chunkedColumnWriter implements the Chunked strategy (and, when
// statsKinds is non-empty, folds in the Stats strategy): pushes buffer
// until chunkRows rows have accumulated, at which point they are combined
// zero-copy via array.NewChunked (no concat primitive exists in compute)
// and handed to a fresh sub-writer for exactly one batch.
type chunkedColumnWriter struct {
	dt         dtype.DType
	w          *segment.Writer
	sub        Strategy
	chunkRows  int
	statsKinds []stats.Kind
	ctx        *array.Context

	pending    []*array.Array
	pendingLen int
	chunks     []layout.Layout
	chunkSets  []*stats.Set
}

func newChunkedColumnWriter(dt dtype.DType, w *segment.Writer, sub Strategy, chunkRows int, statsKinds []stats.Kind, ctx *array.Context) *chunkedColumnWriter {
	return &chunkedColumnWriter{dt: dt, w: w, sub: sub, chunkRows: chunkRows, statsKinds: statsKinds, ctx: ctx}
}

func (c *chunkedColumnWriter) push(a *array.Array) error {
	c.pending = append(c.pending, a)
	c.pendingLen += a.Len()
	for c.pendingLen >= c.chunkRows {
		if err := c.flushBatch(c.chunkRows); err != nil {
			return err
		}
	}
	return nil
}

// flushBatch combines pending arrays (trimming the last one if it
// overshoots rows) into one logical array and writes it through a fresh
// sub-writer, producing exactly one child layout.
func (c *chunkedColumnWriter) flushBatch(rows int) error {
	batch, rest, err := takeRows(c.ctx, c.pending, rows)
	if err != nil {
		return err
	}
	c.pending = rest
	c.pendingLen -= rows

	combined, err := array.NewChunked(c.dt, batch, validity.AllValid(rows))
	if err != nil {
		return err
	}

	sw, err := newColumnWriter(c.dt, c.w, c.sub, c.ctx)
	if err != nil {
		return err
	}
	if err := sw.push(combined); err != nil {
		return err
	}
	l, err := sw.finish()
	if err != nil {
		return err
	}
	c.chunks = append(c.chunks, l)

	if len(c.statsKinds) > 0 {
		set, err := stats.Compute(c.ctx, combined, c.statsKinds)
		if err != nil {
			return err
		}
		c.chunkSets = append(c.chunkSets, set)
	}
	return nil
}

func (c *chunkedColumnWriter) finish() (layout.Layout, error) {
	if c.pendingLen > 0 {
		if err := c.flushBatch(c.pendingLen); err != nil {
			return nil, err
		}
	}
	chunked, err := layout.NewChunkedLayout(c.dt, c.chunks)
	if err != nil {
		return nil, err
	}
	if len(c.statsKinds) == 0 {
		return chunked, nil
	}
	return layout.NewStatsLayout(chunked, c.statsKinds, c.chunkSets)
}

// takeRows splits arrs into exactly rows rows (slicing the boundary array
// with compute.Slice if necessary) and the remainder.
func takeRows(ctx *array.Context, arrs []*array.Array, rows int) (batch []*array.Array, rest []*array.Array, err error) {
	taken := 0
	i := 0
	for i < len(arrs) && taken < rows {
		a := arrs[i]
		need := rows - taken
		if a.Len() <= need {
			batch = append(batch, a)
			taken += a.Len()
			i++
			continue
		}
		head, err := compute.Slice(ctx, a, 0, need)
		if err != nil {
			return nil, nil, err
		}
		tail, err := compute.Slice(ctx, a, need, a.Len())
		if err != nil {
			return nil, nil, err
		}
		return append(batch, head), append([]*array.Array{tail}, arrs[i+1:]...), nil
	}
	if taken != rows {
		return nil, nil, verrors.InvalidArgument("vfile.writer.take_rows", "insufficient buffered rows")
	}
	rest = append(rest, arrs[i:]...)
	return batch, rest, nil
}

// structColumnWriter implements the Struct strategy: every push is split
// into its fields and routed to persistent per-field writers; validity
// bits are accumulated and packed into a Bool flat array at Finish.
type structColumnWriter struct {
	dt     dtype.DType
	w      *segment.Writer
	fields []columnWriter

	nullable  bool
	validBits []bool
}

func newStructColumnWriter(dt dtype.DType, w *segment.Writer, fieldStrategies map[string]*Strategy, ctx *array.Context) (*structColumnWriter, error) {
	fs := make([]columnWriter, len(dt.Fields()))
	for i, f := range dt.Fields() {
		s, ok := fieldStrategies[f.Name]
		if !ok {
			return nil, verrors.InvalidArgument("vfile.writer.struct", "no strategy for field "+f.Name)
		}
		cw, err := newColumnWriter(f.Type, w, *s, ctx)
		if err != nil {
			return nil, err
		}
		fs[i] = cw
	}
	return &structColumnWriter{dt: dt, w: w, fields: fs, nullable: dt.Nullable()}, nil
}

func (c *structColumnWriter) push(a *array.Array) error {
	for i := range c.dt.Fields() {
		if err := c.fields[i].push(array.FieldAt(a, i)); err != nil {
			return err
		}
	}
	if c.nullable {
		v := a.Validity()
		for i := 0; i < a.Len(); i++ {
			c.validBits = append(c.validBits, v.IsValid(i))
		}
	}
	return nil
}

func (c *structColumnWriter) finish() (layout.Layout, error) {
	fieldLayouts := make([]layout.Layout, len(c.fields))
	for i, fw := range c.fields {
		l, err := fw.finish()
		if err != nil {
			return nil, err
		}
		fieldLayouts[i] = l
	}

	var validLayout layout.Layout
	if c.nullable && len(c.validBits) > 0 {
		boolArr, err := array.NewBool(len(c.validBits), array.PackBools(c.validBits), validity.NonNullable(len(c.validBits)))
		if err != nil {
			return nil, err
		}
		vl, err := writeArrayAsFlat(c.w, boolArr)
		if err != nil {
			return nil, err
		}
		validLayout = vl
	}

	return layout.NewStructLayout(c.dt, fieldLayouts, validLayout)
}

// newColumnWriter constructs the concrete columnWriter for a resolved
// strategy (resolve must already have eliminated VortexDefault nodes).
func newColumnWriter(dt dtype.DType, w *segment.Writer, s Strategy, ctx *array.Context) (columnWriter, error) {
	switch s.kind {
	case stratFlat:
		return newFlatColumnWriter(dt, w), nil
	case stratChunked:
		return newChunkedColumnWriter(dt, w, *s.sub, s.chunkRows, nil, ctx), nil
	case stratStats:
		inner := *s.inner
		return newChunkedColumnWriter(dt, w, *inner.sub, inner.chunkRows, s.statsKinds, ctx), nil
	case stratStruct:
		return newStructColumnWriter(dt, w, s.fields, ctx)
	default:
		return nil, verrors.NotImplemented("vfile.writer.new_column_writer", "unresolved strategy")
	}
}

// Writer produces a Vortex file (§6.4): one column writer tree rooted at
// dt, streaming segment data directly to sink as pushes arrive and
// writing the footer at Finish.
type Writer struct {
	sink      io.WriteSeeker
	dt        dtype.DType
	ctx       *array.Context
	segW      *segment.Writer
	root      columnWriter
	closed    bool
	sessionID uuid.UUID
}

// Option configures optional Writer behavior.
type Option func(*writerConfig)

type writerConfig struct {
	codec segment.Codec
}

// WithCompression makes the writer zstd-compress every segment it writes
// (buffer segments and validity bitmaps alike), falling back to raw
// bytes per segment when compression doesn't shrink it. Off by default:
// most callers read a vortex file for its zero-copy segment model, which
// compression trades away in exchange for smaller files on disk or over
// the wire.
func WithCompression() Option {
	return func(c *writerConfig) { c.codec = segment.CodecZstd }
}

// NewWriter constructs a writer for dt using strategy, resolved against
// dt per §6.4's VortexDefault rules. Each writer is tagged with a random
// session ID, logged at Finish, purely for diagnosing which write produced
// a given file when several run concurrently against the same directory;
// it is not persisted into the file itself.
func NewWriter(sink io.WriteSeeker, dt dtype.DType, strategy Strategy, ctx *array.Context, opts ...Option) (*Writer, error) {
	if ctx == nil {
		ctx = array.DefaultContext()
	}
	cfg := writerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	resolved := resolve(dt, strategy)
	segW := segment.NewWriter(sink, 0, segment.WithCodec(cfg.codec))
	root, err := newColumnWriter(dt, segW, resolved, ctx)
	if err != nil {
		return nil, err
	}
	return &Writer{sink: sink, dt: dt, ctx: ctx, segW: segW, root: root, sessionID: uuid.New()}, nil
}

// SessionID identifies this writer instance for diagnostics/logging.
func (w *Writer) SessionID() string { return w.sessionID.String() }

// Push appends a to the file. a's dtype must match the writer's root
// dtype.
func (w *Writer) Push(a *array.Array) error {
	if w.closed {
		return verrors.InvalidArgument("vfile.writer.push", "writer already finished")
	}
	return w.root.push(a)
}

// Flush is a no-op: the Writer streams segment payloads to sink as they
// are produced rather than buffering them, so there is nothing held back
// to flush short of Finish's footer write.
func (w *Writer) Flush() error { return nil }

// Finish closes out the column writer tree, writes the dtype, file
// statistics and file layout segments followed by the postscript and
// trailer (§6.1), and marks the writer closed.
func (w *Writer) Finish() error {
	if w.closed {
		return verrors.InvalidArgument("vfile.writer.finish", "writer already finished")
	}
	w.closed = true

	root, err := w.root.finish()
	if err != nil {
		return err
	}

	fileStats := collectFileStats(w.dt, root)

	dtypeBytes := EncodeDType(w.dt)
	dtypeOff := w.segW.Offset()
	if _, err := w.sink.Write(dtypeBytes); err != nil {
		return verrors.IO("vfile.writer.finish", err)
	}
	dtypeSeg := PostscriptSegment{Offset: dtypeOff, Length: int64(len(dtypeBytes)), Alignment: 1}

	var statsSeg *PostscriptSegment
	if len(fileStats) > 0 {
		statsBytes := EncodeFileStatistics(w.dt, fileStats)
		off := dtypeOff + int64(len(dtypeBytes))
		if _, err := w.sink.Write(statsBytes); err != nil {
			return verrors.IO("vfile.writer.finish", err)
		}
		s := PostscriptSegment{Offset: off, Length: int64(len(statsBytes)), Alignment: 1}
		statsSeg = &s
	}

	layoutBytes, err := EncodeFileLayout(root, w.segW.SegmentMap().Entries())
	if err != nil {
		return err
	}
	layoutOff := dtypeOff + int64(len(dtypeBytes))
	if statsSeg != nil {
		layoutOff = statsSeg.Offset + statsSeg.Length
	}
	if _, err := w.sink.Write(layoutBytes); err != nil {
		return verrors.IO("vfile.writer.finish", err)
	}
	layoutSeg := PostscriptSegment{Offset: layoutOff, Length: int64(len(layoutBytes)), Alignment: 1}

	ps := Postscript{DType: &dtypeSeg, Statistics: statsSeg, Layout: layoutSeg}
	psBytes := EncodePostscript(ps)
	if _, err := w.sink.Write(psBytes); err != nil {
		return verrors.IO("vfile.writer.finish", err)
	}

	trailer := encodeTrailer(uint32(len(psBytes)))
	if _, err := w.sink.Write(trailer); err != nil {
		return verrors.IO("vfile.writer.finish", err)
	}
	logger.Debug("vfile writer %s finished: %d row(s)", w.sessionID, root.RowCount())
	return nil
}

// collectFileStats walks root's per-field Stats nodes, aggregating each
// one into a file-level stats.Set (§4.5 "File-level stats"; §6.1's file
// statistics table is positional per top-level struct field, so only a
// struct-rooted file carries any).
func collectFileStats(dt dtype.DType, root layout.Layout) map[string]*stats.Set {
	if dt.Kind() != dtype.KindStruct {
		return nil
	}
	sl, ok := root.(*layout.StructLayout)
	if !ok {
		return nil
	}
	fields := make(map[string]*layout.StatsLayout)
	for i, f := range dt.Fields() {
		if fsl, ok := sl.FieldLayouts()[i].(*layout.StatsLayout); ok {
			fields[f.Name] = fsl
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return layout.AggregateFileStats(fields)
}

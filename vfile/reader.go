package vfile

import (
	"context"
	"io"
	"os"

	"github.com/vortex-db/vortex/array"
	"github.com/vortex-db/vortex/dtype"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/layout"
	"github.com/vortex-db/vortex/scan"
	"github.com/vortex-db/vortex/segment"
	"github.com/vortex-db/vortex/stats"
)

// ReadAtSizer is the interface Open reads the footer through: random-access
// reads plus a known size. *os.File has no Size method; OpenFile wraps it
// in an adapter that adds one. Open serves segments only for readers built
// by OpenFile and returns a NotImplemented error for any other ReadAtSizer.
type ReadAtSizer interface {
	io.ReaderAt
	Size() (int64, error)
}

// osFile adapts *os.File to ReadAtSizer.
type osFile struct{ *os.File }

func (f osFile) Size() (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// OpenOptions configures Open (§6.3).
type OpenOptions struct {
	// Context resolves encoding IDs while decoding arrays. Defaults to
	// array.DefaultContext().
	Context *array.Context
}

// File is an opened Vortex file (§6.3): its footer has been parsed, but no
// segment payload is read until a scan requests it.
type File struct {
	ctx     *array.Context
	src     segment.Source
	root    layout.Layout
	dt      dtype.DType
	rows    int
	stats   map[string]*stats.Set
	perCol  map[string]*layout.StatsLayout
}

// Open parses r's footer (§6.1: trailer, postscript, file layout, file
// statistics, dtype) and returns a File ready to be scanned. It reads
// only the footer, not the segment payload region.
func Open(r ReadAtSizer, opts OpenOptions) (*File, error) {
	ctx := opts.Context
	if ctx == nil {
		ctx = array.DefaultContext()
	}

	size, err := r.Size()
	if err != nil {
		return nil, verrors.IO("vfile.open", err)
	}
	if size < trailerSize {
		return nil, verrors.Serialization("vfile.open", "file too small to contain a trailer")
	}

	trailerBuf := make([]byte, trailerSize)
	if _, err := r.ReadAt(trailerBuf, size-trailerSize); err != nil {
		return nil, verrors.IO("vfile.open", err)
	}
	psLen, err := decodeTrailer(trailerBuf)
	if err != nil {
		return nil, err
	}

	psOff := size - trailerSize - int64(psLen)
	if psOff < 0 {
		return nil, verrors.Serialization("vfile.open", "postscript length exceeds file size")
	}
	psBuf := make([]byte, psLen)
	if _, err := r.ReadAt(psBuf, psOff); err != nil {
		return nil, verrors.IO("vfile.open", err)
	}
	ps := DecodePostscript(psBuf)

	layoutBuf := make([]byte, ps.Layout.Length)
	if _, err := r.ReadAt(layoutBuf, ps.Layout.Offset); err != nil {
		return nil, verrors.IO("vfile.open", err)
	}
	root, segs, err := DecodeFileLayout(layoutBuf)
	if err != nil {
		return nil, err
	}

	if ps.DType == nil {
		return nil, verrors.Serialization("vfile.open", "postscript is missing the dtype segment")
	}
	dtBuf := make([]byte, ps.DType.Length)
	if _, err := r.ReadAt(dtBuf, ps.DType.Offset); err != nil {
		return nil, verrors.IO("vfile.open", err)
	}
	dt, err := DecodeDType(dtBuf)
	if err != nil {
		return nil, err
	}

	fileStats := map[string]*stats.Set{}
	if ps.Statistics != nil {
		statsBuf := make([]byte, ps.Statistics.Length)
		if _, err := r.ReadAt(statsBuf, ps.Statistics.Offset); err != nil {
			return nil, verrors.IO("vfile.open", err)
		}
		fileStats, err = DecodeFileStatistics(statsBuf, dt)
		if err != nil {
			return nil, err
		}
	}

	var src segment.Source
	if f, ok := r.(osFile); ok {
		src = segment.NewLocalFileSource(f.File, segment.NewStaticMap(segs))
	} else {
		return nil, verrors.NotImplemented("vfile.open", "non-file backing stores must wrap their own segment.Source")
	}

	return &File{
		ctx:    ctx,
		src:    src,
		root:   root,
		dt:     dt,
		rows:   root.RowCount(),
		stats:  fileStats,
		perCol: collectStatsLayouts(dt, root),
	}, nil
}

// OpenFile is a convenience wrapper around Open for on-disk files.
func OpenFile(path string, opts OpenOptions) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, verrors.IO("vfile.open_file", err)
	}
	return Open(osFile{f}, opts)
}

// Close releases the file's backing storage, if its segment.Source holds
// one open (e.g. OpenFile's *os.File). Sources with nothing to release
// (in-memory, object-store) no-op.
func (f *File) Close() error {
	if c, ok := f.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// DType returns the file's root logical type.
func (f *File) DType() dtype.DType { return f.dt }

// RowCount returns the file's total row count.
func (f *File) RowCount() int { return f.rows }

// Stats returns the file-level statistics recorded per top-level struct
// field, if any were written.
func (f *File) Stats() map[string]*stats.Set { return f.stats }

// Scan opens a Stream over the file's surviving splits (§6.3
// `file.scan(projection, filter, split_by) -> Stream<Array>`).
func (f *File) Scan(ctx context.Context, opts scan.Options, streamOpts scan.StreamOptions) (*scan.Stream, error) {
	if opts.Stats == nil {
		opts.Stats = f.perCol
	}
	scanner, err := scan.NewScanner(f.ctx, f.src, f.root, opts)
	if err != nil {
		return nil, err
	}
	return scan.NewStream(ctx, scanner, streamOpts), nil
}

// collectStatsLayouts walks a struct root's fields, collecting the
// StatsLayout for every field that has one, for use as the scanner's
// pruning input.
func collectStatsLayouts(dt dtype.DType, root layout.Layout) map[string]*layout.StatsLayout {
	if dt.Kind() != dtype.KindStruct {
		return nil
	}
	sl, ok := root.(*layout.StructLayout)
	if !ok {
		return nil
	}
	out := map[string]*layout.StatsLayout{}
	for i, f := range dt.Fields() {
		if fsl, ok := sl.FieldLayouts()[i].(*layout.StatsLayout); ok {
			out[f.Name] = fsl
		}
	}
	return out
}

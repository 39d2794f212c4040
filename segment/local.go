package segment

import (
	"context"
	"os"

	verrors "github.com/vortex-db/vortex/internal/errors"
)

// LocalFileSource serves segments via positioned reads against an open
// file (§4.6 "local file: positioned read with optional aligned read for
// Direct I/O"). Each request runs on its own goroutine so a slow disk
// cannot stall the caller's poll loop; ctx cancellation only stops the
// caller from waiting on the future; the read itself, once started,
// always runs to completion (Go offers no portable way to cancel a
// blocking ReadAt).
type LocalFileSource struct {
	file *os.File
	segs *StaticMap
}

// NewLocalFileSource wraps an already-open file and its segment map.
func NewLocalFileSource(file *os.File, segs *StaticMap) *LocalFileSource {
	return &LocalFileSource{file: file, segs: segs}
}

func (s *LocalFileSource) Descriptor(id ID) (Descriptor, error) { return s.segs.Descriptor(id) }

// Close closes the underlying file, for callers (vfile.File.Close) that
// opened it on this source's behalf and want it released deterministically
// rather than left for the finalizer.
func (s *LocalFileSource) Close() error { return s.file.Close() }

func (s *LocalFileSource) Request(ctx context.Context, id ID, priority Priority) *Future {
	f := NewFuture()
	d, err := s.segs.Descriptor(id)
	if err != nil {
		f.Resolve(nil, err)
		return f
	}
	go func() {
		raw := make([]byte, d.Length)
		if _, err := s.file.ReadAt(raw, d.Offset); err != nil {
			f.Resolve(nil, verrors.IO("segment.local_file.read_at", err))
			return
		}
		buf, err := decompressSegment(d, raw)
		f.Resolve(buf, err)
	}()
	return f
}

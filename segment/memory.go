package segment

import (
	"context"

	"github.com/vortex-db/vortex/buffer"
)

// InMemorySource serves segments as zero-copy slices of a single backing
// buffer (§4.6 "in-memory: zero-copy slice of a single buffer"), the
// common case right after Writer has just finished building a file.
type InMemorySource struct {
	data *buffer.Buffer
	segs *StaticMap
}

// NewInMemorySource wraps data (the whole file's payload region) with the
// segment map describing slices of it.
func NewInMemorySource(data *buffer.Buffer, segs *StaticMap) *InMemorySource {
	return &InMemorySource{data: data, segs: segs}
}

func (s *InMemorySource) Descriptor(id ID) (Descriptor, error) { return s.segs.Descriptor(id) }

// Request resolves immediately; there is no I/O to wait on.
func (s *InMemorySource) Request(ctx context.Context, id ID, priority Priority) *Future {
	f := NewFuture()
	d, err := s.segs.Descriptor(id)
	if err != nil {
		f.Resolve(nil, err)
		return f
	}
	slice, err := s.data.Slice(int(d.Offset), int(d.Offset+d.Length))
	if err != nil {
		f.Resolve(nil, err)
		return f
	}
	if !d.Compressed {
		f.Resolve(slice, nil)
		return f
	}
	buf, err := decompressSegment(d, slice.Bytes())
	f.Resolve(buf, err)
	return f
}

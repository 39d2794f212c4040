package segment

import (
	"context"
	"sync"

	"github.com/vortex-db/vortex/buffer"
	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/internal/storage"
)

// ObjectStoreSource serves segments from a storage.Backend object (§4.6
// "object store: range GET with coalescing"). storage.Backend (adapted
// from the teacher's S3/GCS/Azure clients) exposes only a whole-object
// Get, not a byte-range GET, so this source fetches the object once on
// first request and serves every subsequent segment as an in-memory
// slice — a deliberate simplification from the spec's per-range GET,
// acceptable because vortex files are typically read close together in
// time and a single coalesced fetch dominates many small range requests
// anyway (see DESIGN.md).
type ObjectStoreSource struct {
	backend storage.Backend
	key     string
	segs    *StaticMap

	mu      sync.Mutex
	fetched bool
	data    *buffer.Buffer
	fetchEr error
}

// NewObjectStoreSource wraps backend/key (the file's object) with its
// segment map.
func NewObjectStoreSource(backend storage.Backend, key string, segs *StaticMap) *ObjectStoreSource {
	return &ObjectStoreSource{backend: backend, key: key, segs: segs}
}

func (s *ObjectStoreSource) Descriptor(id ID) (Descriptor, error) { return s.segs.Descriptor(id) }

func (s *ObjectStoreSource) Request(ctx context.Context, id ID, priority Priority) *Future {
	f := NewFuture()
	d, err := s.segs.Descriptor(id)
	if err != nil {
		f.Resolve(nil, err)
		return f
	}
	go func() {
		data, err := s.wholeObject(ctx)
		if err != nil {
			f.Resolve(nil, err)
			return
		}
		slice, err := data.Slice(int(d.Offset), int(d.Offset+d.Length))
		if err != nil {
			f.Resolve(nil, err)
			return
		}
		if !d.Compressed {
			f.Resolve(slice, nil)
			return
		}
		buf, err := decompressSegment(d, slice.Bytes())
		f.Resolve(buf, err)
	}()
	return f
}

func (s *ObjectStoreSource) wholeObject(ctx context.Context) (*buffer.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetched {
		return s.data, s.fetchEr
	}
	raw, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.fetchEr = verrors.IO("segment.object_store.get", err)
	} else {
		s.data = buffer.Wrap(raw, 1)
	}
	s.fetched = true
	return s.data, s.fetchEr
}

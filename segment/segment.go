// Package segment implements Vortex's segment model (§4.6): the producer
// side writing append-only (offset, length, alignment) blobs during write,
// and the consumer side (SegmentSource) resolving a segment ID back into
// bytes, whether the file lives in memory, on local disk, or in an object
// store.
package segment

import (
	"context"
	"sync"

	"github.com/vortex-db/vortex/buffer"
	verrors "github.com/vortex-db/vortex/internal/errors"
)

// ID identifies a segment: its position in the file's segment map.
type ID uint32

// Priority hints how urgently a segment is needed, letting a SegmentSource
// reorder a backlog of requests (e.g. a filter column's segments ahead of
// a projection-only column's).
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// Descriptor is one entry of the file's segment map: byte offset, length,
// the power-of-two alignment the writer padded the segment to, and
// whether the writer applied a Codec to the bytes between Offset and
// Offset+Length.
type Descriptor struct {
	Offset            int64
	Length            int64
	AlignmentExponent uint8
	Compressed        bool
}

// Alignment returns the descriptor's alignment in bytes.
func (d Descriptor) Alignment() int { return 1 << d.AlignmentExponent }

// Future represents an in-flight segment request (§4.6 "returns a future
// resolving to the segment's bytes"). It is resolved exactly once, from a
// producer goroutine or inline if the source already has the bytes on
// hand; Poll never blocks, Wait blocks until resolution or ctx is done.
type Future struct {
	done chan struct{}
	buf  *buffer.Buffer
	err  error
}

// NewFuture constructs an unresolved future.
func NewFuture() *Future { return &Future{done: make(chan struct{})} }

// Resolve completes the future. Calling it more than once is a no-op after
// the first call (first writer wins).
func (f *Future) Resolve(buf *buffer.Buffer, err error) {
	select {
	case <-f.done:
		return
	default:
	}
	f.buf, f.err = buf, err
	close(f.done)
}

// Poll reports whether the future has resolved without blocking, per the
// scan engine's poll protocol (§4.7): the caller re-polls after feeding
// completed segments back into the source/cache.
func (f *Future) Poll() (buf *buffer.Buffer, ready bool, err error) {
	select {
	case <-f.done:
		return f.buf, true, f.err
	default:
		return nil, false, nil
	}
}

// Wait blocks until the future resolves or ctx is canceled.
func (f *Future) Wait(ctx context.Context) (*buffer.Buffer, error) {
	select {
	case <-f.done:
		return f.buf, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Source is the reader-side abstraction over a file's segment payload
// region (§4.6): given a segment ID and a priority hint, it returns a
// future resolving to that segment's bytes at the declared alignment.
type Source interface {
	Request(ctx context.Context, id ID, priority Priority) *Future
	// Descriptor returns the segment map entry for id.
	Descriptor(id ID) (Descriptor, error)
}

// StaticMap is the shared (offset, length, alignment) table embedded in
// every concrete Source below; the file-layout flatbuffer is the
// authoritative copy this is built from at open time.
type StaticMap struct {
	mu      sync.RWMutex
	entries []Descriptor
}

// NewStaticMap constructs a segment map from the file layout's segment
// table, in ID order (§6.1: "segment IDs are positions in this array").
func NewStaticMap(entries []Descriptor) *StaticMap {
	cp := make([]Descriptor, len(entries))
	copy(cp, entries)
	return &StaticMap{entries: cp}
}

// Descriptor looks up id's (offset, length, alignment).
func (m *StaticMap) Descriptor(id ID) (Descriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(m.entries) {
		return Descriptor{}, verrors.OutOfBounds("segment.descriptor", int(id), 0, len(m.entries))
	}
	return m.entries[id], nil
}

// Append records a new descriptor and returns its ID, used by SegmentWriter
// to grow the map as segments are written (§4.6 "allocated monotonically").
func (m *StaticMap) Append(d Descriptor) ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := ID(len(m.entries))
	m.entries = append(m.entries, d)
	return id
}

// Len reports the number of segments recorded so far.
func (m *StaticMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Entries returns a snapshot of the segment map, in ID order, for
// embedding into the file-layout flatbuffer at finish time.
func (m *StaticMap) Entries() []Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make([]Descriptor, len(m.entries))
	copy(cp, m.entries)
	return cp
}

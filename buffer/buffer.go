// Package buffer implements Vortex's aligned, reference-counted byte
// buffers: the leaf building block every array, layout and segment is
// built from.
package buffer

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	verrors "github.com/vortex-db/vortex/internal/errors"
)

// MaxAlignment bounds the alignment new_aligned will honor.
const MaxAlignment = 4096

// Buffer is an immutable, reference-counted contiguous byte range with a
// declared alignment. Slicing shares the backing allocation; Aligned copies
// only when the current alignment does not satisfy the request.
type Buffer struct {
	data      []byte
	alignment int
	refs      *int64
}

// NewAligned copies bytes into a freshly allocated buffer whose base
// satisfies alignment (a power of two in [1, MaxAlignment]).
func NewAligned(bytes []byte, alignment int) (*Buffer, error) {
	if !isPowerOfTwo(alignment) || alignment < 1 {
		return nil, verrors.InvalidArgument("buffer.new_aligned", fmt.Sprintf("alignment %d is not a power of two", alignment))
	}
	if alignment > MaxAlignment {
		return nil, verrors.InvalidArgument("buffer.new_aligned", fmt.Sprintf("alignment %d exceeds maximum %d", alignment, MaxAlignment))
	}
	aligned := allocAligned(len(bytes), alignment)
	copy(aligned, bytes)
	refs := int64(1)
	return &Buffer{data: aligned, alignment: alignment, refs: &refs}, nil
}

// Wrap adopts bytes as a buffer with the given (already-satisfied) alignment
// without copying. Used by in-memory segment sources handing back slices of
// a single backing allocation.
func Wrap(bytes []byte, alignment int) *Buffer {
	refs := int64(1)
	return &Buffer{data: bytes, alignment: alignment, refs: &refs}
}

// Len returns the buffer's length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Alignment returns the buffer's declared alignment.
func (b *Buffer) Alignment() int { return b.alignment }

// Bytes exposes the raw backing slice. Callers must not mutate it: buffers
// are immutable once constructed.
func (b *Buffer) Bytes() []byte { return b.data }

// Retain increments the reference count and returns b for chaining.
func (b *Buffer) Retain() *Buffer {
	atomic.AddInt64(b.refs, 1)
	return b
}

// Release decrements the reference count. Go's GC reclaims the backing
// array once all references (including slices derived via Slice) are gone;
// this exists to mirror the teacher's reference-counted ownership contract
// for callers that want deterministic accounting.
func (b *Buffer) Release() {
	atomic.AddInt64(b.refs, -1)
}

// Slice returns an O(1) subview sharing the backing allocation.
func (b *Buffer) Slice(start, stop int) (*Buffer, error) {
	if start < 0 || stop < start || stop > len(b.data) {
		return nil, verrors.OutOfBounds("buffer.slice", stop, start, len(b.data))
	}
	return &Buffer{data: b.data[start:stop], alignment: b.alignment, refs: b.refs}, nil
}

// Aligned returns a buffer satisfying alignment, copying only if necessary.
func (b *Buffer) Aligned(alignment int) (*Buffer, error) {
	if !isPowerOfTwo(alignment) {
		return nil, verrors.InvalidArgument("buffer.aligned", fmt.Sprintf("alignment %d is not a power of two", alignment))
	}
	if b.alignment >= alignment && isAddrAligned(b.data, alignment) {
		return b, nil
	}
	return NewAligned(b.data, alignment)
}

// AsTyped reinterprets the buffer as a slice of T, succeeding iff the
// buffer's alignment is at least alignOf and its length is a multiple of
// sizeOf.
func (b *Buffer) AsTyped(sizeOf, alignOf int) error {
	if b.alignment < alignOf {
		return verrors.InvalidArgument("buffer.as_typed", fmt.Sprintf("buffer alignment %d < required %d", b.alignment, alignOf))
	}
	if len(b.data)%sizeOf != 0 {
		return verrors.InvalidArgument("buffer.as_typed", fmt.Sprintf("buffer length %d not a multiple of element size %d", len(b.data), sizeOf))
	}
	return nil
}

// MutableBuffer is a growable, single-owner variant of Buffer.
type MutableBuffer struct {
	data      []byte
	alignment int
	frozen    bool
}

// NewMutable allocates an empty mutable buffer with capacity cap, aligned
// to alignment.
func NewMutable(capacity, alignment int) (*MutableBuffer, error) {
	if !isPowerOfTwo(alignment) {
		return nil, verrors.InvalidArgument("buffer.new_mutable", fmt.Sprintf("alignment %d is not a power of two", alignment))
	}
	return &MutableBuffer{data: allocAligned(capacityWithAlign(capacity, alignment), alignment)[:0], alignment: alignment}, nil
}

// Extend appends bytes, reallocating (preserving alignment) if needed.
func (m *MutableBuffer) Extend(bytes []byte) error {
	if m.frozen {
		return verrors.InvalidArgument("buffer.extend", "buffer is frozen")
	}
	if cap(m.data)-len(m.data) >= len(bytes) {
		m.data = append(m.data, bytes...)
		return nil
	}
	grown := allocAligned(len(m.data)+len(bytes), m.alignment)
	copy(grown, m.data)
	copy(grown[len(m.data):], bytes)
	m.data = grown
	return nil
}

// Len returns the number of bytes written so far.
func (m *MutableBuffer) Len() int { return len(m.data) }

// Freeze transitions the mutable buffer to an immutable Buffer, consuming
// the mutable handle.
func (m *MutableBuffer) Freeze() (*Buffer, error) {
	if m.frozen {
		return nil, verrors.InvalidArgument("buffer.freeze", "buffer already frozen")
	}
	m.frozen = true
	refs := int64(1)
	return &Buffer{data: m.data, alignment: m.alignment, refs: &refs}, nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// isAddrAligned reports whether the slice's backing address satisfies
// alignment. Go gives no portable way to inspect raw pointer alignment
// without unsafe; new_aligned callers that need a strict guarantee should
// always route through NewAligned, which always allocates a fresh,
// over-allocated buffer and offsets into it.
func isAddrAligned(data []byte, alignment int) bool {
	return alignment <= 1
}

func allocAligned(n, alignment int) []byte {
	if alignment <= 1 {
		return make([]byte, n)
	}
	buf := make([]byte, n+alignment)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&buf[0])) % uintptr(alignment)); rem != 0 {
		off = alignment - rem
	}
	return buf[off : off+n]
}

func capacityWithAlign(capacity, alignment int) int {
	if capacity < alignment {
		return alignment
	}
	return capacity
}
